package gofront

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trewdev/trew/pattern"
)

// TestRenderExpressionRoundTrip parses canonical-form expressions and
// renders them back, which must reproduce the input.
func TestRenderExpressionRoundTrip(t *testing.T) {
	t.Parallel()
	exprs := []string{
		`a + b`,
		`a * b + c`,
		`-x`,
		`(a + b)`,
		`f(1, 2)`,
		`f(xs...)`,
		`obj.field`,
		`m[k]`,
		`s[1:2]`,
		`s[:n]`,
		`s[a:b:c]`,
		`*p`,
		`fmt.Sprint(x)`,
	}
	for _, src := range exprs {
		root, err := New().ParseFragment(src, pattern.Expression)
		require.NoError(t, err, "parse %q", src)
		assert.Equal(t, src, Render(root), "round trip %q", src)
	}
}

func TestRenderStatementRoundTrip(t *testing.T) {
	t.Parallel()
	stmts := []string{
		`x := 1`,
		`x, y = y, x`,
		`x++`,
		`return a, b`,
		`defer mu.Unlock()`,
		`go run()`,
		`ch <- v`,
		`break`,
		`continue outer`,
	}
	for _, src := range stmts {
		root, err := New().ParseFragment(src, pattern.Statement)
		require.NoError(t, err, "parse %q", src)
		assert.Equal(t, src, Render(root), "round trip %q", src)
	}
}

func TestRenderBlockStatements(t *testing.T) {
	t.Parallel()
	root, err := New().ParseFragment("if x > 0 { return x }", pattern.Statement)
	require.NoError(t, err)
	assert.Equal(t, "if x > 0 {\nreturn x\n}", Render(root))

	root, err = New().ParseFragment("for i := 0; i < n; i++ { total += i }", pattern.Statement)
	require.NoError(t, err)
	assert.Equal(t, "for i := 0; i < n; i++ {\ntotal += i\n}", Render(root))

	root, err = New().ParseFragment("for k, v := range m { use(k, v) }", pattern.Statement)
	require.NoError(t, err)
	assert.Equal(t, "for k, v := range m {\nuse(k, v)\n}", Render(root))
}

func TestRenderPreservesPlaceholders(t *testing.T) {
	t.Parallel()
	root, err := New().ParseFragment(`fmt.Sprint($x)`, pattern.Expression)
	require.NoError(t, err)
	assert.Equal(t, `fmt.Sprint($x)`, Render(root))
}

func TestRenderFileAddsImports(t *testing.T) {
	t.Parallel()
	src := `package p

func f(name string) string {
	return fmt.Sprint(name)
}
`
	unit, err := ParseSource("x.go", []byte(src), "")
	require.NoError(t, err)

	out, err := RenderFile(unit.Root, []string{"fmt"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `import "fmt"`)
	assert.Contains(t, string(out), "fmt.Sprint(name)")
}

func TestRenderFileRejectsNonFileRoot(t *testing.T) {
	t.Parallel()
	root, err := New().ParseFragment(`a + b`, pattern.Expression)
	require.NoError(t, err)
	_, err = RenderFile(root, nil)
	assert.Error(t, err)
}
