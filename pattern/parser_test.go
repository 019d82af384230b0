package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trewdev/trew/gofront"
	"github.com/trewdev/trew/pattern"
	"github.com/trewdev/trew/tree"
)

func TestParseExpressionPattern(t *testing.T) {
	t.Parallel()
	tpl, err := pattern.Parse(gofront.New(), `"" + $x`, pattern.Expression)
	require.NoError(t, err)

	assert.Equal(t, pattern.Expression, tpl.Kind)
	assert.Equal(t, `"" + $x`, tpl.Text())
	assert.Equal(t, []string{"x"}, tpl.Placeholders())
	assert.Empty(t, tpl.ListPlaceholders())

	root, ok := tpl.Root.(*pattern.Structural)
	require.True(t, ok, "root should be structural, got %s", tpl.Root)
	assert.Equal(t, tree.BinaryExpr, root.Kind)
	assert.Equal(t, "+", root.Value)
	require.Len(t, root.Children, 2)

	lit, ok := root.Children[0].(*pattern.Literal)
	require.True(t, ok)
	assert.Equal(t, tree.BasicLit, lit.Kind)
	assert.Equal(t, `""`, lit.Value)

	ph, ok := root.Children[1].(*pattern.Placeholder)
	require.True(t, ok)
	assert.Equal(t, "x", ph.Name)
	assert.Equal(t, pattern.ExprSubtree, ph.Constraint)
}

func TestParseListPlaceholder(t *testing.T) {
	t.Parallel()
	tpl, err := pattern.Parse(gofront.New(), `f($args$)`, pattern.Expression)
	require.NoError(t, err)

	assert.Equal(t, []string{"args"}, tpl.ListPlaceholders())
	root, ok := tpl.Root.(*pattern.Structural)
	require.True(t, ok)
	assert.Equal(t, tree.CallExpr, root.Kind)
	require.Len(t, root.Children, 2)
	_, ok = root.Children[1].(*pattern.ListPlaceholder)
	assert.True(t, ok, "second child should be a list placeholder")
}

func TestRepeatedPlaceholderDeclaredOnce(t *testing.T) {
	t.Parallel()
	tpl, err := pattern.Parse(gofront.New(), `$x + $x`, pattern.Expression)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, tpl.Placeholders())
}

func TestStatementPlaceholderLift(t *testing.T) {
	t.Parallel()
	tpl, err := pattern.Parse(gofront.New(), `$s`, pattern.Statement)
	require.NoError(t, err)

	ph, ok := tpl.Root.(*pattern.Placeholder)
	require.True(t, ok, "lone statement placeholder should be lifted, got %s", tpl.Root)
	assert.Equal(t, "s", ph.Name)
	assert.Equal(t, pattern.StmtSubtree, ph.Constraint)
}

func TestParseStatementPattern(t *testing.T) {
	t.Parallel()
	tpl, err := pattern.Parse(gofront.New(), `return $x`, pattern.Statement)
	require.NoError(t, err)

	root, ok := tpl.Root.(*pattern.Structural)
	require.True(t, ok)
	assert.Equal(t, tree.ReturnStmt, root.Kind)
	assert.Equal(t, []string{"x"}, tpl.Placeholders())
}

func TestPlaceholderTokenErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		text       string
		wantOffset int
	}{
		{name: "bare dollar", text: `$ + 1`, wantOffset: 0},
		{name: "dollar mid-pattern", text: `a + $`, wantOffset: 4},
		{name: "digit start", text: `$1x + a`, wantOffset: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pattern.Parse(gofront.New(), tt.text, pattern.Expression)
			require.Error(t, err)
			se, ok := err.(*pattern.SyntaxError)
			require.True(t, ok, "want *SyntaxError, got %T", err)
			assert.Equal(t, tt.wantOffset, se.Offset)
		})
	}
}

func TestDollarInsideStringLiteral(t *testing.T) {
	t.Parallel()
	tpl, err := pattern.Parse(gofront.New(), `"$" + $x`, pattern.Expression)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, tpl.Placeholders())

	// a dollar-prefixed word in a string is literal text, not a placeholder
	tpl, err = pattern.Parse(gofront.New(), `"$HOME" + $x`, pattern.Expression)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, tpl.Placeholders())

	root, ok := tpl.Root.(*pattern.Structural)
	require.True(t, ok)
	lit, ok := root.Children[0].(*pattern.Literal)
	require.True(t, ok)
	assert.Equal(t, `"$HOME"`, lit.Value)
}

func TestParseSyntaxErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		text string
		kind pattern.Kind
	}{
		{name: "empty pattern", text: "   ", kind: pattern.Expression},
		{name: "dangling operator", text: `$x +`, kind: pattern.Expression},
		{name: "unclosed brace", text: `if $c {`, kind: pattern.Statement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pattern.Parse(gofront.New(), tt.text, tt.kind)
			require.Error(t, err)
			se, ok := err.(*pattern.SyntaxError)
			require.True(t, ok, "want *SyntaxError, got %T", err)
			assert.LessOrEqual(t, se.Offset, len(tt.text))
		})
	}
}

func TestKindFromString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    pattern.Kind
		wantErr bool
	}{
		{in: "expression", want: pattern.Expression},
		{in: "expr", want: pattern.Expression},
		{in: "", want: pattern.Expression},
		{in: "Statement", want: pattern.Statement},
		{in: "stmt", want: pattern.Statement},
		{in: "annotation", want: pattern.Annotation},
		{in: "declaration", want: pattern.Annotation},
		{in: "bogus", wantErr: true},
	}
	for _, tt := range tests {
		got, err := pattern.KindFromString(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestConstraintAdmits(t *testing.T) {
	t.Parallel()
	assert.True(t, pattern.ExprSubtree.Admits(tree.Ident))
	assert.False(t, pattern.ExprSubtree.Admits(tree.ReturnStmt))
	assert.True(t, pattern.StmtSubtree.Admits(tree.ReturnStmt))
	assert.False(t, pattern.StmtSubtree.Admits(tree.Ident))
	assert.True(t, pattern.AnySubtree.Admits(tree.FuncDecl))
}
