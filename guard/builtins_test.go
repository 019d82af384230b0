package guard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trewdev/trew/gofront"
	"github.com/trewdev/trew/guard"
	"github.com/trewdev/trew/match"
	"github.com/trewdev/trew/pattern"
)

// firstMatch parses a source file and a pattern and returns the first
// match, failing the test when there is none.
func firstMatch(t *testing.T, src, patternText string, kind pattern.Kind) *match.Match {
	t.Helper()
	unit, err := gofront.ParseSource("target.go", []byte(src), "")
	require.NoError(t, err)
	tpl, err := pattern.Parse(gofront.New(), patternText, kind)
	require.NoError(t, err)
	ctx := match.Context{Unit: unit.Root, SourceVersion: unit.Version, Resolver: unit}
	matches := match.FindMatches(unit.Root, tpl, ctx)
	require.NotEmpty(t, matches, "pattern %q found no matches", patternText)
	return matches[0]
}

func evaluate(t *testing.T, m *match.Match, guardText string) bool {
	t.Helper()
	expr, err := guard.ParseExpr(guardText)
	require.NoError(t, err)
	return guard.NewRegistry(nil).Evaluate(m, expr)
}

func TestInstanceOf(t *testing.T) {
	t.Parallel()
	src := `package p

var count int32

func f() int32 {
	return count + 1
}
`
	m := firstMatch(t, src, `$x + 1`, pattern.Expression)

	assert.True(t, evaluate(t, m, "$x instanceof int32"))
	assert.False(t, evaluate(t, m, "$x instanceof string"))
	assert.False(t, evaluate(t, m, "$x instanceof int32[]"))
}

func TestInstanceOfArray(t *testing.T) {
	t.Parallel()
	src := `package p

func f(names []string) int {
	return len(names)
}
`
	m := firstMatch(t, src, `len($xs)`, pattern.Expression)

	assert.True(t, evaluate(t, m, "$xs instanceof string[]"))
	assert.False(t, evaluate(t, m, "$xs instanceof int[]"))
	assert.False(t, evaluate(t, m, "$xs instanceof string"))
}

func TestMatchesAnyAndNone(t *testing.T) {
	t.Parallel()
	src := `package p

func f(count int) int {
	return count + 1
}
`
	m := firstMatch(t, src, `$x + 1`, pattern.Expression)

	assert.True(t, evaluate(t, m, `matchesAny($x, "count", "total")`))
	assert.False(t, evaluate(t, m, `matchesAny($x, "total")`))
	assert.False(t, evaluate(t, m, `matchesNone($x, "count")`))
	assert.True(t, evaluate(t, m, `matchesNone($x, "total")`))

	// bare placeholder sugar: existence of the binding
	assert.True(t, evaluate(t, m, "$x"))

	// $y was never declared by the pattern, so it has no binding;
	// matchesNone must be the exact negation of matchesAny here too
	assert.False(t, evaluate(t, m, "matchesAny($y)"))
	assert.True(t, evaluate(t, m, "matchesNone($y)"))
}

func TestHasNoSideEffect(t *testing.T) {
	t.Parallel()
	src := `package p

func g() int { return 1 }

func f(a int) int {
	x := a + 1
	y := g() + 1
	return x + y
}
`
	unit, err := gofront.ParseSource("target.go", []byte(src), "")
	require.NoError(t, err)
	tpl, err := pattern.Parse(gofront.New(), `$e + 1`, pattern.Expression)
	require.NoError(t, err)
	ctx := match.Context{Unit: unit.Root, SourceVersion: unit.Version, Resolver: unit}
	matches := match.FindMatches(unit.Root, tpl, ctx)
	require.Len(t, matches, 2)

	assert.True(t, evaluate(t, matches[0], "hasNoSideEffect($e)"), "plain identifier")
	assert.False(t, evaluate(t, matches[1], "hasNoSideEffect($e)"), "call expression")
}

func TestHasNoSideEffectUnboundFailsClosed(t *testing.T) {
	t.Parallel()
	src := `package p

func g() int { return 1 }

func f() int {
	return g() + 1
}
`
	m := firstMatch(t, src, `$e + 1`, pattern.Expression)

	// $nope was never bound by the pattern; the guard must not admit the
	// match it was supposed to protect
	assert.False(t, evaluate(t, m, "hasNoSideEffect($nope)"))
	assert.False(t, evaluate(t, m, "hasNoSideEffect()"))
}

func TestSymbolGuardUnboundLogsOnce(t *testing.T) {
	t.Parallel()
	src := `package p

const limit = 10

func f() int {
	return limit + 1
}
`
	m := firstMatch(t, src, `$c + 1`, pattern.Expression)

	core, logs := observer.New(zap.WarnLevel)
	reg := guard.NewRegistry(zap.New(core))
	expr, err := guard.ParseExpr("isStatic($nope)")
	require.NoError(t, err)

	assert.False(t, reg.Evaluate(m, expr))
	assert.False(t, reg.Evaluate(m, expr))

	// the unresolved binding is logged once per distinct cause
	assert.Len(t, logs.FilterMessage("guard evaluation failure").All(), 1)
}

func TestReferencedIn(t *testing.T) {
	t.Parallel()
	src := `package p

func f(x, y int) {
	x = x + 1
	y = x + 2
}
`
	unit, err := gofront.ParseSource("target.go", []byte(src), "")
	require.NoError(t, err)
	tpl, err := pattern.Parse(gofront.New(), `$v = $e`, pattern.Statement)
	require.NoError(t, err)
	ctx := match.Context{Unit: unit.Root, SourceVersion: unit.Version, Resolver: unit}
	matches := match.FindMatches(unit.Root, tpl, ctx)
	require.Len(t, matches, 2)

	assert.True(t, evaluate(t, matches[0], "referencedIn($v, $e)"), "x = x + 1")
	assert.False(t, evaluate(t, matches[1], "referencedIn($v, $e)"), "y = x + 2")
}

func TestSourceVersionGuards(t *testing.T) {
	t.Parallel()
	src := `package p

func f(count int) int { return count + 1 }
`
	unit, err := gofront.ParseSource("target.go", []byte(src), "1.21")
	require.NoError(t, err)
	tpl, err := pattern.Parse(gofront.New(), `$x + 1`, pattern.Expression)
	require.NoError(t, err)
	ctx := match.Context{Unit: unit.Root, SourceVersion: unit.Version, Resolver: unit}
	matches := match.FindMatches(unit.Root, tpl, ctx)
	require.NotEmpty(t, matches)
	m := matches[0]

	assert.True(t, evaluate(t, m, "sourceVersionGE(1.20)"))
	assert.True(t, evaluate(t, m, "sourceVersionGE(1.21)"))
	assert.False(t, evaluate(t, m, "sourceVersionGE(1.22)"))
	assert.True(t, evaluate(t, m, "sourceVersionLE(1.21)"))
	assert.False(t, evaluate(t, m, "sourceVersionLE(1.20)"))
	assert.True(t, evaluate(t, m, "sourceVersionBetween(1.18, 1.22)"))
	assert.False(t, evaluate(t, m, "sourceVersionBetween(1.22, 1.25)"))

	// malformed version arguments fail closed
	assert.False(t, evaluate(t, m, "sourceVersionGE(banana)"))
}

func TestModifierGuards(t *testing.T) {
	t.Parallel()
	src := `package p

const limit = 10

var total int

func f(count int) {
	local := count + 1
	total = limit + local
}
`
	unit, err := gofront.ParseSource("target.go", []byte(src), "")
	require.NoError(t, err)

	bind := func(patternText string, kind pattern.Kind) *match.Match {
		tpl, err := pattern.Parse(gofront.New(), patternText, kind)
		require.NoError(t, err)
		ctx := match.Context{Unit: unit.Root, SourceVersion: unit.Version, Resolver: unit}
		matches := match.FindMatches(unit.Root, tpl, ctx)
		require.NotEmpty(t, matches)
		return matches[0]
	}

	constant := bind(`$c + local`, pattern.Expression)
	assert.True(t, evaluate(t, constant, "isFinal($c)"), "const is final")
	assert.True(t, evaluate(t, constant, "isStatic($c)"), "package-level is static")

	local := bind(`limit + $l`, pattern.Expression)
	assert.False(t, evaluate(t, local, "isFinal($l)"))
	assert.True(t, evaluate(t, local, `elementKindMatches($l, LOCAL_VARIABLE)`))
	assert.False(t, evaluate(t, local, `elementKindMatches($l, PARAMETER)`))

	param := bind(`$p + 1`, pattern.Expression)
	assert.True(t, evaluate(t, param, `elementKindMatches($p, PARAMETER)`))
	assert.False(t, evaluate(t, param, "isStatic($p)"))

	global := bind(`$t = limit + local`, pattern.Statement)
	assert.True(t, evaluate(t, global, "isStatic($t)"))
	assert.True(t, evaluate(t, global, `elementKindMatches($t, FIELD)`))
}

func TestDeprecatedAndAnnotations(t *testing.T) {
	t.Parallel()
	src := `package p

// Deprecated: use g instead.
//go:noinline
func f(x int) int {
	return x + 1
}
`
	m := firstMatch(t, src, `$v + 1`, pattern.Expression)

	assert.True(t, evaluate(t, m, "isDeprecated($v)"))
	assert.True(t, evaluate(t, m, `hasAnnotation($v, "go:noinline")`))
	assert.False(t, evaluate(t, m, `hasAnnotation($v, "go:nosplit")`))
}

func TestContains(t *testing.T) {
	t.Parallel()
	src := `package p

type mutex struct{}

func (m *mutex) Lock()   {}
func (m *mutex) Unlock() {}

var mu mutex

func locked(x int) int {
	mu.Lock()
	defer mu.Unlock()
	return x + 1
}

func unlocked(x int) int {
	return x + 1
}
`
	unit, err := gofront.ParseSource("target.go", []byte(src), "")
	require.NoError(t, err)
	tpl, err := pattern.Parse(gofront.New(), `$x + 1`, pattern.Expression)
	require.NoError(t, err)
	ctx := match.Context{Unit: unit.Root, SourceVersion: unit.Version, Resolver: unit}
	matches := match.FindMatches(unit.Root, tpl, ctx)
	require.Len(t, matches, 2)

	assert.True(t, evaluate(t, matches[0], `contains("mu.Lock()")`))
	assert.False(t, evaluate(t, matches[1], `contains("mu.Lock()")`))
	assert.True(t, evaluate(t, matches[1], `notContains("mu.Lock()")`))
}

func TestComplexityLE(t *testing.T) {
	t.Parallel()
	src := `package p

func simple(x int) int {
	return x + 1
}

func branchy(x int) int {
	if x > 10 {
		x = 10
	}
	if x < 0 {
		x = 0
	}
	for i := 0; i < x; i++ {
		x++
	}
	return x + 1
}
`
	unit, err := gofront.ParseSource("target.go", []byte(src), "")
	require.NoError(t, err)
	tpl, err := pattern.Parse(gofront.New(), `$x + 1`, pattern.Expression)
	require.NoError(t, err)
	ctx := match.Context{Unit: unit.Root, SourceVersion: unit.Version, Resolver: unit}
	matches := match.FindMatches(unit.Root, tpl, ctx)
	require.Len(t, matches, 2)

	assert.True(t, evaluate(t, matches[0], "complexityLE(1)"))
	assert.False(t, evaluate(t, matches[1], "complexityLE(2)"))
	assert.True(t, evaluate(t, matches[1], "complexityLE(10)"))
}

func TestUnregisteredGuardFailsClosed(t *testing.T) {
	t.Parallel()
	src := `package p

func f(x int) int { return x + 1 }
`
	m := firstMatch(t, src, `$x + 1`, pattern.Expression)

	assert.False(t, evaluate(t, m, "noSuchGuard($x)"))
	// short-circuiting still applies around the failure
	assert.True(t, evaluate(t, m, "$x || noSuchGuard($x)"))
	assert.False(t, evaluate(t, m, "noSuchGuard($x) && $x"))
}

func TestCustomGuardRegistration(t *testing.T) {
	t.Parallel()
	src := `package p

func f(x int) int { return x + 1 }
`
	m := firstMatch(t, src, `$x + 1`, pattern.Expression)

	r := guard.NewRegistry(nil)
	r.Register("alwaysTrue", func(ctx *guard.Context, args []string) bool { return true })
	expr, err := guard.ParseExpr("alwaysTrue($x)")
	require.NoError(t, err)
	assert.True(t, r.Evaluate(m, expr))

	// nil expression admits every match
	assert.True(t, r.Evaluate(m, nil))
}
