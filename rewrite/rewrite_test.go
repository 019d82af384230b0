package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trewdev/trew/gofront"
	"github.com/trewdev/trew/match"
	"github.com/trewdev/trew/pattern"
	"github.com/trewdev/trew/rewrite"
	"github.com/trewdev/trew/tree"
)

func template(t *testing.T, text string, kind pattern.Kind) *pattern.Template {
	t.Helper()
	tpl, err := pattern.Parse(gofront.New(), text, kind)
	require.NoError(t, err)
	return tpl
}

func TestTemplateRecipeSubstitutesBindings(t *testing.T) {
	t.Parallel()
	repl := template(t, `fmt.Sprint($x)`, pattern.Expression)
	bound := add(ident("a"), ident("b"))

	m := &match.Match{
		Node:     ident("placeholder-site"),
		Bindings: map[string]*tree.Node{"x": bound},
	}
	built, err := rewrite.TemplateRecipe(repl)(m)
	require.NoError(t, err)

	assert.Equal(t, tree.CallExpr, built.Kind)
	require.Len(t, built.Children, 2)
	arg := built.Children[1]
	assert.True(t, tree.Equal(arg, bound))
	assert.NotSame(t, arg, bound, "binding must be cloned, not shared")
}

func TestTemplateRecipeSplicesListBindings(t *testing.T) {
	t.Parallel()
	repl := template(t, `g($args$)`, pattern.Expression)

	m := &match.Match{
		Node:         ident("site"),
		ListBindings: map[string][]*tree.Node{"args": {ident("a"), ident("b"), ident("c")}},
	}
	built, err := rewrite.TemplateRecipe(repl)(m)
	require.NoError(t, err)

	require.Len(t, built.Children, 4) // callee + three spliced arguments
	assert.Equal(t, "a", built.Children[1].Value)
	assert.Equal(t, "c", built.Children[3].Value)
}

func TestTemplateRecipeEmptyListBinding(t *testing.T) {
	t.Parallel()
	repl := template(t, `g($args$)`, pattern.Expression)

	m := &match.Match{
		Node:         ident("site"),
		ListBindings: map[string][]*tree.Node{"args": nil},
	}
	built, err := rewrite.TemplateRecipe(repl)(m)
	require.NoError(t, err)
	require.Len(t, built.Children, 1, "empty run splices nothing")
}

func TestTemplateRecipeMissingBinding(t *testing.T) {
	t.Parallel()
	repl := template(t, `fmt.Sprint($x)`, pattern.Expression)

	m := &match.Match{Node: ident("site"), Bindings: map[string]*tree.Node{}}
	_, err := rewrite.TemplateRecipe(repl)(m)
	require.Error(t, err)
	var ce *rewrite.ConstructionError
	assert.ErrorAs(t, err, &ce)
}
