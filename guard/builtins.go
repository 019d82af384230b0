package guard

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/trewdev/trew/tree"
)

// registerBuiltins installs the built-in guard functions. The set mirrors
// the predicates batch-cleanup rules actually use: type checks, structural
// checks, modifier checks, version checks and containment checks.
func registerBuiltins(r *Registry) {
	r.Register("instanceof", evalInstanceOf)
	r.Register("matchesAny", evalMatchesAny)
	r.Register("matchesNone", evalMatchesNone)
	r.Register("hasNoSideEffect", evalHasNoSideEffect)
	r.Register("referencedIn", evalReferencedIn)
	r.Register("sourceVersionGE", evalSourceVersionGE)
	r.Register("sourceVersionLE", evalSourceVersionLE)
	r.Register("sourceVersionBetween", evalSourceVersionBetween)
	r.Register("isStatic", evalIsStatic)
	r.Register("isFinal", evalIsFinal)
	r.Register("elementKindMatches", evalElementKindMatches)
	r.Register("hasAnnotation", evalHasAnnotation)
	r.Register("isDeprecated", evalIsDeprecated)
	r.Register("contains", evalContains)
	r.Register("notContains", evalNotContains)
	r.Register("complexityLE", evalComplexityLE)
}

// evalInstanceOf checks that the resolved type of the bound node answers to
// the given type name. A `T[]` suffix matches array/slice types of T.
// Args: [placeholder, typeName]
func evalInstanceOf(ctx *Context, args []string) bool {
	if len(args) < 2 {
		return false
	}
	node, ok := ctx.Binding(args[0])
	if !ok {
		return ctx.failf("instanceof: no binding for %s", args[0])
	}
	res := ctx.Resolver()
	if res == nil {
		return ctx.failf("instanceof: no resolver supplied")
	}
	ti, ok := res.TypeOf(node)
	if !ok {
		return false
	}
	typeName := stripQuotes(args[1])
	if elem, isArray := strings.CutSuffix(typeName, "[]"); isArray && elem != "" {
		return ti.IsArray && ti.Elem.Matches(elem)
	}
	return ti.Matches(typeName)
}

// evalMatchesAny with one argument checks that the binding exists; with
// more, that the bound node's literal text equals one of the literals.
// Args: [placeholder] or [placeholder, lit, ...]
func evalMatchesAny(ctx *Context, args []string) bool {
	if len(args) < 1 {
		return false
	}
	node, bound := ctx.Binding(args[0])
	if len(args) == 1 {
		if bound {
			return true
		}
		list, ok := ctx.ListBinding(args[0])
		return ok && len(list) > 0
	}
	if !bound {
		return false
	}
	text := nodeText(ctx, node)
	for _, lit := range args[1:] {
		if text == stripQuotes(lit) {
			return true
		}
	}
	return false
}

// evalMatchesNone is the exact negation of matchesAny for every binding
// state, including the "no binding" case.
func evalMatchesNone(ctx *Context, args []string) bool {
	return !evalMatchesAny(ctx, args)
}

// evalHasNoSideEffect is conservative: a call expression may have side
// effects, everything else is assumed pure.
// Args: [placeholder]
func evalHasNoSideEffect(ctx *Context, args []string) bool {
	if len(args) < 1 {
		return ctx.failf("hasNoSideEffect: missing placeholder argument")
	}
	node, ok := ctx.Binding(args[0])
	if !ok {
		return ctx.failf("hasNoSideEffect: no binding for %s", args[0])
	}
	return node.Kind != tree.CallExpr
}

// evalReferencedIn reports whether the identifier bound to the first
// placeholder occurs as a leaf identifier anywhere inside the subtree
// bound to the second.
// Args: [varPlaceholder, exprPlaceholder]
func evalReferencedIn(ctx *Context, args []string) bool {
	if len(args) < 2 {
		return false
	}
	varNode, ok1 := ctx.Binding(args[0])
	exprNode, ok2 := ctx.Binding(args[1])
	if !ok1 || !ok2 {
		return false
	}
	ident := varNode.Value
	if varNode.Kind != tree.Ident {
		ident = strings.TrimSpace(nodeText(ctx, varNode))
	}
	found := false
	tree.Walk(exprNode, func(n *tree.Node) bool {
		if n.Kind == tree.Ident && n.Value == ident {
			found = true
		}
		return !found
	})
	return found
}

func evalSourceVersionGE(ctx *Context, args []string) bool {
	if len(args) < 1 {
		return false
	}
	have, want, ok := versions(ctx, args[0])
	return ok && have.Compare(want) >= 0
}

func evalSourceVersionLE(ctx *Context, args []string) bool {
	if len(args) < 1 {
		return false
	}
	have, want, ok := versions(ctx, args[0])
	return ok && have.Compare(want) <= 0
}

// Args: [minVersion, maxVersion], both inclusive.
func evalSourceVersionBetween(ctx *Context, args []string) bool {
	if len(args) < 2 {
		return false
	}
	have, low, ok := versions(ctx, args[0])
	if !ok {
		return false
	}
	high, err := semver.NewVersion(stripQuotes(args[1]))
	if err != nil {
		return ctx.failf("bad version argument %q", args[1])
	}
	return have.Compare(low) >= 0 && have.Compare(high) <= 0
}

func versions(ctx *Context, arg string) (have, want *semver.Version, ok bool) {
	want, err := semver.NewVersion(stripQuotes(arg))
	if err != nil {
		ctx.failf("bad version argument %q", arg)
		return nil, nil, false
	}
	have, err = semver.NewVersion(ctx.SourceVersion())
	if err != nil {
		ctx.failf("bad source version %q", ctx.SourceVersion())
		return nil, nil, false
	}
	return have, want, true
}

// Args: [placeholder]
func evalIsStatic(ctx *Context, args []string) bool {
	sym, ok := symbolArg(ctx, args)
	return ok && sym.Static
}

// Args: [placeholder]
func evalIsFinal(ctx *Context, args []string) bool {
	sym, ok := symbolArg(ctx, args)
	return ok && sym.Final
}

// Args: [placeholder, FIELD|METHOD|LOCAL_VARIABLE|PARAMETER|TYPE]
func evalElementKindMatches(ctx *Context, args []string) bool {
	if len(args) < 2 {
		return false
	}
	sym, ok := symbolArg(ctx, args)
	if !ok {
		return false
	}
	want := tree.ElementKindFromString(stripQuotes(args[1]))
	return want != tree.ElementUnknown && sym.Kind == want
}

// Args: [placeholder, annotationName]
func evalHasAnnotation(ctx *Context, args []string) bool {
	if len(args) < 2 {
		return false
	}
	sym, ok := symbolArg(ctx, args)
	if !ok {
		return false
	}
	want := stripQuotes(args[1])
	for _, a := range sym.Annotations {
		if a == want {
			return true
		}
	}
	return false
}

// Args: [placeholder]
func evalIsDeprecated(ctx *Context, args []string) bool {
	sym, ok := symbolArg(ctx, args)
	return ok && sym.Deprecated
}

// evalContains searches the serialized text of the enclosing routine body.
// Args: [text] searches around the matched node; [placeholder, text]
// around the placeholder's binding.
func evalContains(ctx *Context, args []string) bool {
	if len(args) < 1 {
		return false
	}
	var node *tree.Node
	var needle string
	if len(args) >= 2 {
		n, ok := ctx.Binding(args[0])
		if !ok {
			return false
		}
		node, needle = n, stripQuotes(args[1])
	} else {
		node, needle = ctx.MatchedNode(), stripQuotes(args[0])
	}
	res := ctx.Resolver()
	if res == nil {
		return ctx.failf("contains: no resolver supplied")
	}
	body, ok := res.EnclosingBody(node)
	if !ok {
		return false
	}
	return strings.Contains(res.Render(body), needle)
}

func evalNotContains(ctx *Context, args []string) bool {
	return !evalContains(ctx, args)
}

// evalComplexityLE admits a match only when the enclosing routine's
// cyclomatic complexity is at most the given bound.
// Args: [bound] or [placeholder, bound]
func evalComplexityLE(ctx *Context, args []string) bool {
	if len(args) < 1 {
		return false
	}
	node := ctx.MatchedNode()
	boundArg := args[0]
	if len(args) >= 2 {
		n, ok := ctx.Binding(args[0])
		if !ok {
			return false
		}
		node, boundArg = n, args[1]
	}
	bound, err := strconv.Atoi(stripQuotes(boundArg))
	if err != nil {
		return ctx.failf("complexityLE: bad bound %q", boundArg)
	}
	res := ctx.Resolver()
	if res == nil {
		return ctx.failf("complexityLE: no resolver supplied")
	}
	c, ok := res.Complexity(node)
	return ok && c <= bound
}

func symbolArg(ctx *Context, args []string) (*tree.Symbol, bool) {
	if len(args) < 1 {
		return nil, false
	}
	node, ok := ctx.Binding(args[0])
	if !ok {
		ctx.failf("no binding for %s in symbol guard", args[0])
		return nil, false
	}
	res := ctx.Resolver()
	if res == nil {
		ctx.failf("no resolver supplied for symbol guard")
		return nil, false
	}
	return res.SymbolOf(node)
}

// nodeText extracts the comparable text of a bound node: identifier names
// and literal values for leaves, rendered source otherwise.
func nodeText(ctx *Context, n *tree.Node) string {
	switch n.Kind {
	case tree.Ident:
		return n.Value
	case tree.BasicLit:
		return stripQuotes(n.Value)
	}
	if res := ctx.Resolver(); res != nil {
		return strings.TrimSpace(res.Render(n))
	}
	return n.String()
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') ||
			(s[0] == '`' && s[len(s)-1] == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
