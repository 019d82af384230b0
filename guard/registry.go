package guard

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/trewdev/trew/match"
	"github.com/trewdev/trew/tree"
)

// Func is a named, pure predicate over a match's bindings. Arguments are
// the raw strings from the guard expression: placeholder names keep their
// `$` prefix, literals keep their quotes.
type Func func(ctx *Context, args []string) bool

// Context gives a guard read access to one match. Guards never see other
// matches and never mutate the tree, so evaluation order across matches is
// irrelevant to correctness.
type Context struct {
	m *match.Match
	r *Registry
}

// Binding resolves a single-value placeholder argument (with or without
// the `$` prefix) to its bound subtree.
func (c *Context) Binding(name string) (*tree.Node, bool) {
	return c.m.Binding(strings.TrimPrefix(name, "$"))
}

// ListBinding resolves a list placeholder argument to its bound run.
func (c *Context) ListBinding(name string) ([]*tree.Node, bool) {
	return c.m.ListBinding(strings.TrimPrefix(name, "$"))
}

// MatchedNode returns the match root, for guards that take no explicit
// placeholder.
func (c *Context) MatchedNode() *tree.Node { return c.m.Node }

// SourceVersion returns the source-language version of the matched unit.
func (c *Context) SourceVersion() string { return c.m.Context.SourceVersion }

// Resolver returns the host's symbol/type resolver, or nil if the host
// supplied none.
func (c *Context) Resolver() tree.Resolver { return c.m.Context.Resolver }

// failf records a guard evaluation failure. Each distinct cause is logged
// once; the guard still just evaluates to false.
func (c *Context) failf(format string, args ...any) bool {
	c.r.failOnce(format, args...)
	return false
}

// Registry maps guard names to implementations. It is built once at
// engine start and treated as read-only afterward; Register must not be
// called after matching begins.
type Registry struct {
	logger *zap.Logger
	funcs  map[string]Func

	// distinct evaluation-failure causes already logged
	seen sync.Map
}

// NewRegistry returns a registry pre-populated with the built-in guards.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		logger: logger,
		funcs:  make(map[string]Func),
	}
	registerBuiltins(r)
	return r
}

// Register adds a guard function. Duplicate names overwrite the previous
// registration with a warning, not a fatal error.
func (r *Registry) Register(name string, fn Func) {
	if _, exists := r.funcs[name]; exists {
		r.logger.Warn("overwriting guard registration", zap.String("guard", name))
	}
	r.funcs[name] = fn
}

func (r *Registry) lookup(name string) (Func, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered guard names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	return names
}

func (r *Registry) failOnce(format string, args ...any) {
	cause := fmt.Sprintf(format, args...)
	if _, loaded := r.seen.LoadOrStore(cause, struct{}{}); !loaded {
		r.logger.Warn("guard evaluation failure", zap.String("cause", cause))
	}
}

// Evaluate runs a guard expression against one match. Any failure
// (unregistered guard, unresolved binding, unresolvable shape) yields
// false; the match is dropped and matching continues.
func (r *Registry) Evaluate(m *match.Match, expr Expr) bool {
	if expr == nil {
		return true
	}
	return expr.eval(r, &Context{m: m, r: r})
}
