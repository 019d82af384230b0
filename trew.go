// Package trew is the façade over the pattern, match, guard and rewrite
// packages: an Engine owns one front end, one guard registry and the
// registered pattern templates, and turns declarative rules into tree
// transformations.
package trew

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/trewdev/trew/guard"
	"github.com/trewdev/trew/match"
	"github.com/trewdev/trew/pattern"
	"github.com/trewdev/trew/rewrite"
	"github.com/trewdev/trew/rule"
	"github.com/trewdev/trew/tree"
)

// PatternHandle identifies a pattern registered with an Engine. A handle
// is only valid for the engine that issued it.
type PatternHandle int

// Engine ties a host front end to the matching and rewriting machinery.
// Register patterns and guards up front; matching and rewriting are then
// safe to run concurrently over independent trees.
type Engine struct {
	frontend  pattern.Frontend
	guards    *guard.Registry
	coord     *rewrite.Coordinator
	logger    *zap.Logger
	templates []*pattern.Template
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes engine diagnostics to the given logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New returns an engine for the given front end with the built-in guards
// registered.
func New(fe pattern.Frontend, opts ...Option) *Engine {
	e := &Engine{frontend: fe, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	e.guards = guard.NewRegistry(e.logger)
	e.coord = rewrite.NewCoordinator(e.logger)
	return e
}

// RegisterPattern parses and registers a pattern. Malformed pattern text
// fails here, at registration, never later at match time.
func (e *Engine) RegisterPattern(text string, kind pattern.Kind) (PatternHandle, error) {
	tpl, err := pattern.Parse(e.frontend, text, kind)
	if err != nil {
		return -1, err
	}
	e.templates = append(e.templates, tpl)
	return PatternHandle(len(e.templates) - 1), nil
}

// Template returns the template behind a handle, or nil for a handle this
// engine never issued.
func (e *Engine) Template(h PatternHandle) *pattern.Template {
	if h < 0 || int(h) >= len(e.templates) {
		return nil
	}
	return e.templates[h]
}

// RegisterGuard adds a custom guard function alongside the built-ins.
func (e *Engine) RegisterGuard(name string, fn guard.Func) {
	e.guards.Register(name, fn)
}

// Guards exposes the engine's guard registry.
func (e *Engine) Guards() *guard.Registry { return e.guards }

// FindMatches runs one registered pattern over a target tree. Results are
// in document order.
func (e *Engine) FindMatches(target *tree.Node, h PatternHandle, ctx match.Context) ([]*match.Match, error) {
	tpl := e.Template(h)
	if tpl == nil {
		return nil, fmt.Errorf("unknown pattern handle %d", h)
	}
	return match.FindMatches(target, tpl, ctx), nil
}

// ApplyAll applies a batch of rewrite operations to a tree. The input tree
// is not mutated.
func (e *Engine) ApplyAll(root *tree.Node, ops []rewrite.Operation) (*tree.Node, rewrite.Report) {
	return e.coord.ApplyAll(root, ops)
}

// CompiledRule is a rule whose pattern, guard and replacement have been
// parsed and validated against each other.
type CompiledRule struct {
	Rule        rule.Rule
	Kind        pattern.Kind
	Pattern     *pattern.Template
	Guard       guard.Expr // nil when the rule has no guard
	Replacement *pattern.Template

	recipe rewrite.Recipe
}

// Name returns the rule's name, falling back to its pattern text.
func (c *CompiledRule) Name() string {
	if c.Rule.Name != "" {
		return c.Rule.Name
	}
	return c.Rule.Pattern
}

// CompileRule parses one rule's pattern, guard expression and replacement
// template. Every placeholder the replacement uses must be declared by the
// pattern; that mismatch is caught here, not when a rewrite runs.
func (e *Engine) CompileRule(r rule.Rule) (*CompiledRule, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	kind, err := pattern.KindFromString(r.Kind)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", r.Name, err)
	}
	pat, err := pattern.Parse(e.frontend, r.Pattern, kind)
	if err != nil {
		return nil, fmt.Errorf("rule %q: pattern: %w", r.Name, err)
	}
	repl, err := pattern.Parse(e.frontend, r.Replacement, kind)
	if err != nil {
		return nil, fmt.Errorf("rule %q: replacement: %w", r.Name, err)
	}
	if err := checkReplacementPlaceholders(pat, repl); err != nil {
		return nil, fmt.Errorf("rule %q: %w", r.Name, err)
	}

	var g guard.Expr
	if r.Guard != "" {
		g, err = guard.ParseExpr(r.Guard)
		if err != nil {
			return nil, fmt.Errorf("rule %q: guard: %w", r.Name, err)
		}
	}

	return &CompiledRule{
		Rule:        r,
		Kind:        kind,
		Pattern:     pat,
		Guard:       g,
		Replacement: repl,
		recipe:      rewrite.TemplateRecipe(repl),
	}, nil
}

// CompileRules compiles a rule bundle, failing on the first bad rule.
func (e *Engine) CompileRules(rules []rule.Rule) ([]*CompiledRule, error) {
	out := make([]*CompiledRule, 0, len(rules))
	for _, r := range rules {
		c, err := e.CompileRule(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func checkReplacementPlaceholders(pat, repl *pattern.Template) error {
	declared := make(map[string]bool)
	for _, name := range pat.Placeholders() {
		declared[name] = true
	}
	for _, name := range repl.Placeholders() {
		if !declared[name] {
			return fmt.Errorf("replacement uses undeclared placeholder $%s", name)
		}
	}
	declaredLists := make(map[string]bool)
	for _, name := range pat.ListPlaceholders() {
		declaredLists[name] = true
	}
	for _, name := range repl.ListPlaceholders() {
		if !declaredLists[name] {
			return fmt.Errorf("replacement uses undeclared list placeholder $%s$", name)
		}
	}
	return nil
}

// Plan matches every compiled rule against a target tree, filters matches
// through the rules' guards, and returns the surviving matches as rewrite
// operations. Guard failures drop the match silently; they are not errors.
func (e *Engine) Plan(target *tree.Node, ctx match.Context, rules []*CompiledRule) []rewrite.Operation {
	var ops []rewrite.Operation
	for _, r := range rules {
		for _, m := range match.FindMatches(target, r.Pattern, ctx) {
			if !e.guards.Evaluate(m, r.Guard) {
				continue
			}
			ops = append(ops, rewrite.Operation{
				Match:       m,
				Description: r.Name(),
				Build:       r.recipe,
			})
		}
	}
	return ops
}

// Rewrite plans and applies a rule set against one tree in a single batch.
func (e *Engine) Rewrite(target *tree.Node, ctx match.Context, rules []*CompiledRule) (*tree.Node, rewrite.Report) {
	return e.coord.ApplyAll(target, e.Plan(target, ctx, rules))
}

// RequiredImports collects the import paths declared by the rules that
// actually applied, deduplicated and sorted.
func RequiredImports(report rewrite.Report, rules []*CompiledRule) []string {
	byName := make(map[string]string)
	for _, r := range rules {
		if r.Rule.Import != "" {
			byName[r.Name()] = r.Rule.Import
		}
	}
	seen := make(map[string]bool)
	var paths []string
	for _, op := range report.Ops {
		path, ok := byName[op.Description]
		if !ok || seen[path] {
			continue
		}
		seen[path] = true
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
