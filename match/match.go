// Package match walks a target tree and unifies candidate nodes against a
// pattern template, producing placeholder bindings. Matching is a pure,
// read-only traversal: it is safe to run concurrently over independent
// trees or independent (pattern, tree) pairs.
package match

import (
	"github.com/trewdev/trew/pattern"
	"github.com/trewdev/trew/tree"
)

// Context carries the read-only references guards need but structural
// matching does not: the enclosing unit, the source-language version, and
// the host's resolver.
type Context struct {
	Unit          *tree.Node
	SourceVersion string
	Resolver      tree.Resolver
}

// Match is the result of one successful unification attempt. Immutable
// after construction; discarded after the pass that produced it.
type Match struct {
	Node         *tree.Node
	Bindings     map[string]*tree.Node
	ListBindings map[string][]*tree.Node
	Context      Context
}

// Binding returns the subtree bound to a single-value placeholder.
func (m *Match) Binding(name string) (*tree.Node, bool) {
	n, ok := m.Bindings[name]
	return n, ok
}

// ListBinding returns the run bound to a list placeholder. The empty run
// is a valid binding.
func (m *Match) ListBinding(name string) ([]*tree.Node, bool) {
	ns, ok := m.ListBindings[name]
	return ns, ok
}

// FindMatches attempts to unify every compatible node of the target tree
// against the template, in a single pre-order pass. Traversal continues
// into matched subtrees so nested, non-overlapping matches are still
// found. The result order is the traversal order, so two runs over the
// same inputs yield identical sequences.
func FindMatches(target *tree.Node, tpl *pattern.Template, ctx Context) []*Match {
	var matches []*Match
	tree.Walk(target, func(n *tree.Node) bool {
		if !rootCompatible(n, tpl) {
			return true
		}
		b := newBindings()
		if !unify(n, tpl.Root, b) {
			return true
		}
		if !b.covers(tpl) {
			return true
		}
		for _, name := range tpl.ListPlaceholders() {
			if _, ok := b.lists[name]; !ok {
				b.lists[name] = nil
			}
		}
		matches = append(matches, &Match{
			Node:         n,
			Bindings:     b.singles,
			ListBindings: b.lists,
			Context:      ctx,
		})
		return true
	})
	return matches
}

// rootCompatible filters candidate roots by the template's pattern kind.
func rootCompatible(n *tree.Node, tpl *pattern.Template) bool {
	switch tpl.Kind {
	case pattern.Expression:
		return n.Kind.IsExpr()
	case pattern.Statement:
		return n.Kind.IsStmt()
	case pattern.Annotation:
		return n.Kind.IsDecl()
	default:
		return false
	}
}

type bindings struct {
	singles map[string]*tree.Node
	lists   map[string][]*tree.Node
}

func newBindings() *bindings {
	return &bindings{
		singles: make(map[string]*tree.Node),
		lists:   make(map[string][]*tree.Node),
	}
}

func (b *bindings) clone() *bindings {
	nb := newBindings()
	for k, v := range b.singles {
		nb.singles[k] = v
	}
	for k, v := range b.lists {
		nb.lists[k] = v
	}
	return nb
}

func (b *bindings) adopt(other *bindings) {
	b.singles = other.singles
	b.lists = other.lists
}

// covers verifies every declared single placeholder got a binding; an
// unresolved placeholder fails the attempt rather than partially
// succeeding.
func (b *bindings) covers(tpl *pattern.Template) bool {
	for _, name := range tpl.Placeholders() {
		if _, ok := b.singles[name]; !ok {
			return false
		}
	}
	return true
}

// unify attempts to match one target node against one template node.
// Children align positionally; there is no backtracking across sibling
// order, so one attempt is bounded by template size.
func unify(n *tree.Node, tn pattern.Node, b *bindings) bool {
	switch t := tn.(type) {
	case *pattern.Literal:
		return n.Kind == t.Kind && n.Value == t.Value && n.IsLeaf()

	case *pattern.Placeholder:
		if !t.Constraint.Admits(n.Kind) {
			return false
		}
		if prev, ok := b.singles[t.Name]; ok {
			// linear pattern semantics: every occurrence of $name
			// must bind structurally equal subtrees
			return tree.Equal(prev, n)
		}
		b.singles[t.Name] = n
		return true

	case *pattern.ListPlaceholder:
		// list placeholders are only meaningful inside a child run
		return false

	case *pattern.Structural:
		if n.Kind != t.Kind || n.Value != t.Value {
			return false
		}
		return unifyRun(n.Children, t.Children, b)

	default:
		return false
	}
}

// unifyRun aligns a child run against template children. Without list
// placeholders the arity must be exact. A list placeholder absorbs a run
// of zero or more siblings; spans are tried shortest first, which keeps
// the result deterministic.
func unifyRun(nodes []*tree.Node, tmpl []pattern.Node, b *bindings) bool {
	if len(tmpl) == 0 {
		return len(nodes) == 0
	}

	if lp, ok := tmpl[0].(*pattern.ListPlaceholder); ok {
		if prev, bound := b.lists[lp.Name]; bound {
			// repeated list placeholder: require the same run
			if len(nodes) < len(prev) {
				return false
			}
			for i := range prev {
				if !tree.Equal(prev[i], nodes[i]) {
					return false
				}
			}
			return unifyRun(nodes[len(prev):], tmpl[1:], b)
		}
		for k := 0; k <= len(nodes); k++ {
			trial := b.clone()
			trial.lists[lp.Name] = nodes[:k:k]
			if unifyRun(nodes[k:], tmpl[1:], trial) {
				b.adopt(trial)
				return true
			}
		}
		return false
	}

	if len(nodes) == 0 {
		return false
	}
	if !unify(nodes[0], tmpl[0], b) {
		return false
	}
	return unifyRun(nodes[1:], tmpl[1:], b)
}
