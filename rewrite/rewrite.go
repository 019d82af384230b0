// Package rewrite turns accepted matches into replacement subtrees and
// applies them to a target tree in one coordinated batch, enforcing
// deduplication, overlap resolution and per-operation failure isolation.
package rewrite

import (
	"fmt"

	"github.com/trewdev/trew/match"
	"github.com/trewdev/trew/pattern"
	"github.com/trewdev/trew/tree"
)

// Recipe builds a replacement subtree for one match. Returning (nil, nil)
// means "do not rewrite this match" without treating it as an error.
type Recipe func(*match.Match) (*tree.Node, error)

// Operation is a pending replacement derived from one accepted match.
// Operations are value objects collected into a batch before application.
type Operation struct {
	Match       *match.Match
	Description string
	Build       Recipe
}

// ConstructionError reports a recipe that could not build a valid
// replacement for a given binding shape. The operation is skipped and the
// rest of the batch proceeds.
type ConstructionError struct {
	Description string
	Reason      string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("cannot construct replacement for %q: %s", e.Description, e.Reason)
}

// TemplateRecipe builds replacements by instantiating a parsed replacement
// template: placeholders are substituted with clones of their bound
// subtrees, list placeholders splice their bound runs.
func TemplateRecipe(tpl *pattern.Template) Recipe {
	return func(m *match.Match) (*tree.Node, error) {
		nodes, err := instantiate(tpl.Root, m)
		if err != nil {
			return nil, err
		}
		if len(nodes) != 1 {
			return nil, &ConstructionError{
				Description: tpl.Text(),
				Reason:      fmt.Sprintf("replacement expands to %d nodes at the root", len(nodes)),
			}
		}
		return nodes[0], nil
	}
}

// instantiate expands one template node into zero or more tree nodes.
// Only list placeholders may expand to other than exactly one node.
func instantiate(tn pattern.Node, m *match.Match) ([]*tree.Node, error) {
	switch t := tn.(type) {
	case *pattern.Literal:
		return []*tree.Node{tree.New(t.Kind, t.Value)}, nil

	case *pattern.Placeholder:
		bound, ok := m.Binding(t.Name)
		if !ok {
			return nil, &ConstructionError{
				Description: "$" + t.Name,
				Reason:      "no binding for placeholder",
			}
		}
		return []*tree.Node{bound.Clone()}, nil

	case *pattern.ListPlaceholder:
		run, ok := m.ListBinding(t.Name)
		if !ok {
			return nil, &ConstructionError{
				Description: "$" + t.Name + "$",
				Reason:      "no list binding for placeholder",
			}
		}
		out := make([]*tree.Node, 0, len(run))
		for _, n := range run {
			out = append(out, n.Clone())
		}
		return out, nil

	case *pattern.Structural:
		node := tree.New(t.Kind, t.Value)
		for _, c := range t.Children {
			expanded, err := instantiate(c, m)
			if err != nil {
				return nil, err
			}
			for _, n := range expanded {
				node.Append(n)
			}
		}
		return []*tree.Node{node}, nil

	default:
		return nil, &ConstructionError{Reason: "unknown template node"}
	}
}
