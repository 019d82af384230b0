// Package pattern turns pattern strings such as `"" + $x` into reusable,
// immutable templates. The concrete portions of a pattern are parsed with
// the host language's own grammar (via a Frontend), so a pattern that
// registers successfully is always a syntactically valid fragment.
package pattern

import (
	"fmt"
	"strings"

	"github.com/trewdev/trew/tree"
)

// Kind constrains which tree positions are attempted as match roots.
type Kind int

const (
	Expression Kind = iota
	Statement
	Annotation // annotation-like declaration patterns
)

func (k Kind) String() string {
	switch k {
	case Expression:
		return "expression"
	case Statement:
		return "statement"
	case Annotation:
		return "annotation"
	default:
		return "unknown"
	}
}

// KindFromString parses the textual kind used in rule files.
func KindFromString(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "expression", "expr":
		return Expression, nil
	case "statement", "stmt":
		return Statement, nil
	case "annotation", "decl", "declaration":
		return Annotation, nil
	}
	return Expression, fmt.Errorf("unknown pattern kind %q", s)
}

// NodeType discriminates the template node union.
type NodeType int

const (
	NodeLiteral NodeType = iota
	NodePlaceholder
	NodeListPlaceholder
	NodeStructural
)

// Node is one node of a parsed template.
type Node interface {
	Type() NodeType
	String() string
}

var (
	_ Node = (*Literal)(nil)
	_ Node = (*Placeholder)(nil)
	_ Node = (*ListPlaceholder)(nil)
	_ Node = (*Structural)(nil)
)

// Constraint restricts what a placeholder may bind to, derived from the
// syntactic position the placeholder occupied in the pattern text.
type Constraint int

const (
	AnySubtree Constraint = iota
	ExprSubtree
	StmtSubtree
)

func (c Constraint) String() string {
	switch c {
	case ExprSubtree:
		return "expression"
	case StmtSubtree:
		return "statement"
	default:
		return "any"
	}
}

// Admits reports whether a node of the given kind satisfies the constraint.
func (c Constraint) Admits(k tree.Kind) bool {
	switch c {
	case ExprSubtree:
		return k.IsExpr()
	case StmtSubtree:
		return k.IsStmt()
	default:
		return true
	}
}

// Literal matches exactly one leaf with the same kind and literal value.
type Literal struct {
	Kind  tree.Kind
	Value string
}

func (l *Literal) Type() NodeType { return NodeLiteral }
func (l *Literal) String() string { return fmt.Sprintf("Literal(%s %q)", l.Kind, l.Value) }

// Placeholder binds one subtree. Repeated occurrences of the same name
// must bind structurally equal subtrees.
type Placeholder struct {
	Name       string
	Constraint Constraint
}

func (p *Placeholder) Type() NodeType { return NodePlaceholder }
func (p *Placeholder) String() string {
	if p.Constraint == AnySubtree {
		return fmt.Sprintf("Placeholder($%s)", p.Name)
	}
	return fmt.Sprintf("Placeholder($%s:%s)", p.Name, p.Constraint)
}

// ListPlaceholder binds an ordered run of sibling subtrees in a repeated
// position such as an argument list. It may bind the empty run.
type ListPlaceholder struct {
	Name string
}

func (p *ListPlaceholder) Type() NodeType { return NodeListPlaceholder }
func (p *ListPlaceholder) String() string { return fmt.Sprintf("ListPlaceholder($%s$)", p.Name) }

// Structural matches a node with the same kind, the same value and
// positionally unifiable children.
type Structural struct {
	Kind     tree.Kind
	Value    string
	Children []Node
}

func (s *Structural) Type() NodeType { return NodeStructural }
func (s *Structural) String() string {
	parts := make([]string, len(s.Children))
	for i, c := range s.Children {
		parts[i] = c.String()
	}
	return fmt.Sprintf("Structural(%s %q [%s])", s.Kind, s.Value, strings.Join(parts, " "))
}

// Template is the parsed, immutable representation of one pattern string.
// Created once per pattern and reused across many target trees.
type Template struct {
	Kind Kind
	Root Node

	text         string
	placeholders []string // declared single placeholders, in first-seen order
	listNames    []string // declared list placeholders, in first-seen order
}

// Text returns the original pattern string.
func (t *Template) Text() string { return t.text }

// Placeholders returns the names of all single-value placeholders the
// template declares.
func (t *Template) Placeholders() []string { return t.placeholders }

// ListPlaceholders returns the names of all list placeholders.
func (t *Template) ListPlaceholders() []string { return t.listNames }
