// Package tree defines the language-independent syntax tree the engine
// matches against. A host front end (such as package gofront) builds these
// nodes from its own parser output; the engine never parses source text
// itself.
package tree

import (
	"fmt"
	"strings"
)

// Kind identifies the syntactic category of a node. The set is closed so
// that the matcher can drive structural recursion by kind equality alone,
// without subtype-specific branches.
type Kind int

const (
	Bad Kind = iota

	// expressions
	Ident
	BasicLit
	BinaryExpr
	UnaryExpr
	ParenExpr
	CallExpr
	SelectorExpr
	IndexExpr
	SliceExpr
	StarExpr
	KeyValueExpr
	CompositeLit
	FuncLit
	TypeExpr
	Ellipsis

	// statements
	ExprStmt
	AssignStmt
	ReturnStmt
	IfStmt
	ForStmt
	RangeStmt
	BlockStmt
	DeclStmt
	IncDecStmt
	SwitchStmt
	CaseClause
	BranchStmt
	DeferStmt
	GoStmt
	SendStmt
	LabeledStmt
	EmptyStmt

	// declarations
	File
	FuncDecl
	GenDecl
	ValueSpec
	TypeSpec
	ImportSpec
	Field
	FieldList
)

var kindNames = map[Kind]string{
	Bad:          "Bad",
	Ident:        "Ident",
	BasicLit:     "BasicLit",
	BinaryExpr:   "BinaryExpr",
	UnaryExpr:    "UnaryExpr",
	ParenExpr:    "ParenExpr",
	CallExpr:     "CallExpr",
	SelectorExpr: "SelectorExpr",
	IndexExpr:    "IndexExpr",
	SliceExpr:    "SliceExpr",
	StarExpr:     "StarExpr",
	KeyValueExpr: "KeyValueExpr",
	CompositeLit: "CompositeLit",
	FuncLit:      "FuncLit",
	TypeExpr:     "TypeExpr",
	Ellipsis:     "Ellipsis",
	ExprStmt:     "ExprStmt",
	AssignStmt:   "AssignStmt",
	ReturnStmt:   "ReturnStmt",
	IfStmt:       "IfStmt",
	ForStmt:      "ForStmt",
	RangeStmt:    "RangeStmt",
	BlockStmt:    "BlockStmt",
	DeclStmt:     "DeclStmt",
	IncDecStmt:   "IncDecStmt",
	SwitchStmt:   "SwitchStmt",
	CaseClause:   "CaseClause",
	BranchStmt:   "BranchStmt",
	DeferStmt:    "DeferStmt",
	GoStmt:       "GoStmt",
	SendStmt:     "SendStmt",
	LabeledStmt:  "LabeledStmt",
	EmptyStmt:    "EmptyStmt",
	File:         "File",
	FuncDecl:     "FuncDecl",
	GenDecl:      "GenDecl",
	ValueSpec:    "ValueSpec",
	TypeSpec:     "TypeSpec",
	ImportSpec:   "ImportSpec",
	Field:        "Field",
	FieldList:    "FieldList",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsExpr reports whether nodes of this kind occupy expression positions.
func (k Kind) IsExpr() bool {
	return k >= Ident && k <= Ellipsis
}

// IsStmt reports whether nodes of this kind occupy statement positions.
func (k Kind) IsStmt() bool {
	return k >= ExprStmt && k <= EmptyStmt
}

// IsDecl reports whether nodes of this kind are declarations.
func (k Kind) IsDecl() bool {
	return k >= FuncDecl && k <= FieldList
}

// Position is a source location within the unit a node came from.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node is one node of a host-supplied syntax tree. Value carries the
// literal text for leaves (identifier names, literal tokens) and the
// operator for expression kinds that have one. Origin is an opaque
// reference back to the host parser's node; the engine never inspects it,
// only the host's resolver does.
type Node struct {
	Kind     Kind
	Value    string
	Children []*Node
	Parent   *Node
	Pos      Position
	Origin   any
}

// New creates a node and links the given children to it.
func New(kind Kind, value string, children ...*Node) *Node {
	n := &Node{Kind: kind, Value: value}
	for _, c := range children {
		n.Append(c)
	}
	return n
}

// Append adds a child and sets its parent pointer.
func (n *Node) Append(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Equal reports structural equality: same kind, same value, and
// recursively equal children. Parent, position and origin are ignored.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Value != b.Value || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// Walk visits n and its descendants in pre-order. The visitor returns
// false to skip the children of the current node; traversal of siblings
// continues either way.
func Walk(n *Node, visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// Clone deep-copies the subtree rooted at n. The copy's parent is nil;
// positions and origins are carried over so resolvers keep working on
// relocated subtrees.
func (n *Node) Clone() *Node {
	c, _ := n.CloneMapped()
	return c
}

// CloneMapped deep-copies the subtree and returns a mapping from each
// original node to its copy, which the rewrite coordinator uses to locate
// replacement targets inside the cloned tree.
func (n *Node) CloneMapped() (*Node, map[*Node]*Node) {
	mapping := make(map[*Node]*Node)
	var clone func(*Node) *Node
	clone = func(orig *Node) *Node {
		cp := &Node{
			Kind:   orig.Kind,
			Value:  orig.Value,
			Pos:    orig.Pos,
			Origin: orig.Origin,
		}
		mapping[orig] = cp
		for _, ch := range orig.Children {
			cp.Append(clone(ch))
		}
		return cp
	}
	return clone(n), mapping
}

// HasAncestor reports whether anc is a proper ancestor of n.
func (n *Node) HasAncestor(anc *Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == anc {
			return true
		}
	}
	return false
}

// ReplaceChild swaps old for repl among n's children and re-parents repl.
// It reports whether old was found.
func (n *Node) ReplaceChild(old, repl *Node) bool {
	for i, c := range n.Children {
		if c == old {
			repl.Parent = n
			n.Children[i] = repl
			return true
		}
	}
	return false
}

// String renders a compact s-expression form for debugging and tests.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	if n.IsLeaf() {
		if n.Value != "" {
			fmt.Fprintf(sb, "%s(%s)", n.Kind, n.Value)
		} else {
			sb.WriteString(n.Kind.String())
		}
		return
	}
	sb.WriteString("(")
	sb.WriteString(n.Kind.String())
	if n.Value != "" {
		fmt.Fprintf(sb, " %q", n.Value)
	}
	for _, c := range n.Children {
		sb.WriteString(" ")
		c.write(sb)
	}
	sb.WriteString(")")
}
