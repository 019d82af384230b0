package gofront

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/printer"
	"go/token"
	"strings"

	"github.com/trewdev/trew/tree"
)

// converter lowers go/ast nodes into the engine's generic tree. Node
// values carry the information arity alone cannot: operators, assignment
// tokens, and presence flags for optional children, so that a pattern
// fragment and a target file converted by the same rules always align.
type converter struct {
	fset   *token.FileSet
	nodeOf map[ast.Node]*tree.Node
}

func newConverter(fset *token.FileSet) *converter {
	return &converter{fset: fset, nodeOf: make(map[ast.Node]*tree.Node)}
}

func (c *converter) make(kind tree.Kind, a ast.Node, value string, children ...*tree.Node) *tree.Node {
	n := tree.New(kind, value, children...)
	if a != nil {
		n.Origin = a
		pos := c.fset.Position(a.Pos())
		n.Pos = tree.Position{Offset: pos.Offset, Line: pos.Line, Column: pos.Column}
		c.nodeOf[a] = n
	}
	return n
}

func (c *converter) file(f *ast.File) *tree.Node {
	children := make([]*tree.Node, 0, len(f.Decls))
	for _, d := range f.Decls {
		children = append(children, c.node(d))
	}
	return c.make(tree.File, f, f.Name.Name, children...)
}

func (c *converter) node(a ast.Node) *tree.Node {
	switch n := a.(type) {
	case ast.Expr:
		return c.expr(n)
	case ast.Stmt:
		return c.stmt(n)
	case ast.Decl:
		return c.decl(n)
	case *ast.ValueSpec, *ast.TypeSpec, *ast.ImportSpec:
		return c.spec(n.(ast.Spec))
	case *ast.Field:
		return c.field(n)
	case *ast.FieldList:
		return c.fieldList(n)
	case *ast.File:
		return c.file(n)
	default:
		return c.make(tree.Bad, a, c.text(a))
	}
}

func (c *converter) exprs(list []ast.Expr) []*tree.Node {
	out := make([]*tree.Node, 0, len(list))
	for _, e := range list {
		out = append(out, c.expr(e))
	}
	return out
}

func (c *converter) stmts(list []ast.Stmt) []*tree.Node {
	out := make([]*tree.Node, 0, len(list))
	for _, s := range list {
		out = append(out, c.stmt(s))
	}
	return out
}

func (c *converter) expr(e ast.Expr) *tree.Node {
	switch n := e.(type) {
	case *ast.Ident:
		return c.make(tree.Ident, n, restoreMarker(n.Name))

	case *ast.BasicLit:
		return c.make(tree.BasicLit, n, n.Value)

	case *ast.BinaryExpr:
		return c.make(tree.BinaryExpr, n, n.Op.String(), c.expr(n.X), c.expr(n.Y))

	case *ast.UnaryExpr:
		return c.make(tree.UnaryExpr, n, n.Op.String(), c.expr(n.X))

	case *ast.ParenExpr:
		return c.make(tree.ParenExpr, n, "", c.expr(n.X))

	case *ast.CallExpr:
		children := append([]*tree.Node{c.expr(n.Fun)}, c.exprs(n.Args)...)
		value := ""
		if n.Ellipsis.IsValid() {
			value = "..."
		}
		return c.make(tree.CallExpr, n, value, children...)

	case *ast.SelectorExpr:
		return c.make(tree.SelectorExpr, n, "", c.expr(n.X), c.expr(n.Sel))

	case *ast.IndexExpr:
		return c.make(tree.IndexExpr, n, "", c.expr(n.X), c.expr(n.Index))

	case *ast.SliceExpr:
		children := []*tree.Node{c.expr(n.X)}
		var flags []string
		if n.Low != nil {
			flags = append(flags, "l")
			children = append(children, c.expr(n.Low))
		}
		if n.High != nil {
			flags = append(flags, "h")
			children = append(children, c.expr(n.High))
		}
		if n.Max != nil {
			flags = append(flags, "m")
			children = append(children, c.expr(n.Max))
		}
		return c.make(tree.SliceExpr, n, strings.Join(flags, ""), children...)

	case *ast.StarExpr:
		return c.make(tree.StarExpr, n, "", c.expr(n.X))

	case *ast.KeyValueExpr:
		return c.make(tree.KeyValueExpr, n, "", c.expr(n.Key), c.expr(n.Value))

	case *ast.CompositeLit:
		var children []*tree.Node
		value := ""
		if n.Type != nil {
			value = "t"
			children = append(children, c.expr(n.Type))
		}
		children = append(children, c.exprs(n.Elts)...)
		return c.make(tree.CompositeLit, n, value, children...)

	case *ast.FuncLit:
		children := []*tree.Node{c.fieldList(n.Type.Params)}
		value := ""
		if n.Type.Results != nil {
			value = "o"
			children = append(children, c.fieldList(n.Type.Results))
		}
		children = append(children, c.stmt(n.Body))
		return c.make(tree.FuncLit, n, value, children...)

	case *ast.Ellipsis:
		if n.Elt != nil {
			return c.make(tree.Ellipsis, n, "", c.expr(n.Elt))
		}
		return c.make(tree.Ellipsis, n, "")

	default:
		// remaining type expressions (array, map, chan, struct, func,
		// interface types) are matched by their source text
		return c.make(tree.TypeExpr, e, c.text(e))
	}
}

func (c *converter) stmt(s ast.Stmt) *tree.Node {
	switch n := s.(type) {
	case *ast.ExprStmt:
		return c.make(tree.ExprStmt, n, "", c.expr(n.X))

	case *ast.AssignStmt:
		value := fmt.Sprintf("%s|%d", n.Tok.String(), len(n.Lhs))
		children := append(c.exprs(n.Lhs), c.exprs(n.Rhs)...)
		return c.make(tree.AssignStmt, n, value, children...)

	case *ast.ReturnStmt:
		return c.make(tree.ReturnStmt, n, "", c.exprs(n.Results)...)

	case *ast.IfStmt:
		var children []*tree.Node
		var flags []string
		if n.Init != nil {
			flags = append(flags, "i")
			children = append(children, c.stmt(n.Init))
		}
		children = append(children, c.expr(n.Cond), c.stmt(n.Body))
		if n.Else != nil {
			flags = append(flags, "e")
			children = append(children, c.stmt(n.Else))
		}
		return c.make(tree.IfStmt, n, strings.Join(flags, ""), children...)

	case *ast.ForStmt:
		var children []*tree.Node
		var flags []string
		if n.Init != nil {
			flags = append(flags, "i")
			children = append(children, c.stmt(n.Init))
		}
		if n.Cond != nil {
			flags = append(flags, "c")
			children = append(children, c.expr(n.Cond))
		}
		if n.Post != nil {
			flags = append(flags, "p")
			children = append(children, c.stmt(n.Post))
		}
		children = append(children, c.stmt(n.Body))
		return c.make(tree.ForStmt, n, strings.Join(flags, ""), children...)

	case *ast.RangeStmt:
		var children []*tree.Node
		flags := n.Tok.String() + "|"
		if n.Key != nil {
			flags += "k"
			children = append(children, c.expr(n.Key))
		}
		if n.Value != nil {
			flags += "v"
			children = append(children, c.expr(n.Value))
		}
		children = append(children, c.expr(n.X), c.stmt(n.Body))
		return c.make(tree.RangeStmt, n, flags, children...)

	case *ast.BlockStmt:
		return c.make(tree.BlockStmt, n, "", c.stmts(n.List)...)

	case *ast.DeclStmt:
		return c.make(tree.DeclStmt, n, "", c.decl(n.Decl))

	case *ast.IncDecStmt:
		return c.make(tree.IncDecStmt, n, n.Tok.String(), c.expr(n.X))

	case *ast.SwitchStmt:
		var children []*tree.Node
		var flags []string
		if n.Init != nil {
			flags = append(flags, "i")
			children = append(children, c.stmt(n.Init))
		}
		if n.Tag != nil {
			flags = append(flags, "t")
			children = append(children, c.expr(n.Tag))
		}
		children = append(children, c.stmt(n.Body))
		return c.make(tree.SwitchStmt, n, strings.Join(flags, ""), children...)

	case *ast.TypeSwitchStmt:
		var children []*tree.Node
		flags := []string{"T"}
		if n.Init != nil {
			flags = append(flags, "i")
			children = append(children, c.stmt(n.Init))
		}
		children = append(children, c.stmt(n.Assign), c.stmt(n.Body))
		return c.make(tree.SwitchStmt, n, strings.Join(flags, ""), children...)

	case *ast.CaseClause:
		value := "d"
		var children []*tree.Node
		if n.List != nil {
			value = fmt.Sprintf("%d", len(n.List))
			children = append(children, c.exprs(n.List)...)
		}
		children = append(children, c.stmts(n.Body)...)
		return c.make(tree.CaseClause, n, value, children...)

	case *ast.BranchStmt:
		if n.Label != nil {
			return c.make(tree.BranchStmt, n, n.Tok.String(), c.expr(n.Label))
		}
		return c.make(tree.BranchStmt, n, n.Tok.String())

	case *ast.DeferStmt:
		return c.make(tree.DeferStmt, n, "", c.expr(n.Call))

	case *ast.GoStmt:
		return c.make(tree.GoStmt, n, "", c.expr(n.Call))

	case *ast.SendStmt:
		return c.make(tree.SendStmt, n, "", c.expr(n.Chan), c.expr(n.Value))

	case *ast.LabeledStmt:
		return c.make(tree.LabeledStmt, n, "", c.expr(n.Label), c.stmt(n.Stmt))

	case *ast.EmptyStmt:
		return c.make(tree.EmptyStmt, n, "")

	default:
		return c.make(tree.Bad, s, c.text(s))
	}
}

func (c *converter) decl(d ast.Decl) *tree.Node {
	switch n := d.(type) {
	case *ast.FuncDecl:
		var children []*tree.Node
		var flags []string
		if n.Recv != nil {
			flags = append(flags, "r")
			children = append(children, c.fieldList(n.Recv))
		}
		children = append(children, c.expr(n.Name), c.fieldList(n.Type.Params))
		if n.Type.Results != nil {
			flags = append(flags, "o")
			children = append(children, c.fieldList(n.Type.Results))
		}
		if n.Body != nil {
			flags = append(flags, "b")
			children = append(children, c.stmt(n.Body))
		}
		return c.make(tree.FuncDecl, n, strings.Join(flags, ""), children...)

	case *ast.GenDecl:
		children := make([]*tree.Node, 0, len(n.Specs))
		for _, spec := range n.Specs {
			children = append(children, c.spec(spec))
		}
		return c.make(tree.GenDecl, n, n.Tok.String(), children...)

	default:
		return c.make(tree.Bad, d, c.text(d))
	}
}

func (c *converter) spec(s ast.Spec) *tree.Node {
	switch n := s.(type) {
	case *ast.ValueSpec:
		var children []*tree.Node
		for _, name := range n.Names {
			children = append(children, c.expr(name))
		}
		value := fmt.Sprintf("%d", len(n.Names))
		if n.Type != nil {
			value += "t"
			children = append(children, c.expr(n.Type))
		}
		children = append(children, c.exprs(n.Values)...)
		return c.make(tree.ValueSpec, n, value, children...)

	case *ast.TypeSpec:
		return c.make(tree.TypeSpec, n, "", c.expr(n.Name), c.expr(n.Type))

	case *ast.ImportSpec:
		if n.Name != nil {
			return c.make(tree.ImportSpec, n, n.Path.Value, c.expr(n.Name))
		}
		return c.make(tree.ImportSpec, n, n.Path.Value)

	default:
		return c.make(tree.Bad, s, c.text(s))
	}
}

func (c *converter) field(f *ast.Field) *tree.Node {
	var children []*tree.Node
	for _, name := range f.Names {
		children = append(children, c.expr(name))
	}
	if f.Type != nil {
		children = append(children, c.expr(f.Type))
	}
	return c.make(tree.Field, f, fmt.Sprintf("%d", len(f.Names)), children...)
}

func (c *converter) fieldList(fl *ast.FieldList) *tree.Node {
	if fl == nil {
		return tree.New(tree.FieldList, "")
	}
	children := make([]*tree.Node, 0, len(fl.List))
	for _, f := range fl.List {
		children = append(children, c.field(f))
	}
	return c.make(tree.FieldList, fl, "", children...)
}

func (c *converter) text(a ast.Node) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, c.fset, a); err != nil {
		return ""
	}
	return restoreMarkersInText(buf.String())
}
