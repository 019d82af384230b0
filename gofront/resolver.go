package gofront

import (
	"go/ast"
	"go/types"
	"strings"

	"github.com/trewdev/trew/tree"
)

var _ tree.Resolver = (*Unit)(nil)

// TypeOf resolves an expression node's type from the best-effort checker
// results.
func (u *Unit) TypeOf(n *tree.Node) (*tree.TypeInfo, bool) {
	expr, ok := n.Origin.(ast.Expr)
	if !ok || u.info == nil {
		return nil, false
	}
	if tv, ok := u.info.Types[expr]; ok && tv.Type != nil {
		return typeInfoOf(tv.Type), true
	}
	if id, ok := expr.(*ast.Ident); ok {
		if obj := u.info.ObjectOf(id); obj != nil && obj.Type() != nil {
			return typeInfoOf(obj.Type()), true
		}
	}
	return nil, false
}

func typeInfoOf(t types.Type) *tree.TypeInfo {
	unqualified := func(*types.Package) string { return "" }
	ti := &tree.TypeInfo{
		Name:      types.TypeString(t, unqualified),
		Qualified: types.TypeString(t, nil),
	}
	switch st := t.(type) {
	case *types.Slice:
		ti.IsArray = true
		ti.Elem = typeInfoOf(st.Elem())
	case *types.Array:
		ti.IsArray = true
		ti.Elem = typeInfoOf(st.Elem())
	}
	// a named type also answers to its underlying type's name
	if named, ok := t.(*types.Named); ok {
		under := named.Underlying()
		ti.Supers = append(ti.Supers,
			types.TypeString(under, unqualified),
			types.TypeString(under, nil))
	}
	return ti
}

// SymbolOf resolves the declaration behind an identifier. Go analogs for
// the modifier queries: Static means package-level, Final means constant.
func (u *Unit) SymbolOf(n *tree.Node) (*tree.Symbol, bool) {
	id, ok := n.Origin.(*ast.Ident)
	if !ok || u.info == nil {
		return nil, false
	}
	obj := u.info.ObjectOf(id)
	if obj == nil {
		return nil, false
	}

	sym := &tree.Symbol{Name: obj.Name()}
	if u.pkg != nil && obj.Parent() == u.pkg.Scope() {
		sym.Static = true
	}
	switch o := obj.(type) {
	case *types.Func:
		sym.Kind = tree.ElementMethod
	case *types.TypeName:
		sym.Kind = tree.ElementType
	case *types.Const:
		sym.Kind = tree.ElementField
		sym.Final = true
	case *types.Var:
		switch {
		case o.IsField():
			sym.Kind = tree.ElementField
		case u.isParameter(obj):
			sym.Kind = tree.ElementParameter
		case sym.Static:
			sym.Kind = tree.ElementField
		default:
			sym.Kind = tree.ElementLocalVariable
		}
	}

	if doc := u.enclosingDoc(n); doc != nil {
		for _, comment := range doc.List {
			text := strings.TrimPrefix(comment.Text, "//")
			if strings.HasPrefix(strings.TrimSpace(text), "Deprecated:") {
				sym.Deprecated = true
			}
			// directive comments (//go:noinline and friends) are the
			// closest Go analog to declaration annotations
			if !strings.HasPrefix(text, " ") && strings.Contains(text, ":") {
				sym.Annotations = append(sym.Annotations, strings.TrimSpace(text))
			}
		}
	}
	return sym, true
}

// isParameter reports whether the object is declared in a function
// parameter list.
func (u *Unit) isParameter(obj types.Object) bool {
	found := false
	ast.Inspect(u.File, func(a ast.Node) bool {
		if found {
			return false
		}
		var ft *ast.FuncType
		switch fn := a.(type) {
		case *ast.FuncDecl:
			ft = fn.Type
		case *ast.FuncLit:
			ft = fn.Type
		default:
			return true
		}
		if ft.Params == nil {
			return true
		}
		for _, field := range ft.Params.List {
			for _, name := range field.Names {
				if name.Pos() == obj.Pos() {
					found = true
					return false
				}
			}
		}
		return true
	})
	return found
}

// enclosingDoc returns the doc comment of the declaration enclosing n.
func (u *Unit) enclosingDoc(n *tree.Node) *ast.CommentGroup {
	for p := n; p != nil; p = p.Parent {
		switch orig := p.Origin.(type) {
		case *ast.FuncDecl:
			return orig.Doc
		case *ast.GenDecl:
			return orig.Doc
		}
	}
	return nil
}

// EnclosingBody returns the body of the function enclosing n, found by
// walking tree parents so it also works for nodes produced by rewrites.
func (u *Unit) EnclosingBody(n *tree.Node) (*tree.Node, bool) {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind != tree.FuncDecl && p.Kind != tree.FuncLit {
			continue
		}
		for _, c := range p.Children {
			if c.Kind == tree.BlockStmt {
				return c, true
			}
		}
	}
	return nil, false
}

// Render serializes a subtree back to Go source text.
func (u *Unit) Render(n *tree.Node) string {
	return Render(n)
}

// Complexity reports the cyclomatic complexity of the function declaration
// enclosing n.
func (u *Unit) Complexity(n *tree.Node) (int, bool) {
	for p := n; p != nil; p = p.Parent {
		fd, ok := p.Origin.(*ast.FuncDecl)
		if !ok {
			continue
		}
		want := u.Fset.Position(fd.Pos())
		for _, stat := range u.stats {
			if stat.Pos.Offset == want.Offset {
				return stat.Complexity, true
			}
		}
	}
	return 0, false
}
