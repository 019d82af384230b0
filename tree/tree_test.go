package tree

import (
	"reflect"
	"testing"
)

func add(x, y *Node) *Node {
	return New(BinaryExpr, "+", x, y)
}

func ident(name string) *Node {
	return New(Ident, name)
}

func TestEqual(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b *Node
		want bool
	}{
		{
			name: "identical leaves",
			a:    ident("x"),
			b:    ident("x"),
			want: true,
		},
		{
			name: "different values",
			a:    ident("x"),
			b:    ident("y"),
			want: false,
		},
		{
			name: "different kinds",
			a:    ident("1"),
			b:    New(BasicLit, "1"),
			want: false,
		},
		{
			name: "equal subtrees",
			a:    add(ident("a"), New(BasicLit, "1")),
			b:    add(ident("a"), New(BasicLit, "1")),
			want: true,
		},
		{
			name: "different arity",
			a:    New(CallExpr, "", ident("f"), ident("a")),
			b:    New(CallExpr, "", ident("f")),
			want: false,
		},
		{
			name: "nil against node",
			a:    nil,
			b:    ident("x"),
			want: false,
		},
		{
			name: "both nil",
			a:    nil,
			b:    nil,
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWalkPreOrder(t *testing.T) {
	t.Parallel()
	root := add(add(ident("a"), ident("b")), ident("c"))

	var visited []string
	Walk(root, func(n *Node) bool {
		visited = append(visited, n.Value)
		return true
	})

	want := []string{"+", "+", "a", "b", "c"}
	if !reflect.DeepEqual(visited, want) {
		t.Errorf("pre-order = %v, want %v", visited, want)
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	t.Parallel()
	root := add(add(ident("a"), ident("b")), ident("c"))

	var visited []string
	Walk(root, func(n *Node) bool {
		visited = append(visited, n.Value)
		return n.Kind != BinaryExpr || n == root
	})

	// the inner BinaryExpr is visited but its children are skipped
	want := []string{"+", "+", "c"}
	if !reflect.DeepEqual(visited, want) {
		t.Errorf("visited = %v, want %v", visited, want)
	}
}

func TestCloneMapped(t *testing.T) {
	t.Parallel()
	root := add(ident("a"), add(ident("b"), ident("c")))

	cp, mapping := root.CloneMapped()

	if !Equal(root, cp) {
		t.Fatalf("clone not structurally equal: %s vs %s", root, cp)
	}
	if cp.Parent != nil {
		t.Error("clone root has a parent")
	}

	count := 0
	Walk(root, func(n *Node) bool {
		count++
		mapped, ok := mapping[n]
		if !ok {
			t.Errorf("node %s missing from mapping", n)
			return true
		}
		if mapped == n {
			t.Errorf("mapping for %s points at the original", n)
		}
		return true
	})
	if len(mapping) != count {
		t.Errorf("mapping has %d entries, tree has %d nodes", len(mapping), count)
	}

	// mutating the clone leaves the original alone
	cp.Children[0].Value = "z"
	if root.Children[0].Value != "a" {
		t.Error("clone mutation leaked into the original")
	}
}

func TestReplaceChild(t *testing.T) {
	t.Parallel()
	left := ident("a")
	root := add(left, ident("b"))
	repl := New(BasicLit, "1")

	if !root.ReplaceChild(left, repl) {
		t.Fatal("ReplaceChild did not find the child")
	}
	if root.Children[0] != repl || repl.Parent != root {
		t.Error("replacement not linked in")
	}
	if root.ReplaceChild(left, repl) {
		t.Error("ReplaceChild found a detached node")
	}
}

func TestHasAncestor(t *testing.T) {
	t.Parallel()
	leaf := ident("a")
	mid := add(leaf, ident("b"))
	root := add(mid, ident("c"))

	if !leaf.HasAncestor(root) || !leaf.HasAncestor(mid) {
		t.Error("expected ancestors not found")
	}
	if root.HasAncestor(leaf) {
		t.Error("descendant reported as ancestor")
	}
	if leaf.HasAncestor(leaf) {
		t.Error("node is not its own proper ancestor")
	}
}

func TestKindCategories(t *testing.T) {
	t.Parallel()
	tests := []struct {
		kind   Kind
		isExpr bool
		isStmt bool
		isDecl bool
	}{
		{Ident, true, false, false},
		{Ellipsis, true, false, false},
		{ExprStmt, false, true, false},
		{EmptyStmt, false, true, false},
		{FuncDecl, false, false, true},
		{FieldList, false, false, true},
		{Bad, false, false, false},
		{File, false, false, false},
	}
	for _, tt := range tests {
		if got := tt.kind.IsExpr(); got != tt.isExpr {
			t.Errorf("%s.IsExpr() = %v, want %v", tt.kind, got, tt.isExpr)
		}
		if got := tt.kind.IsStmt(); got != tt.isStmt {
			t.Errorf("%s.IsStmt() = %v, want %v", tt.kind, got, tt.isStmt)
		}
		if got := tt.kind.IsDecl(); got != tt.isDecl {
			t.Errorf("%s.IsDecl() = %v, want %v", tt.kind, got, tt.isDecl)
		}
	}
}

func TestString(t *testing.T) {
	t.Parallel()
	n := add(ident("a"), New(BasicLit, "1"))
	want := `(BinaryExpr "+" Ident(a) BasicLit(1))`
	if got := n.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
