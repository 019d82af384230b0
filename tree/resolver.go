package tree

// ElementKind classifies the program element a symbol refers to.
type ElementKind int

const (
	ElementUnknown ElementKind = iota
	ElementField
	ElementMethod
	ElementLocalVariable
	ElementParameter
	ElementType
)

var elementKindNames = map[ElementKind]string{
	ElementUnknown:       "UNKNOWN",
	ElementField:         "FIELD",
	ElementMethod:        "METHOD",
	ElementLocalVariable: "LOCAL_VARIABLE",
	ElementParameter:     "PARAMETER",
	ElementType:          "TYPE",
}

func (k ElementKind) String() string { return elementKindNames[k] }

// ElementKindFromString maps the textual form used in guard arguments back
// to an ElementKind. Unknown strings map to ElementUnknown.
func ElementKindFromString(s string) ElementKind {
	for k, name := range elementKindNames {
		if name == s {
			return k
		}
	}
	return ElementUnknown
}

// TypeInfo describes the resolved type of an expression node as far as the
// host front end can tell.
type TypeInfo struct {
	Name      string   // unqualified name, e.g. "int32", "Buffer"
	Qualified string   // fully qualified name, e.g. "bytes.Buffer"
	IsArray   bool     // array or slice type
	Elem      *TypeInfo
	Supers    []string // names the type also answers to (underlying, embedded)
}

// Matches reports whether the type answers to the given name, checking the
// simple name, the qualified name and any supertype names.
func (ti *TypeInfo) Matches(name string) bool {
	if ti == nil {
		return false
	}
	if ti.Name == name || ti.Qualified == name {
		return true
	}
	for _, s := range ti.Supers {
		if s == name {
			return true
		}
	}
	return false
}

// Symbol describes the declaration a node is bound to. The modifier
// semantics are the host language's closest analog: for Go, Static means
// declared at package level and Final means declared as a constant.
type Symbol struct {
	Name        string
	Kind        ElementKind
	Static      bool
	Final       bool
	Deprecated  bool
	Annotations []string // declaration metadata, e.g. Go directive comments
}

// Resolver is the symbol/type callback the host supplies alongside its
// trees. Only guards consume it; structural matching never does.
type Resolver interface {
	// TypeOf resolves the type of an expression node.
	TypeOf(n *Node) (*TypeInfo, bool)
	// SymbolOf resolves the declaration behind an identifier-like node.
	SymbolOf(n *Node) (*Symbol, bool)
	// EnclosingBody returns the body of the routine enclosing n.
	EnclosingBody(n *Node) (*Node, bool)
	// Render serializes a subtree back to host-language source text.
	Render(n *Node) string
	// Complexity reports the cyclomatic complexity of the routine
	// enclosing n.
	Complexity(n *Node) (int, bool)
}
