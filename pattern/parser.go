package pattern

import (
	"fmt"
	"strings"

	"github.com/trewdev/trew/tree"
)

// Frontend parses a pattern fragment with the host language's own grammar
// and returns its syntax tree. Placeholder identifiers (`$name`, `$name$`)
// must survive the round trip as identifier leaves with their original
// text; how the front end smuggles them through its lexer is its business.
type Frontend interface {
	ParseFragment(text string, kind Kind) (*tree.Node, error)
}

// SyntaxError reports malformed pattern text or an illegal placeholder
// token, with the offset of the offending position. It is raised at
// registration time, never at match time.
type SyntaxError struct {
	Text   string
	Offset int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pattern syntax error at offset %d: %s", e.Offset, e.Reason)
}

// Parse builds a Template from pattern text. The concrete portions are
// parsed by the front end; identifier subtrees whose text follows the
// placeholder convention become placeholder template nodes, constrained to
// the syntactic position they occupied.
func Parse(fe Frontend, text string, kind Kind) (*Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &SyntaxError{Text: text, Offset: 0, Reason: "empty pattern"}
	}
	if err := checkPlaceholderTokens(text); err != nil {
		return nil, err
	}

	root, err := fe.ParseFragment(text, kind)
	if err != nil {
		if se, ok := err.(*SyntaxError); ok {
			return nil, se
		}
		return nil, &SyntaxError{Text: text, Offset: 0, Reason: err.Error()}
	}

	tpl := &Template{Kind: kind, text: text}
	tpl.Root = tpl.compile(root)

	// A statement pattern consisting of a lone placeholder parses as an
	// expression statement wrapping an identifier; lift it so the
	// placeholder binds whole statements.
	if kind == Statement {
		if s, ok := tpl.Root.(*Structural); ok && s.Kind == tree.ExprStmt && len(s.Children) == 1 {
			if ph, ok := s.Children[0].(*Placeholder); ok {
				ph.Constraint = StmtSubtree
				tpl.Root = ph
			}
		}
	}
	return tpl, nil
}

// checkPlaceholderTokens validates every `$` token in the raw text before
// the front end sees it: `$` must be followed by an identifier, optionally
// closed by a second `$` for list placeholders. A `$` inside a quoted
// literal is literal text, not a placeholder.
func checkPlaceholderTokens(text string) error {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"', '\'', '`':
			i = skipQuoted(text, i)
			continue
		}
		if text[i] != '$' {
			continue
		}
		j := i + 1
		for j < len(text) && isIdentChar(text[j]) {
			j++
		}
		if j == i+1 {
			return &SyntaxError{Text: text, Offset: i, Reason: "'$' must be followed by an identifier"}
		}
		if text[i+1] >= '0' && text[i+1] <= '9' {
			return &SyntaxError{Text: text, Offset: i, Reason: "placeholder name must not start with a digit"}
		}
		if j < len(text) && text[j] == '$' {
			j++ // list placeholder closer
		}
		i = j - 1
	}
	return nil
}

// skipQuoted returns the index of the quote closing the literal that opens
// at start. An unterminated literal swallows the rest of the text; the
// front end's parser rejects it with a proper error.
func skipQuoted(text string, start int) int {
	q := text[start]
	for i := start + 1; i < len(text); i++ {
		switch {
		case q != '`' && text[i] == '\\':
			i++
		case text[i] == q:
			return i
		}
	}
	return len(text) - 1
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// compile converts one host tree node into a template node, tagging
// placeholder identifiers along the way.
func (t *Template) compile(n *tree.Node) Node {
	if n.Kind == tree.Ident && strings.HasPrefix(n.Value, "$") {
		name := strings.TrimPrefix(n.Value, "$")
		if strings.HasSuffix(name, "$") {
			name = strings.TrimSuffix(name, "$")
			t.declareList(name)
			return &ListPlaceholder{Name: name}
		}
		t.declare(name)
		return &Placeholder{Name: name, Constraint: constraintFor(n)}
	}
	if n.IsLeaf() {
		return &Literal{Kind: n.Kind, Value: n.Value}
	}
	s := &Structural{Kind: n.Kind, Value: n.Value}
	for _, c := range n.Children {
		s.Children = append(s.Children, t.compile(c))
	}
	return s
}

// constraintFor derives a placeholder's kind constraint from the position
// it occupied in the parsed fragment.
func constraintFor(n *tree.Node) Constraint {
	if n.Parent == nil {
		return AnySubtree
	}
	switch {
	case n.Parent.Kind == tree.BlockStmt || n.Parent.Kind == tree.CaseClause:
		return StmtSubtree
	case n.Kind.IsExpr():
		return ExprSubtree
	default:
		return AnySubtree
	}
}

func (t *Template) declare(name string) {
	for _, p := range t.placeholders {
		if p == name {
			return
		}
	}
	t.placeholders = append(t.placeholders, name)
}

func (t *Template) declareList(name string) {
	for _, p := range t.listNames {
		if p == name {
			return
		}
	}
	t.listNames = append(t.listNames, name)
}
