// Package gofront is the Go host front end: it parses Go source and
// pattern fragments with the standard library parser, lowers them into the
// engine's generic tree, resolves types and symbols for guards, and
// renders transformed trees back to Go source.
package gofront

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/scanner"
	"go/token"
	"go/types"
	"os"
	"strings"

	"github.com/fzipp/gocyclo"

	"github.com/trewdev/trew/pattern"
	"github.com/trewdev/trew/tree"
)

// DefaultSourceVersion is assumed when a unit does not state its Go
// version.
const DefaultSourceVersion = "1.22"

const (
	markerSingle = "__trew_"
	markerList   = "__trewL_"
)

// statement and annotation fragments are wrapped so the Go parser accepts
// them, mirroring how the pattern grammar reuses the host grammar
const (
	stmtWrapPrefix = "package p\nfunc _() {\n"
	stmtWrapSuffix = "\n}"
	declWrapPrefix = "package p\n"
)

// Frontend implements pattern.Frontend for Go.
type Frontend struct{}

var _ pattern.Frontend = (*Frontend)(nil)

// New returns the Go front end.
func New() *Frontend { return &Frontend{} }

// ParseFragment parses pattern text as a fragment of the requested kind.
// Placeholders are rewritten to marker identifiers so they survive the Go
// lexer, and restored during tree conversion.
func (f *Frontend) ParseFragment(text string, kind pattern.Kind) (*tree.Node, error) {
	replaced := substitutePlaceholders(text)
	fset := token.NewFileSet()

	switch kind {
	case pattern.Expression:
		expr, err := parser.ParseExpr(replaced)
		if err != nil {
			return nil, syntaxError(text, err, 0)
		}
		return newConverter(fset).expr(expr), nil

	case pattern.Statement:
		src := stmtWrapPrefix + replaced + stmtWrapSuffix
		file, err := parser.ParseFile(fset, "pattern.go", src, parser.SkipObjectResolution)
		if err != nil {
			return nil, syntaxError(text, err, len(stmtWrapPrefix))
		}
		fn, ok := file.Decls[0].(*ast.FuncDecl)
		if !ok || fn.Body == nil || len(fn.Body.List) == 0 {
			return nil, &pattern.SyntaxError{Text: text, Reason: "not a statement"}
		}
		return newConverter(fset).stmt(fn.Body.List[0]), nil

	case pattern.Annotation:
		src := declWrapPrefix + replaced
		file, err := parser.ParseFile(fset, "pattern.go", src, parser.SkipObjectResolution)
		if err != nil {
			return nil, syntaxError(text, err, len(declWrapPrefix))
		}
		if len(file.Decls) == 0 {
			return nil, &pattern.SyntaxError{Text: text, Reason: "not a declaration"}
		}
		return newConverter(fset).decl(file.Decls[0]), nil

	default:
		return nil, &pattern.SyntaxError{Text: text, Reason: "unknown pattern kind"}
	}
}

// substitutePlaceholders rewrites `$name` and `$name$` tokens into marker
// identifiers the Go lexer accepts. Quoted literals pass through verbatim,
// so a `$` inside a string stays a `$`.
func substitutePlaceholders(text string) string {
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"', '\'', '`':
			end := skipQuotedLit(text, i)
			sb.WriteString(text[i : end+1])
			i = end
			continue
		}
		if text[i] != '$' {
			sb.WriteByte(text[i])
			continue
		}
		j := i + 1
		for j < len(text) && isIdentByte(text[j]) {
			j++
		}
		if j == i+1 {
			sb.WriteByte(text[i])
			continue
		}
		name := text[i+1 : j]
		if j < len(text) && text[j] == '$' {
			sb.WriteString(markerList + name)
			i = j
		} else {
			sb.WriteString(markerSingle + name)
			i = j - 1
		}
	}
	return sb.String()
}

func restoreMarker(name string) string {
	if rest, ok := strings.CutPrefix(name, markerList); ok {
		return "$" + rest + "$"
	}
	if rest, ok := strings.CutPrefix(name, markerSingle); ok {
		return "$" + rest
	}
	return name
}

// skipQuotedLit returns the index of the quote closing the literal that
// opens at start, or the last index for an unterminated literal.
func skipQuotedLit(text string, start int) int {
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

func restoreMarkersInText(text string) string {
	if !strings.Contains(text, markerSingle) && !strings.Contains(text, markerList) {
		return text
	}
	var sb strings.Builder
	for i := 0; i < len(text); {
		marker, list := markerSingle, false
		if strings.HasPrefix(text[i:], markerList) {
			marker, list = markerList, true
		} else if !strings.HasPrefix(text[i:], markerSingle) {
			sb.WriteByte(text[i])
			i++
			continue
		}
		j := i + len(marker)
		for j < len(text) && isIdentByte(text[j]) {
			j++
		}
		sb.WriteString("$" + text[i+len(marker):j])
		if list {
			sb.WriteString("$")
		}
		i = j
	}
	return sb.String()
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// syntaxError converts a Go parser error into a pattern.SyntaxError with
// the offset mapped back into the unwrapped pattern text.
func syntaxError(text string, err error, wrapLen int) error {
	offset := 0
	reason := err.Error()
	if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
		offset = list[0].Pos.Offset - wrapLen
		if offset < 0 {
			offset = 0
		}
		if offset > len(text) {
			offset = len(text)
		}
		reason = list[0].Msg
	}
	return &pattern.SyntaxError{Text: text, Offset: offset, Reason: reason}
}

// Unit is one parsed Go source unit plus everything guards need: the
// lowered tree, type information (best effort), and cyclomatic complexity
// statistics.
type Unit struct {
	Filename string
	Source   []byte
	Version  string
	Fset     *token.FileSet
	File     *ast.File
	Root     *tree.Node

	info   *types.Info
	pkg    *types.Package
	nodeOf map[ast.Node]*tree.Node
	stats  gocyclo.Stats
}

// Load reads and parses a Go file into a unit.
func Load(filename string) (*Unit, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseSource(filename, src, "")
}

// ParseSource parses Go source into a unit. Type checking is best effort:
// incomplete programs still match and rewrite, guards that need types fail
// closed on the nodes the checker could not resolve.
func ParseSource(filename string, src []byte, version string) (*Unit, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}
	if version == "" {
		version = DefaultSourceVersion
		if file.GoVersion != "" {
			version = strings.TrimPrefix(file.GoVersion, "go")
		}
	}

	conv := newConverter(fset)
	root := conv.file(file)

	info := &types.Info{
		Types:  make(map[ast.Expr]types.TypeAndValue),
		Defs:   make(map[*ast.Ident]types.Object),
		Uses:   make(map[*ast.Ident]types.Object),
		Scopes: make(map[ast.Node]*types.Scope),
	}
	conf := types.Config{
		Importer: importer.Default(),
		Error:    func(error) {}, // keep going on incomplete programs
	}
	pkg, _ := conf.Check(file.Name.Name, fset, []*ast.File{file}, info)

	return &Unit{
		Filename: filename,
		Source:   src,
		Version:  version,
		Fset:     fset,
		File:     file,
		Root:     root,
		info:     info,
		pkg:      pkg,
		nodeOf:   conv.nodeOf,
		stats:    gocyclo.AnalyzeASTFile(file, fset, nil),
	}, nil
}
