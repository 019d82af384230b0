package gofront

import (
	"bytes"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/trewdev/trew/tree"
)

// RenderFile serializes a rewritten file tree, adds any import paths the
// applied rules require, and formats the result. The rendered text is
// re-parsed so the formatter and the import rewriter see a proper Go
// syntax tree.
func RenderFile(root *tree.Node, imports []string) ([]byte, error) {
	if root.Kind != tree.File {
		return nil, fmt.Errorf("RenderFile wants a %s root, got %s", tree.File, root.Kind)
	}
	src := Render(root)

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "rewritten.go", src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("re-parsing rewritten source: %w", err)
	}
	for _, path := range imports {
		if path == "" {
			continue
		}
		astutil.AddImport(fset, file, path)
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, fmt.Errorf("formatting rewritten source: %w", err)
	}
	return buf.Bytes(), nil
}
