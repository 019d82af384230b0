package gofront

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trewdev/trew/tree"
)

// Render serializes a tree back to Go source text. The output favors
// correctness over layout: RenderFile runs the result through the standard
// formatter, and guards that search serialized text do not care about
// whitespace.
func Render(n *tree.Node) string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *tree.Node) {
	c := n.Children
	switch n.Kind {
	case tree.Ident, tree.BasicLit, tree.TypeExpr, tree.Bad:
		sb.WriteString(n.Value)

	case tree.BinaryExpr:
		writeNode(sb, c[0])
		fmt.Fprintf(sb, " %s ", n.Value)
		writeNode(sb, c[1])

	case tree.UnaryExpr:
		sb.WriteString(n.Value)
		writeNode(sb, c[0])

	case tree.ParenExpr:
		sb.WriteString("(")
		writeNode(sb, c[0])
		sb.WriteString(")")

	case tree.CallExpr:
		writeNode(sb, c[0])
		sb.WriteString("(")
		writeList(sb, c[1:], ", ")
		if n.Value == "..." {
			sb.WriteString("...")
		}
		sb.WriteString(")")

	case tree.SelectorExpr:
		writeNode(sb, c[0])
		sb.WriteString(".")
		writeNode(sb, c[1])

	case tree.IndexExpr:
		writeNode(sb, c[0])
		sb.WriteString("[")
		writeNode(sb, c[1])
		sb.WriteString("]")

	case tree.SliceExpr:
		writeNode(sb, c[0])
		sb.WriteString("[")
		i := 1
		if strings.Contains(n.Value, "l") {
			writeNode(sb, c[i])
			i++
		}
		sb.WriteString(":")
		if strings.Contains(n.Value, "h") {
			writeNode(sb, c[i])
			i++
		}
		if strings.Contains(n.Value, "m") {
			sb.WriteString(":")
			writeNode(sb, c[i])
		}
		sb.WriteString("]")

	case tree.StarExpr:
		sb.WriteString("*")
		writeNode(sb, c[0])

	case tree.KeyValueExpr:
		writeNode(sb, c[0])
		sb.WriteString(": ")
		writeNode(sb, c[1])

	case tree.CompositeLit:
		elems := c
		if n.Value == "t" {
			writeNode(sb, c[0])
			elems = c[1:]
		}
		sb.WriteString("{")
		writeList(sb, elems, ", ")
		sb.WriteString("}")

	case tree.FuncLit:
		sb.WriteString("func(")
		writeNode(sb, c[0])
		sb.WriteString(")")
		rest := c[1:]
		if n.Value == "o" {
			sb.WriteString(" (")
			writeNode(sb, rest[0])
			sb.WriteString(")")
			rest = rest[1:]
		}
		sb.WriteString(" ")
		writeNode(sb, rest[0])

	case tree.Ellipsis:
		sb.WriteString("...")
		if len(c) > 0 {
			writeNode(sb, c[0])
		}

	case tree.ExprStmt:
		writeNode(sb, c[0])

	case tree.AssignStmt:
		tok, lhsCount := splitAssignValue(n.Value)
		writeList(sb, c[:lhsCount], ", ")
		fmt.Fprintf(sb, " %s ", tok)
		writeList(sb, c[lhsCount:], ", ")

	case tree.ReturnStmt:
		sb.WriteString("return")
		if len(c) > 0 {
			sb.WriteString(" ")
			writeList(sb, c, ", ")
		}

	case tree.IfStmt:
		sb.WriteString("if ")
		i := 0
		if strings.Contains(n.Value, "i") {
			writeNode(sb, c[i])
			sb.WriteString("; ")
			i++
		}
		writeNode(sb, c[i])
		sb.WriteString(" ")
		writeNode(sb, c[i+1])
		if strings.Contains(n.Value, "e") {
			sb.WriteString(" else ")
			writeNode(sb, c[i+2])
		}

	case tree.ForStmt:
		sb.WriteString("for ")
		i := 0
		hasInit := strings.Contains(n.Value, "i")
		hasCond := strings.Contains(n.Value, "c")
		hasPost := strings.Contains(n.Value, "p")
		if hasInit {
			writeNode(sb, c[i])
			i++
		}
		if hasInit || hasPost {
			sb.WriteString("; ")
		}
		if hasCond {
			writeNode(sb, c[i])
			i++
		}
		if hasInit || hasPost {
			sb.WriteString("; ")
		}
		if hasPost {
			writeNode(sb, c[i])
			i++
		}
		sb.WriteString(" ")
		writeNode(sb, c[i])

	case tree.RangeStmt:
		tok, flags, _ := strings.Cut(n.Value, "|")
		sb.WriteString("for ")
		i := 0
		if strings.Contains(flags, "k") {
			writeNode(sb, c[i])
			i++
			if strings.Contains(flags, "v") {
				sb.WriteString(", ")
				writeNode(sb, c[i])
				i++
			}
			fmt.Fprintf(sb, " %s ", tok)
		}
		sb.WriteString("range ")
		writeNode(sb, c[i])
		sb.WriteString(" ")
		writeNode(sb, c[i+1])

	case tree.BlockStmt:
		sb.WriteString("{\n")
		for _, s := range c {
			writeNode(sb, s)
			sb.WriteString("\n")
		}
		sb.WriteString("}")

	case tree.DeclStmt:
		writeNode(sb, c[0])

	case tree.IncDecStmt:
		writeNode(sb, c[0])
		sb.WriteString(n.Value)

	case tree.SwitchStmt:
		sb.WriteString("switch ")
		i := 0
		if strings.Contains(n.Value, "i") {
			writeNode(sb, c[i])
			sb.WriteString("; ")
			i++
		}
		if strings.Contains(n.Value, "T") {
			writeNode(sb, c[i])
			sb.WriteString(" ")
			writeNode(sb, c[i+1])
			return
		}
		if strings.Contains(n.Value, "t") {
			writeNode(sb, c[i])
			sb.WriteString(" ")
			i++
		}
		writeNode(sb, c[i])

	case tree.CaseClause:
		if n.Value == "d" {
			sb.WriteString("default:")
			writeStmtList(sb, c)
		} else {
			count, _ := strconv.Atoi(n.Value)
			sb.WriteString("case ")
			writeList(sb, c[:count], ", ")
			sb.WriteString(":")
			writeStmtList(sb, c[count:])
		}

	case tree.BranchStmt:
		sb.WriteString(n.Value)
		if len(c) > 0 {
			sb.WriteString(" ")
			writeNode(sb, c[0])
		}

	case tree.DeferStmt:
		sb.WriteString("defer ")
		writeNode(sb, c[0])

	case tree.GoStmt:
		sb.WriteString("go ")
		writeNode(sb, c[0])

	case tree.SendStmt:
		writeNode(sb, c[0])
		sb.WriteString(" <- ")
		writeNode(sb, c[1])

	case tree.LabeledStmt:
		writeNode(sb, c[0])
		sb.WriteString(":\n")
		writeNode(sb, c[1])

	case tree.EmptyStmt:

	case tree.File:
		fmt.Fprintf(sb, "package %s\n\n", n.Value)
		for _, d := range c {
			writeNode(sb, d)
			sb.WriteString("\n\n")
		}

	case tree.FuncDecl:
		sb.WriteString("func ")
		i := 0
		if strings.Contains(n.Value, "r") {
			sb.WriteString("(")
			writeNode(sb, c[i])
			sb.WriteString(") ")
			i++
		}
		writeNode(sb, c[i]) // name
		sb.WriteString("(")
		writeNode(sb, c[i+1]) // params
		sb.WriteString(")")
		i += 2
		if strings.Contains(n.Value, "o") {
			sb.WriteString(" (")
			writeNode(sb, c[i])
			sb.WriteString(")")
			i++
		}
		if strings.Contains(n.Value, "b") {
			sb.WriteString(" ")
			writeNode(sb, c[i])
		}

	case tree.GenDecl:
		sb.WriteString(n.Value)
		sb.WriteString(" ")
		if len(c) == 1 {
			writeNode(sb, c[0])
		} else {
			sb.WriteString("(\n")
			for _, s := range c {
				writeNode(sb, s)
				sb.WriteString("\n")
			}
			sb.WriteString(")")
		}

	case tree.ValueSpec:
		count, hasType := splitSpecValue(n.Value)
		writeList(sb, c[:count], ", ")
		i := count
		if hasType {
			sb.WriteString(" ")
			writeNode(sb, c[i])
			i++
		}
		if i < len(c) {
			sb.WriteString(" = ")
			writeList(sb, c[i:], ", ")
		}

	case tree.TypeSpec:
		writeNode(sb, c[0])
		sb.WriteString(" ")
		writeNode(sb, c[1])

	case tree.ImportSpec:
		if len(c) > 0 {
			writeNode(sb, c[0])
			sb.WriteString(" ")
		}
		sb.WriteString(n.Value)

	case tree.Field:
		count, _ := strconv.Atoi(n.Value)
		if count > 0 {
			writeList(sb, c[:count], ", ")
			sb.WriteString(" ")
		}
		if count < len(c) {
			writeNode(sb, c[len(c)-1])
		}

	case tree.FieldList:
		writeList(sb, c, ", ")

	default:
		sb.WriteString(n.Value)
	}
}

func writeList(sb *strings.Builder, nodes []*tree.Node, sep string) {
	for i, n := range nodes {
		if i > 0 {
			sb.WriteString(sep)
		}
		writeNode(sb, n)
	}
}

func writeStmtList(sb *strings.Builder, nodes []*tree.Node) {
	for _, n := range nodes {
		sb.WriteString("\n")
		writeNode(sb, n)
	}
}

func splitAssignValue(v string) (tok string, lhsCount int) {
	tok, countStr, ok := strings.Cut(v, "|")
	if !ok {
		return v, 1
	}
	n, err := strconv.Atoi(countStr)
	if err != nil || n < 1 {
		n = 1
	}
	return tok, n
}

func splitSpecValue(v string) (count int, hasType bool) {
	if strings.HasSuffix(v, "t") {
		hasType = true
		v = strings.TrimSuffix(v, "t")
	}
	count, err := strconv.Atoi(v)
	if err != nil {
		count = 1
	}
	return count, hasType
}
