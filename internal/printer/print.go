// Package printer renders matches and rewrite outcomes for terminal
// output.
package printer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/trewdev/trew/match"
	"github.com/trewdev/trew/rewrite"
	"github.com/trewdev/trew/tree"
)

var (
	matchStyle   = color.New(color.FgGreen, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgBlue, color.Bold)
	bindingStyle = color.New(color.FgYellow)
	skipStyle    = color.New(color.FgYellow, color.Bold)
	changeStyle  = color.New(color.FgGreen, color.Bold)
)

// FormatMatch renders one match: a location header, the matched snippet,
// and the placeholder bindings. render serializes subtrees back to source
// text.
func FormatMatch(filename string, m *match.Match, render func(*tree.Node) string) string {
	var b strings.Builder
	b.WriteString(matchStyle.Sprint("match"))
	b.WriteString(lineStyle.Sprint(" --> "))
	b.WriteString(fileStyle.Sprintf("%s:%d:%d", filename, m.Node.Pos.Line, m.Node.Pos.Column))
	b.WriteString("\n")
	b.WriteString("  " + render(m.Node) + "\n")

	names := make([]string, 0, len(m.Bindings))
	for name := range m.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(bindingStyle.Sprintf("  $%s = %s\n", name, render(m.Bindings[name])))
	}

	listNames := make([]string, 0, len(m.ListBindings))
	for name := range m.ListBindings {
		listNames = append(listNames, name)
	}
	sort.Strings(listNames)
	for _, name := range listNames {
		parts := make([]string, len(m.ListBindings[name]))
		for i, n := range m.ListBindings[name] {
			parts[i] = render(n)
		}
		b.WriteString(bindingStyle.Sprintf("  $%s$ = [%s]\n", name, strings.Join(parts, ", ")))
	}
	return b.String()
}

// FormatReport summarizes one file's rewrite outcome, listing each applied
// operation and any skips worth showing.
func FormatReport(filename string, report rewrite.Report, dryRun bool) string {
	if report.Applied == 0 && len(report.Skipped) == 0 {
		return ""
	}

	var b strings.Builder
	verb := "rewrote"
	if dryRun {
		verb = "would rewrite"
	}
	b.WriteString(changeStyle.Sprintf("%s %s", verb, filename))
	fmt.Fprintf(&b, " (%d applied, %d skipped)\n", report.Applied, len(report.Skipped))

	for _, op := range report.Ops {
		b.WriteString(lineStyle.Sprintf("  %d:%d ", op.Match.Node.Pos.Line, op.Match.Node.Pos.Column))
		b.WriteString(op.Description + "\n")
	}
	for _, s := range report.Skipped {
		// duplicates and shadowed inner matches are expected; only
		// construction failures need the operator's attention
		if s.Cause != rewrite.SkipConstruction {
			continue
		}
		b.WriteString(skipStyle.Sprintf("  skipped %s: %v\n", s.Op.Description, s.Err))
	}
	return b.String()
}
