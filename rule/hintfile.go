package rule

import (
	"fmt"
	"strings"
)

// ParseHintFile parses the compact plain-text rule format. Each rule block
// ends with `;;`:
//
//	# stringify concatenation
//	@kind expression
//	"" + $x
//	:: hasNoSideEffect($x)
//	=> fmt.Sprint($x)
//	;;
//
// The guard line (`::`) and the directives (`#` description, `@kind`,
// `@name`, `@import`) are optional.
func ParseHintFile(content string) ([]Rule, error) {
	var rules []Rule
	for i, block := range splitBlocks(content) {
		r, err := parseBlock(block)
		if err != nil {
			return nil, fmt.Errorf("rule block %d: %w", i+1, err)
		}
		if r.Name == "" {
			r.Name = fmt.Sprintf("rule-%d", i+1)
		}
		if err := r.Validate(); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func splitBlocks(content string) []string {
	var blocks []string
	for _, raw := range strings.Split(content, ";;") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		blocks = append(blocks, raw)
	}
	return blocks
}

func parseBlock(block string) (Rule, error) {
	var r Rule
	var patternLines, replacementLines []string
	section := "pattern"

	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "#"):
			desc := strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
			if r.Description == "" {
				r.Description = desc
			}
		case strings.HasPrefix(trimmed, "@kind"):
			r.Kind = strings.TrimSpace(strings.TrimPrefix(trimmed, "@kind"))
		case strings.HasPrefix(trimmed, "@name"):
			r.Name = strings.TrimSpace(strings.TrimPrefix(trimmed, "@name"))
		case strings.HasPrefix(trimmed, "@import"):
			r.Import = strings.TrimSpace(strings.TrimPrefix(trimmed, "@import"))
		case strings.HasPrefix(trimmed, "::"):
			if section != "pattern" {
				return r, fmt.Errorf("guard must precede the replacement")
			}
			r.Guard = strings.TrimSpace(strings.TrimPrefix(trimmed, "::"))
		case strings.HasPrefix(trimmed, "=>"):
			section = "replacement"
			if rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "=>")); rest != "" {
				replacementLines = append(replacementLines, rest)
			}
		default:
			if section == "pattern" {
				patternLines = append(patternLines, trimmed)
			} else {
				replacementLines = append(replacementLines, trimmed)
			}
		}
	}

	r.Pattern = strings.Join(patternLines, "\n")
	r.Replacement = strings.Join(replacementLines, "\n")
	if r.Replacement == "" {
		return r, fmt.Errorf("missing '=>' replacement")
	}
	return r, nil
}
