// Package rule holds the declarative rule record consumed by the engine:
// a pattern, an optional guard expression, and a replacement template. File
// discovery and per-project enable/disable flags are host responsibility;
// this package only parses rule bundles into records.
package rule

import (
	"fmt"
	"strings"
)

// Rule is one declarative transformation: match Pattern (of Kind), admit
// the match when Guard holds, rewrite to Replacement. Import optionally
// names an import path the host should add alongside the rewrite.
type Rule struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Kind        string `yaml:"kind,omitempty"`
	Pattern     string `yaml:"pattern"`
	Guard       string `yaml:"guard,omitempty"`
	Replacement string `yaml:"replacement"`
	Import      string `yaml:"import,omitempty"`
}

// Validate checks the fields a rule cannot do without.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Pattern) == "" {
		return fmt.Errorf("rule %q: empty pattern", r.Name)
	}
	if strings.TrimSpace(r.Replacement) == "" {
		return fmt.Errorf("rule %q: empty replacement", r.Name)
	}
	return nil
}
