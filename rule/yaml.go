package rule

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the YAML rule-bundle format:
//
//	rules:
//	  - name: stringify
//	    kind: expression
//	    pattern: '"" + $x'
//	    guard: hasNoSideEffect($x)
//	    replacement: fmt.Sprint($x)
//	    import: fmt
type Config struct {
	Rules []Rule `yaml:"rules"`
}

// LoadYAML reads a YAML rule bundle from disk.
func LoadYAML(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseYAML(data)
}

// ParseYAML parses a YAML rule bundle and validates every rule.
func ParseYAML(data []byte) ([]Rule, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing rule bundle: %w", err)
	}
	for _, r := range cfg.Rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg.Rules, nil
}
