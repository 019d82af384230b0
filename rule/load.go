package rule

import (
	"os"
	"path/filepath"
	"strings"
)

// LoadFile reads a rule bundle from disk, choosing the format by file
// extension: `.yaml`/`.yml` bundles, anything else the hint format.
func LoadFile(path string) ([]Rule, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseHintFile(string(data))
}
