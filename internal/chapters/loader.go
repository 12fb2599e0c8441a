package chapters

import (
	"path/filepath"
	"strings"
)

// Load reads a chapter source file, dispatching on extension: .md/.markdown
// parse as Markdown, everything else as YAML.
func Load(path string) (*Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return LoadMarkdown(path)
	default:
		return LoadYAML(path)
	}
}
