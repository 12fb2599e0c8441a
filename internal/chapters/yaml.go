// Package chapters loads abstract chapter trees from caller-editable files.
// Two source formats are supported: a YAML document mirroring the chapter
// tree directly, and Markdown where ATX headings define the tree and body
// text keeps the inline placeholder tokens.
package chapters

import (
	"fmt"
	"os"

	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/thesis"
	"gopkg.in/yaml.v3"
)

// Document is the parsed chapter source: the chapter tree plus the
// caller-supplied reference list.
type Document struct {
	Chapters   []*thesis.Chapter  `yaml:"chapters"`
	References []thesis.Reference `yaml:"references"`
}

// LoadYAML reads a chapter tree document from a YAML file.
func LoadYAML(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse chapter file %s: %w", path, err)
	}

	normalize(doc.Chapters, 1, "c")
	return &doc, nil
}

// normalize fills in missing levels and ids so downstream code can rely on
// both being present.
func normalize(chs []*thesis.Chapter, level int, idPrefix string) {
	for i, ch := range chs {
		if ch.Level == 0 {
			ch.Level = level
		}
		if ch.ID == "" {
			ch.ID = fmt.Sprintf("%s%d", idPrefix, i+1)
		}
		normalize(ch.Subsections, ch.Level+1, ch.ID+".")
	}
}
