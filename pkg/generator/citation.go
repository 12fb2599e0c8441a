package generator

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/thesis"
)

// DefaultCitationTemplate renders a numbered bibliography entry in the
// bracketed style used by GB/T 7714 and IEEE reference lists.
const DefaultCitationTemplate = "[{{.ID}}] {{.Description}}"

// CitationFormatter renders reference entries through a text template over
// the Reference fields.
type CitationFormatter struct {
	tpl *template.Template
}

// NewCitationFormatter compiles a citation template. An empty template
// string selects the default bracketed-number style.
func NewCitationFormatter(tplText string) (*CitationFormatter, error) {
	if tplText == "" {
		tplText = DefaultCitationTemplate
	}
	tpl, err := template.New("citation").Parse(tplText)
	if err != nil {
		return nil, fmt.Errorf("parse citation template: %w", err)
	}
	return &CitationFormatter{tpl: tpl}, nil
}

// Format renders one reference entry.
func (f *CitationFormatter) Format(ref thesis.Reference) (string, error) {
	var sb strings.Builder
	if err := f.tpl.Execute(&sb, ref); err != nil {
		return "", fmt.Errorf("render citation %d: %w", ref.ID, err)
	}
	return sb.String(), nil
}
