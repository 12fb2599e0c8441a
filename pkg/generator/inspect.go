package generator

import (
	"path"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/docx"
	"go.uber.org/zap"
)

// HeaderField describes one field instruction found in a page header,
// together with the style a STYLEREF instruction targets. Used to diagnose
// misconfigured cross-reference styles in generated documents.
type HeaderField struct {
	DocSection  int    `json:"docSection"`         // 1-based document section index
	HeaderType  string `json:"headerType"`         // default, even, first
	Part        string `json:"part"`               // header part name
	Instruction string `json:"instruction"`        // raw field instruction
	StyleRef    string `json:"styleRef,omitempty"` // STYLEREF target, if any
}

const relsPart = "word/_rels/document.xml.rels"

var styleRefTargetRe = regexp.MustCompile(`STYLEREF\s+(?:"([^"]+)"|(\S+))`)

// InspectHeaders reports every field instruction in the page headers of a
// document, grouped by document section. This is read-only diagnostic
// tooling; it never modifies the package.
func InspectHeaders(pkg *docx.Package, logger *zap.Logger) ([]HeaderField, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	body, err := pkg.Body()
	if err != nil {
		return nil, err
	}
	targets := headerTargets(pkg, logger)

	var out []HeaderField
	secIndex := 0
	for _, sectPr := range docx.Descendants(body, "sectPr") {
		secIndex++
		for _, ref := range docx.Children(sectPr, "headerReference") {
			relID := docx.Attr(ref, "id")
			partName, ok := targets[relID]
			if !ok {
				continue
			}
			fields, err := headerInstructions(pkg, partName)
			if err != nil {
				logger.Warn("header part unreadable", zap.String("part", partName), zap.Error(err))
				continue
			}
			for _, instr := range fields {
				out = append(out, HeaderField{
					DocSection:  secIndex,
					HeaderType:  docx.Attr(ref, "type"),
					Part:        partName,
					Instruction: instr,
					StyleRef:    styleRefTargetOf(instr),
				})
			}
		}
	}
	return out, nil
}

// headerTargets maps relationship ids to header part names.
func headerTargets(pkg *docx.Package, logger *zap.Logger) map[string]string {
	targets := map[string]string{}

	doc, err := pkg.Part(relsPart)
	if err != nil {
		logger.Debug("document relationships unavailable", zap.Error(err))
		return targets
	}
	root := doc.Root()
	if root == nil {
		return targets
	}
	for _, rel := range docx.Children(root, "Relationship") {
		target := docx.Attr(rel, "Target")
		if !strings.HasSuffix(target, ".xml") || !strings.Contains(target, "header") {
			continue
		}
		// 以 / 开头的目标相对于包根，其余相对于 word/ 目录
		name := path.Clean(target)
		if strings.HasPrefix(name, "/") {
			name = strings.TrimPrefix(name, "/")
		} else {
			name = path.Join("word", name)
		}
		targets[docx.Attr(rel, "Id")] = name
	}
	return targets
}

// headerInstructions returns the field instructions of one header part.
func headerInstructions(pkg *docx.Package, partName string) ([]string, error) {
	doc, err := pkg.Part(partName)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, nil
	}
	return collectInstructions(root), nil
}

func collectInstructions(root *etree.Element) []string {
	var out []string
	for _, instr := range docx.Descendants(root, "instrText") {
		if s := strings.TrimSpace(instr.Text()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// styleRefTargetOf extracts the style a STYLEREF instruction points at.
func styleRefTargetOf(instr string) string {
	m := styleRefTargetRe.FindStringSubmatch(instr)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	if strings.HasPrefix(m[2], `\`) {
		// A switch directly after the keyword means no target was given.
		return ""
	}
	return m[2]
}
