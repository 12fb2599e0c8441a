package docx

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
)

// normalTextMinWidth is the minimum display width a paragraph must have to
// qualify as the normal-body exemplar, keeping empty placeholder lines from
// being picked. Width counts CJK characters as two columns.
const normalTextMinWidth = 8

// PrototypeSet holds one cloneable exemplar node per formatting role. A nil
// entry means the template lacks that role; callers degrade to the closest
// available prototype.
type PrototypeSet struct {
	H1             *etree.Element
	H2             *etree.Element
	H3             *etree.Element
	Normal         *etree.Element
	Caption        *etree.Element
	ReferenceEntry *etree.Element
	Table          *etree.Element
}

// Heading returns the heading prototype for a level, falling back to the
// normal prototype when the template lacks that heading role.
func (ps *PrototypeSet) Heading(level int) *etree.Element {
	var proto *etree.Element
	switch level {
	case 1:
		proto = ps.H1
	case 2:
		proto = ps.H2
	case 3:
		proto = ps.H3
	}
	if proto == nil {
		proto = ps.Normal
	}
	return proto
}

// CaptionOrNormal returns the caption prototype, or the normal prototype
// when no caption exemplar exists.
func (ps *PrototypeSet) CaptionOrNormal() *etree.Element {
	if ps.Caption != nil {
		return ps.Caption
	}
	return ps.Normal
}

// ReferenceOrNormal returns the reference-entry prototype, or the normal
// prototype when none exists.
func (ps *PrototypeSet) ReferenceOrNormal() *etree.Element {
	if ps.ReferenceEntry != nil {
		return ps.ReferenceEntry
	}
	return ps.Normal
}

// FindPrototypes scans an extracted mapping and captures the first exemplar
// node for each formatting role, preserving run-level formatting for later
// cloning. The keyword table decides which back-matter title opens the
// reference list. A missing table prototype is acceptable; callers fall back
// to placeholder text.
func FindPrototypes(m *TemplateMapping, keywords Keywords, logger *zap.Logger) *PrototypeSet {
	if logger == nil {
		logger = zap.NewNop()
	}
	ps := &PrototypeSet{}

	var inReferences bool
	var fallbackNoStyle, fallbackAny *etree.Element

	for _, b := range m.Blocks {
		switch {
		case b.NodeKind == NodeTable:
			if ps.Table == nil {
				ps.Table = b.el
			}
			continue
		case b.NodeKind != NodeParagraph:
			continue
		}

		if fallbackAny == nil {
			fallbackAny = b.el
		}
		if fallbackNoStyle == nil && b.StyleID == "" {
			fallbackNoStyle = b.el
		}

		switch b.Role {
		case RoleHeading:
			switch b.HeadingLevel {
			case 1:
				if ps.H1 == nil {
					ps.H1 = b.el
				}
			case 2:
				if ps.H2 == nil {
					ps.H2 = b.el
				}
			case 3:
				if ps.H3 == nil {
					ps.H3 = b.el
				}
			}
		case RoleCaptionFigure, RoleCaptionTable:
			if ps.Caption == nil {
				ps.Caption = b.el
			}
		case RoleBackTitle:
			inReferences = keywords.IsReferences(b.Text)
		case RoleParagraph:
			if inReferences && ps.ReferenceEntry == nil && b.Text != "" {
				ps.ReferenceEntry = b.el
			}
			if ps.Normal == nil && isNormalCandidate(b) {
				ps.Normal = b.el
			}
		}
	}

	if ps.Normal == nil {
		ps.Normal = fallbackNoStyle
	}
	if ps.Normal == nil {
		ps.Normal = fallbackAny
	}

	logger.Debug("collected prototypes",
		zap.Bool("h1", ps.H1 != nil),
		zap.Bool("h2", ps.H2 != nil),
		zap.Bool("h3", ps.H3 != nil),
		zap.Bool("normal", ps.Normal != nil),
		zap.Bool("caption", ps.Caption != nil),
		zap.Bool("referenceEntry", ps.ReferenceEntry != nil),
		zap.Bool("table", ps.Table != nil))
	return ps
}

// isNormalCandidate applies the exemplar filters for the generic body
// paragraph role: not a heading, no numbering field, not a front/back title,
// and carrying enough text to not be an empty placeholder line.
func isNormalCandidate(b *Block) bool {
	if b.Role != RoleParagraph || b.HeadingLevel != 0 {
		return false
	}
	for _, instr := range b.FieldInstructions {
		if strings.HasPrefix(strings.TrimSpace(instr), "SEQ") {
			return false
		}
	}
	return runewidth.StringWidth(b.Text) >= normalTextMinWidth
}
