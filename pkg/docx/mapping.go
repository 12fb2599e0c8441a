package docx

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// SectionKind identifies the logical region a mapping section covers.
type SectionKind string

const (
	SectionRoot          SectionKind = "root"
	SectionFront         SectionKind = "front"
	SectionTOC           SectionKind = "toc"
	SectionListOfTables  SectionKind = "list-of-tables"
	SectionListOfFigures SectionKind = "list-of-figures"
	SectionBody          SectionKind = "body"
	SectionBack          SectionKind = "back"
)

// NodeKind identifies the XML node class of a block.
type NodeKind string

const (
	NodeParagraph    NodeKind = "paragraph"
	NodeTable        NodeKind = "table"
	NodeSectionBreak NodeKind = "sectionBreak"
	NodeOther        NodeKind = "other"
)

// Role is the formatting role the extractor assigns to a block.
type Role string

const (
	RoleHeading          Role = "heading"
	RoleFrontTitle       Role = "frontTitle"
	RoleBackTitle        Role = "backTitle"
	RoleTOCTitle         Role = "tocTitle"
	RoleTOCItem          Role = "tocItem"
	RoleParagraph        Role = "paragraph"
	RoleEquation         Role = "equation"
	RoleImagePlaceholder Role = "imagePlaceholder"
	RoleCaptionFigure    Role = "captionFigure"
	RoleCaptionTable     Role = "captionTable"
	RoleTable            Role = "table"
	RoleOther            Role = "other"
)

// Owner records which section a block belongs to and the heading titles that
// were live when the block was visited.
type Owner struct {
	SectionID string
	H1        string
	H2        string
	H3        string
}

// Block is one body-level node in the template mapping.
type Block struct {
	ID                string
	Order             int // 1-based, strictly increasing
	NodeKind          NodeKind
	Role              Role
	HeadingLevel      int // 0 for non-headings
	StyleID           string
	Text              string
	Owner             Owner
	FieldInstructions []string
	BookmarkNames     []string

	el *etree.Element
}

// Element returns the live body node this block was extracted from.
func (b *Block) Element() *etree.Element { return b.el }

// Section is one logical region of the document.
type Section struct {
	ID         string
	Kind       SectionKind
	Title      string
	Level      int
	ParentID   string
	StartOrder int
	EndOrder   int // -1 while the section is still open
	BlockIDs   []string
}

// TemplateMapping is the ordered structural snapshot of a document body.
type TemplateMapping struct {
	Sections []*Section
	Blocks   []*Block

	byBlockID   map[string]*Block
	bySectionID map[string]*Section
}

// BlockByID returns the block with the given id, or nil.
func (m *TemplateMapping) BlockByID(id string) *Block { return m.byBlockID[id] }

// SectionByID returns the section with the given id, or nil.
func (m *TemplateMapping) SectionByID(id string) *Section { return m.bySectionID[id] }

// BodySections returns the body-kind sections in document order.
func (m *TemplateMapping) BodySections() []*Section {
	var out []*Section
	for _, s := range m.Sections {
		if s.Kind == SectionBody {
			out = append(out, s)
		}
	}
	return out
}

// fieldScope tags an open begin/separate/end field on the operator stack.
type fieldScope int

const (
	fieldGeneric fieldScope = iota
	fieldTOC
	fieldListOfTables
	fieldListOfFigures
	fieldPending // begin seen, instruction not yet
)

// extractMode is the explicit front/body/back state of the extractor.
type extractMode int

const (
	modeFront extractMode = iota
	modeBody
	modeBack
)

// Extractor walks a document body once and produces its TemplateMapping.
type Extractor struct {
	keywords Keywords
	styles   HeadingStyles
	logger   *zap.Logger
}

// NewExtractor builds an extractor bound to a keyword table and a resolved
// heading style map.
func NewExtractor(keywords Keywords, styles HeadingStyles, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{keywords: keywords, styles: styles, logger: logger}
}

// extractState is the per-pass traversal state.
type extractState struct {
	mapping *TemplateMapping
	mode    extractMode
	current *Section
	// heading stack: at most one live title per level 1-3
	h1, h2, h3 string
	fields     []fieldScope
	order      int
	sectionSeq int
}

// Extract performs the single forward pass over the body's direct children.
func (e *Extractor) Extract(body *etree.Element) (*TemplateMapping, error) {
	if body == nil {
		return nil, ErrNoBody
	}

	st := &extractState{
		mapping: &TemplateMapping{
			byBlockID:   map[string]*Block{},
			bySectionID: map[string]*Section{},
		},
	}
	root := &Section{ID: "root", Kind: SectionRoot, StartOrder: 1, EndOrder: -1}
	st.mapping.Sections = append(st.mapping.Sections, root)
	st.mapping.bySectionID[root.ID] = root
	st.current = root

	for _, child := range body.ChildElements() {
		switch child.Tag {
		case "p":
			e.visitParagraph(st, child)
		case "tbl":
			e.pushBlock(st, child, NodeTable, RoleTable, 0)
		case "sectPr":
			e.pushBlock(st, child, NodeSectionBreak, RoleOther, 0)
		default:
			e.pushBlock(st, child, NodeOther, RoleOther, 0)
		}
	}

	e.logger.Debug("extracted template mapping",
		zap.Int("blocks", len(st.mapping.Blocks)),
		zap.Int("sections", len(st.mapping.Sections)))
	return st.mapping, nil
}

// visitParagraph classifies a body-level paragraph and pushes its block.
func (e *Extractor) visitParagraph(st *extractState, p *etree.Element) {
	text := NormalizeText(Text(p))
	styleID := StyleID(p)

	inFieldBefore := len(st.fields) > 0
	opened := e.applyFieldEvents(st, p)

	// Paragraphs inside a toc/lot/lof field scope are synthetic entries the
	// field machinery regenerates; they must never be mistaken for content.
	if inFieldBefore || opened != nil {
		role := RoleTOCItem
		if opened != nil {
			e.openSection(st, *opened, text, 0)
			role = RoleTOCTitle
		}
		e.pushBlock(st, p, NodeParagraph, role, 0)
		return
	}

	if kind, ok := e.keywords.MatchTitle(text); ok {
		// Front-matter titles are only recognized before the body opens;
		// back-matter titles may close the body at any point.
		if kind == SectionBack || st.mode == modeFront {
			e.openSection(st, kind, text, 0)
			role := RoleFrontTitle
			switch kind {
			case SectionBack:
				st.mode = modeBack
				role = RoleBackTitle
			case SectionTOC, SectionListOfTables, SectionListOfFigures:
				role = RoleTOCTitle
			}
			e.pushBlock(st, p, NodeParagraph, role, 0)
			return
		}
	}

	level := e.styles.Level(styleID)
	if level == 1 && st.mode != modeBack {
		// A level-1 styled paragraph forces body mode so templates without
		// explicit front-matter markers still produce a usable body section.
		st.mode = modeBody
		e.openSection(st, SectionBody, text, 1)
		st.h1, st.h2, st.h3 = text, "", ""
		e.pushBlock(st, p, NodeParagraph, RoleHeading, 1)
		return
	}
	if level > 1 && st.mode == modeBody {
		// Deeper headings extend the current section but refresh the stack:
		// a level-2 heading replaces stale level-2/3 entries, never level-1.
		switch level {
		case 2:
			st.h2, st.h3 = text, ""
		case 3:
			st.h3 = text
		}
		e.pushBlock(st, p, NodeParagraph, RoleHeading, level)
		return
	}

	e.pushBlock(st, p, NodeParagraph, e.classifyContent(p, text), 0)
}

// classifyContent inspects a non-heading paragraph's contents.
func (e *Extractor) classifyContent(p *etree.Element, text string) Role {
	if HasDescendant(p, "oMath") || HasDescendant(p, "oMathPara") {
		return RoleEquation
	}
	if HasDescendant(p, "drawing") || HasDescendant(p, "pict") {
		return RoleImagePlaceholder
	}
	for _, instr := range FieldInstructions(p) {
		if !strings.HasPrefix(strings.TrimSpace(instr), "SEQ") {
			continue
		}
		switch {
		case strings.HasPrefix(text, "图"), hasFoldedPrefix(text, "figure"):
			return RoleCaptionFigure
		case strings.HasPrefix(text, "表"), hasFoldedPrefix(text, "table"):
			return RoleCaptionTable
		}
	}
	return RoleParagraph
}

// applyFieldEvents walks the paragraph's field markers in order, maintaining
// the operator stack. If a toc/lot/lof field opens in this paragraph, the
// corresponding section kind is returned.
func (e *Extractor) applyFieldEvents(st *extractState, p *etree.Element) *SectionKind {
	var opened *SectionKind

	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, ch := range el.ChildElements() {
			switch ch.Tag {
			case "fldChar":
				switch Attr(ch, "fldCharType") {
				case "begin":
					st.fields = append(st.fields, fieldPending)
				case "end":
					if n := len(st.fields); n > 0 {
						st.fields = st.fields[:n-1]
					}
				}
			case "instrText":
				if n := len(st.fields); n > 0 && st.fields[n-1] == fieldPending {
					scope := classifyFieldInstruction(ch.Text())
					st.fields[n-1] = scope
					if kind := scope.sectionKind(); kind != nil {
						opened = kind
					}
				}
			default:
				walk(ch)
			}
		}
	}
	walk(p)
	return opened
}

// classifyFieldInstruction types a field by its instruction text. TOC fields
// carry a category switch (\c) that distinguishes the list-of-tables and
// list-of-figures variants from the heading table of contents.
func classifyFieldInstruction(instr string) fieldScope {
	instr = strings.TrimSpace(instr)
	if !strings.HasPrefix(instr, "TOC") {
		return fieldGeneric
	}
	categoryStart := strings.Index(instr, `\c`)
	if categoryStart < 0 {
		return fieldTOC
	}
	category := strings.Trim(strings.TrimSpace(instr[categoryStart+2:]), `"`)
	switch {
	case strings.HasPrefix(category, "表"), hasFoldedPrefix(category, "table"):
		return fieldListOfTables
	case strings.HasPrefix(category, "图"), hasFoldedPrefix(category, "figure"):
		return fieldListOfFigures
	}
	return fieldTOC
}

func (s fieldScope) sectionKind() *SectionKind {
	var kind SectionKind
	switch s {
	case fieldTOC:
		kind = SectionTOC
	case fieldListOfTables:
		kind = SectionListOfTables
	case fieldListOfFigures:
		kind = SectionListOfFigures
	default:
		return nil
	}
	return &kind
}

// openSection closes the current section and opens a new one. A toc-family
// open is skipped while the current section already has that kind, so the
// keyword title and the field begin of the same list share one section.
func (e *Extractor) openSection(st *extractState, kind SectionKind, title string, level int) {
	switch kind {
	case SectionTOC, SectionListOfTables, SectionListOfFigures:
		if st.current != nil && st.current.Kind == kind {
			return
		}
	}
	if st.current != nil {
		st.current.EndOrder = st.order
	}

	st.sectionSeq++
	parent := "root"
	if level > 1 {
		parent = st.current.ID
	}
	sec := &Section{
		ID:         fmt.Sprintf("s%d", st.sectionSeq),
		Kind:       kind,
		Title:      title,
		Level:      level,
		ParentID:   parent,
		StartOrder: st.order + 1,
		EndOrder:   -1,
	}
	st.mapping.Sections = append(st.mapping.Sections, sec)
	st.mapping.bySectionID[sec.ID] = sec
	st.current = sec
}

// pushBlock appends a classified block owned by the current section.
func (e *Extractor) pushBlock(st *extractState, el *etree.Element, nk NodeKind, role Role, level int) {
	st.order++
	b := &Block{
		ID:           fmt.Sprintf("b%d", st.order),
		Order:        st.order,
		NodeKind:     nk,
		Role:         role,
		HeadingLevel: level,
		StyleID:      StyleID(el),
		Text:         NormalizeText(Text(el)),
		Owner: Owner{
			SectionID: st.current.ID,
			H1:        st.h1,
			H2:        st.h2,
			H3:        st.h3,
		},
		FieldInstructions: FieldInstructions(el),
		BookmarkNames:     BookmarkNames(el),
		el:                el,
	}
	st.current.BlockIDs = append(st.current.BlockIDs, b.ID)
	st.mapping.Blocks = append(st.mapping.Blocks, b)
	st.mapping.byBlockID[b.ID] = b
}

func hasFoldedPrefix(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	return strings.EqualFold(s[:len(prefix)], prefix)
}
