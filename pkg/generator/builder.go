package generator

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/docx"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/thesis"
)

// ParagraphBuilder constructs a fresh paragraph node from a captured style
// template plus a list of typed content fragments (text runs, field
// sequences, bookmark markers). The prototype's paragraph and run properties
// are cloned, never mutated in place.
type ParagraphBuilder struct {
	prefix   string
	pPr      *etree.Element // cloned paragraph properties, may be nil
	runProps *etree.Element // cloned run-properties template, may be nil
	style    thesis.RoleStyle
	styleID  string
	align    string
	children []*etree.Element
}

// NewParagraphBuilder captures the formatting of a prototype paragraph. A
// nil prototype yields an unstyled paragraph whose runs still receive the
// configured typography.
func NewParagraphBuilder(proto *etree.Element, style thesis.RoleStyle) *ParagraphBuilder {
	b := &ParagraphBuilder{prefix: docx.Prefix(proto), style: style}

	if proto != nil {
		if pPr := docx.Child(proto, "pPr"); pPr != nil {
			b.pPr = docx.Clone(pPr)
			// A cloned section break would split the document again.
			if sectPr := docx.Child(b.pPr, "sectPr"); sectPr != nil {
				b.pPr.RemoveChild(sectPr)
			}
		}
		if run := docx.Child(proto, "r"); run != nil {
			if rPr := docx.Child(run, "rPr"); rPr != nil {
				b.runProps = docx.Clone(rPr)
			}
		}
	}
	return b
}

// StyleID overrides the paragraph style of the built node.
func (b *ParagraphBuilder) StyleID(id string) *ParagraphBuilder {
	b.styleID = id
	return b
}

// Center aligns the built paragraph horizontally.
func (b *ParagraphBuilder) Center() *ParagraphBuilder {
	b.align = "center"
	return b
}

// Text appends a literal text run.
func (b *ParagraphBuilder) Text(s string) *ParagraphBuilder {
	if s == "" {
		return b
	}
	b.children = append(b.children, b.textRun(s))
	return b
}

// Field appends the five-run live-field sequence: begin marker, instruction
// text, separator marker, cached display value, end marker. The cached value
// is a stale placeholder; the consuming renderer recomputes it on open.
func (b *ParagraphBuilder) Field(instruction, cached string) *ParagraphBuilder {
	b.children = append(b.children,
		b.fldCharRun("begin"),
		b.instrTextRun(instruction),
		b.fldCharRun("separate"),
		b.textRun(cached),
		b.fldCharRun("end"),
	)
	return b
}

// BookmarkStart appends a bookmark opening marker.
func (b *ParagraphBuilder) BookmarkStart(id int, name string) *ParagraphBuilder {
	bm := etree.NewElement(b.prefix + ":bookmarkStart")
	bm.CreateAttr(b.prefix+":id", strconv.Itoa(id))
	bm.CreateAttr(b.prefix+":name", name)
	b.children = append(b.children, bm)
	return b
}

// BookmarkEnd appends the matching bookmark closing marker.
func (b *ParagraphBuilder) BookmarkEnd(id int) *ParagraphBuilder {
	bm := etree.NewElement(b.prefix + ":bookmarkEnd")
	bm.CreateAttr(b.prefix+":id", strconv.Itoa(id))
	b.children = append(b.children, bm)
	return b
}

// Empty reports whether no content fragments have been appended yet.
func (b *ParagraphBuilder) Empty() bool {
	return len(b.children) == 0
}

// Build assembles the paragraph node.
func (b *ParagraphBuilder) Build() *etree.Element {
	p := etree.NewElement(b.prefix + ":p")

	pPr := b.pPr
	if pPr == nil && (b.styleID != "" || b.align != "") {
		pPr = etree.NewElement(b.prefix + ":pPr")
	}
	if pPr != nil {
		if b.styleID != "" {
			setSingleChildVal(pPr, b.prefix, "pStyle", b.styleID)
		}
		if b.align != "" {
			setSingleChildVal(pPr, b.prefix, "jc", b.align)
		}
		p.AddChild(pPr)
	}

	for _, ch := range b.children {
		p.AddChild(ch)
	}
	return p
}

// textRun creates a run carrying literal text with the configured
// typography injected.
func (b *ParagraphBuilder) textRun(text string) *etree.Element {
	r := etree.NewElement(b.prefix + ":r")
	r.AddChild(b.styledRunProps())

	t := etree.NewElement(b.prefix + ":t")
	if text != strings.TrimSpace(text) {
		t.CreateAttr("xml:space", "preserve")
	}
	t.SetText(text)
	r.AddChild(t)
	return r
}

// instrTextRun creates a run carrying field instruction text.
func (b *ParagraphBuilder) instrTextRun(instruction string) *etree.Element {
	r := etree.NewElement(b.prefix + ":r")
	r.AddChild(b.styledRunProps())

	instr := etree.NewElement(b.prefix + ":instrText")
	instr.CreateAttr("xml:space", "preserve")
	instr.SetText(instruction)
	r.AddChild(instr)
	return r
}

// fldCharRun creates a run carrying one field state marker.
func (b *ParagraphBuilder) fldCharRun(charType string) *etree.Element {
	r := etree.NewElement(b.prefix + ":r")
	r.AddChild(b.styledRunProps())

	fc := etree.NewElement(b.prefix + ":fldChar")
	fc.CreateAttr(b.prefix+":fldCharType", charType)
	r.AddChild(fc)
	return r
}

// styledRunProps clones the prototype run properties and overrides fonts and
// size with the configured typography, so the configured style wins
// regardless of what the prototype carried.
func (b *ParagraphBuilder) styledRunProps() *etree.Element {
	var rPr *etree.Element
	if b.runProps != nil {
		rPr = docx.Clone(b.runProps)
	} else {
		rPr = etree.NewElement(b.prefix + ":rPr")
	}

	if b.style.EastAsiaFont != "" || b.style.LatinFont != "" {
		fonts := docx.Child(rPr, "rFonts")
		if fonts == nil {
			fonts = etree.NewElement(b.prefix + ":rFonts")
			rPr.InsertChildAt(0, fonts)
		}
		if b.style.EastAsiaFont != "" {
			fonts.CreateAttr(b.prefix+":eastAsia", b.style.EastAsiaFont)
		}
		if b.style.LatinFont != "" {
			fonts.CreateAttr(b.prefix+":ascii", b.style.LatinFont)
			fonts.CreateAttr(b.prefix+":hAnsi", b.style.LatinFont)
		}
	}
	if b.style.SizeHalfPoints > 0 {
		sz := strconv.Itoa(b.style.SizeHalfPoints)
		setSingleChildVal(rPr, b.prefix, "sz", sz)
		setSingleChildVal(rPr, b.prefix, "szCs", sz)
	}
	return rPr
}

// setSingleChildVal ensures parent has exactly one child with the given
// local name carrying a val attribute. New pStyle children go first and new
// jc children stay ahead of any paragraph-mark rPr, matching the schema
// order Word emits.
func setSingleChildVal(parent *etree.Element, prefix, local, val string) {
	if existing := docx.Child(parent, local); existing != nil {
		existing.RemoveAttr(prefix + ":val")
		existing.RemoveAttr("val")
		existing.CreateAttr(prefix+":val", val)
		return
	}

	ch := etree.NewElement(prefix + ":" + local)
	ch.CreateAttr(prefix+":val", val)

	switch local {
	case "pStyle":
		parent.InsertChildAt(0, ch)
	case "jc":
		if rPr := docx.Child(parent, "rPr"); rPr != nil {
			parent.InsertChildAt(docx.TokenIndex(parent, rPr), ch)
			return
		}
		parent.AddChild(ch)
	default:
		parent.AddChild(ch)
	}
}
