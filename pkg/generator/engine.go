package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/docx"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/thesis"
	"go.uber.org/zap"
)

// Engine expands an abstract chapter tree into document nodes. All state is
// per-call: prototypes, style configuration, bookmark allocator, and the
// reference set live exactly as long as one generation run.
type Engine struct {
	protos *docx.PrototypeSet
	styles docx.HeadingStyles
	cfg    thesis.StyleConfig
	alloc  *BookmarkAllocator
	refs   *ReferenceSet
	logger *zap.Logger
}

// NewEngine wires an engine for one generation run.
func NewEngine(protos *docx.PrototypeSet, styles docx.HeadingStyles, cfg thesis.StyleConfig, refs *ReferenceSet, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		protos: protos,
		styles: styles,
		cfg:    cfg,
		alloc:  NewBookmarkAllocator(),
		refs:   refs,
		logger: logger,
	}
}

// References exposes the reference set, including entries synthesized while
// expanding citation tokens.
func (e *Engine) References() *ReferenceSet { return e.refs }

// Allocator exposes the per-run bookmark allocator so assembly can mint
// bookmarks from the same sequence.
func (e *Engine) Allocator() *BookmarkAllocator { return e.alloc }

// BuildChapters expands the whole chapter tree depth-first, top to bottom.
// Output node order strictly matches traversal order.
func (e *Engine) BuildChapters(chapters []*thesis.Chapter) []*etree.Element {
	var nodes []*etree.Element
	for _, ch := range chapters {
		nodes = append(nodes, e.BuildChapter(ch)...)
	}
	return nodes
}

// BuildChapter expands one chapter: heading paragraph, content nodes, then
// subsections recursively.
func (e *Engine) BuildChapter(ch *thesis.Chapter) []*etree.Element {
	if ch == nil {
		return nil
	}

	level := ch.Level
	if level < 1 || level > 3 {
		level = 1
	}

	nodes := []*etree.Element{e.headingNode(ch.Title, level)}
	if strings.TrimSpace(ch.Content) != "" {
		nodes = append(nodes, e.buildContent(ch.Content)...)
	}
	for _, sub := range ch.Subsections {
		nodes = append(nodes, e.BuildChapter(sub)...)
	}
	return nodes
}

// headingNode clones the heading prototype for a level and injects the
// title. With no heading prototype the normal prototype serves, re-styled to
// the heading style so outline navigation still works.
func (e *Engine) headingNode(title string, level int) *etree.Element {
	if e.cfg.StripManualNumbering {
		title = StripHeadingNumber(title)
	}

	proto := e.protos.Heading(level)
	b := NewParagraphBuilder(proto, e.cfg.HeadingStyle(level))
	if proto == nil || proto == e.protos.Normal {
		b.StyleID(e.styles.ForLevel(level))
		e.logger.Warn("heading prototype missing, using normal prototype",
			zap.Int("level", level), zap.String("title", title))
	}
	return b.Text(title).Build()
}

// buildContent splits content on placeholder tokens and assembles the
// resulting paragraph and table nodes in order.
func (e *Engine) buildContent(content string) []*etree.Element {
	var nodes []*etree.Element
	para := e.newBodyParagraph()

	flush := func() {
		if !para.Empty() {
			nodes = append(nodes, para.Build())
		}
		para = e.newBodyParagraph()
	}

	for _, tk := range splitTokens(content) {
		switch tk.kind {
		case tokenText:
			lines := strings.Split(tk.value, "\n")
			for i, line := range lines {
				if i > 0 {
					flush()
				}
				// Spaces stay: the fragment may sit mid-line next to an
				// inline token.
				para.Text(strings.TrimRight(line, "\r"))
			}
		case tokenSymbol:
			para.Text(tk.value)
		case tokenEquation:
			para.Text(tk.value)
		case tokenCitation:
			e.citationInto(para, tk.value)
		case tokenFigure:
			flush()
			nodes = append(nodes, e.figureNodes(tk.value)...)
		case tokenTable:
			flush()
			nodes = append(nodes, e.tableNodes(tk.value)...)
		}
	}
	flush()
	return nodes
}

func (e *Engine) newBodyParagraph() *ParagraphBuilder {
	return NewParagraphBuilder(e.protos.Normal, e.cfg.Body)
}

// citationInto appends the inline citation machinery: a bracket literal, a
// REF field pointing at the reference's bookmark, and the closing bracket.
// The cached display text is the numeric id.
func (e *Engine) citationInto(para *ParagraphBuilder, payload string) {
	ref := e.refs.Resolve(payload)
	instr := fmt.Sprintf(" REF %s \\r \\h ", ReferenceBookmarkName(ref.ID))
	para.Text("[").Field(instr, strconv.Itoa(ref.ID)).Text("]")
}

// figureNodes emits the image placeholder paragraph followed by its
// bookmarked, auto-numbered caption.
func (e *Engine) figureNodes(desc string) []*etree.Element {
	placeholder := NewParagraphBuilder(e.protos.Normal, e.cfg.Body).
		Center().
		Text("（此处插入图片：" + desc + "）").
		Build()

	return []*etree.Element{placeholder, e.captionNode("图", desc)}
}

// tableNodes emits the auto-numbered caption followed by a clone of the
// table prototype, or a placeholder paragraph when the template has no
// table exemplar.
func (e *Engine) tableNodes(desc string) []*etree.Element {
	nodes := []*etree.Element{e.captionNode("表", desc)}

	if e.protos.Table != nil {
		nodes = append(nodes, docx.Clone(e.protos.Table))
		return nodes
	}
	e.logger.Warn("table prototype missing, emitting placeholder", zap.String("desc", desc))
	nodes = append(nodes, NewParagraphBuilder(e.protos.Normal, e.cfg.Body).
		Center().
		Text("（此处插入表格："+desc+"）").
		Build())
	return nodes
}

// captionNode builds a centered caption paragraph wrapped in a bookmark
// pair: the glyph literal, a STYLEREF sub-field resolving to the nearest
// level-1 heading, the literal separator, and a SEQ field whose numbering
// restarts per level-1 heading. Both fields carry stale cached values for
// the renderer to recompute.
func (e *Engine) captionNode(glyph, desc string) *etree.Element {
	id, name := e.alloc.Next("_Ref")

	styleRef := fmt.Sprintf(" STYLEREF %s \\s ", styleRefTarget(e.styles.Level1Name))
	seq := fmt.Sprintf(" SEQ %s \\* ARABIC \\s 1 ", glyph)

	return NewParagraphBuilder(e.protos.CaptionOrNormal(), e.cfg.Caption).
		Center().
		BookmarkStart(id, name).
		Text(glyph).
		Field(styleRef, "1").
		Text(e.cfg.NumberSeparator).
		Field(seq, "1").
		Text(" " + desc).
		BookmarkEnd(id).
		Build()
}

// styleRefTarget quotes a style name when it contains spaces or CJK text;
// the numeric shorthand stays bare.
func styleRefTarget(name string) string {
	if name == "" {
		return "1"
	}
	for _, r := range name {
		if r == ' ' || r > 0x7f {
			return `"` + name + `"`
		}
	}
	return name
}
