package generator

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/docx"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/thesis"
	"go.uber.org/zap"
)

// Assembler performs one full regeneration: extract the template structure,
// excise the placeholder chapter span, splice in generated nodes, rebuild
// the reference list, and force field recomputation on open.
type Assembler struct {
	keywords docx.Keywords
	cfg      thesis.StyleConfig
	citation *CitationFormatter
	logger   *zap.Logger

	// AdjustStyles, when set, post-processes the resolved heading styles.
	// Callers use it to force explicit style IDs over the resolver's result.
	AdjustStyles func(docx.HeadingStyles) docx.HeadingStyles
}

// NewAssembler builds an assembler. An empty citationTemplate selects the
// default bracketed-number style.
func NewAssembler(keywords docx.Keywords, cfg thesis.StyleConfig, citationTemplate string, logger *zap.Logger) (*Assembler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	formatter, err := NewCitationFormatter(citationTemplate)
	if err != nil {
		return nil, err
	}
	return &Assembler{
		keywords: keywords,
		cfg:      cfg,
		citation: formatter,
		logger:   logger,
	}, nil
}

// Assemble regenerates the package body in place. The template mapping and
// prototype set are recomputed fresh from the current body; nothing is
// cached across calls.
func (a *Assembler) Assemble(pkg *docx.Package, chapters []*thesis.Chapter, refs []thesis.Reference) error {
	body, err := pkg.Body()
	if err != nil {
		return err
	}

	styles := docx.ResolveHeadingStyles(pkg, a.logger)
	if a.AdjustStyles != nil {
		styles = a.AdjustStyles(styles)
	}
	mapping, err := docx.NewExtractor(a.keywords, styles, a.logger).Extract(body)
	if err != nil {
		return err
	}
	protos := docx.FindPrototypes(mapping, a.keywords, a.logger)

	engine := NewEngine(protos, styles, a.cfg, NewReferenceSet(refs, a.logger), a.logger)
	generated := engine.BuildChapters(chapters)

	a.logger.Info("generated chapter nodes",
		zap.String("package", pkg.ID()),
		zap.Int("chapters", thesis.CountChapters(chapters)),
		zap.Int("nodes", len(generated)))

	if err := a.splice(body, mapping, generated); err != nil {
		return err
	}
	a.rebuildReferences(body, mapping, protos, engine)

	if err := ensureUpdateFields(pkg); err != nil {
		return err
	}

	pkg.MarkDirty(docx.MainDocumentPart)
	return nil
}

// splice removes the placeholder chapter span [start, end) and inserts the
// generated nodes in its place. Start is the first level-1 heading in body
// mode; end is the first back-matter title after it, or the document's final
// section break when no back matter exists.
func (a *Assembler) splice(body *etree.Element, mapping *docx.TemplateMapping, nodes []*etree.Element) error {
	var start, end *docx.Block
	for _, b := range mapping.Blocks {
		if start == nil {
			if b.Role == docx.RoleHeading && b.HeadingLevel == 1 {
				start = b
			}
			continue
		}
		if b.Role == docx.RoleBackTitle {
			end = b
			break
		}
	}
	if start == nil {
		// Nothing to excise: the template carries no placeholder body.
		// Insert ahead of the first back-matter title, or before the
		// final section break so sectPr stays the last body child.
		for _, b := range mapping.Blocks {
			if b.Role == docx.RoleBackTitle {
				end = b
				break
			}
		}
		if end == nil {
			end = trailingSectionBreak(mapping, 0)
		}
		a.insertNodes(body, end, nodes)
		a.logger.Warn("template has no placeholder chapter span, appended generated body")
		return nil
	}
	if end == nil {
		end = trailingSectionBreak(mapping, start.Order)
	}

	removing := false
	for _, b := range mapping.Blocks {
		if b == start {
			removing = true
		}
		if b == end {
			break
		}
		if removing {
			body.RemoveChild(b.Element())
		}
	}

	a.insertNodes(body, end, nodes)
	return nil
}

// trailingSectionBreak returns the document-final section break block ordered
// after the given position, or nil.
func trailingSectionBreak(mapping *docx.TemplateMapping, after int) *docx.Block {
	var last *docx.Block
	for _, b := range mapping.Blocks {
		if b.Order > after && b.NodeKind == docx.NodeSectionBreak {
			last = b
		}
	}
	return last
}

// insertNodes places the generated nodes before the given block, or appends
// them when the block is nil.
func (a *Assembler) insertNodes(body *etree.Element, before *docx.Block, nodes []*etree.Element) {
	idx := len(body.Child)
	if before != nil {
		if i := docx.TokenIndex(body, before.Element()); i >= 0 {
			idx = i
		}
	}
	for i, n := range nodes {
		body.InsertChildAt(idx+i, n)
	}
}

// rebuildReferences replaces the entries of the back-matter reference list
// with the caller's references, each wrapped in its own deterministic
// bookmark so citation REF fields resolve. Missing reference headings skip
// the rebuild silently.
func (a *Assembler) rebuildReferences(body *etree.Element, mapping *docx.TemplateMapping, protos *docx.PrototypeSet, engine *Engine) {
	var title *docx.Block
	for _, b := range mapping.Blocks {
		if b.Role == docx.RoleBackTitle && a.keywords.IsReferences(b.Text) {
			title = b
			break
		}
	}
	if title == nil {
		a.logger.Debug("no reference-list heading in back matter, skipping reference insertion")
		return
	}

	// Drop the template's existing entries: every paragraph of the reference
	// section that is not the title itself.
	sec := mapping.SectionByID(title.Owner.SectionID)
	if sec != nil {
		for _, id := range sec.BlockIDs {
			b := mapping.BlockByID(id)
			if b == nil || b == title || b.NodeKind != docx.NodeParagraph {
				continue
			}
			body.RemoveChild(b.Element())
		}
	}

	entries := engine.References().Entries()
	idx := docx.TokenIndex(body, title.Element()) + 1
	for i, ref := range entries {
		text, err := a.citation.Format(thesis.Reference{
			ID:          ref.ID,
			Description: StripReferenceNumber(ref.Description),
		})
		if err != nil {
			a.logger.Warn("citation formatting failed", zap.Int("id", ref.ID), zap.Error(err))
			text = fmt.Sprintf("[%d] %s", ref.ID, ref.Description)
		}

		bmID := engine.Allocator().NextID()
		p := NewParagraphBuilder(protos.ReferenceOrNormal(), a.cfg.Reference).
			BookmarkStart(bmID, ReferenceBookmarkName(ref.ID)).
			Text(text).
			BookmarkEnd(bmID).
			Build()
		body.InsertChildAt(idx+i, p)
	}

	a.logger.Info("rebuilt reference list", zap.Int("entries", len(entries)))
}

// ensureUpdateFields forces the recompute-fields-on-open flag so the
// consuming renderer recalculates every synthesized field before display. A
// missing settings part is created.
func ensureUpdateFields(pkg *docx.Package) error {
	if !pkg.Has(docx.SettingsPart) {
		const minimal = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
			`<w:settings xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:updateFields w:val="true"/></w:settings>`
		pkg.AddPart(docx.SettingsPart, []byte(minimal))
		return registerSettingsContentType(pkg)
	}

	doc, err := pkg.Part(docx.SettingsPart)
	if err != nil {
		return err
	}
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("settings part has no root element")
	}

	prefix := docx.Prefix(root)
	uf := docx.Child(root, "updateFields")
	if uf == nil {
		uf = etree.NewElement(prefix + ":updateFields")
		root.InsertChildAt(0, uf)
	}
	uf.RemoveAttr(prefix + ":val")
	uf.RemoveAttr("val")
	uf.CreateAttr(prefix+":val", "true")

	pkg.MarkDirty(docx.SettingsPart)
	return nil
}

// registerSettingsContentType adds the content-type override for a settings
// part that was just created.
func registerSettingsContentType(pkg *docx.Package) error {
	doc, err := pkg.Part(docx.ContentTypesPart)
	if err != nil {
		return err
	}
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("content types part has no root element")
	}

	const partName = "/word/settings.xml"
	for _, o := range docx.Children(root, "Override") {
		if docx.Attr(o, "PartName") == partName {
			return nil
		}
	}
	o := etree.NewElement("Override")
	o.CreateAttr("PartName", partName)
	o.CreateAttr("ContentType", "application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml")
	root.AddChild(o)

	pkg.MarkDirty(docx.ContentTypesPart)
	return nil
}
