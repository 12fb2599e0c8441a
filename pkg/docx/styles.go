package docx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// HeadingStyles maps the three heading outline levels to the paragraph style
// IDs the template uses for them.
type HeadingStyles struct {
	Level1 string
	Level2 string
	Level3 string

	// Level1Name is the display name of the level-1 style, used as the
	// STYLEREF target in generated caption fields. Word accepts the numeric
	// shorthand "1" for built-in heading styles.
	Level1Name string
}

// DefaultHeadingStyles are used when the styles part declares no usable
// heading styles. Numeric style IDs match the built-in heading styles of
// CJK-localized templates.
func DefaultHeadingStyles() HeadingStyles {
	return HeadingStyles{Level1: "1", Level2: "2", Level3: "3", Level1Name: "1"}
}

// Level returns the outline level (1-3) for a paragraph style ID, or 0 when
// the style is not a resolved heading style.
func (h HeadingStyles) Level(styleID string) int {
	switch {
	case styleID == "":
		return 0
	case styleID == h.Level1:
		return 1
	case styleID == h.Level2:
		return 2
	case styleID == h.Level3:
		return 3
	}
	return 0
}

// ForLevel returns the style ID for an outline level, or "" if out of range.
func (h HeadingStyles) ForLevel(level int) string {
	switch level {
	case 1:
		return h.Level1
	case 2:
		return h.Level2
	case 3:
		return h.Level3
	}
	return ""
}

// ResolveHeadingStyles scans the styles part once and maps outline levels
// 1-3 to concrete paragraph style IDs. A style qualifies through its
// declared outline level (pPr/outlineLvl, zero-based) or through a
// recognizable style name ("heading 1", "标题 1"). Missing levels keep the
// defaults.
func ResolveHeadingStyles(pkg *Package, logger *zap.Logger) HeadingStyles {
	if logger == nil {
		logger = zap.NewNop()
	}
	resolved := DefaultHeadingStyles()

	doc, err := pkg.Part(StylesPart)
	if err != nil {
		logger.Warn("styles part unavailable, using default heading styles", zap.Error(err))
		return resolved
	}
	root := doc.Root()
	if root == nil {
		return resolved
	}

	found := map[int]string{}
	names := map[int]string{}
	for _, style := range Children(root, "style") {
		if Attr(style, "type") != "paragraph" {
			continue
		}
		styleID := Attr(style, "styleId")
		if styleID == "" {
			continue
		}

		level := headingLevelOf(style)
		if level < 1 || level > 3 {
			continue
		}
		// First declaration per level wins.
		if _, ok := found[level]; !ok {
			found[level] = styleID
			names[level] = Attr(Child(style, "name"), "val")
		}
	}

	if id, ok := found[1]; ok {
		resolved.Level1 = id
	}
	if id, ok := found[2]; ok {
		resolved.Level2 = id
	}
	if id, ok := found[3]; ok {
		resolved.Level3 = id
	}
	if name, ok := names[1]; ok && name != "" {
		resolved.Level1Name = name
	}

	logger.Debug("resolved heading styles",
		zap.String("level1", resolved.Level1),
		zap.String("level2", resolved.Level2),
		zap.String("level3", resolved.Level3))
	return resolved
}

// headingLevelOf inspects one style definition and returns its heading
// outline level (1-based), or 0 when the style is not a heading.
func headingLevelOf(style *etree.Element) int {
	// Declared outline level is authoritative; it is zero-based in the XML.
	if lvl := Attr(Child(Child(style, "pPr"), "outlineLvl"), "val"); lvl != "" {
		if n, err := strconv.Atoi(lvl); err == nil {
			return n + 1
		}
	}

	name := strings.ToLower(NormalizeText(Attr(Child(style, "name"), "val")))
	for _, prefix := range []string{"heading ", "heading", "标题 ", "标题"} {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil {
				return n
			}
		}
	}
	return 0
}
