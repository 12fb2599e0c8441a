// Package thesis defines the caller-facing data model for document
// generation: the abstract chapter tree, the reference list, and the
// typography configuration applied to generated content.
package thesis

// Chapter is one node of the abstract content tree supplied by the caller.
// Content may contain inline placeholder tokens ([[FIG:...]], [[TBL:...]],
// [[EQ:...]], [[REF:...]], [[SYM:...]]) that the generator expands into
// formatted nodes. The generator treats the tree as read-only.
type Chapter struct {
	ID          string     `yaml:"id" json:"id"`
	Level       int        `yaml:"level" json:"level"` // 1-3
	Title       string     `yaml:"title" json:"title"`
	Content     string     `yaml:"content,omitempty" json:"content,omitempty"`
	Subsections []*Chapter `yaml:"subsections,omitempty" json:"subsections,omitempty"`
}

// Reference is one bibliography entry. ID is the citation number used by
// [[REF:<id>]] tokens; Description is the formatted citation string.
type Reference struct {
	ID          int    `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
}

// RoleStyle is the typography applied to every run generated for one role.
// SizeHalfPoints follows the OOXML convention (24 = 12pt).
type RoleStyle struct {
	EastAsiaFont   string `mapstructure:"east_asia_font" yaml:"east_asia_font"`
	LatinFont      string `mapstructure:"latin_font" yaml:"latin_font"`
	SizeHalfPoints int    `mapstructure:"size_half_points" yaml:"size_half_points"`
}

// StyleConfig carries per-role typography plus the global generation toggles.
type StyleConfig struct {
	Heading1  RoleStyle `mapstructure:"heading1" yaml:"heading1"`
	Heading2  RoleStyle `mapstructure:"heading2" yaml:"heading2"`
	Heading3  RoleStyle `mapstructure:"heading3" yaml:"heading3"`
	Body      RoleStyle `mapstructure:"body" yaml:"body"`
	Caption   RoleStyle `mapstructure:"caption" yaml:"caption"`
	Table     RoleStyle `mapstructure:"table" yaml:"table"`
	Reference RoleStyle `mapstructure:"reference" yaml:"reference"`

	// NumberSeparator sits between the chapter number and the item number in
	// generated captions (e.g. "图 3-1").
	NumberSeparator string `mapstructure:"number_separator" yaml:"number_separator"`

	// StripManualNumbering removes hand-typed numbering prefixes from chapter
	// titles, assuming the heading paragraph style numbers automatically.
	StripManualNumbering bool `mapstructure:"strip_manual_numbering" yaml:"strip_manual_numbering"`
}

// RoleFor returns the typography for a generated-content role name.
// Unknown roles fall back to the body style.
func (c StyleConfig) RoleFor(role string) RoleStyle {
	switch role {
	case "heading1":
		return c.Heading1
	case "heading2":
		return c.Heading2
	case "heading3":
		return c.Heading3
	case "caption":
		return c.Caption
	case "table":
		return c.Table
	case "reference":
		return c.Reference
	default:
		return c.Body
	}
}

// HeadingStyle returns the typography for a heading level, falling back to
// the body style for out-of-range levels.
func (c StyleConfig) HeadingStyle(level int) RoleStyle {
	switch level {
	case 1:
		return c.Heading1
	case 2:
		return c.Heading2
	case 3:
		return c.Heading3
	default:
		return c.Body
	}
}

// DefaultStyleConfig returns the typography used when the caller supplies no
// configuration: SimSun/Times New Roman body text with bold-free defaults
// common in CJK thesis templates.
func DefaultStyleConfig() StyleConfig {
	return StyleConfig{
		Heading1:             RoleStyle{EastAsiaFont: "黑体", LatinFont: "Times New Roman", SizeHalfPoints: 32},
		Heading2:             RoleStyle{EastAsiaFont: "黑体", LatinFont: "Times New Roman", SizeHalfPoints: 28},
		Heading3:             RoleStyle{EastAsiaFont: "黑体", LatinFont: "Times New Roman", SizeHalfPoints: 24},
		Body:                 RoleStyle{EastAsiaFont: "宋体", LatinFont: "Times New Roman", SizeHalfPoints: 24},
		Caption:              RoleStyle{EastAsiaFont: "宋体", LatinFont: "Times New Roman", SizeHalfPoints: 21},
		Table:                RoleStyle{EastAsiaFont: "宋体", LatinFont: "Times New Roman", SizeHalfPoints: 21},
		Reference:            RoleStyle{EastAsiaFont: "宋体", LatinFont: "Times New Roman", SizeHalfPoints: 21},
		NumberSeparator:      "-",
		StripManualNumbering: true,
	}
}

// Walk visits the chapter and every descendant depth-first, top to bottom.
func (ch *Chapter) Walk(visit func(*Chapter)) {
	if ch == nil {
		return
	}
	visit(ch)
	for _, sub := range ch.Subsections {
		sub.Walk(visit)
	}
}

// CountChapters returns the total number of chapters in the tree rooted at
// the given list, including nested subsections.
func CountChapters(chapters []*Chapter) int {
	n := 0
	for _, ch := range chapters {
		ch.Walk(func(*Chapter) { n++ })
	}
	return n
}
