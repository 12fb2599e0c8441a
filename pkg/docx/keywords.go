package docx

import (
	"strings"
	"unicode/utf8"
)

// Keywords is the table of recognized front/back-matter title strings. It is
// configuration data, not behavior: swapping the table retargets the
// extractor to another locale or template family without code changes.
type Keywords struct {
	Front         []string `mapstructure:"front" yaml:"front"`
	TOC           []string `mapstructure:"toc" yaml:"toc"`
	ListOfTables  []string `mapstructure:"list_of_tables" yaml:"list_of_tables"`
	ListOfFigures []string `mapstructure:"list_of_figures" yaml:"list_of_figures"`
	References    []string `mapstructure:"references" yaml:"references"`
	Back          []string `mapstructure:"back" yaml:"back"`
}

// DefaultKeywords targets the Chinese thesis template family, with the
// English spellings that bilingual templates carry.
func DefaultKeywords() Keywords {
	return Keywords{
		Front: []string{
			"摘要", "中文摘要", "英文摘要", "Abstract", "ABSTRACT",
		},
		TOC: []string{
			"目录", "目 录", "Contents", "Table of Contents",
		},
		ListOfTables: []string{
			"表目录", "表格目录", "List of Tables",
		},
		ListOfFigures: []string{
			"图目录", "插图目录", "List of Figures",
		},
		References: []string{
			"参考文献", "References", "REFERENCES", "Bibliography",
		},
		Back: []string{
			"致谢", "致 谢", "Acknowledgements", "Acknowledgments",
			"附录", "Appendix",
			"作者简介", "作者简历", "About the Author",
			"攻读硕士学位期间", "攻读博士学位期间", "攻读学位期间",
		},
	}
}

// MatchTitle classifies a normalized paragraph text against the keyword
// table. It returns the section kind the title opens and whether a match was
// found. A keyword of four or more runes also matches as a prefix, which
// covers boilerplate titles that append degree or department specifics.
func (k Keywords) MatchTitle(text string) (SectionKind, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	// More specific tables first: "图目录" must not fall through to "目录".
	groups := []struct {
		kind  SectionKind
		words []string
	}{
		{SectionListOfTables, k.ListOfTables},
		{SectionListOfFigures, k.ListOfFigures},
		{SectionTOC, k.TOC},
		{SectionBack, k.References},
		{SectionBack, k.Back},
		{SectionFront, k.Front},
	}
	for _, g := range groups {
		for _, w := range g.words {
			if matchKeyword(text, w) {
				return g.kind, true
			}
		}
	}
	return "", false
}

// IsReferences reports whether the text is the reference-list title.
func (k Keywords) IsReferences(text string) bool {
	text = strings.TrimSpace(text)
	for _, w := range k.References {
		if matchKeyword(text, w) {
			return true
		}
	}
	return false
}

func matchKeyword(text, keyword string) bool {
	if strings.EqualFold(text, keyword) {
		return true
	}
	if utf8.RuneCountInString(keyword) >= 4 && strings.HasPrefix(text, keyword) {
		return true
	}
	return false
}
