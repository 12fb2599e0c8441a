package generator

import (
	"regexp"
	"strings"
)

// headingNumberPrefix matches hand-typed chapter numbering at the head of a
// title: "第1章", "第十二章", "3.", "2.4.1", "Chapter 5", with an optional
// trailing delimiter. Templates whose heading styles number automatically
// would otherwise show the number twice.
var headingNumberPrefix = regexp.MustCompile(
	`^\s*(?:第\s*[0-9０-９一二三四五六七八九十百零两]+\s*[章节篇部]|[Cc]hapter\s+\d+|\d+(?:[.．]\d+)*[.．]?)\s*[、．.:：]?\s*`)

// StripHeadingNumber removes a manual numbering prefix from a chapter
// title. A title that is nothing but numbering is returned unchanged, since
// stripping it would leave the heading empty.
func StripHeadingNumber(title string) string {
	stripped := headingNumberPrefix.ReplaceAllString(title, "")
	if strings.TrimSpace(stripped) == "" {
		return strings.TrimSpace(title)
	}
	return strings.TrimSpace(stripped)
}
