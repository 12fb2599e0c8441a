package docx

import (
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/width"
)

// Element and attribute lookup in this package matches on local names only.
// Templates produced by different editors bind the wordprocessingml
// namespace to different prefixes (w, ns0, ...), so prefix-qualified paths
// would silently miss nodes.

// Child returns the first direct child element with the given local name,
// regardless of its namespace prefix.
func Child(el *etree.Element, local string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, ch := range el.ChildElements() {
		if ch.Tag == local {
			return ch
		}
	}
	return nil
}

// Children returns all direct child elements with the given local name.
func Children(el *etree.Element, local string) []*etree.Element {
	if el == nil {
		return nil
	}
	var out []*etree.Element
	for _, ch := range el.ChildElements() {
		if ch.Tag == local {
			out = append(out, ch)
		}
	}
	return out
}

// Attr returns the value of the first attribute with the given local key,
// regardless of its namespace prefix. Missing attributes yield "".
func Attr(el *etree.Element, local string) string {
	if el == nil {
		return ""
	}
	for _, a := range el.Attr {
		if a.Key == local {
			return a.Value
		}
	}
	return ""
}

// Descendants returns every descendant element with the given local name in
// document order.
func Descendants(el *etree.Element, local string) []*etree.Element {
	if el == nil {
		return nil
	}
	var out []*etree.Element
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, ch := range e.ChildElements() {
			if ch.Tag == local {
				out = append(out, ch)
			}
			walk(ch)
		}
	}
	walk(el)
	return out
}

// HasDescendant reports whether any descendant element carries the given
// local name.
func HasDescendant(el *etree.Element, local string) bool {
	if el == nil {
		return false
	}
	for _, ch := range el.ChildElements() {
		if ch.Tag == local || HasDescendant(ch, local) {
			return true
		}
	}
	return false
}

// Text concatenates the content of every descendant t element, which is how
// wordprocessingml stores visible paragraph text.
func Text(el *etree.Element) string {
	var sb strings.Builder
	for _, t := range Descendants(el, "t") {
		sb.WriteString(t.Text())
	}
	return sb.String()
}

// NormalizeText collapses runs of whitespace to single spaces and folds
// full-width spaces and punctuation-width variants to their narrow forms, so
// keyword matching works across CJK and Latin template conventions.
func NormalizeText(s string) string {
	s = width.Narrow.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// StyleID returns the paragraph style identifier (pPr/pStyle val), or "".
func StyleID(p *etree.Element) string {
	return Attr(Child(Child(p, "pPr"), "pStyle"), "val")
}

// FieldInstructions returns the trimmed text of every instrText descendant
// in document order.
func FieldInstructions(el *etree.Element) []string {
	var out []string
	for _, instr := range Descendants(el, "instrText") {
		if s := strings.TrimSpace(instr.Text()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// BookmarkNames returns the name of every bookmarkStart descendant.
func BookmarkNames(el *etree.Element) []string {
	var out []string
	for _, bm := range Descendants(el, "bookmarkStart") {
		if name := Attr(bm, "name"); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Prefix returns the namespace prefix to use when creating siblings of the
// given element ("w" in documents written by Word).
func Prefix(el *etree.Element) string {
	if el == nil {
		return "w"
	}
	if el.Space != "" {
		return el.Space
	}
	return "w"
}

// Clone deep-copies an element, detached from any parent.
func Clone(el *etree.Element) *etree.Element {
	if el == nil {
		return nil
	}
	return el.Copy()
}

// TokenIndex returns the position of the given child element within its
// parent's token list, or -1 when the element is not a child of parent.
func TokenIndex(parent, el *etree.Element) int {
	for i, tok := range parent.Child {
		if tok == etree.Token(el) {
			return i
		}
	}
	return -1
}
