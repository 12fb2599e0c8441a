package chapters

import (
	"fmt"
	"os"
	"strings"

	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/thesis"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// LoadMarkdown reads a chapter tree from a Markdown file. ATX headings of
// depth 1-3 open chapters at that level; everything between headings becomes
// the chapter content, with placeholder tokens passed through verbatim. A
// YAML front-matter block may carry a `references` list whose entries are
// numbered in order.
func LoadMarkdown(path string) (*Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))

	doc := &Document{References: metaReferences(meta.Get(ctx))}

	// stack[l] is the open chapter at level l+1.
	var stack [3]*thesis.Chapter

	appendContent := func(s string) error {
		s = strings.TrimRight(s, "\n")
		if s == "" {
			return nil
		}
		current := deepestOpen(&stack)
		if current == nil {
			return fmt.Errorf("%s: content before the first heading", path)
		}
		if current.Content != "" {
			current.Content += "\n"
		}
		current.Content += s
		return nil
	}

	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		if h, ok := node.(*ast.Heading); ok {
			level := h.Level
			if level > 3 {
				level = 3
			}
			ch := &thesis.Chapter{
				Level: level,
				Title: string(h.Text(src)),
			}
			attach(doc, &stack, ch)
			continue
		}
		if err := appendContent(rawText(node, src)); err != nil {
			return nil, err
		}
	}

	normalize(doc.Chapters, 1, "c")
	return doc, nil
}

// attach links a new chapter under the nearest open ancestor and updates the
// open-chapter stack.
func attach(doc *Document, stack *[3]*thesis.Chapter, ch *thesis.Chapter) {
	switch ch.Level {
	case 1:
		doc.Chapters = append(doc.Chapters, ch)
	default:
		parent := stack[ch.Level-2]
		if parent == nil {
			// A heading that skips levels still belongs under the
			// deepest open ancestor.
			parent = deepestOpen(stack)
		}
		if parent == nil {
			// No open ancestor at all: promoted rather than lost.
			ch.Level = 1
			doc.Chapters = append(doc.Chapters, ch)
		} else {
			if ch.Level > parent.Level+1 {
				ch.Level = parent.Level + 1
			}
			parent.Subsections = append(parent.Subsections, ch)
		}
	}
	stack[ch.Level-1] = ch
	for l := ch.Level; l < 3; l++ {
		stack[l] = nil
	}
}

func deepestOpen(stack *[3]*thesis.Chapter) *thesis.Chapter {
	for i := 2; i >= 0; i-- {
		if stack[i] != nil {
			return stack[i]
		}
	}
	return nil
}

// rawText reassembles the source lines of a block node, so placeholder
// tokens and line structure survive untouched.
func rawText(node ast.Node, src []byte) string {
	var sb strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	if sb.Len() > 0 {
		return sb.String()
	}
	// Container blocks (lists, quotes) keep their own lines on children.
	for ch := node.FirstChild(); ch != nil; ch = ch.NextSibling() {
		if s := rawText(ch, src); s != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(s)
		}
	}
	return sb.String()
}

// metaReferences reads the front-matter `references` list, numbering the
// entries in order of appearance.
func metaReferences(m map[string]interface{}) []thesis.Reference {
	raw, ok := m["references"]
	if !ok {
		return nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	refs := make([]thesis.Reference, 0, len(items))
	for i, item := range items {
		desc, ok := item.(string)
		if !ok {
			continue
		}
		refs = append(refs, thesis.Reference{ID: i + 1, Description: desc})
	}
	return refs
}
