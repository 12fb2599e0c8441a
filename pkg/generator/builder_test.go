package generator

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/docx"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/thesis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const protoParagraphXML = `<w:p xmlns:w="x"><w:pPr><w:jc w:val="both"/><w:sectPr/></w:pPr>` +
	`<w:r><w:rPr><w:rFonts w:eastAsia="仿宋"/><w:sz w:val="28"/><w:b/></w:rPr><w:t>样板文本</w:t></w:r></w:p>`

func parseElement(t *testing.T, s string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(s))
	return doc.Root()
}

func bodyStyle() thesis.RoleStyle {
	return thesis.RoleStyle{EastAsiaFont: "宋体", LatinFont: "Times New Roman", SizeHalfPoints: 24}
}

func TestParagraphBuilderText(t *testing.T) {
	proto := parseElement(t, protoParagraphXML)
	p := NewParagraphBuilder(proto, bodyStyle()).Text("新内容").Build()

	t.Run("克隆段落属性并剔除分节符", func(t *testing.T) {
		pPr := docx.Child(p, "pPr")
		require.NotNil(t, pPr)
		assert.Equal(t, "both", docx.Attr(docx.Child(pPr, "jc"), "val"))
		assert.Nil(t, docx.Child(pPr, "sectPr"))
		// 原型自身保持不变
		assert.NotNil(t, docx.Child(docx.Child(proto, "pPr"), "sectPr"))
	})

	t.Run("注入配置字体覆盖原型", func(t *testing.T) {
		r := docx.Child(p, "r")
		require.NotNil(t, r)
		rPr := docx.Child(r, "rPr")
		require.NotNil(t, rPr)

		fonts := docx.Child(rPr, "rFonts")
		require.NotNil(t, fonts)
		assert.Equal(t, "宋体", docx.Attr(fonts, "eastAsia"))
		assert.Equal(t, "Times New Roman", docx.Attr(fonts, "ascii"))
		assert.Equal(t, "24", docx.Attr(docx.Child(rPr, "sz"), "val"))
		assert.Equal(t, "24", docx.Attr(docx.Child(rPr, "szCs"), "val"))
		// 原型的加粗标记保留
		assert.NotNil(t, docx.Child(rPr, "b"))
	})

	assert.Equal(t, "新内容", docx.Text(p))
}

func TestParagraphBuilderField(t *testing.T) {
	p := NewParagraphBuilder(nil, bodyStyle()).
		Field(` SEQ 图 \* ARABIC \s 1 `, "1").
		Build()

	runs := docx.Children(p, "r")
	require.Len(t, runs, 5)

	// 五连 run：begin、指令、separate、缓存值、end
	assert.Equal(t, "begin", docx.Attr(docx.Child(runs[0], "fldChar"), "fldCharType"))
	instr := docx.Child(runs[1], "instrText")
	require.NotNil(t, instr)
	assert.Equal(t, ` SEQ 图 \* ARABIC \s 1 `, instr.Text())
	assert.Equal(t, "preserve", instr.SelectAttrValue("xml:space", ""))
	assert.Equal(t, "separate", docx.Attr(docx.Child(runs[2], "fldChar"), "fldCharType"))
	assert.Equal(t, "1", docx.Text(runs[3]))
	assert.Equal(t, "end", docx.Attr(docx.Child(runs[4], "fldChar"), "fldCharType"))
}

func TestParagraphBuilderStyleAndAlign(t *testing.T) {
	proto := parseElement(t, protoParagraphXML)
	p := NewParagraphBuilder(proto, bodyStyle()).
		StyleID("1").
		Center().
		Text("标题").
		Build()

	pPr := docx.Child(p, "pPr")
	require.NotNil(t, pPr)
	children := pPr.ChildElements()
	require.NotEmpty(t, children)
	// pStyle 必须排在段落属性最前面
	assert.Equal(t, "pStyle", children[0].Tag)
	assert.Equal(t, "1", docx.Attr(children[0], "val"))
	// 已有的 jc 被覆盖而不是重复
	assert.Len(t, docx.Children(pPr, "jc"), 1)
	assert.Equal(t, "center", docx.Attr(docx.Child(pPr, "jc"), "val"))
}

func TestParagraphBuilderBookmarks(t *testing.T) {
	p := NewParagraphBuilder(nil, thesis.RoleStyle{}).
		BookmarkStart(4, "_Ref4").
		Text("题注").
		BookmarkEnd(4).
		Build()

	start := docx.Child(p, "bookmarkStart")
	require.NotNil(t, start)
	assert.Equal(t, "4", docx.Attr(start, "id"))
	assert.Equal(t, "_Ref4", docx.Attr(start, "name"))
	end := docx.Child(p, "bookmarkEnd")
	require.NotNil(t, end)
	assert.Equal(t, "4", docx.Attr(end, "id"))
}

func TestParagraphBuilderPreservesSpace(t *testing.T) {
	p := NewParagraphBuilder(nil, thesis.RoleStyle{}).Text(" 前后留白 ").Build()
	tEl := docx.Child(docx.Child(p, "r"), "t")
	require.NotNil(t, tEl)
	assert.Equal(t, "preserve", tEl.SelectAttrValue("xml:space", ""))
}

func TestParagraphBuilderEmpty(t *testing.T) {
	b := NewParagraphBuilder(nil, thesis.RoleStyle{})
	assert.True(t, b.Empty())
	b.Text("x")
	assert.False(t, b.Empty())
}
