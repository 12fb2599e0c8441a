package generator

import (
	"strings"
	"testing"

	"github.com/darksider-9/Master-Thesis-Assistant-sub000/internal/testutils"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/docx"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/thesis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssembler(t *testing.T) *Assembler {
	t.Helper()
	a, err := NewAssembler(docx.DefaultKeywords(), thesis.DefaultStyleConfig(), "", nil)
	require.NoError(t, err)
	return a
}

func TestAssembleRoundTrip(t *testing.T) {
	pkg, err := docx.OpenBytes(testutils.ThesisTemplate(), nil)
	require.NoError(t, err)

	chapters := []*thesis.Chapter{{
		Level: 1, Title: "第1章 绪论",
		Content: "本章介绍研究背景。\n[[FIG:系统架构图]]\n见文献 [[REF:1]] 的结论。",
	}}
	refs := []thesis.Reference{{ID: 1, Description: "[1] A. Author. Example Paper."}}

	require.NoError(t, newTestAssembler(t).Assemble(pkg, chapters, refs))

	// 序列化后重开，确保断言的是落盘形态
	out, err := pkg.Bytes()
	require.NoError(t, err)
	reopened, err := docx.OpenBytes(out, nil)
	require.NoError(t, err)
	body, err := reopened.Body()
	require.NoError(t, err)

	styles := docx.ResolveHeadingStyles(reopened, nil)
	m, err := docx.NewExtractor(docx.DefaultKeywords(), styles, nil).Extract(body)
	require.NoError(t, err)

	t.Run("占位章节被替换", func(t *testing.T) {
		var headings []*docx.Block
		for _, b := range m.Blocks {
			if b.Role == docx.RoleHeading && b.HeadingLevel == 1 {
				headings = append(headings, b)
			}
		}
		require.Len(t, headings, 1)
		// 手写章号被剥离，编号交还给样式
		assert.Equal(t, "绪论", headings[0].Text)
		assert.Equal(t, "1", headings[0].StyleID)

		full := docx.Text(body)
		assert.NotContains(t, full, "占位小节")
		assert.NotContains(t, full, "这是一个足够长的正文段落")
	})

	t.Run("正文区段唯一", func(t *testing.T) {
		sections := m.BodySections()
		require.Len(t, sections, 1)
		assert.Equal(t, "绪论", sections[0].Title)
	})

	t.Run("插图展开为占位段加题注", func(t *testing.T) {
		full := docx.Text(body)
		assert.Contains(t, full, "此处插入图片：系统架构图")

		var caption *docx.Block
		for _, b := range m.Blocks {
			if b.Role == docx.RoleCaptionFigure && strings.Contains(b.Text, "系统架构图") {
				caption = b
			}
		}
		require.NotNil(t, caption)
		joined := strings.Join(caption.FieldInstructions, " | ")
		assert.Contains(t, joined, `STYLEREF "heading 1" \s`)
		assert.Contains(t, joined, `SEQ 图 \* ARABIC \s 1`)
		assert.NotEmpty(t, caption.BookmarkNames)
	})

	t.Run("行内引用指向文献书签", func(t *testing.T) {
		var cite *docx.Block
		for _, b := range m.Blocks {
			if strings.Contains(b.Text, "见文献") {
				cite = b
			}
		}
		require.NotNil(t, cite)
		assert.Equal(t, "见文献 [1] 的结论。", cite.Text)
		require.Len(t, cite.FieldInstructions, 1)
		assert.Equal(t, `REF _RefNum_1 \r \h`, cite.FieldInstructions[0])
	})

	t.Run("参考文献重建", func(t *testing.T) {
		full := docx.Text(body)
		assert.NotContains(t, full, "旧模板文献条目")
		assert.Contains(t, full, "[1] A. Author. Example Paper.")

		var entry *docx.Block
		for _, b := range m.Blocks {
			if strings.Contains(b.Text, "Example Paper") {
				entry = b
			}
		}
		require.NotNil(t, entry)
		assert.Equal(t, []string{"_RefNum_1"}, entry.BookmarkNames)
	})

	t.Run("前后置区段保留", func(t *testing.T) {
		full := docx.Text(body)
		assert.Contains(t, full, "摘要")
		assert.Contains(t, full, "致谢")
		// 文档末尾的分节符（含页眉引用）不受拼接影响
		last := m.Blocks[len(m.Blocks)-1]
		assert.Equal(t, docx.NodeSectionBreak, last.NodeKind)
	})

	t.Run("强制打开时重算域", func(t *testing.T) {
		require.True(t, reopened.Has(docx.SettingsPart))
		doc, err := reopened.Part(docx.SettingsPart)
		require.NoError(t, err)
		uf := docx.Child(doc.Root(), "updateFields")
		require.NotNil(t, uf)
		assert.Equal(t, "true", docx.Attr(uf, "val"))

		// 新建的部件要有内容类型声明
		ct, err := reopened.Part(docx.ContentTypesPart)
		require.NoError(t, err)
		found := false
		for _, o := range docx.Children(ct.Root(), "Override") {
			if docx.Attr(o, "PartName") == "/word/settings.xml" {
				found = true
			}
		}
		assert.True(t, found)
	})
}

func TestAssembleWithoutBackMatter(t *testing.T) {
	body := `<w:p><w:pPr><w:pStyle w:val="1"/></w:pPr><w:r><w:t>第1章 占位</w:t></w:r></w:p>
<w:p><w:r><w:t>这是一个足够长的占位正文段落。</w:t></w:r></w:p>
<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr>`
	pkg, err := docx.OpenBytes(testutils.MinimalDocx(body), nil)
	require.NoError(t, err)

	chapters := []*thesis.Chapter{{Level: 1, Title: "第1章 新章", Content: "新的内容。"}}
	require.NoError(t, newTestAssembler(t).Assemble(pkg, chapters, nil))

	b, err := pkg.Body()
	require.NoError(t, err)
	full := docx.Text(b)
	assert.Contains(t, full, "新章")
	assert.Contains(t, full, "新的内容。")
	assert.NotContains(t, full, "占位正文段落")

	// 生成内容插在末尾分节符之前
	children := b.ChildElements()
	require.NotEmpty(t, children)
	assert.Equal(t, "sectPr", children[len(children)-1].Tag)
}

func TestAssembleWithoutPlaceholderChapter(t *testing.T) {
	// 模板没有占位章节：生成内容插在后置区段之前，不删任何块
	body := `<w:p><w:r><w:t>摘要</w:t></w:r></w:p>
<w:p><w:r><w:t>摘要正文足够长以作为样板段落使用。</w:t></w:r></w:p>
<w:p><w:r><w:t>致谢</w:t></w:r></w:p>
<w:p><w:r><w:t>感谢大家。</w:t></w:r></w:p>`
	pkg, err := docx.OpenBytes(testutils.MinimalDocx(body), nil)
	require.NoError(t, err)

	chapters := []*thesis.Chapter{{Level: 1, Title: "第1章 新章", Content: "内容。"}}
	require.NoError(t, newTestAssembler(t).Assemble(pkg, chapters, nil))

	b, err := pkg.Body()
	require.NoError(t, err)
	full := docx.Text(b)
	assert.Contains(t, full, "摘要正文")
	assert.Contains(t, full, "新章")

	// 新章出现在致谢之前
	assert.Less(t, strings.Index(full, "新章"), strings.Index(full, "致谢"))
}

func TestAssembleWithoutPlaceholderOrBackMatter(t *testing.T) {
	// 既没有占位章节也没有后置区段：生成内容仍插在末尾分节符之前
	body := `<w:p><w:r><w:t>摘要</w:t></w:r></w:p>
<w:p><w:r><w:t>摘要正文足够长以作为样板段落使用。</w:t></w:r></w:p>
<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr>`
	pkg, err := docx.OpenBytes(testutils.MinimalDocx(body), nil)
	require.NoError(t, err)

	chapters := []*thesis.Chapter{{Level: 1, Title: "第1章 新章", Content: "内容。"}}
	require.NoError(t, newTestAssembler(t).Assemble(pkg, chapters, nil))

	b, err := pkg.Body()
	require.NoError(t, err)
	assert.Contains(t, docx.Text(b), "新章")

	// sectPr 必须始终是 body 的最后一个子节点
	children := b.ChildElements()
	require.NotEmpty(t, children)
	assert.Equal(t, "sectPr", children[len(children)-1].Tag)
}

func TestEnsureUpdateFieldsExistingSettings(t *testing.T) {
	pkg, err := docx.OpenBytes(testutils.BuildDocx(map[string]string{
		"[Content_Types].xml": `<Types xmlns="x"/>`,
		"word/document.xml":   testutils.DocumentXML(""),
		"word/settings.xml":   `<w:settings xmlns:w="x"><w:zoom w:percent="100"/><w:updateFields w:val="false"/></w:settings>`,
	}), nil)
	require.NoError(t, err)

	require.NoError(t, ensureUpdateFields(pkg))

	doc, err := pkg.Part(docx.SettingsPart)
	require.NoError(t, err)
	uf := docx.Child(doc.Root(), "updateFields")
	require.NotNil(t, uf)
	assert.Equal(t, "true", docx.Attr(uf, "val"))
	// 其他设置保持不动
	assert.NotNil(t, docx.Child(doc.Root(), "zoom"))
}

func TestInspectHeaders(t *testing.T) {
	pkg, err := docx.OpenBytes(testutils.ThesisTemplate(), nil)
	require.NoError(t, err)

	fields, err := InspectHeaders(pkg, nil)
	require.NoError(t, err)
	require.Len(t, fields, 1)

	f := fields[0]
	assert.Equal(t, 1, f.DocSection)
	assert.Equal(t, "default", f.HeaderType)
	assert.Equal(t, "word/header1.xml", f.Part)
	assert.Contains(t, f.Instruction, "STYLEREF")
	assert.Equal(t, "heading 1", f.StyleRef)
}

func TestInspectHeadersAbsoluteTarget(t *testing.T) {
	// 关系目标以 / 开头时相对于包根，不能再拼上 word/ 前缀
	const wNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	pkg, err := docx.OpenBytes(testutils.BuildDocx(map[string]string{
		"[Content_Types].xml": `<Types xmlns="x"/>`,
		"word/document.xml": testutils.DocumentXML(
			`<w:sectPr><w:headerReference w:type="default" r:id="rId5"/></w:sectPr>`),
		"word/_rels/document.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId5" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="/word/header1.xml"/>
</Relationships>`,
		"word/header1.xml": `<w:hdr xmlns:w="` + wNS + `"><w:p><w:r><w:instrText xml:space="preserve"> PAGE </w:instrText></w:r></w:p></w:hdr>`,
	}), nil)
	require.NoError(t, err)

	fields, err := InspectHeaders(pkg, nil)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "word/header1.xml", fields[0].Part)
	assert.Equal(t, "PAGE", fields[0].Instruction)
}

func TestStyleRefTargetOf(t *testing.T) {
	assert.Equal(t, "heading 1", styleRefTargetOf(`STYLEREF "heading 1" \s`))
	assert.Equal(t, "1", styleRefTargetOf(`STYLEREF 1 \s`))
	assert.Equal(t, "", styleRefTargetOf(`STYLEREF \s`))
	assert.Equal(t, "", styleRefTargetOf(`PAGE`))
}
