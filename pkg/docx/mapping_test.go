package docx

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractBody(t *testing.T, body string) *TemplateMapping {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(testutils.DocumentXML(body)))
	el := Child(doc.Root(), "body")
	require.NotNil(t, el)

	ex := NewExtractor(DefaultKeywords(), DefaultHeadingStyles(), nil)
	m, err := ex.Extract(el)
	require.NoError(t, err)
	return m
}

func TestExtractThesisTemplate(t *testing.T) {
	m := extractBody(t, testutils.TemplateBody)

	t.Run("块顺序严格递增", func(t *testing.T) {
		require.Len(t, m.Blocks, 21)
		for i, b := range m.Blocks {
			assert.Equal(t, i+1, b.Order)
		}
	})

	t.Run("区段划分", func(t *testing.T) {
		// root + 摘要/目录/图目录/正文/致谢/参考文献
		require.Len(t, m.Sections, 7)
		kinds := []SectionKind{}
		for _, s := range m.Sections {
			kinds = append(kinds, s.Kind)
		}
		assert.Equal(t, []SectionKind{
			SectionRoot, SectionFront, SectionTOC, SectionListOfFigures,
			SectionBody, SectionBack, SectionBack,
		}, kinds)

		// 除最后一段外区段范围连续闭合
		for i := 1; i < len(m.Sections)-1; i++ {
			sec := m.Sections[i]
			next := m.Sections[i+1]
			assert.Equal(t, sec.EndOrder+1, next.StartOrder, "section %s", sec.ID)
		}
		assert.Equal(t, -1, m.Sections[len(m.Sections)-1].EndOrder)
	})

	t.Run("正文区段", func(t *testing.T) {
		body := m.BodySections()
		require.Len(t, body, 1)
		assert.Equal(t, "第1章 占位", body[0].Title)
		assert.Equal(t, 1, body[0].Level)
	})

	t.Run("角色分类", func(t *testing.T) {
		roles := []Role{}
		for _, b := range m.Blocks {
			roles = append(roles, b.Role)
		}
		assert.Equal(t, []Role{
			RoleFrontTitle, RoleParagraph, // 摘要
			RoleTOCTitle, RoleTOCTitle, RoleTOCItem, RoleTOCItem, RoleTOCItem, // 目录
			RoleTOCTitle, RoleTOCTitle, RoleTOCItem, RoleTOCItem, // 图目录
			RoleHeading, RoleParagraph, RoleHeading, RoleCaptionFigure, RoleTable, // 正文
			RoleBackTitle, RoleParagraph, // 致谢
			RoleBackTitle, RoleParagraph, // 参考文献
			RoleOther, // sectPr
		}, roles)
	})

	t.Run("域作用域内段落不可视为正文", func(t *testing.T) {
		// 目录里的条目带有章节样标题文本，但归类为目录条目
		b := m.BlockByID("b5")
		require.NotNil(t, b)
		assert.Equal(t, RoleTOCItem, b.Role)
		assert.Equal(t, "第1章 占位 1", b.Text)
		assert.Equal(t, 0, b.HeadingLevel)
	})

	t.Run("标题栈归属", func(t *testing.T) {
		caption := m.Blocks[14]
		assert.Equal(t, RoleCaptionFigure, caption.Role)
		assert.Equal(t, "第1章 占位", caption.Owner.H1)
		assert.Equal(t, "1.1 占位小节", caption.Owner.H2)
		assert.Equal(t, "", caption.Owner.H3)

		tbl := m.Blocks[15]
		assert.Equal(t, NodeTable, tbl.NodeKind)
		assert.Equal(t, caption.Owner.SectionID, tbl.Owner.SectionID)
	})

	t.Run("字段指令与书签快照", func(t *testing.T) {
		toc := m.BlockByID("b4")
		require.NotNil(t, toc)
		require.Len(t, toc.FieldInstructions, 1)
		assert.Contains(t, toc.FieldInstructions[0], "TOC")
	})
}

func TestExtractHeadingStackRefresh(t *testing.T) {
	// 1 级 → 3 级 → 2 级：2 级标题必须清掉过期的 3 级条目
	body := `<w:p><w:pPr><w:pStyle w:val="1"/></w:pPr><w:r><w:t>第1章 总论</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="3"/></w:pPr><w:r><w:t>1.0.1 细节</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="2"/></w:pPr><w:r><w:t>1.1 方法</w:t></w:r></w:p>
<w:p><w:r><w:t>正文段落。</w:t></w:r></w:p>`
	m := extractBody(t, body)

	require.Len(t, m.Blocks, 4)
	para := m.Blocks[3]
	assert.Equal(t, RoleParagraph, para.Role)
	assert.Equal(t, "第1章 总论", para.Owner.H1)
	assert.Equal(t, "1.1 方法", para.Owner.H2)
	assert.Equal(t, "", para.Owner.H3)
}

func TestExtractFrontKeywordsIgnoredAfterBodyOpens(t *testing.T) {
	// 正文开始后出现的"摘要"只是普通段落；"参考文献"仍然收束正文
	body := `<w:p><w:pPr><w:pStyle w:val="1"/></w:pPr><w:r><w:t>第1章 绪论</w:t></w:r></w:p>
<w:p><w:r><w:t>摘要</w:t></w:r></w:p>
<w:p><w:r><w:t>参考文献</w:t></w:r></w:p>`
	m := extractBody(t, body)

	require.Len(t, m.Blocks, 3)
	assert.Equal(t, RoleHeading, m.Blocks[0].Role)
	assert.Equal(t, RoleParagraph, m.Blocks[1].Role)
	assert.Equal(t, RoleBackTitle, m.Blocks[2].Role)
	require.Len(t, m.BodySections(), 1)
}

func TestExtractMultipleChapters(t *testing.T) {
	body := `<w:p><w:pPr><w:pStyle w:val="1"/></w:pPr><w:r><w:t>第1章 绪论</w:t></w:r></w:p>
<w:p><w:r><w:t>一。</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="1"/></w:pPr><w:r><w:t>第2章 方法</w:t></w:r></w:p>
<w:p><w:r><w:t>二。</w:t></w:r></w:p>`
	m := extractBody(t, body)

	sections := m.BodySections()
	require.Len(t, sections, 2)
	assert.Equal(t, "第1章 绪论", sections[0].Title)
	assert.Equal(t, "第2章 方法", sections[1].Title)
	// 前一章在后一章标题前收口
	assert.Equal(t, 2, sections[0].EndOrder)
	assert.Equal(t, 3, sections[1].StartOrder)
	// 第 2 章正文段落的标题栈已经换代
	assert.Equal(t, "第2章 方法", m.Blocks[3].Owner.H1)
}

func TestExtractHeadingAfterBackMatterStaysPut(t *testing.T) {
	// 后置部分开始之后的一级样式段落不再当作正文章节标题
	body := `<w:p><w:pPr><w:pStyle w:val="1"/></w:pPr><w:r><w:t>第1章 绪论</w:t></w:r></w:p>
<w:p><w:r><w:t>致谢</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="1"/></w:pPr><w:r><w:t>第2章 孤立章节</w:t></w:r></w:p>`
	m := extractBody(t, body)

	require.Len(t, m.Blocks, 3)
	assert.Equal(t, RoleHeading, m.Blocks[0].Role)
	assert.Equal(t, RoleBackTitle, m.Blocks[1].Role)
	assert.Equal(t, RoleParagraph, m.Blocks[2].Role)
	require.Len(t, m.BodySections(), 1)
}

func TestClassifyFieldInstruction(t *testing.T) {
	tests := []struct {
		name  string
		instr string
		want  fieldScope
	}{
		{"目录", ` TOC \o "1-3" \h \z \u `, fieldTOC},
		{"图目录", ` TOC \h \z \c "图" `, fieldListOfFigures},
		{"表目录", ` TOC \h \z \c "表" `, fieldListOfTables},
		{"英文图目录", ` TOC \h \z \c "Figure" `, fieldListOfFigures},
		{"普通域", ` SEQ 图 \* ARABIC `, fieldGeneric},
		{"页码域", ` PAGE `, fieldGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyFieldInstruction(tt.instr))
		})
	}
}
