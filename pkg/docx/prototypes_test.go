package docx

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPrototypes(t *testing.T) {
	m := extractBody(t, testutils.TemplateBody)
	ps := FindPrototypes(m, DefaultKeywords(), nil)

	t.Run("标题样板", func(t *testing.T) {
		require.NotNil(t, ps.H1)
		assert.Equal(t, "第1章 占位", NormalizeText(Text(ps.H1)))
		require.NotNil(t, ps.H2)
		assert.Equal(t, "1.1 占位小节", NormalizeText(Text(ps.H2)))
		// 模板没有三级标题，按级别取样板时退回正文样板
		assert.Nil(t, ps.H3)
		assert.Same(t, ps.Normal, ps.Heading(3))
	})

	t.Run("正文样板跳过短段落", func(t *testing.T) {
		require.NotNil(t, ps.Normal)
		// 摘要正文段在前，但正文章节里的段落同样合格，取首个合格者
		assert.Equal(t, "本文研究了一个示例问题，摘要正文足够长以作为样板段落。",
			NormalizeText(Text(ps.Normal)))
	})

	t.Run("题注与表格样板", func(t *testing.T) {
		require.NotNil(t, ps.Caption)
		assert.Equal(t, "Caption", StyleID(ps.Caption))
		require.NotNil(t, ps.Table)
		assert.Equal(t, "tbl", ps.Table.Tag)
	})

	t.Run("参考文献条目样板", func(t *testing.T) {
		require.NotNil(t, ps.ReferenceEntry)
		assert.Equal(t, "[1] 旧模板文献条目", NormalizeText(Text(ps.ReferenceEntry)))
	})
}

func TestFindPrototypesFallbacks(t *testing.T) {
	// 只有短占位段落的模板：正文样板退回首个无样式段落
	body := `<w:p><w:pPr><w:pStyle w:val="X"/></w:pPr><w:r><w:t>短</w:t></w:r></w:p>
<w:p><w:r><w:t>短文</w:t></w:r></w:p>`
	m := extractBody(t, body)
	ps := FindPrototypes(m, DefaultKeywords(), nil)

	require.NotNil(t, ps.Normal)
	assert.Equal(t, "短文", NormalizeText(Text(ps.Normal)))
	assert.Nil(t, ps.Table)
	assert.Same(t, ps.Normal, ps.CaptionOrNormal())
	assert.Same(t, ps.Normal, ps.ReferenceOrNormal())
}

func TestFindPrototypesCustomReferenceKeyword(t *testing.T) {
	// 文献列表标题按关键词表识别，不依赖内置写法
	kw := DefaultKeywords()
	kw.References = []string{"文献目录"}

	body := `<w:p><w:r><w:t>文献目录</w:t></w:r></w:p>
<w:p><w:r><w:t>[1] 自定义标题下的文献条目</w:t></w:r></w:p>`
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(testutils.DocumentXML(body)))
	el := Child(doc.Root(), "body")
	require.NotNil(t, el)

	m, err := NewExtractor(kw, DefaultHeadingStyles(), nil).Extract(el)
	require.NoError(t, err)

	ps := FindPrototypes(m, kw, nil)
	require.NotNil(t, ps.ReferenceEntry)
	assert.Equal(t, "[1] 自定义标题下的文献条目", NormalizeText(Text(ps.ReferenceEntry)))
}
