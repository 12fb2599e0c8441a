// Package stats 汇总一次生成运行的内容统计并以表格形式展示
package stats

import (
	"io"
	"regexp"

	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/thesis"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Summary 一次生成的内容统计
type Summary struct {
	Chapters   int // 章节总数（含子章节）
	Paragraphs int // 正文段落数（按换行切分的非空行）
	Figures    int // 插图占位符数
	Tables     int // 表格占位符数
	Equations  int // 公式占位符数
	Citations  int // 行内引用数
	References int // 参考文献条目数
}

var (
	figureToken   = regexp.MustCompile(`\[\[FIG:[^\[\]]*\]\]`)
	tableToken    = regexp.MustCompile(`\[\[TBL:[^\[\]]*\]\]`)
	equationToken = regexp.MustCompile(`\[\[EQ:[^\[\]]*\]\]`)
	citationToken = regexp.MustCompile(`\[\[REF:[^\[\]]*\]\]`)
	contentLine   = regexp.MustCompile(`(?m)^.*\S.*$`)
)

// Collect 遍历章节树统计各类内容
func Collect(chapters []*thesis.Chapter, refs []thesis.Reference) Summary {
	s := Summary{References: len(refs)}
	for _, ch := range chapters {
		ch.Walk(func(c *thesis.Chapter) {
			s.Chapters++
			s.Paragraphs += len(contentLine.FindAllString(c.Content, -1))
			s.Figures += len(figureToken.FindAllString(c.Content, -1))
			s.Tables += len(tableToken.FindAllString(c.Content, -1))
			s.Equations += len(equationToken.FindAllString(c.Content, -1))
			s.Citations += len(citationToken.FindAllString(c.Content, -1))
		})
	}
	return s
}

// Render 将统计表格写到指定输出
func (s Summary) Render(w io.Writer) {
	title := color.New(color.FgCyan, color.Bold)
	_, _ = title.Fprintln(w, "生成内容统计")

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"项目", "数量"})
	t.AppendRow(table.Row{"章节", s.Chapters})
	t.AppendRow(table.Row{"正文段落", s.Paragraphs})
	t.AppendRow(table.Row{"插图", s.Figures})
	t.AppendRow(table.Row{"表格", s.Tables})
	t.AppendRow(table.Row{"公式", s.Equations})
	t.AppendRow(table.Row{"行内引用", s.Citations})
	t.AppendRow(table.Row{"参考文献", s.References})
	t.Render()
}
