package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// 命令行标志变量
	cfgFile   string
	debugMode bool
)

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "thesisgen",
		Short: "基于模板的学位论文文档生成工具",
		Long: `thesisgen 读取一个结构化的论文模板（.docx），解析其章节结构、
样式与编号约定，然后用章节树文件中的内容重新生成正文：自动编号的
图表、公式、交叉引用的参考文献都会以域的形式写入，由 Word 打开时
重新计算。

章节内容中可使用以下占位符标记:
  [[FIG:描述]]   插入居中的图片占位段落和自动编号的图题
  [[TBL:描述]]   插入自动编号的表题和表格
  [[EQ:内容]]    插入行内公式文本
  [[REF:编号]]   插入指向参考文献的交叉引用，如 [[REF:1]]
  [[SYM:符号]]   插入行内符号，不产生换行`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径 (默认搜索 ~/.thesisgen.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "输出调试日志")

	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewInspectCommand())

	return rootCmd
}
