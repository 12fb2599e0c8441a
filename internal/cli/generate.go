package cli

import (
	"fmt"
	"os"

	"github.com/darksider-9/Master-Thesis-Assistant-sub000/internal/chapters"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/internal/config"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/internal/logger"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/internal/stats"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/docx"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/generator"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	chaptersPath string
	outputPath   string
)

// NewGenerateCommand 创建 generate 命令
func NewGenerateCommand() *cobra.Command {
	genCmd := &cobra.Command{
		Use:   "generate template.docx",
		Short: "从模板和章节树生成论文文档",
		Long: `读取论文模板，删除其中的占位章节，将章节树文件展开后的内容
拼接进正文，并重建参考文献列表。

章节树文件支持两种格式:
  - YAML: chapters/references 两个顶层键
  - Markdown: 一至三级标题构成章节树，正文保留占位符标记`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewLogger(debugMode)
			defer func() {
				_ = log.Sync()
			}()
			return runGenerate(args[0], log)
		},
	}

	genCmd.Flags().StringVarP(&chaptersPath, "chapters", "i", "", "章节树文件路径 (.yaml 或 .md)")
	genCmd.Flags().StringVarP(&outputPath, "output", "o", "", "输出文件路径")
	_ = genCmd.MarkFlagRequired("chapters")
	_ = genCmd.MarkFlagRequired("output")

	return genCmd
}

func runGenerate(templatePath string, log *zap.Logger) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	doc, err := chapters.Load(chaptersPath)
	if err != nil {
		return err
	}
	if len(doc.Chapters) == 0 {
		return fmt.Errorf("章节树文件 %s 中没有任何章节", chaptersPath)
	}

	pkg, err := docx.OpenFile(templatePath, log)
	if err != nil {
		return err
	}

	assembler, err := generator.NewAssembler(cfg.Keywords, cfg.Style, cfg.CitationTemplate, log)
	if err != nil {
		return err
	}
	assembler.AdjustStyles = cfg.HeadingStyleOverrides.Apply
	if err := assembler.Assemble(pkg, doc.Chapters, doc.References); err != nil {
		return fmt.Errorf("生成文档失败: %w", err)
	}

	if err := pkg.SaveFile(outputPath); err != nil {
		return err
	}

	success := color.New(color.FgGreen, color.Bold)
	success.Printf("✓ 已生成 %s\n", outputPath)
	stats.Collect(doc.Chapters, doc.References).Render(os.Stdout)
	return nil
}
