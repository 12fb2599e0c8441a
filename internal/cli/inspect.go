package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/darksider-9/Master-Thesis-Assistant-sub000/internal/logger"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/docx"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/generator"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var inspectJSON bool

// NewInspectCommand 创建 inspect 命令
func NewInspectCommand() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect document.docx",
		Short: "检查生成文档中页眉域指令及其 STYLEREF 目标样式",
		Long: `只读诊断工具：列出文档每个分节的页眉中包含的域指令，并解析
STYLEREF 域指向的样式，用于排查页眉章标题引用错误的问题。`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewQuietLogger()
			defer func() {
				_ = log.Sync()
			}()

			pkg, err := docx.OpenFile(args[0], log)
			if err != nil {
				return err
			}
			fields, err := generator.InspectHeaders(pkg, log)
			if err != nil {
				return err
			}

			if inspectJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(fields)
			}

			title := color.New(color.FgCyan, color.Bold)
			title.Printf("页眉域指令 (%s)\n", args[0])

			if len(fields) == 0 {
				fmt.Println("  未发现任何页眉域指令")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"分节", "页眉类型", "部件", "域指令", "STYLEREF 目标"})
			for _, f := range fields {
				t.AppendRow(table.Row{f.DocSection, f.HeaderType, f.Part, f.Instruction, f.StyleRef})
			}
			t.Render()
			return nil
		},
	}

	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "以 JSON 格式输出")
	return inspectCmd
}
