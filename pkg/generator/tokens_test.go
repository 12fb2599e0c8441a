package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTokens(t *testing.T) {
	t.Run("纯文本", func(t *testing.T) {
		got := splitTokens("没有任何占位符的段落。")
		require.Len(t, got, 1)
		assert.Equal(t, tokenText, got[0].kind)
	})

	t.Run("行内引用", func(t *testing.T) {
		got := splitTokens("见文献 [[REF:1]] 的结论。")
		require.Len(t, got, 3)
		assert.Equal(t, token{tokenText, "见文献 "}, got[0])
		assert.Equal(t, token{tokenCitation, "1"}, got[1])
		assert.Equal(t, token{tokenText, " 的结论。"}, got[2])
	})

	t.Run("图表公式混排", func(t *testing.T) {
		got := splitTokens("[[FIG:系统架构图]]\n[[TBL:实验参数]]\n[[EQ:E=mc^2]]")
		kinds := []tokenKind{}
		for _, tk := range got {
			kinds = append(kinds, tk.kind)
		}
		assert.Contains(t, kinds, tokenFigure)
		assert.Contains(t, kinds, tokenTable)
		assert.Contains(t, kinds, tokenEquation)
	})

	t.Run("符号占位符吞掉两侧换行", func(t *testing.T) {
		got := splitTokens("单位是\n[[SYM:μm]]\n量级。")
		require.Len(t, got, 3)
		assert.Equal(t, token{tokenText, "单位是"}, got[0])
		assert.Equal(t, token{tokenSymbol, "μm"}, got[1])
		assert.Equal(t, token{tokenText, "量级。"}, got[2])
	})

	t.Run("畸形占位符按原样保留", func(t *testing.T) {
		got := splitTokens("[[FIG:缺少结尾")
		require.Len(t, got, 1)
		assert.Equal(t, token{tokenText, "[[FIG:缺少结尾"}, got[0])

		got = splitTokens("[[IMG:未知类型]]")
		require.Len(t, got, 1)
		assert.Equal(t, tokenText, got[0].kind)
	})

	t.Run("空载荷", func(t *testing.T) {
		got := splitTokens("[[REF:]]")
		require.Len(t, got, 1)
		assert.Equal(t, token{tokenCitation, ""}, got[0])
	})
}
