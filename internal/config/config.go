package config

import (
	"fmt"
	"os"

	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/docx"
	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/thesis"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config 保存生成器的所有配置
type Config struct {
	// Style 每个角色的字体与字号，以及全局开关
	Style thesis.StyleConfig `mapstructure:"style"`

	// Keywords 前置/后置部分标题的识别关键词表（按语言可替换）
	Keywords docx.Keywords `mapstructure:"keywords"`

	// HeadingStyles 样式表解析失败时的标题样式覆盖（留空则自动解析）
	HeadingStyleOverrides HeadingStyleOverrides `mapstructure:"heading_styles"`

	// CitationTemplate 参考文献条目的格式模板（留空使用默认 "[n] 描述"）
	CitationTemplate string `mapstructure:"citation_template"`

	Debug bool `mapstructure:"debug"`
}

// HeadingStyleOverrides 允许用户显式指定三级标题的样式 ID
type HeadingStyleOverrides struct {
	Level1 string `mapstructure:"level1"`
	Level2 string `mapstructure:"level2"`
	Level3 string `mapstructure:"level3"`
}

// Apply 将非空覆盖项合并进已解析的标题样式
func (o HeadingStyleOverrides) Apply(styles docx.HeadingStyles) docx.HeadingStyles {
	if o.Level1 != "" {
		styles.Level1 = o.Level1
	}
	if o.Level2 != "" {
		styles.Level2 = o.Level2
	}
	if o.Level3 != "" {
		styles.Level3 = o.Level3
	}
	return styles
}

// defaultConfig 返回内置默认配置
func defaultConfig() *Config {
	return &Config{
		Style:    thesis.DefaultStyleConfig(),
		Keywords: docx.DefaultKeywords(),
	}
}

// Load 加载配置文件。路径为空时在用户主目录和当前目录搜索
// .thesisgen.yaml；找不到配置文件时返回内置默认配置。
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".thesisgen")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg := defaultConfig()
	// ZeroFields 让配置文件中的列表整体覆盖默认值，而不是按下标合并；
	// 文件里没写的字段仍保留默认值。
	if err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.ZeroFields = true
	}); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 空的关键词表会让结构识别完全失效，回退到默认表
	if len(cfg.Keywords.Front) == 0 && len(cfg.Keywords.Back) == 0 {
		cfg.Keywords = docx.DefaultKeywords()
	}
	return cfg, nil
}
