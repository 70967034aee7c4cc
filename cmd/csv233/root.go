package main

import (
	"fmt"
	"strings"

	"github.com/neko233-com/csv233-go/pkg/csv233"

	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 配置键，同时是命令行参数名；环境变量为 CSV233_ 前缀的大写形式
const (
	keyDescription         = "description"
	keyCulture             = "culture"
	keyEncoding            = "encoding"
	keyNoHeader            = "no-header"
	keyMaxErrors           = "max-errors"
	keyDetectBOM           = "detect-bom"
	keyFieldIndex          = "field-index"
	keyIgnoreUnknown       = "ignore-unknown"
	keyEnforceAttribute    = "enforce-attribute"
	keyOutputFormatParsing = "output-format-parsing"
	keyLogLevel            = "log-level"
)

// newViper 读取 CSV233_ 前缀的环境变量，参数名中的 - 对应 _
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("CSV233")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func newRootCmd() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:           "csv233",
		Short:         "读取、转换和监听 CSV / Excel 表格",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(v.GetString(keyLogLevel))
			if err != nil {
				return err
			}
			csv233.SetLogger(zapr.NewLogger(logger))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(keyDescription, "", "文件描述配置文件（.json / .yaml / .yml）")
	flags.String(keyCulture, "", "区域文化，如 en-US、nl-NL；空字符串表示不变文化")
	flags.String(keyEncoding, "", "文本编码，如 UTF-8、windows-1252、GBK")
	flags.Bool(keyNoHeader, false, "第一行不是列名")
	flags.Int(keyMaxErrors, csv233.DefaultMaximumExceptionCount, "行级错误上限，-1 表示不限制")
	flags.Bool(keyDetectBOM, true, "根据 BOM 识别编码")
	flags.Bool(keyFieldIndex, false, "按列序号读取数据")
	flags.Bool(keyIgnoreUnknown, false, "忽略未知列和多余字段")
	flags.Bool(keyEnforceAttribute, false, "只映射带 csv233 标签的字段")
	flags.Bool(keyOutputFormatParsing, false, "解析时间时使用列的输出格式")
	flags.String(keyLogLevel, "info", "日志级别：debug、info、warn、error")
	_ = v.BindPFlags(flags)

	cmd.AddCommand(
		newTableCmd(v),
		newConvertCmd(v),
		newWatchCmd(v),
	)
	return cmd
}

// newLogger 控制台格式的 zap 日志，输出到 stderr
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// loadDescription 先读取描述文件，再用显式设置的参数或环境变量覆盖
func loadDescription(v *viper.Viper) (*csv233.FileDescription, error) {
	desc := csv233.NewFileDescription()
	if path := v.GetString(keyDescription); path != "" {
		var err error
		if desc, err = csv233.LoadDescriptionFile(path); err != nil {
			return nil, err
		}
	}

	if v.IsSet(keyCulture) {
		if err := desc.SetCultureName(v.GetString(keyCulture)); err != nil {
			return nil, err
		}
	}
	if v.IsSet(keyEncoding) {
		if err := desc.SetTextEncodingName(v.GetString(keyEncoding)); err != nil {
			return nil, err
		}
	}
	if v.IsSet(keyNoHeader) {
		desc.FirstLineHasColumnNames = !v.GetBool(keyNoHeader)
	}
	if v.IsSet(keyMaxErrors) {
		desc.MaximumExceptionCount = v.GetInt(keyMaxErrors)
	}
	if v.IsSet(keyDetectBOM) {
		desc.DetectEncodingFromByteOrderMarks = v.GetBool(keyDetectBOM)
	}
	if v.IsSet(keyFieldIndex) {
		desc.UseFieldIndexForReadingData = v.GetBool(keyFieldIndex)
	}
	if v.IsSet(keyIgnoreUnknown) {
		desc.IgnoreUnknownColumns = v.GetBool(keyIgnoreUnknown)
	}
	if v.IsSet(keyEnforceAttribute) {
		desc.EnforceColumnAttribute = v.GetBool(keyEnforceAttribute)
	}
	if v.IsSet(keyOutputFormatParsing) {
		desc.UseOutputFormatForParsingCsvValue = v.GetBool(keyOutputFormatParsing)
	}

	if _, err := desc.Settings(); err != nil {
		return nil, err
	}
	return desc, nil
}
