package csv233

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DescriptionConfig 文件描述的可序列化形式
// 指针字段为 nil 表示未设置，保留默认值
type DescriptionConfig struct {
	Culture                           *string `json:"culture,omitempty" yaml:"culture,omitempty"`
	FirstLineHasColumnNames           *bool   `json:"firstLineHasColumnNames,omitempty" yaml:"firstLineHasColumnNames,omitempty"`
	EnforceColumnAttribute            *bool   `json:"enforceColumnAttribute,omitempty" yaml:"enforceColumnAttribute,omitempty"`
	MaximumExceptionCount             *int    `json:"maximumExceptionCount,omitempty" yaml:"maximumExceptionCount,omitempty"`
	TextEncoding                      *string `json:"textEncoding,omitempty" yaml:"textEncoding,omitempty"`
	DetectEncodingFromByteOrderMarks  *bool   `json:"detectEncodingFromByteOrderMarks,omitempty" yaml:"detectEncodingFromByteOrderMarks,omitempty"`
	UseFieldIndexForReadingData       *bool   `json:"useFieldIndexForReadingData,omitempty" yaml:"useFieldIndexForReadingData,omitempty"`
	UseOutputFormatForParsingCsvValue *bool   `json:"useOutputFormatForParsingCsvValue,omitempty" yaml:"useOutputFormatForParsingCsvValue,omitempty"`
	IgnoreUnknownColumns              *bool   `json:"ignoreUnknownColumns,omitempty" yaml:"ignoreUnknownColumns,omitempty"`
}

// Apply 把已设置的字段写入文件描述
// 区域文化或编码无法识别时返回 ErrInvalidConfiguration，此前已写入的字段保持写入
func (c DescriptionConfig) Apply(desc *FileDescription) error {
	if c.Culture != nil {
		if err := desc.SetCultureName(*c.Culture); err != nil {
			return err
		}
	}
	if c.TextEncoding != nil {
		if err := desc.SetTextEncodingName(*c.TextEncoding); err != nil {
			return err
		}
	}
	if c.FirstLineHasColumnNames != nil {
		desc.FirstLineHasColumnNames = *c.FirstLineHasColumnNames
	}
	if c.EnforceColumnAttribute != nil {
		desc.EnforceColumnAttribute = *c.EnforceColumnAttribute
	}
	if c.MaximumExceptionCount != nil {
		desc.MaximumExceptionCount = *c.MaximumExceptionCount
	}
	if c.DetectEncodingFromByteOrderMarks != nil {
		desc.DetectEncodingFromByteOrderMarks = *c.DetectEncodingFromByteOrderMarks
	}
	if c.UseFieldIndexForReadingData != nil {
		desc.UseFieldIndexForReadingData = *c.UseFieldIndexForReadingData
	}
	if c.UseOutputFormatForParsingCsvValue != nil {
		desc.UseOutputFormatForParsingCsvValue = *c.UseOutputFormatForParsingCsvValue
	}
	if c.IgnoreUnknownColumns != nil {
		desc.IgnoreUnknownColumns = *c.IgnoreUnknownColumns
	}
	return nil
}

// ConfigOf 导出文件描述的全部字段
func ConfigOf(desc *FileDescription) DescriptionConfig {
	culture := desc.CultureName()
	encoding := desc.TextEncoding().Name()
	maxErrors := desc.MaximumExceptionCount
	return DescriptionConfig{
		Culture:                           &culture,
		FirstLineHasColumnNames:           boolPtr(desc.FirstLineHasColumnNames),
		EnforceColumnAttribute:            boolPtr(desc.EnforceColumnAttribute),
		MaximumExceptionCount:             &maxErrors,
		TextEncoding:                      &encoding,
		DetectEncodingFromByteOrderMarks:  boolPtr(desc.DetectEncodingFromByteOrderMarks),
		UseFieldIndexForReadingData:       boolPtr(desc.UseFieldIndexForReadingData),
		UseOutputFormatForParsingCsvValue: boolPtr(desc.UseOutputFormatForParsingCsvValue),
		IgnoreUnknownColumns:              boolPtr(desc.IgnoreUnknownColumns),
	}
}

func boolPtr(b bool) *bool {
	return &b
}

// ParseDescription 解析 JSON 或 YAML 格式的文件描述，未设置的字段取默认值
// 参数:
//
//	data: 文件内容
//	format: "json"、"yaml" 或 "yml"
func ParseDescription(data []byte, format string) (*FileDescription, error) {
	var cfg DescriptionConfig
	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("csv233: parse json description: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("csv233: parse yaml description: %w", err)
		}
	default:
		return nil, invalidConfig("descriptionFormat", format, fmt.Errorf("unsupported format"))
	}

	desc := NewFileDescription()
	if err := cfg.Apply(desc); err != nil {
		return nil, err
	}
	return desc, nil
}

// LoadDescriptionFile 从 .json / .yaml / .yml 文件加载文件描述
func LoadDescriptionFile(path string) (*FileDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	desc, err := ParseDescription(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		getLogger().Error(err, "加载文件描述失败", "path", path)
		return nil, err
	}
	getLogger().Info("加载文件描述", "path", path, "culture", desc.CultureName(), "encoding", desc.TextEncoding().Name())
	return desc, nil
}
