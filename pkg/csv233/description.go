package csv233

import (
	"errors"
	"strconv"
)

// DefaultMaximumExceptionCount 默认的行级错误上限
const DefaultMaximumExceptionCount = 100

// UnlimitedExceptions MaximumExceptionCount 取此值时不设上限
const UnlimitedExceptions = -1

var errNegativeExceptionCount = errors.New("must be -1 or a non-negative integer")

// FileDescription 文件描述，CSV 读写的全部配置
// 构造后字段可随意修改，不做跨字段校验；
// Reader/Writer 在构造时调用 Settings() 校验并取得不可变快照。
// 同一实例可在多次独立的读写操作间复用。
type FileDescription struct {
	culture  Culture
	encoding TextEncoding

	// FirstLineHasColumnNames 为 true 时：
	// 写文件时第一行写出列名；读文件时第一行作为表头按列名映射
	FirstLineHasColumnNames bool

	// EnforceColumnAttribute 为 true 时只识别带 csv233 标签的字段，
	// 否则所有可导出字段都参与读写
	EnforceColumnAttribute bool

	// MaximumExceptionCount 读取时缓存的行级错误数达到该值立即返回聚合错误，
	// -1 表示不设上限，0 表示第一个错误就返回
	MaximumExceptionCount int

	// DetectEncodingFromByteOrderMarks 为 true 时，读取时开头的 BOM 覆盖 TextEncoding
	DetectEncodingFromByteOrderMarks bool

	// UseFieldIndexForReadingData 为 true 时按列序号而不是表头列名映射字段
	UseFieldIndexForReadingData bool

	// UseOutputFormatForParsingCsvValue 为 true 时，解析时间值必须使用字段的输出格式
	UseOutputFormatForParsingCsvValue bool

	// IgnoreUnknownColumns 为 true 时，跳过记录类型中没有对应字段的列
	IgnoreUnknownColumns bool
}

// NewFileDescription 创建带默认值的文件描述
// 区域文化取宿主进程的区域设置，编码为 UTF-8，该函数不会失败
func NewFileDescription() *FileDescription {
	return &FileDescription{
		culture:                           CurrentCulture(),
		encoding:                          UTF8(),
		FirstLineHasColumnNames:           true,
		EnforceColumnAttribute:            false,
		MaximumExceptionCount:             DefaultMaximumExceptionCount,
		DetectEncodingFromByteOrderMarks:  true,
		UseFieldIndexForReadingData:       false,
		UseOutputFormatForParsingCsvValue: false,
		IgnoreUnknownColumns:              false,
	}
}

// Culture 当前的区域文化
func (d *FileDescription) Culture() Culture {
	return d.culture
}

// SetCulture 直接设置区域文化，不做名称解析
// 零值 Culture 返回 ErrInvalidConfiguration，原值保持不变
func (d *FileDescription) SetCulture(c Culture) error {
	if c.IsZero() {
		return invalidConfig("culture", "", errors.New("culture must not be empty"))
	}
	d.culture = c
	return nil
}

// CultureName 当前区域文化的名称，例如 "nl-NL"
func (d *FileDescription) CultureName() string {
	return d.culture.Name()
}

// SetCultureName 按名称设置区域文化
// 例如文件使用荷兰的日期和数字格式，而当前进程是美式英语，可设置为 "nl-NL"
// 参数:
//
//	name: 区域文化名称
//
// 返回值:
//
//	error: 名称无法识别时返回 ErrInvalidConfiguration，原值保持不变
func (d *FileDescription) SetCultureName(name string) error {
	c, err := ResolveCulture(name)
	if err != nil {
		return err
	}
	d.culture = c
	return nil
}

// TextEncoding 当前的文本编码
func (d *FileDescription) TextEncoding() TextEncoding {
	return d.encoding
}

// SetTextEncoding 设置文本编码，零值返回 ErrInvalidConfiguration
func (d *FileDescription) SetTextEncoding(e TextEncoding) error {
	if e.IsZero() {
		return invalidConfig("textEncoding", "", errUnknownEncoding)
	}
	d.encoding = e
	return nil
}

// SetTextEncodingName 从进程级编码注册表中按名称选择编码
// 未知名称返回 ErrInvalidConfiguration，原值保持不变
func (d *FileDescription) SetTextEncodingName(name string) error {
	e, err := LookupEncoding(name)
	if err != nil {
		return err
	}
	d.encoding = e
	return nil
}

// Clone 返回独立副本，可用于并发读写时每个操作持有一份
func (d *FileDescription) Clone() *FileDescription {
	clone := *d
	return &clone
}

// Settings 校验并返回不可变快照
// 返回值:
//
//	Settings: 配置快照
//	error: 配置非法时返回 ErrInvalidConfiguration
func (d *FileDescription) Settings() (Settings, error) {
	if d == nil {
		return Settings{}, invalidConfig("fileDescription", "<nil>", nil)
	}
	if d.MaximumExceptionCount < UnlimitedExceptions {
		return Settings{}, invalidConfig("maximumExceptionCount", strconv.Itoa(d.MaximumExceptionCount), errNegativeExceptionCount)
	}
	culture := d.culture
	if culture.IsZero() {
		culture = CurrentCulture()
	}
	enc := d.encoding
	if enc.IsZero() {
		enc = UTF8()
	}
	return Settings{
		culture:                 culture,
		encoding:                enc,
		firstLineHasColumnNames: d.FirstLineHasColumnNames,
		enforceColumnAttribute:  d.EnforceColumnAttribute,
		maximumExceptionCount:   d.MaximumExceptionCount,
		detectEncodingFromBOM:   d.DetectEncodingFromByteOrderMarks,
		useFieldIndex:           d.UseFieldIndexForReadingData,
		useOutputFormat:         d.UseOutputFormatForParsingCsvValue,
		ignoreUnknownColumns:    d.IgnoreUnknownColumns,
	}, nil
}

// Settings 校验过的不可变配置快照，可安全地在并发读写间共享
type Settings struct {
	culture                 Culture
	encoding                TextEncoding
	firstLineHasColumnNames bool
	enforceColumnAttribute  bool
	maximumExceptionCount   int
	detectEncodingFromBOM   bool
	useFieldIndex           bool
	useOutputFormat         bool
	ignoreUnknownColumns    bool
}

// DefaultSettings 默认文件描述的快照
func DefaultSettings() Settings {
	s, _ := NewFileDescription().Settings()
	return s
}

func (s Settings) Culture() Culture                        { return s.culture }
func (s Settings) TextEncoding() TextEncoding              { return s.encoding }
func (s Settings) FirstLineHasColumnNames() bool           { return s.firstLineHasColumnNames }
func (s Settings) EnforceColumnAttribute() bool            { return s.enforceColumnAttribute }
func (s Settings) MaximumExceptionCount() int              { return s.maximumExceptionCount }
func (s Settings) DetectEncodingFromByteOrderMarks() bool  { return s.detectEncodingFromBOM }
func (s Settings) UseFieldIndexForReadingData() bool       { return s.useFieldIndex }
func (s Settings) UseOutputFormatForParsingCsvValue() bool { return s.useOutputFormat }
func (s Settings) IgnoreUnknownColumns() bool              { return s.ignoreUnknownColumns }

// Description 返回与快照等价的可修改文件描述
func (s Settings) Description() *FileDescription {
	return &FileDescription{
		culture:                           s.culture,
		encoding:                          s.encoding,
		FirstLineHasColumnNames:           s.firstLineHasColumnNames,
		EnforceColumnAttribute:            s.enforceColumnAttribute,
		MaximumExceptionCount:             s.maximumExceptionCount,
		DetectEncodingFromByteOrderMarks:  s.detectEncodingFromBOM,
		UseFieldIndexForReadingData:       s.useFieldIndex,
		UseOutputFormatForParsingCsvValue: s.useOutputFormat,
		IgnoreUnknownColumns:              s.ignoreUnknownColumns,
	}
}

// mapsByHeader 是否按表头列名映射；序号映射优先
func (s Settings) mapsByHeader() bool {
	return s.firstLineHasColumnNames && !s.useFieldIndex
}
