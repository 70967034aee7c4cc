package csv233

// DescriptionBuilder 链式构建配置快照
// 每个步骤只记录第一个错误，Build 时统一返回
//
//	settings, err := csv233.NewDescriptionBuilder().
//	    Culture("nl-NL").
//	    MaximumExceptionCount(10).
//	    IgnoreUnknownColumns(true).
//	    Build()
type DescriptionBuilder struct {
	desc *FileDescription
	err  error
}

// NewDescriptionBuilder 从默认文件描述开始构建
func NewDescriptionBuilder() *DescriptionBuilder {
	return &DescriptionBuilder{desc: NewFileDescription()}
}

// From 以已有文件描述的副本为起点
func (b *DescriptionBuilder) From(desc *FileDescription) *DescriptionBuilder {
	if desc != nil {
		b.desc = desc.Clone()
	}
	return b
}

func (b *DescriptionBuilder) Culture(name string) *DescriptionBuilder {
	if b.err == nil {
		b.err = b.desc.SetCultureName(name)
	}
	return b
}

func (b *DescriptionBuilder) CultureValue(c Culture) *DescriptionBuilder {
	if b.err == nil {
		b.err = b.desc.SetCulture(c)
	}
	return b
}

func (b *DescriptionBuilder) TextEncoding(name string) *DescriptionBuilder {
	if b.err == nil {
		b.err = b.desc.SetTextEncodingName(name)
	}
	return b
}

func (b *DescriptionBuilder) FirstLineHasColumnNames(v bool) *DescriptionBuilder {
	b.desc.FirstLineHasColumnNames = v
	return b
}

func (b *DescriptionBuilder) EnforceColumnAttribute(v bool) *DescriptionBuilder {
	b.desc.EnforceColumnAttribute = v
	return b
}

func (b *DescriptionBuilder) MaximumExceptionCount(n int) *DescriptionBuilder {
	b.desc.MaximumExceptionCount = n
	return b
}

func (b *DescriptionBuilder) DetectEncodingFromByteOrderMarks(v bool) *DescriptionBuilder {
	b.desc.DetectEncodingFromByteOrderMarks = v
	return b
}

func (b *DescriptionBuilder) UseFieldIndexForReadingData(v bool) *DescriptionBuilder {
	b.desc.UseFieldIndexForReadingData = v
	return b
}

func (b *DescriptionBuilder) UseOutputFormatForParsingCsvValue(v bool) *DescriptionBuilder {
	b.desc.UseOutputFormatForParsingCsvValue = v
	return b
}

func (b *DescriptionBuilder) IgnoreUnknownColumns(v bool) *DescriptionBuilder {
	b.desc.IgnoreUnknownColumns = v
	return b
}

// Description 构建出的可修改文件描述（副本）
func (b *DescriptionBuilder) Description() (*FileDescription, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.desc.Clone(), nil
}

// Build 校验并返回不可变快照
func (b *DescriptionBuilder) Build() (Settings, error) {
	if b.err != nil {
		return Settings{}, b.err
	}
	return b.desc.Settings()
}
