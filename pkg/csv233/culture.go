package csv233

import (
	"os"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// dateLayouts 区域文化的日期格式（Go layout）
type dateLayouts struct {
	date     string
	dateTime string
}

// cultureLayouts 按 "语言-地区" 查找，找不到时退回语言，再退回不变文化（空键）
var cultureLayouts = map[string]dateLayouts{
	"":      {date: "01/02/2006", dateTime: "01/02/2006 15:04:05"},
	"en":    {date: "1/2/2006", dateTime: "1/2/2006 3:04:05 PM"},
	"en-GB": {date: "02/01/2006", dateTime: "02/01/2006 15:04:05"},
	"en-AU": {date: "2/01/2006", dateTime: "2/01/2006 3:04:05 PM"},
	"nl":    {date: "2-1-2006", dateTime: "2-1-2006 15:04:05"},
	"nl-BE": {date: "2/01/2006", dateTime: "2/01/2006 15:04:05"},
	"de":    {date: "02.01.2006", dateTime: "02.01.2006 15:04:05"},
	"fr":    {date: "02/01/2006", dateTime: "02/01/2006 15:04:05"},
	"fr-CA": {date: "2006-01-02", dateTime: "2006-01-02 15:04:05"},
	"es":    {date: "02/01/2006", dateTime: "02/01/2006 15:04:05"},
	"it":    {date: "02/01/2006", dateTime: "02/01/2006 15:04:05"},
	"pt":    {date: "02/01/2006", dateTime: "02/01/2006 15:04:05"},
	"ru":    {date: "02.01.2006", dateTime: "02.01.2006 15:04:05"},
	"pl":    {date: "02.01.2006", dateTime: "02.01.2006 15:04:05"},
	"sv":    {date: "2006-01-02", dateTime: "2006-01-02 15:04:05"},
	"ja":    {date: "2006/01/02", dateTime: "2006/01/02 15:04:05"},
	"zh":    {date: "2006/1/2", dateTime: "2006/1/2 15:04:05"},
	"ko":    {date: "2006-01-02", dateTime: "2006-01-02 15:04:05"},
}

// Culture 区域文化，决定数字和日期的解析与格式化规则
// 零值表示"未设置"，不能用于 FileDescription
type Culture struct {
	tag     language.Tag
	name    string
	decimal string
	group   string
	layouts dateLayouts
	valid   bool
}

var invariantCulture = Culture{
	tag:     language.Und,
	name:    "",
	decimal: ".",
	group:   ",",
	layouts: cultureLayouts[""],
	valid:   true,
}

// InvariantCulture 不变文化：小数点 "."，千分位 ","
func InvariantCulture() Culture {
	return invariantCulture
}

// ResolveCulture 根据名称解析区域文化
// 空字符串返回不变文化；无法识别的名称返回 ErrInvalidConfiguration
// 参数:
//
//	name: BCP 47 名称，如 "nl-NL"、"en-US"
//
// 返回值:
//
//	Culture: 解析后的区域文化
//	error: 名称无法识别时的错误
func ResolveCulture(name string) (Culture, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return invariantCulture, nil
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return Culture{}, invalidConfig("culture", name, err)
	}
	return NewCulture(tag), nil
}

// NewCulture 根据语言标签构建区域文化，不做名称校验
func NewCulture(tag language.Tag) Culture {
	if tag == language.Und {
		return invariantCulture
	}
	decimal, group := numberSymbols(tag)
	return Culture{
		tag:     tag,
		name:    tag.String(),
		decimal: decimal,
		group:   group,
		layouts: lookupLayouts(tag),
		valid:   true,
	}
}

// numberSymbols 通过格式化一个已知数字推导出小数点和千分位符号
func numberSymbols(tag language.Tag) (decimal, group string) {
	formatted := message.NewPrinter(tag).Sprintf("%v", number.Decimal(1234567.5))
	var seps []string
	for _, r := range formatted {
		if !unicode.IsDigit(r) {
			seps = append(seps, string(r))
		}
	}
	switch len(seps) {
	case 0:
		return ".", ","
	case 1:
		return seps[0], ""
	default:
		return seps[len(seps)-1], seps[0]
	}
}

func lookupLayouts(tag language.Tag) dateLayouts {
	if l, ok := cultureLayouts[tag.String()]; ok {
		return l
	}
	base, _ := tag.Base()
	region, conf := tag.Region()
	if conf != language.No {
		if l, ok := cultureLayouts[base.String()+"-"+region.String()]; ok {
			return l
		}
	}
	if l, ok := cultureLayouts[base.String()]; ok {
		return l
	}
	return cultureLayouts[""]
}

// Name 区域文化名称，不变文化为空字符串
func (c Culture) Name() string { return c.name }

// Tag 对应的语言标签
func (c Culture) Tag() language.Tag { return c.tag }

// DecimalSeparator 小数点符号
func (c Culture) DecimalSeparator() string { return c.decimal }

// GroupSeparator 千分位符号，可能为空
func (c Culture) GroupSeparator() string { return c.group }

// DateLayout 日期格式
func (c Culture) DateLayout() string { return c.layouts.date }

// DateTimeLayout 日期时间格式
func (c Culture) DateTimeLayout() string { return c.layouts.dateTime }

// IsZero 是否为未设置的零值
func (c Culture) IsZero() bool { return !c.valid }

func (c Culture) String() string {
	if c.name == "" {
		return "invariant"
	}
	return c.name
}

var currentCulture = sync.OnceValue(func() Culture {
	for _, key := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
		value := os.Getenv(key)
		if value == "" {
			continue
		}
		culture, err := ResolveCulture(posixLocaleToBCP47(value))
		if err != nil {
			getLogger().V(1).Info("无法识别系统区域设置，使用不变文化", "env", key, "value", value)
			return invariantCulture
		}
		return culture
	}
	return invariantCulture
})

// CurrentCulture 宿主进程的区域文化，从 LC_ALL / LC_NUMERIC / LANG 推导，只计算一次
func CurrentCulture() Culture {
	return currentCulture()
}

// posixLocaleToBCP47 "nl_NL.UTF-8@euro" -> "nl-NL"，"C"/"POSIX" -> ""
func posixLocaleToBCP47(value string) string {
	if i := strings.IndexAny(value, ".@"); i >= 0 {
		value = value[:i]
	}
	if value == "C" || value == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(value, "_", "-")
}
