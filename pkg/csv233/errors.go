package csv233

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfiguration 配置非法，在赋值处同步返回
	ErrInvalidConfiguration = errors.New("csv233: invalid configuration")
	// ErrUnsupportedType 记录类型不是结构体，或字段类型无法转换
	ErrUnsupportedType = errors.New("csv233: unsupported record type")
	// ErrUnknownColumn 表头中的列在记录类型中没有对应字段
	ErrUnknownColumn = errors.New("csv233: unknown column")
	// ErrTooManyFields 数据行的字段数多于已知列
	ErrTooManyFields = errors.New("csv233: too many data fields")
	// ErrMissingRequiredField 必填列的值为空或缺失
	ErrMissingRequiredField = errors.New("csv233: missing required field")
	// ErrValueFormat 值无法按照区域文化或格式解析
	ErrValueFormat = errors.New("csv233: value has wrong format")
	// ErrBareQuote 非引号字段中出现引号，或闭合引号后还有其它字符
	ErrBareQuote = errors.New("csv233: bare or misplaced quote")
	// ErrUnterminatedQuote 引号字段在输入结束前没有闭合
	ErrUnterminatedQuote = errors.New("csv233: unterminated quoted field")
)

// ConfigError 配置错误，总是包装 ErrInvalidConfiguration
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("csv233: invalid configuration %s=%q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("csv233: invalid configuration %s=%q", e.Field, e.Value)
}

// Unwrap 同时暴露 ErrInvalidConfiguration 和底层原因
func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidConfiguration}
	}
	return []error{ErrInvalidConfiguration, e.Err}
}

func invalidConfig(field, value string, cause error) error {
	return &ConfigError{Field: field, Value: value, Err: cause}
}

// ColumnError 表头级错误，读取在任何数据行之前失败
type ColumnError struct {
	Name  string
	Index int
	Err   error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("csv233: column %q (index %d): %v", e.Name, e.Index, e.Err)
}

func (e *ColumnError) Unwrap() error {
	return e.Err
}

// RowParseError 单行解析失败
// Line 为记录起始行号（从 1 开始），Column/Index 在字段级错误时填写
type RowParseError struct {
	Line   int
	Column string
	Index  int
	Value  string
	Err    error
}

func (e *RowParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Column == "" {
		return fmt.Sprintf("csv233: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("csv233: line %d, column %q (index %d), value %q: %v", e.Line, e.Column, e.Index, e.Value, e.Err)
}

func (e *RowParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AggregateParseError 读取过程中收集到的全部行级错误
type AggregateParseError struct {
	Errors []*RowParseError
}

func (e *AggregateParseError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "csv233: %d row error(s)", len(e.Errors))
	for _, rowErr := range e.Errors {
		sb.WriteString("\n\t")
		sb.WriteString(rowErr.Error())
	}
	return sb.String()
}

// Unwrap 使 errors.Is / errors.As 可以匹配到任意一个行级错误
func (e *AggregateParseError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, rowErr := range e.Errors {
		errs[i] = rowErr
	}
	return errs
}

// Len 聚合的行级错误数量
func (e *AggregateParseError) Len() int {
	return len(e.Errors)
}
