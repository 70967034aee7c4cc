package csv233

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// fallbackTimeLayouts 区域文化格式都不匹配时依次尝试
var fallbackTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// decodeValue 把文本解析到字段
// 空文本：指针字段置 nil，其余字段置零值；必填列返回 ErrMissingRequiredField
func decodeValue(field reflect.Value, text string, col *column, s Settings) error {
	if text == "" || (!isStringColumn(col) && strings.TrimSpace(text) == "") {
		if col.required {
			return ErrMissingRequiredField
		}
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if field.Kind() == reflect.Ptr {
		elem := reflect.New(field.Type().Elem())
		if err := decodeScalar(elem.Elem(), text, col, s); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}
	return decodeScalar(field, text, col, s)
}

func isStringColumn(col *column) bool {
	t := col.typ
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.String
}

func decodeScalar(field reflect.Value, text string, col *column, s Settings) error {
	if field.Type() == timeType {
		t, err := parseTime(text, col.format, s)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(t))
		return nil
	}
	if field.CanAddr() {
		if u, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
			if err := u.UnmarshalText([]byte(text)); err != nil {
				return fmt.Errorf("%w: %v", ErrValueFormat, err)
			}
			return nil
		}
	}

	culture := s.culture
	switch field.Kind() {
	case reflect.String:
		field.SetString(text)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", ErrValueFormat, text)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(culture.normalizeInteger(text), 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", ErrValueFormat, text)
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(culture.normalizeInteger(text), 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("%w: %q is not an unsigned integer", ErrValueFormat, text)
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(culture.normalizeDecimal(text), field.Type().Bits())
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrValueFormat, text)
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, field.Type())
	}
	return nil
}

// parseTime 启用 UseOutputFormatForParsingCsvValue 且列有格式时只按该格式解析，
// 否则依次尝试区域文化格式、列格式和通用格式
func parseTime(text, layout string, s Settings) (time.Time, error) {
	text = strings.TrimSpace(text)
	if s.useOutputFormat && layout != "" {
		t, err := time.Parse(layout, text)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q does not match layout %q", ErrValueFormat, text, layout)
		}
		return t, nil
	}

	layouts := make([]string, 0, len(fallbackTimeLayouts)+3)
	layouts = append(layouts, s.culture.DateTimeLayout(), s.culture.DateLayout())
	if layout != "" {
		layouts = append(layouts, layout)
	}
	layouts = append(layouts, fallbackTimeLayouts...)
	for _, l := range layouts {
		if t, err := time.Parse(l, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a date/time for culture %s", ErrValueFormat, text, s.culture)
}

// encodeValue 把字段格式化为文本，nil 指针输出空字符串
func encodeValue(field reflect.Value, col *column, c Culture) (string, error) {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return "", nil
		}
		field = field.Elem()
	}

	if field.Type() == timeType {
		t := field.Interface().(time.Time)
		layout := col.format
		if layout == "" {
			layout = c.DateTimeLayout()
		}
		return t.Format(layout), nil
	}
	if field.Type().Implements(textMarshalerType) {
		b, err := field.Interface().(encoding.TextMarshaler).MarshalText()
		return string(b), err
	}
	if field.CanAddr() && reflect.PointerTo(field.Type()).Implements(textMarshalerType) {
		b, err := field.Addr().Interface().(encoding.TextMarshaler).MarshalText()
		return string(b), err
	}

	switch field.Kind() {
	case reflect.String:
		return field.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(field.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if col.format != "" {
			return c.localizeNumber(fmt.Sprintf(col.format, field.Int())), nil
		}
		return strconv.FormatInt(field.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if col.format != "" {
			return c.localizeNumber(fmt.Sprintf(col.format, field.Uint())), nil
		}
		return strconv.FormatUint(field.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		if col.format != "" {
			return c.localizeNumber(fmt.Sprintf(col.format, field.Float())), nil
		}
		return c.localizeNumber(strconv.FormatFloat(field.Float(), 'f', -1, field.Type().Bits())), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, field.Type())
}

// localizeNumber 把 "." 小数点替换为区域文化的小数点
func (c Culture) localizeNumber(s string) string {
	if c.decimal == "." || c.decimal == "" {
		return s
	}
	return strings.Replace(s, ".", c.decimal, 1)
}

// normalizeDecimal 去掉千分位，区域小数点换成 "."
func (c Culture) normalizeDecimal(s string) string {
	s = c.stripGroups(strings.TrimSpace(s))
	if c.decimal != "" && c.decimal != "." {
		s = strings.Replace(s, c.decimal, ".", 1)
	}
	return strings.TrimPrefix(s, "+")
}

// normalizeInteger 整数只去掉千分位，带小数点时交给 strconv 报错
func (c Culture) normalizeInteger(s string) string {
	return strings.TrimPrefix(c.stripGroups(strings.TrimSpace(s)), "+")
}

func (c Culture) stripGroups(s string) string {
	if c.group == "" {
		return s
	}
	s = strings.ReplaceAll(s, c.group, "")
	// 空格类千分位在文件中常被写成普通空格或不换行空格
	if strings.TrimSpace(c.group) == "" {
		s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(s)
	}
	return s
}
