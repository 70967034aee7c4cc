package csv233

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
)

// Writer 把 T 类型的记录写为 CSV 文本
// FirstLineHasColumnNames 为 true 时先写表头；所有值按区域文化格式化；输出按 TextEncoding 编码
type Writer[T any] struct {
	settings Settings
	columns  *columnSet
	typ      reflect.Type
}

// NewWriter 创建 Writer，desc 为 nil 时使用默认值
func NewWriter[T any](desc *FileDescription) (*Writer[T], error) {
	if desc == nil {
		desc = NewFileDescription()
	}
	s, err := desc.Settings()
	if err != nil {
		return nil, err
	}
	return NewWriterWithSettings[T](s)
}

// NewWriterWithSettings 使用已校验的快照创建 Writer
func NewWriterWithSettings[T any](s Settings) (*Writer[T], error) {
	if s.culture.IsZero() || s.encoding.IsZero() {
		return nil, invalidConfig("settings", "<zero>", errors.New("settings must come from FileDescription.Settings or DescriptionBuilder.Build"))
	}
	typ := reflect.TypeOf((*T)(nil)).Elem()
	set, err := columns.get(typ, s.enforceColumnAttribute)
	if err != nil {
		return nil, err
	}
	return &Writer[T]{settings: s, columns: set, typ: typ}, nil
}

// Settings 写入器使用的配置快照
func (w *Writer[T]) Settings() Settings {
	return w.settings
}

// Header 按写出顺序的列名
func (w *Writer[T]) Header() []string {
	return w.columns.names()
}

// Rows 把记录格式化为文本行，包含可选的表头行
// Excel 等非文本格式共用该入口
func (w *Writer[T]) Rows(records []T) ([][]string, error) {
	rows := make([][]string, 0, len(records)+1)
	if w.settings.firstLineHasColumnNames {
		rows = append(rows, w.Header())
	}
	for i := range records {
		row, err := w.formatRecord(records[i])
		if err != nil {
			return nil, fmt.Errorf("csv233: record %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Write 写出全部记录
func (w *Writer[T]) Write(dst io.Writer, records []T) error {
	rows, err := w.Rows(records)
	if err != nil {
		return err
	}
	return writeRows(dst, w.settings.encoding, rows)
}

// WriteFile 写出到文件，文件已存在时覆盖
func (w *Writer[T]) WriteFile(path string, records []T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := w.Write(f, records); err != nil {
		_ = f.Close()
		getLogger().Error(err, "写入CSV文件失败", "path", path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	getLogger().Info("CSV文件写入完成", "path", path, "count", len(records))
	return nil
}

func (w *Writer[T]) formatRecord(rec T) ([]string, error) {
	// 拷贝到可寻址的值上，使指针接收者的 MarshalText 也能被调用
	v := reflect.New(w.typ).Elem()
	v.Set(reflect.ValueOf(rec))

	row := make([]string, len(w.columns.columns))
	for i, col := range w.columns.columns {
		text, err := encodeValue(v.Field(col.field), col, w.settings.culture)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.name, err)
		}
		row[i] = text
	}
	return row, nil
}

// writeRows 编码并写出文本行，以 \n 结尾
func writeRows(dst io.Writer, enc TextEncoding, rows [][]string) error {
	encoded := newEncodingWriter(dst, enc)
	bw := bufio.NewWriter(encoded)
	for _, row := range rows {
		for i, field := range row {
			if i > 0 {
				if err := bw.WriteByte(','); err != nil {
					return err
				}
			}
			if err := writeField(bw, field); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return encoded.Close()
}

func writeField(bw *bufio.Writer, field string) error {
	if !fieldNeedsQuote(field) {
		_, err := bw.WriteString(field)
		return err
	}
	if err := bw.WriteByte('"'); err != nil {
		return err
	}
	if _, err := bw.WriteString(strings.ReplaceAll(field, `"`, `""`)); err != nil {
		return err
	}
	return bw.WriteByte('"')
}

// fieldNeedsQuote 含分隔符、引号、换行或首尾空白的字段需要加引号
func fieldNeedsQuote(field string) bool {
	if field == "" {
		return false
	}
	if field[0] == ' ' || field[0] == '\t' || field[len(field)-1] == ' ' || field[len(field)-1] == '\t' {
		return true
	}
	return strings.ContainsAny(field, ",\"\r\n")
}
