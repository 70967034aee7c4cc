package csv233

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
)

// Reader 把 CSV 文本读取为 T 类型的记录，T 必须是结构体
// 构造时取得 FileDescription 的快照，之后修改原描述不会影响该 Reader
type Reader[T any] struct {
	settings Settings
	columns  *columnSet
	typ      reflect.Type
}

// NewReader 创建 Reader
// 参数:
//
//	desc: 文件描述，nil 时使用默认值
//
// 返回值:
//
//	*Reader[T]: 读取器
//	error: 配置非法或 T 不是受支持的结构体时返回错误
func NewReader[T any](desc *FileDescription) (*Reader[T], error) {
	if desc == nil {
		desc = NewFileDescription()
	}
	s, err := desc.Settings()
	if err != nil {
		return nil, err
	}
	return NewReaderWithSettings[T](s)
}

// NewReaderWithSettings 使用已校验的快照创建 Reader
func NewReaderWithSettings[T any](s Settings) (*Reader[T], error) {
	if s.culture.IsZero() || s.encoding.IsZero() {
		return nil, invalidConfig("settings", "<zero>", errors.New("settings must come from FileDescription.Settings or DescriptionBuilder.Build"))
	}
	typ := reflect.TypeOf((*T)(nil)).Elem()
	set, err := columns.get(typ, s.enforceColumnAttribute)
	if err != nil {
		return nil, err
	}
	return &Reader[T]{settings: s, columns: set, typ: typ}, nil
}

// Settings 读取器使用的配置快照
func (r *Reader[T]) Settings() Settings {
	return r.settings
}

// Read 从字节流读取全部记录
// 存在行级错误时返回 nil 和 *AggregateParseError
func (r *Reader[T]) Read(src io.Reader) ([]T, error) {
	return r.ReadRows(r.rowSource(src))
}

// ReadFile 读取文件
func (r *Reader[T]) ReadFile(path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := r.Read(f)
	if err != nil {
		getLogger().Error(err, "读取CSV文件失败", "path", path)
		return nil, err
	}
	getLogger().Info("CSV文件读取完成", "path", path, "count", len(records))
	return records, nil
}

// ReadFunc 流式读取，每解析出一条记录调用一次 fn
// fn 返回错误时立即停止并返回该错误；行级错误仍按 MaximumExceptionCount 聚合
func (r *Reader[T]) ReadFunc(src io.Reader, fn func(line int, rec T) error) error {
	return r.ReadRowsFunc(r.rowSource(src), fn)
}

// ReadRows 从任意行来源读取记录，Excel 等非文本格式共用该入口
func (r *Reader[T]) ReadRows(src RowSource) ([]T, error) {
	var records []T
	err := r.ReadRowsFunc(src, func(_ int, rec T) error {
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ReadRowsFunc 读取循环
// 每个行级错误进入累加器；达到上限立即返回聚合错误，不再读取后续行；
// 输入结束时累加器非空则返回聚合错误。
func (r *Reader[T]) ReadRowsFunc(src RowSource, fn func(line int, rec T) error) error {
	s := r.settings
	collector := newExceptionCollector(s.maximumExceptionCount)

	b := r.indexBinding()
	if s.firstLineHasColumnNames {
		header, line, err := src.NextRow()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("csv233: header line %d: %w", line, err)
		}
		if !s.mapsByHeader() {
			getLogger().V(1).Info("按列序号读取，跳过表头", "line", line, "header", header)
		} else if b, err = r.headerBinding(header); err != nil {
			return err
		}
	}

	rows := 0
	for {
		fields, line, err := src.NextRow()
		if errors.Is(err, io.EOF) {
			break
		}
		var rowErr *RowParseError
		if errors.As(err, &rowErr) {
			if collector.add(rowErr) {
				return r.abort(collector, rows)
			}
			continue
		}
		if err != nil {
			return err
		}

		rows++
		rec, rowErr := r.decodeRow(b, fields, line)
		if rowErr != nil {
			if collector.add(rowErr) {
				return r.abort(collector, rows)
			}
			continue
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}

	getLogger().V(1).Info("CSV读取结束", "type", r.typ.String(), "rows", rows, "errors", collector.len())
	return collector.err()
}

func (r *Reader[T]) abort(collector *exceptionCollector, rows int) error {
	getLogger().Info("行级错误达到上限，停止读取",
		"type", r.typ.String(),
		"rows", rows,
		"maximumExceptionCount", r.settings.maximumExceptionCount)
	return collector.err()
}

func (r *Reader[T]) rowSource(src io.Reader) RowSource {
	return newTokenizer(newDecodingReader(src, r.settings.encoding, r.settings.detectEncodingFromBOM))
}

// binding 数据字段位置到列的映射，nil 表示忽略该位置
type binding struct {
	positions      []*column
	absentRequired []*column
}

// indexBinding 按列序号映射：第 i 个字段对应排序后的第 i 列
func (r *Reader[T]) indexBinding() binding {
	return binding{positions: r.columns.columns}
}

// headerBinding 按表头列名映射
// 未知列在 IgnoreUnknownColumns 为 false 时返回 *ColumnError
func (r *Reader[T]) headerBinding(header []string) (binding, error) {
	b := binding{positions: make([]*column, len(header))}
	bound := make(map[*column]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		col, ok := r.columns.lookup(name)
		if !ok {
			if r.settings.ignoreUnknownColumns {
				getLogger().V(1).Info("忽略未知列", "column", name, "index", i+1)
				continue
			}
			return binding{}, &ColumnError{Name: name, Index: i + 1, Err: ErrUnknownColumn}
		}
		b.positions[i] = col
		bound[col] = true
	}
	for _, col := range r.columns.columns {
		if col.required && !bound[col] {
			b.absentRequired = append(b.absentRequired, col)
		}
	}
	return b, nil
}

// decodeRow 解析单行，返回的错误总是行级错误
func (r *Reader[T]) decodeRow(b binding, fields []string, line int) (T, *RowParseError) {
	var zero T

	if len(fields) > len(b.positions) && !r.settings.ignoreUnknownColumns {
		extra := len(b.positions)
		return zero, &RowParseError{Line: line, Index: extra + 1, Value: fields[extra], Err: ErrTooManyFields}
	}

	ptr := reflect.New(r.typ)
	v := ptr.Elem()
	for i, col := range b.positions {
		if col == nil {
			continue
		}
		var text string
		if i < len(fields) {
			text = fields[i]
		}
		if err := decodeValue(v.Field(col.field), text, col, r.settings); err != nil {
			return zero, &RowParseError{Line: line, Column: col.name, Index: i + 1, Value: text, Err: err}
		}
	}
	if len(b.absentRequired) > 0 {
		return zero, &RowParseError{Line: line, Column: b.absentRequired[0].name, Err: ErrMissingRequiredField}
	}

	if err := runRecordHooks(ptr.Interface()); err != nil {
		return zero, &RowParseError{Line: line, Err: err}
	}
	return v.Interface().(T), nil
}
