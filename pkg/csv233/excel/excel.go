package excel

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/neko233-com/csv233-go/pkg/csv233"
	"github.com/neko233-com/csv233-go/pkg/csv233/dto"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet 新建工作簿的默认工作表，写入总是写到这里
const DefaultSheet = "Sheet1"

type options struct {
	sheet string
}

// Option 读取选项
type Option func(*options)

// WithSheet 指定读取的工作表，默认读取第一个工作表
func WithSheet(name string) Option {
	return func(o *options) {
		o.sheet = name
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// sheetRows 工作表行来源，行号为 Excel 中的行号，全空行跳过
type sheetRows struct {
	rows [][]string
	pos  int
}

func (s *sheetRows) NextRow() ([]string, int, error) {
	for s.pos < len(s.rows) {
		row := s.rows[s.pos]
		s.pos++
		if !blank(row) {
			return row, s.pos, nil
		}
	}
	return nil, s.pos, io.EOF
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// loadRows 读取工作表的显示文本
func loadRows(f *excelize.File, o options) (string, [][]string, error) {
	sheet := o.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return "", nil, nil
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return sheet, nil, fmt.Errorf("csv233/excel: read sheet %q: %w", sheet, err)
	}
	return sheet, rows, nil
}

// Reader 把工作表读取为 T 类型的记录
// 表头、列序号映射、未知列、区域文化和错误上限都按 FileDescription 处理；
// 文本编码相关选项对 xlsx 不适用
type Reader[T any] struct {
	inner *csv233.Reader[T]
	opts  options
}

// NewReader 创建 Excel 读取器
// 参数:
//
//	desc: 文件描述，nil 时使用默认值
//	opts: 读取选项
func NewReader[T any](desc *csv233.FileDescription, opts ...Option) (*Reader[T], error) {
	inner, err := csv233.NewReader[T](desc)
	if err != nil {
		return nil, err
	}
	return &Reader[T]{inner: inner, opts: newOptions(opts)}, nil
}

// Read 从 xlsx 字节流读取记录
func (r *Reader[T]) Read(src io.Reader) ([]T, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("csv233/excel: open workbook: %w", err)
	}
	defer f.Close()
	return r.readFile(f)
}

// ReadFile 读取 xlsx 文件
func (r *Reader[T]) ReadFile(path string) ([]T, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		csv233.GetLogger().Error(err, "打开Excel文件失败", "path", path)
		return nil, err
	}
	defer f.Close()

	records, err := r.readFile(f)
	if err != nil {
		csv233.GetLogger().Error(err, "读取Excel文件失败", "path", path)
		return nil, err
	}
	csv233.GetLogger().Info("Excel文件读取完成", "path", path, "count", len(records))
	return records, nil
}

func (r *Reader[T]) readFile(f *excelize.File) ([]T, error) {
	sheet, rows, err := loadRows(f, r.opts)
	if err != nil {
		return nil, err
	}
	csv233.GetLogger().V(1).Info("读取工作表", "sheet", sheet, "rows", len(rows))
	return r.inner.ReadRows(&sheetRows{rows: rows})
}

// Writer 把 T 类型的记录写入工作簿的 Sheet1
// 单元格是按文化格式化后的文本，与 CSV 输出一致，读回时按同样的文化解析
type Writer[T any] struct {
	inner *csv233.Writer[T]
}

// NewWriter 创建 Excel 写入器，desc 为 nil 时使用默认值
func NewWriter[T any](desc *csv233.FileDescription) (*Writer[T], error) {
	inner, err := csv233.NewWriter[T](desc)
	if err != nil {
		return nil, err
	}
	return &Writer[T]{inner: inner}, nil
}

// Workbook 生成包含全部记录的工作簿，调用方负责 Close
func (w *Writer[T]) Workbook(records []T) (*excelize.File, error) {
	rows, err := w.inner.Rows(records)
	if err != nil {
		return nil, err
	}
	return newWorkbook(rows)
}

// Write 以 xlsx 格式写出
func (w *Writer[T]) Write(dst io.Writer, records []T) error {
	f, err := w.Workbook(records)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(dst)
}

// WriteFile 写出 xlsx 文件，文件已存在时覆盖
func (w *Writer[T]) WriteFile(path string, records []T) error {
	f, err := w.Workbook(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		csv233.GetLogger().Error(err, "写入Excel文件失败", "path", path)
		return err
	}
	csv233.GetLogger().Info("Excel文件写入完成", "path", path, "count", len(records))
	return nil
}

func newWorkbook(rows [][]string) (*excelize.File, error) {
	f := excelize.NewFile()
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				_ = f.Close()
				return nil, err
			}
			if err := f.SetCellValue(DefaultSheet, cell, value); err != nil {
				_ = f.Close()
				return nil, err
			}
		}
	}
	return f, nil
}

// ReadTableFile 读取工作表为无类型表格，名称取文件名去掉扩展名
func ReadTableFile(desc *csv233.FileDescription, path string, opts ...Option) (*dto.TableDto, error) {
	if desc == nil {
		desc = csv233.NewFileDescription()
	}
	s, err := desc.Settings()
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	_, rows, err := loadRows(f, newOptions(opts))
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	suffix := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	table, err := csv233.ReadTableRows(s, &sheetRows{rows: rows}, name, "excel", suffix)
	if err != nil {
		csv233.GetLogger().Error(err, "读取Excel表格失败", "path", path)
		return nil, err
	}
	return table, nil
}

// WriteTableFile 把无类型表格写为 xlsx 文件
func WriteTableFile(desc *csv233.FileDescription, path string, table *dto.TableDto) error {
	if table == nil {
		return errors.New("csv233/excel: nil table")
	}
	if desc == nil {
		desc = csv233.NewFileDescription()
	}
	s, err := desc.Settings()
	if err != nil {
		return err
	}
	f, err := newWorkbook(csv233.TableRows(s, table))
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}
