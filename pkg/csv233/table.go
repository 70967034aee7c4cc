package csv233

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/neko233-com/csv233-go/pkg/csv233/dto"
)

// ReadTable 读取无类型表格
// 参数:
//
//	desc: 文件描述，nil 时使用默认值
//	name: 表格名称
//	src: CSV 字节流
//
// 返回值:
//
//	*dto.TableDto: 表格数据
//	error: 配置错误、I/O 错误或 *AggregateParseError
func ReadTable(desc *FileDescription, name string, src io.Reader) (*dto.TableDto, error) {
	if desc == nil {
		desc = NewFileDescription()
	}
	s, err := desc.Settings()
	if err != nil {
		return nil, err
	}
	rows := newTokenizer(newDecodingReader(src, s.encoding, s.detectEncodingFromBOM))
	return ReadTableRows(s, rows, name, "csv", "csv")
}

// ReadTableFile 读取 CSV 文件为无类型表格，名称取文件名去掉扩展名
func ReadTableFile(desc *FileDescription, path string) (*dto.TableDto, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	table, err := ReadTable(desc, name, f)
	if err != nil {
		getLogger().Error(err, "读取CSV表格失败", "path", path)
		return nil, err
	}
	getLogger().Info("CSV表格读取完成", "path", path, "count", len(table.DataList))
	return table, nil
}

// ReadTableRows 从任意行来源读取无类型表格
// 有表头时多出的字段在 IgnoreUnknownColumns 为 false 时是行级错误；
// 无表头时列名为 Column1..N，随最宽的行扩展
func ReadTableRows(s Settings, src RowSource, name, typ, suffix string) (*dto.TableDto, error) {
	table := &dto.TableDto{Type: typ, Suffix: suffix, Name: name}
	collector := newExceptionCollector(s.maximumExceptionCount)

	fixedHeader := s.firstLineHasColumnNames
	if fixedHeader {
		header, line, err := src.NextRow()
		if errors.Is(err, io.EOF) {
			return table, nil
		}
		if err != nil {
			return nil, fmt.Errorf("csv233: header line %d: %w", line, err)
		}
		for _, h := range header {
			table.Header = append(table.Header, strings.TrimSpace(h))
		}
	}

	for {
		fields, line, err := src.NextRow()
		if errors.Is(err, io.EOF) {
			break
		}
		var rowErr *RowParseError
		if errors.As(err, &rowErr) {
			if collector.add(rowErr) {
				return nil, collector.err()
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		if len(fields) > len(table.Header) {
			if fixedHeader {
				if !s.ignoreUnknownColumns {
					extra := len(table.Header)
					if collector.add(&RowParseError{Line: line, Index: extra + 1, Value: fields[extra], Err: ErrTooManyFields}) {
						return nil, collector.err()
					}
					continue
				}
				fields = fields[:len(table.Header)]
			} else {
				for i := len(table.Header); i < len(fields); i++ {
					table.Header = append(table.Header, "Column"+strconv.Itoa(i+1))
				}
			}
		}

		item := make(map[string]string, len(fields))
		for i, value := range fields {
			item[table.Header[i]] = value
		}
		table.DataList = append(table.DataList, item)
	}

	if err := collector.err(); err != nil {
		return nil, err
	}
	return table, nil
}

// WriteTable 写出无类型表格，FirstLineHasColumnNames 为 true 时先写表头
func WriteTable(desc *FileDescription, dst io.Writer, table *dto.TableDto) error {
	if desc == nil {
		desc = NewFileDescription()
	}
	s, err := desc.Settings()
	if err != nil {
		return err
	}
	return writeRows(dst, s.encoding, TableRows(s, table))
}

// TableRows 展开表格为文本行，按配置决定是否包含表头
func TableRows(s Settings, table *dto.TableDto) [][]string {
	rows := make([][]string, 0, len(table.DataList)+1)
	if s.firstLineHasColumnNames {
		rows = append(rows, table.Header)
	}
	return append(rows, table.Rows()...)
}
