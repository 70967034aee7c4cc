package csv233

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// RowSource 按行提供原始字段
// NextRow 在输入结束时返回 io.EOF；返回 *RowParseError 表示该行语法错误，
// 读取可以继续；其它错误视为致命错误。
type RowSource interface {
	NextRow() (fields []string, line int, err error)
}

// SliceRowSource 把内存中的行包装为 RowSource，行号从 1 开始
type SliceRowSource struct {
	Rows [][]string
	pos  int
}

func (s *SliceRowSource) NextRow() ([]string, int, error) {
	if s.pos >= len(s.Rows) {
		return nil, s.pos, io.EOF
	}
	s.pos++
	return s.Rows[s.pos-1], s.pos, nil
}

// tokenizer 逗号分隔、双引号包裹的记录切分器，作用于已解码的文本
// 支持 "" 转义、引号内换行、CRLF/LF/CR 行尾，空行跳过
type tokenizer struct {
	r     *bufio.Reader
	comma rune
	quote rune
	line  int // 已消费的物理行数
	done  bool
}

func newTokenizer(r io.Reader) *tokenizer {
	return &tokenizer{
		r:     bufio.NewReader(r),
		comma: ',',
		quote: '"',
	}
}

// NextRow 读取下一条记录
func (t *tokenizer) NextRow() ([]string, int, error) {
	if t.done {
		return nil, t.line, io.EOF
	}

	var (
		fields  []string
		field   strings.Builder
		quoted  bool // 当前字段以引号开始
		inQuote bool
		column  = 1
	)
	start := t.line + 1

	for {
		r, _, err := t.r.ReadRune()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, start, err
			}
			t.done = true
			if inQuote {
				t.line++
				return nil, start, &RowParseError{Line: start, Err: ErrUnterminatedQuote}
			}
			if len(fields) == 0 && field.Len() == 0 && !quoted {
				return nil, start, io.EOF
			}
			t.line++
			return append(fields, field.String()), start, nil
		}

		if inQuote {
			switch r {
			case t.quote:
				next, _, err := t.r.ReadRune()
				if err == nil && next == t.quote {
					field.WriteRune(t.quote)
					continue
				}
				if err == nil {
					_ = t.r.UnreadRune()
				}
				inQuote = false
			case '\n':
				t.line++
				field.WriteRune(r)
			default:
				field.WriteRune(r)
			}
			continue
		}

		if quoted && r != t.comma && r != '\r' && r != '\n' {
			// 闭合引号后只能是分隔符或行尾
			t.skipLine()
			return nil, start, &RowParseError{Line: start, Index: column, Err: ErrBareQuote}
		}

		switch r {
		case t.comma:
			fields = append(fields, field.String())
			field.Reset()
			quoted = false
			column++
		case '\r', '\n':
			if r == '\r' {
				if next, _, err := t.r.ReadRune(); err == nil && next != '\n' {
					_ = t.r.UnreadRune()
				}
			}
			t.line++
			if len(fields) == 0 && field.Len() == 0 && !quoted {
				start = t.line + 1
				continue
			}
			return append(fields, field.String()), start, nil
		case t.quote:
			if field.Len() == 0 && !quoted {
				quoted = true
				inQuote = true
				continue
			}
			t.skipLine()
			return nil, start, &RowParseError{Line: start, Index: column, Err: ErrBareQuote}
		default:
			field.WriteRune(r)
		}
	}
}

// skipLine 丢弃到行尾，下一条记录从新的一行开始
func (t *tokenizer) skipLine() {
	for {
		r, _, err := t.r.ReadRune()
		if err != nil {
			t.done = true
			t.line++
			return
		}
		if r == '\n' {
			t.line++
			return
		}
		if r == '\r' {
			if next, _, err := t.r.ReadRune(); err == nil && next != '\n' {
				_ = t.r.UnreadRune()
			}
			t.line++
			return
		}
	}
}
