package csv233

import (
	"errors"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var errUnknownEncoding = errors.New("unknown text encoding")

// TextEncoding 已注册的文本编码
// 零值表示"未设置"
type TextEncoding struct {
	name string
	enc  encoding.Encoding
}

// Name 编码的规范名称（MIME 首选名或 IANA 名称），如 "UTF-8"、"windows-1252"
func (e TextEncoding) Name() string { return e.name }

// Encoding 底层 x/text 编码
func (e TextEncoding) Encoding() encoding.Encoding { return e.enc }

// IsZero 是否为未设置的零值
func (e TextEncoding) IsZero() bool { return e.enc == nil }

func (e TextEncoding) String() string { return e.name }

// encodingRegistry 进程级编码注册表
// 在包初始化时一次性填充，FileDescription 只按名称选择，不修改全局状态
type encodingRegistry struct {
	mu     sync.RWMutex
	byName map[string]TextEncoding
}

var encodings = &encodingRegistry{byName: make(map[string]TextEncoding)}

func init() {
	encodings.put("UTF-8", unicode.UTF8)
	encodings.put("UTF-8-BOM", unicode.UTF8BOM)
	encodings.put("UTF-16", unicode.UTF16(unicode.LittleEndian, unicode.UseBOM))
	encodings.put("UTF-16LE", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM))
	encodings.put("UTF-16BE", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM))

	groups := [][]encoding.Encoding{
		charmap.All,
		japanese.All,
		korean.All,
		simplifiedchinese.All,
		traditionalchinese.All,
	}
	for _, group := range groups {
		for _, enc := range group {
			name, err := canonicalName(enc)
			if err != nil {
				continue
			}
			encodings.put(name, enc)
		}
	}
}

func (r *encodingRegistry) put(name string, enc encoding.Encoding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[strings.ToLower(name)] = TextEncoding{name: name, enc: enc}
}

func (r *encodingRegistry) get(name string) (TextEncoding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[strings.ToLower(name)]
	return e, ok
}

// lookup 先按名称查找，再通过 IANA 别名（如 "latin1"、"cp1252"）找到规范名称
func (r *encodingRegistry) lookup(name string) (TextEncoding, error) {
	trimmed := strings.TrimSpace(name)
	if e, ok := r.get(trimmed); ok {
		return e, nil
	}
	enc, err := ianaindex.IANA.Encoding(trimmed)
	if err != nil || enc == nil {
		return TextEncoding{}, invalidConfig("textEncoding", name, errUnknownEncoding)
	}
	canonical, err := canonicalName(enc)
	if err != nil {
		return TextEncoding{}, invalidConfig("textEncoding", name, err)
	}
	if e, ok := r.get(canonical); ok {
		return e, nil
	}
	return TextEncoding{name: canonical, enc: enc}, nil
}

// canonicalName 优先使用 MIME 首选名（"ISO-8859-1"），没有时退回 IANA 名称
func canonicalName(enc encoding.Encoding) (string, error) {
	if name, err := ianaindex.MIME.Name(enc); err == nil && name != "" {
		return name, nil
	}
	name, err := ianaindex.IANA.Name(enc)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", errUnknownEncoding
	}
	return name, nil
}

// LookupEncoding 从进程级注册表中按名称（或 IANA 别名）查找编码
// 参数:
//
//	name: 编码名称，大小写不敏感
//
// 返回值:
//
//	TextEncoding: 找到的编码
//	error: 未知编码时返回 ErrInvalidConfiguration
func LookupEncoding(name string) (TextEncoding, error) {
	return encodings.lookup(name)
}

// RegisterEncoding 注册自定义编码，用于注册表中没有的代码页
// 同名编码会被覆盖
func RegisterEncoding(name string, enc encoding.Encoding) (TextEncoding, error) {
	if strings.TrimSpace(name) == "" || enc == nil {
		return TextEncoding{}, invalidConfig("textEncoding", name, errUnknownEncoding)
	}
	encodings.put(name, enc)
	e, _ := encodings.get(name)
	getLogger().V(1).Info("注册文本编码", "name", name)
	return e, nil
}

// UTF8 默认编码
func UTF8() TextEncoding {
	e, _ := encodings.get("UTF-8")
	return e
}

// newDecodingReader 按配置解码输入字节流
// detectBOM 为 true 时，开头的 UTF-8/UTF-16 BOM 覆盖配置的编码
func newDecodingReader(r io.Reader, enc TextEncoding, detectBOM bool) io.Reader {
	dec := enc.enc.NewDecoder()
	if detectBOM {
		return transform.NewReader(r, unicode.BOMOverride(dec))
	}
	return transform.NewReader(r, dec)
}

// newEncodingWriter 按配置编码输出，调用方必须 Close 以刷新尾部数据
func newEncodingWriter(w io.Writer, enc TextEncoding) io.WriteCloser {
	return transform.NewWriter(w, enc.enc.NewEncoder())
}
