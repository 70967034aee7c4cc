package csv233

import (
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// TagName 列发现使用的结构体标签名
const TagName = "csv233"

var (
	timeType            = reflect.TypeOf(time.Time{})
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// column 一个参与读写的结构体字段
type column struct {
	name     string
	field    int // 结构体字段下标
	explicit int // 标签中的 index，未设置为 0
	order    int // 声明顺序
	format   string
	required bool
	typ      reflect.Type
}

// columnSet 记录类型的列元数据
type columnSet struct {
	typ     reflect.Type
	columns []*column // 按 index 升序，再按声明顺序
	byName  map[string]*column
	byFold  map[string]*column
}

// lookup 按列名查找，精确匹配优先，其次大小写不敏感
func (s *columnSet) lookup(name string) (*column, bool) {
	if c, ok := s.byName[name]; ok {
		return c, true
	}
	c, ok := s.byFold[strings.ToLower(name)]
	return c, ok
}

// names 按写出顺序的列名
func (s *columnSet) names() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.name
	}
	return names
}

type columnKey struct {
	typ     reflect.Type
	enforce bool
}

// columnRepository 列元数据仓库，按 (类型, 是否强制标签) 缓存
// 线程安全，支持并发读写
type columnRepository struct {
	mu     sync.RWMutex
	byType map[columnKey]*columnSet
}

var columns = &columnRepository{byType: make(map[columnKey]*columnSet)}

// get 获取列元数据，首次访问时通过反射解析并缓存
func (r *columnRepository) get(typ reflect.Type, enforce bool) (*columnSet, error) {
	key := columnKey{typ: typ, enforce: enforce}

	r.mu.RLock()
	set, ok := r.byType[key]
	r.mu.RUnlock()
	if ok {
		return set, nil
	}

	set, err := discoverColumns(typ, enforce)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.byType[key] = set
	r.mu.Unlock()

	getLogger().V(1).Info("解析记录列信息", "type", typ.String(), "columns", set.names())
	return set, nil
}

// discoverColumns 扫描结构体字段，建立列信息
// enforce 为 true 时只识别带 csv233 标签的字段
func discoverColumns(typ reflect.Type, enforce bool) (*columnSet, error) {
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v is not a struct", ErrUnsupportedType, typ)
	}

	set := &columnSet{
		typ:    typ,
		byName: make(map[string]*column),
		byFold: make(map[string]*column),
	}

	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}

		tag, tagged := sf.Tag.Lookup(TagName)
		if tag == "-" {
			continue
		}
		if enforce && !tagged {
			continue
		}

		col, err := parseColumnTag(sf, tag)
		if err != nil {
			return nil, err
		}
		if !supportedType(sf.Type) {
			if tagged {
				return nil, fmt.Errorf("%w: field %s.%s of type %s", ErrUnsupportedType, typ.Name(), sf.Name, sf.Type)
			}
			continue
		}
		col.field = i
		col.order = len(set.columns)

		if _, dup := set.byName[col.name]; dup {
			return nil, fmt.Errorf("%w: duplicate column name %q in %s", ErrUnsupportedType, col.name, typ.Name())
		}
		set.columns = append(set.columns, col)
		set.byName[col.name] = col
		if _, ok := set.byFold[strings.ToLower(col.name)]; !ok {
			set.byFold[strings.ToLower(col.name)] = col
		}
	}

	sort.SliceStable(set.columns, func(a, b int) bool {
		ca, cb := set.columns[a], set.columns[b]
		ia, ib := effectiveIndex(ca), effectiveIndex(cb)
		if ia != ib {
			return ia < ib
		}
		return ca.order < cb.order
	})
	return set, nil
}

// effectiveIndex 未设置 index 的列排在所有显式 index 之后
func effectiveIndex(c *column) int {
	if c.explicit > 0 {
		return c.explicit
	}
	return int(^uint(0) >> 1)
}

// parseColumnTag 解析 `csv233:"Name,index=2,format=2006-01-02,required"`
func parseColumnTag(sf reflect.StructField, tag string) (*column, error) {
	col := &column{name: sf.Name, typ: sf.Type}
	if tag == "" {
		return col, nil
	}

	parts := strings.Split(tag, ",")
	if name := strings.TrimSpace(parts[0]); name != "" {
		col.name = name
	}
	for _, opt := range parts[1:] {
		opt = strings.TrimSpace(opt)
		key, value, _ := strings.Cut(opt, "=")
		switch key {
		case "":
		case "index":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: field %s: index must be a positive integer, got %q", ErrUnsupportedType, sf.Name, value)
			}
			col.explicit = n
		case "format":
			col.format = value
		case "required":
			col.required = true
		default:
			return nil, fmt.Errorf("%w: field %s: unknown tag option %q", ErrUnsupportedType, sf.Name, key)
		}
	}
	return col, nil
}

// supportedType 字段类型能否与文本互相转换
func supportedType(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
		if t.Kind() == reflect.Ptr {
			return false
		}
	}
	if t == timeType {
		return true
	}
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
