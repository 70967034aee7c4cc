package csv233

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name string
	Age  int
}

type product struct {
	Name     string    `csv233:"Name,index=1,required"`
	Price    float64   `csv233:"Price,index=2"`
	Stock    *int      `csv233:"Stock,index=3"`
	Launched time.Time `csv233:"Launched,index=4,format=2006-01-02"`
}

// checkedProduct 库存为负数时校验失败
type checkedProduct struct {
	Name    string `csv233:"Name"`
	Stock   int    `csv233:"Stock"`
	trimmed bool
}

func (p *checkedProduct) AfterRead() {
	p.Name = strings.ToUpper(p.Name)
	p.trimmed = true
}

func (p *checkedProduct) Check() error {
	if p.Stock < 0 {
		return fmt.Errorf("stock %d is negative", p.Stock)
	}
	return nil
}

// invariantDesc 固定使用不变文化，避免依赖测试机器的区域设置
func invariantDesc(t *testing.T) *FileDescription {
	t.Helper()
	desc := NewFileDescription()
	require.NoError(t, desc.SetCultureName(""))
	return desc
}

// productCSV 生成 n 行数据，bad 中的行号（从 1 开始的数据行）价格非法
func productCSV(n int, bad ...int) string {
	isBad := make(map[int]bool, len(bad))
	for _, b := range bad {
		isBad[b] = true
	}
	var sb strings.Builder
	sb.WriteString("Name,Price,Stock,Launched\n")
	for i := 1; i <= n; i++ {
		price := fmt.Sprintf("%d.5", i)
		if isBad[i] {
			price = "abc"
		}
		fmt.Fprintf(&sb, "item%d,%s,%d,2024-03-14\n", i, price, i)
	}
	return sb.String()
}

func readProducts(t *testing.T, desc *FileDescription, input string) ([]product, error) {
	t.Helper()
	r, err := NewReader[product](desc)
	require.NoError(t, err)
	return r.Read(strings.NewReader(input))
}

func TestReaderReadsHeaderMappedRows(t *testing.T) {
	input := "Launched,Stock,Name,Price\n2024-03-14,5,Cheese,12.5\n2024-01-02,,Bread,1.25\n"

	records, err := readProducts(t, invariantDesc(t), input)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Cheese", records[0].Name)
	assert.Equal(t, 12.5, records[0].Price)
	require.NotNil(t, records[0].Stock)
	assert.Equal(t, 5, *records[0].Stock)
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), records[0].Launched)

	assert.Equal(t, "Bread", records[1].Name)
	assert.Nil(t, records[1].Stock, "empty value leaves pointer nil")
}

func TestReaderHeaderIsCaseInsensitive(t *testing.T) {
	desc := invariantDesc(t)
	r, err := NewReader[person](desc)
	require.NoError(t, err)

	people, err := r.Read(strings.NewReader("name, AGE \nAda,36\n"))
	require.NoError(t, err)
	assert.Equal(t, []person{{Name: "Ada", Age: 36}}, people)
}

func TestReaderUnknownColumn(t *testing.T) {
	desc := invariantDesc(t)
	r, err := NewReader[person](desc)
	require.NoError(t, err)

	_, err = r.Read(strings.NewReader("Name,Colour,Age\nAda,red,36\n"))
	var colErr *ColumnError
	require.ErrorAs(t, err, &colErr)
	assert.ErrorIs(t, err, ErrUnknownColumn)
	assert.Equal(t, "Colour", colErr.Name)
	assert.Equal(t, 2, colErr.Index)

	desc.IgnoreUnknownColumns = true
	r, err = NewReader[person](desc)
	require.NoError(t, err)
	people, err := r.Read(strings.NewReader("Name,Colour,Age\nAda,red,36\n"))
	require.NoError(t, err)
	assert.Equal(t, []person{{Name: "Ada", Age: 36}}, people)
}

func TestReaderTooManyFields(t *testing.T) {
	desc := invariantDesc(t)
	r, err := NewReader[person](desc)
	require.NoError(t, err)

	_, err = r.Read(strings.NewReader("Name,Age\nAda,36,extra\n"))
	var agg *AggregateParseError
	require.ErrorAs(t, err, &agg)
	require.Equal(t, 1, agg.Len())
	assert.ErrorIs(t, agg.Errors[0], ErrTooManyFields)
	assert.Equal(t, 2, agg.Errors[0].Line)
	assert.Equal(t, 3, agg.Errors[0].Index)
	assert.Equal(t, "extra", agg.Errors[0].Value)

	desc.IgnoreUnknownColumns = true
	r, err = NewReader[person](desc)
	require.NoError(t, err)
	people, err := r.Read(strings.NewReader("Name,Age\nAda,36,extra\n"))
	require.NoError(t, err)
	assert.Equal(t, []person{{Name: "Ada", Age: 36}}, people)
}

func TestReaderFieldIndexMapping(t *testing.T) {
	desc := invariantDesc(t)
	desc.UseFieldIndexForReadingData = true

	// 表头列名与字段无关，只按位置映射
	records, err := readProducts(t, desc, "Foo,Bar,Baz,Qux\nCheese,12.5,5,2024-03-14\n")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Cheese", records[0].Name)
	assert.Equal(t, 12.5, records[0].Price)
}

func TestReaderWithoutHeader(t *testing.T) {
	desc := invariantDesc(t)
	desc.FirstLineHasColumnNames = false

	records, err := readProducts(t, desc, "Cheese,12.5,5,2024-03-14\nBread,1.25\n")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Bread", records[1].Name)
	assert.Nil(t, records[1].Stock, "missing trailing fields are empty")
	assert.True(t, records[1].Launched.IsZero())
}

func TestReaderRequiredField(t *testing.T) {
	desc := invariantDesc(t)

	_, err := readProducts(t, desc, "Name,Price\n,1.5\n")
	var agg *AggregateParseError
	require.ErrorAs(t, err, &agg)
	require.Equal(t, 1, agg.Len())
	assert.ErrorIs(t, agg.Errors[0], ErrMissingRequiredField)
	assert.Equal(t, "Name", agg.Errors[0].Column)

	_, err = readProducts(t, desc, "Price\n1.5\n2.5\n")
	require.ErrorAs(t, err, &agg)
	assert.Equal(t, 2, agg.Len(), "absent required column fails every row")
	assert.ErrorIs(t, err, ErrMissingRequiredField)
}

func TestReaderExceptionThreshold(t *testing.T) {
	testCases := []struct {
		name      string
		max       int
		rows      int
		bad       []int
		wantErrs  int
		wantLines []int
	}{
		{name: "zero raises on first error", max: 0, rows: 10, bad: []int{3, 6}, wantErrs: 1, wantLines: []int{4}},
		{name: "two stops at second error", max: 2, rows: 100, bad: []int{10, 20, 30}, wantErrs: 2, wantLines: []int{11, 21}},
		{name: "unlimited collects all", max: UnlimitedExceptions, rows: 100, bad: []int{1, 25, 50, 75, 100}, wantErrs: 5, wantLines: []int{2, 26, 51, 76, 101}},
		{name: "below default collects all", max: DefaultMaximumExceptionCount, rows: 100, bad: []int{5, 6, 7}, wantErrs: 3, wantLines: []int{6, 7, 8}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			desc := invariantDesc(t)
			desc.MaximumExceptionCount = tc.max

			records, err := readProducts(t, desc, productCSV(tc.rows, tc.bad...))
			assert.Nil(t, records)

			var agg *AggregateParseError
			require.ErrorAs(t, err, &agg)
			require.Equal(t, tc.wantErrs, agg.Len())
			for i, line := range tc.wantLines {
				assert.Equal(t, line, agg.Errors[i].Line)
				assert.Equal(t, "Price", agg.Errors[i].Column)
				assert.Equal(t, 2, agg.Errors[i].Index)
				assert.Equal(t, "abc", agg.Errors[i].Value)
				assert.ErrorIs(t, agg.Errors[i], ErrValueFormat)
			}
		})
	}
}

func TestReaderSyntaxErrorsAreRowErrors(t *testing.T) {
	desc := invariantDesc(t)
	r, err := NewReader[person](desc)
	require.NoError(t, err)

	_, err = r.Read(strings.NewReader("Name,Age\nA\"da,1\nBob,2\n"))
	var agg *AggregateParseError
	require.ErrorAs(t, err, &agg)
	require.Equal(t, 1, agg.Len())
	assert.ErrorIs(t, agg, ErrBareQuote)
	assert.Equal(t, 2, agg.Errors[0].Line)
}

func TestReaderTextAfterQuoteCountsTowardLimit(t *testing.T) {
	desc := invariantDesc(t)
	desc.MaximumExceptionCount = 1
	r, err := NewReader[person](desc)
	require.NoError(t, err)

	_, err = r.Read(strings.NewReader("Name,Age\n\"Ada\"x,1\n\"Bob\"y,2\nCy,3\n"))
	var agg *AggregateParseError
	require.ErrorAs(t, err, &agg)
	require.Equal(t, 1, agg.Len())
	assert.ErrorIs(t, agg.Errors[0], ErrBareQuote)
	assert.Equal(t, 2, agg.Errors[0].Line)
}

func TestReaderDutchCulture(t *testing.T) {
	desc := NewFileDescription()
	require.NoError(t, desc.SetCultureName("nl-NL"))

	records, err := readProducts(t, desc, "Name,Price,Launched\nKaas,\"1.234,5\",14-3-2024\nBrood,\"2,25\",2024-01-02\n")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 1234.5, records[0].Price)
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), records[0].Launched)
	assert.Equal(t, 2.25, records[1].Price)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), records[1].Launched, "column format still accepted")
}

func TestReaderUseOutputFormatForParsing(t *testing.T) {
	input := "Name,Launched\nCheese,03/14/2024\n"

	desc := invariantDesc(t)
	records, err := readProducts(t, desc, input)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), records[0].Launched)

	desc.UseOutputFormatForParsingCsvValue = true
	_, err = readProducts(t, desc, input)
	var agg *AggregateParseError
	require.ErrorAs(t, err, &agg)
	assert.ErrorIs(t, agg, ErrValueFormat)
	assert.Equal(t, "Launched", agg.Errors[0].Column)
}

func TestReaderRecordHooks(t *testing.T) {
	r, err := NewReader[checkedProduct](invariantDesc(t))
	require.NoError(t, err)

	records, err := r.Read(strings.NewReader("Name,Stock\ncheese,1\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "CHEESE", records[0].Name)
	assert.True(t, records[0].trimmed)

	_, err = r.Read(strings.NewReader("Name,Stock\ncheese,1\nbread,-2\n"))
	var agg *AggregateParseError
	require.ErrorAs(t, err, &agg)
	require.Equal(t, 1, agg.Len())
	assert.Equal(t, 3, agg.Errors[0].Line)
	assert.Contains(t, agg.Error(), "stock -2 is negative")
}

func TestReaderReadFuncStops(t *testing.T) {
	r, err := NewReader[person](invariantDesc(t))
	require.NoError(t, err)

	stop := errors.New("stop")
	var seen []int
	err = r.ReadFunc(strings.NewReader("Name,Age\nA,1\nB,2\nC,3\n"), func(line int, p person) error {
		seen = append(seen, line)
		if p.Name == "B" {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []int{2, 3}, seen)
}

func TestReaderEmptyInput(t *testing.T) {
	r, err := NewReader[person](invariantDesc(t))
	require.NoError(t, err)

	people, err := r.Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, people)
}

func TestReaderReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("\xEF\xBB\xBFName,Age\nAda,36\n"), 0o644))

	r, err := NewReader[person](invariantDesc(t))
	require.NoError(t, err)
	people, err := r.ReadFile(path)
	require.NoError(t, err, "UTF-8 BOM is consumed before the header")
	assert.Equal(t, []person{{Name: "Ada", Age: 36}}, people)

	_, err = r.ReadFile(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReaderByteOrderMarkNotDetected(t *testing.T) {
	desc := invariantDesc(t)
	desc.DetectEncodingFromByteOrderMarks = false

	r, err := NewReader[person](desc)
	require.NoError(t, err)
	_, err = r.Read(strings.NewReader("\xEF\xBB\xBFName,Age\nAda,36\n"))
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestNewReaderRejectsInvalidInput(t *testing.T) {
	_, err := NewReader[int](nil)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = NewReaderWithSettings[person](Settings{})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	desc := NewFileDescription()
	desc.MaximumExceptionCount = -3
	_, err = NewReader[person](desc)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
