package csv233

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type level int

func (l level) MarshalText() ([]byte, error) {
	return []byte([]string{"low", "high"}[l]), nil
}

func (l *level) UnmarshalText(b []byte) error {
	switch string(b) {
	case "low":
		*l = 0
	case "high":
		*l = 1
	default:
		return os.ErrInvalid
	}
	return nil
}

type report struct {
	Title string    `csv233:"Title"`
	Score float64   `csv233:"Score,format=%.2f"`
	Count *int      `csv233:"Count"`
	Day   time.Time `csv233:"Day,format=2006-01-02"`
	Level level     `csv233:"Level"`
	Ok    bool      `csv233:"Ok"`
}

func intPtr(n int) *int { return &n }

func TestWriterWritesHeaderAndRows(t *testing.T) {
	w, err := NewWriter[report](invariantDesc(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Title", "Score", "Count", "Day", "Level", "Ok"}, w.Header())

	var buf bytes.Buffer
	err = w.Write(&buf, []report{
		{Title: "plain", Score: 1.5, Count: intPtr(3), Day: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), Level: 1, Ok: true},
		{Title: `has, comma and "quote"`, Score: 2},
		{Title: " padded", Score: 0},
	})
	require.NoError(t, err)

	want := "Title,Score,Count,Day,Level,Ok\n" +
		"plain,1.50,3,2024-03-14,high,true\n" +
		"\"has, comma and \"\"quote\"\"\",2.00,,0001-01-01,low,false\n" +
		"\" padded\",0.00,,0001-01-01,low,false\n"
	assert.Equal(t, want, buf.String())
}

func TestWriterWithoutHeader(t *testing.T) {
	desc := invariantDesc(t)
	desc.FirstLineHasColumnNames = false

	w, err := NewWriter[person](desc)
	require.NoError(t, err)
	rows, err := w.Rows([]person{{Name: "Ada", Age: 36}})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Ada", "36"}}, rows)
}

func TestWriterDutchCulture(t *testing.T) {
	desc := NewFileDescription()
	require.NoError(t, desc.SetCultureName("nl-NL"))

	w, err := NewWriter[report](desc)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf, []report{{Title: "kaas", Score: 12.5}}))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `kaas,"12,50",,0001-01-01,low,false`, lines[1])
}

func TestWriterReaderRoundTrip(t *testing.T) {
	for _, culture := range []string{"", "en-US", "nl-NL", "de-DE"} {
		t.Run("culture="+culture, func(t *testing.T) {
			desc := NewFileDescription()
			require.NoError(t, desc.SetCultureName(culture))

			in := []report{
				{Title: "first", Score: 1234.25, Count: intPtr(7), Day: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), Level: 1, Ok: true},
				{Title: "second, with comma", Score: -0.5},
			}

			w, err := NewWriter[report](desc)
			require.NoError(t, err)
			var buf bytes.Buffer
			require.NoError(t, w.Write(&buf, in))

			r, err := NewReader[report](desc)
			require.NoError(t, err)
			out, err := r.Read(&buf)
			require.NoError(t, err)

			in[1].Day = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
			assert.Equal(t, in, out)
		})
	}
}

func TestWriterEncoding(t *testing.T) {
	desc := invariantDesc(t)
	require.NoError(t, desc.SetTextEncodingName("windows-1252"))

	w, err := NewWriter[person](desc)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, w.WriteFile(path, []person{{Name: "José", Age: 40}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("Name,Age\nJos\xe9,40\n"), data)

	r, err := NewReader[person](desc)
	require.NoError(t, err)
	people, err := r.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []person{{Name: "José", Age: 40}}, people)
}

func TestFieldNeedsQuote(t *testing.T) {
	testCases := map[string]bool{
		"":        false,
		"plain":   false,
		"a,b":     true,
		`a"b`:     true,
		"a\nb":    true,
		"a\rb":    true,
		" lead":   true,
		"trail\t": true,
		"in side": false,
	}
	for in, want := range testCases {
		assert.Equal(t, want, fieldNeedsQuote(in), "%q", in)
	}
}
