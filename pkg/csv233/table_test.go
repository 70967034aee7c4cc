package csv233

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/neko233-com/csv233-go/pkg/csv233/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTableWithHeader(t *testing.T) {
	table, err := ReadTable(invariantDesc(t), "fruit", strings.NewReader(" id ,name\n1,apple\n2,\"pear, green\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "fruit", table.Name)
	assert.Equal(t, "csv", table.Type)
	assert.Equal(t, []string{"id", "name"}, table.Header)
	assert.Equal(t, []map[string]string{
		{"id": "1", "name": "apple"},
		{"id": "2", "name": "pear, green"},
	}, table.DataList)
}

func TestReadTableExtraFields(t *testing.T) {
	desc := invariantDesc(t)
	_, err := ReadTable(desc, "t", strings.NewReader("a\n1,2\n"))
	var agg *AggregateParseError
	require.ErrorAs(t, err, &agg)
	assert.ErrorIs(t, agg, ErrTooManyFields)

	desc.IgnoreUnknownColumns = true
	table, err := ReadTable(desc, "t", strings.NewReader("a\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, []map[string]string{{"a": "1"}}, table.DataList)
}

func TestReadTableWithoutHeader(t *testing.T) {
	desc := invariantDesc(t)
	desc.FirstLineHasColumnNames = false

	table, err := ReadTable(desc, "t", strings.NewReader("1\n2,3,4\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Column1", "Column2", "Column3"}, table.Header)
	assert.Equal(t, []map[string]string{
		{"Column1": "1"},
		{"Column1": "2", "Column2": "3", "Column3": "4"},
	}, table.DataList)
}

func TestWriteTableRoundTrip(t *testing.T) {
	desc := invariantDesc(t)
	in := &dto.TableDto{
		Header: []string{"id", "note"},
		DataList: []map[string]string{
			{"id": "1", "note": "line1\nline2"},
			{"id": "2"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(desc, &buf, in))
	assert.Equal(t, "id,note\n1,\"line1\nline2\"\n2,\n", buf.String())

	out, err := ReadTable(desc, "t", &buf)
	require.NoError(t, err)
	assert.Equal(t, in.Header, out.Header)
	assert.Equal(t, "line1\nline2", out.DataList[0]["note"])
	assert.Equal(t, "", out.DataList[1]["note"])
}

func TestReadTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monsters.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,hp\n1,30\n"), 0o644))

	table, err := ReadTableFile(invariantDesc(t), path)
	require.NoError(t, err)
	assert.Equal(t, "monsters", table.Name)
	assert.Equal(t, [][]string{{"1", "30"}}, table.Rows())
}
