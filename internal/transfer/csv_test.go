package transfer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/catalog"
	"github.com/ytget/stockdesk/internal/model"
)

func TestWriteCSVUsesStoredCodes(t *testing.T) {
	desc := catalog.MustGet(catalog.Orders)
	var buf bytes.Buffer
	err := WriteCSV(&buf, desc, []model.Record{
		{"order_id": "A1", "order_type": "inbound", "status": "waiting", "count": float64(3)},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(desc.CSVColumns, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "A1,inbound,"))
	assert.Contains(t, lines[1], ",waiting,")
}

func TestWriteCSVRejectsResourceWithoutColumns(t *testing.T) {
	err := WriteCSV(&bytes.Buffer{}, catalog.MustGet(catalog.Employees), nil)
	require.Error(t, err)
}

func TestReadCSVHeaderMismatch(t *testing.T) {
	in := "cargo_name,model,count\nbolt,M6,1\n"
	_, err := ReadCSV(strings.NewReader(in), catalog.MustGet(catalog.Inventory))
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.ErrorIs(t, err, ErrHeaderMismatch)
	assert.Contains(t, apperr.Message(err), "categories")
	assert.Contains(t, apperr.Message(err), "price")
}

func TestReadCSVEmptyFile(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), catalog.MustGet(catalog.Inventory))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestReadCSVSkipsIncompleteRows(t *testing.T) {
	in := "\ufeffcargo_id,cargo_name,model,categories,count,price,note\n" +
		"1,bolt,M6,tools,10,0.5,first\n" +
		"2,nut,,tools,4,0.2,missing model\n" +
		"3,washer,W1,tools,many,0.1,bad count\n" +
		"4, screw ,S3,tools,7,1.25,\n"

	ds, err := ReadCSV(strings.NewReader(in), catalog.MustGet(catalog.Inventory))
	require.NoError(t, err)

	assert.Equal(t, 4, ds.Total())
	assert.Equal(t, []int{3, 4}, ds.SkippedLines)
	require.Len(t, ds.Rows, 2)

	assert.Equal(t, model.Record{"cargo_name": "bolt", "model": "M6", "categories": "tools", "count": 10, "price": 0.5}, ds.Rows[0])
	assert.Equal(t, "screw", ds.Rows[1]["cargo_name"])
	assert.Equal(t, 1.25, ds.Rows[1]["price"])
	assert.NotContains(t, ds.Rows[0], "cargo_id")
	assert.NotContains(t, ds.Rows[0], "note")
}

func TestReadCSVOptionalFieldsOmitted(t *testing.T) {
	desc := catalog.MustGet(catalog.Orders)
	in := strings.Join(desc.ImportFields, ",") + "\n" +
		"O-1,inbound,7,bolt,M6,tools,ACME,,waiting,Li,,,0.5,3\n"

	ds, err := ReadCSV(strings.NewReader(in), desc)
	require.NoError(t, err)
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, "ACME", ds.Rows[0]["provider"])
	assert.NotContains(t, ds.Rows[0], "project")
	assert.Equal(t, 3, ds.Rows[0]["count"])
}
