package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/catalog"
	"github.com/ytget/stockdesk/internal/model"
	"github.com/ytget/stockdesk/internal/transfer"
)

// cannedTransfers finishes every transfer at once with a fixed outcome.
type cannedTransfers struct {
	final model.TransferTask
	err   error
	src   transfer.Source
}

func (c *cannedTransfers) SetUpdateCallback(func(model.TransferTask)) {}

func (c *cannedTransfers) Export(desc *catalog.Descriptor, src transfer.Source, path string) (model.TransferTask, error) {
	c.src = src
	return model.TransferTask{ID: "t-1", Resource: desc.Name, Path: path}, nil
}

func (c *cannedTransfers) Import(desc *catalog.Descriptor, path string) (model.TransferTask, error) {
	return model.TransferTask{ID: "t-1", Resource: desc.Name, Path: path}, nil
}

func (c *cannedTransfers) SaveReceipt(orderID, path string) (model.TransferTask, error) {
	return model.TransferTask{ID: "t-1", Resource: catalog.Orders, Path: path}, nil
}

func (c *cannedTransfers) GetTask(string) (model.TransferTask, bool) { return c.final, true }

func (c *cannedTransfers) Wait(string) (model.TransferTask, error) { return c.final, c.err }

func TestParseCriteria(t *testing.T) {
	got, err := parseCriteria([]string{"year=2024", " month = 3", "name="})
	require.NoError(t, err)
	assert.Equal(t, "2024", got.Get("year"))
	assert.Equal(t, "3", got.Get("month"))
	assert.Equal(t, "", got.Get("name"))

	_, err = parseCriteria([]string{"year"})
	assert.True(t, errors.Is(err, errUsage))

	_, err = parseCriteria([]string{"=x"})
	assert.True(t, errors.Is(err, errUsage))
}

func TestRunRejectsBadArguments(t *testing.T) {
	c := &cli{out: &bytes.Buffer{}}
	for _, args := range [][]string{
		{"nope"},
		{"list"},
		{"list", "inventory", "zero"},
		{"search", "inventory"},
		{"import", "inventory"},
		{"receipt", "O-1"},
		{"logs", "a", "b"},
	} {
		err := c.run(args)
		assert.True(t, errors.Is(err, errUsage), "args %v: %v", args, err)
	}
}

func TestPrintBatch(t *testing.T) {
	var buf bytes.Buffer
	printBatch(&buf, model.TransferTask{Rows: 3, Result: &model.BatchResult{
		Requested: 3, Succeeded: 2, FailedIDs: []string{"O-9"}, Detailed: true,
	}})
	assert.Equal(t, "imported 2, skipped 0, failed 1 of 3\nfailed: O-9\n", buf.String())

	buf.Reset()
	printBatch(&buf, model.TransferTask{Rows: 4})
	assert.Equal(t, "submitted 4 rows\n", buf.String())
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	c := &cli{out: &buf}
	c.printTable(catalog.MustGet(catalog.Providers), []model.Record{{"id": "1", "provider_name": "Acme"}})
	assert.Contains(t, buf.String(), "Acme")
}

func TestExportCommand(t *testing.T) {
	out := &bytes.Buffer{}
	fake := &cannedTransfers{final: model.TransferTask{Rows: 12, Path: "/tmp/stock.csv", Status: model.StatusCompleted}}
	c := &cli{out: out, transfer: fake}

	require.NoError(t, c.run([]string{"export", "inventory", "/tmp/stock", "categories=tools"}))
	assert.Equal(t, "wrote 12 records to /tmp/stock.csv\n", out.String())
	assert.Equal(t, "tools", fake.src.Filter.Get("categories"))
}

func TestReceiptCommandKeepsFailureKind(t *testing.T) {
	fake := &cannedTransfers{
		final: model.TransferTask{Status: model.StatusFailed, LastError: "order not found"},
		err:   apperr.Backend("order not found", 404),
	}
	c := &cli{out: &bytes.Buffer{}, transfer: fake}

	err := c.run([]string{"receipt", "O-9", "/tmp/r.pdf"})
	assert.Equal(t, apperr.KindBackend, apperr.KindOf(err))
	assert.Equal(t, "order not found", apperr.Message(err))
	assert.False(t, errors.Is(err, errUsage))
}
