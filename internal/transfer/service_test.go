package transfer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/stockdesk/internal/api"
	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/catalog"
	"github.com/ytget/stockdesk/internal/dispatch"
	"github.com/ytget/stockdesk/internal/model"
)

type stubDoer struct {
	t       *testing.T
	mu      sync.Mutex
	replies map[string]string
	raw     []byte
	err     error
	got     []api.Request
}

func (d *stubDoer) Do(ctx context.Context, req api.Request) (*api.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.got = append(d.got, req)
	if d.err != nil {
		return nil, d.err
	}
	if req.Stream {
		return &api.Response{Status: 200, Raw: d.raw}, nil
	}
	body, ok := d.replies[req.Path]
	require.True(d.t, ok, "unexpected request %s", req)
	env, err := api.DecodeEnvelope([]byte(body))
	require.NoError(d.t, err)
	if err := env.Err(); err != nil {
		return nil, err
	}
	return &api.Response{Status: 200, Envelope: env}, nil
}

func (d *stubDoer) requests() []api.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]api.Request(nil), d.got...)
}

func newTestService(t *testing.T, doer *stubDoer) *Service {
	doer.t = t
	return NewService(dispatch.NewService(doer, nil), nil)
}

func TestExportWritesCSV(t *testing.T) {
	doer := &stubDoer{replies: map[string]string{
		"/inventory/all": `{"success":true,"data":[{"cargo_id":1,"cargo_name":"bolt"},{"cargo_id":2,"cargo_name":"nut"}]}`,
	}}
	svc := newTestService(t, doer)

	var mu sync.Mutex
	var seen []model.Status
	svc.SetUpdateCallback(func(task model.TransferTask) {
		mu.Lock()
		seen = append(seen, task.Status)
		mu.Unlock()
	})

	path := filepath.Join(t.TempDir(), "out", "stock")
	task, err := svc.Export(catalog.MustGet(catalog.Inventory), Source{}, path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(task.ID, TaskIDPrefix))
	assert.Equal(t, path+".csv", task.Path)

	final, err := svc.Wait(task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, final.Status)
	assert.Equal(t, 2, final.Rows)

	data, err := os.ReadFile(path + ".csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "1,bolt,"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []model.Status{model.StatusRunning, model.StatusCompleted}, seen)
}

func TestExportGivenRecordsSkipsBackend(t *testing.T) {
	doer := &stubDoer{}
	svc := newTestService(t, doer)

	path := filepath.Join(t.TempDir(), "history.csv")
	task, err := svc.Export(catalog.MustGet(catalog.History), Source{Records: []model.Record{{"id": "9", "year": "2024"}}}, path)
	require.NoError(t, err)
	final, err := svc.Wait(task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, final.Rows)
	assert.Empty(t, doer.requests())
}

func TestExportHistoryNeedsCriteria(t *testing.T) {
	svc := newTestService(t, &stubDoer{})
	task, err := svc.Export(catalog.MustGet(catalog.History), Source{}, filepath.Join(t.TempDir(), "h"))
	require.NoError(t, err)

	final, err := svc.Wait(task.ID)
	require.Error(t, err)
	assert.Equal(t, model.StatusFailed, final.Status)
	assert.NotEmpty(t, final.LastError)
}

func TestExportSelectedOrdersUsesBatchQuery(t *testing.T) {
	doer := &stubDoer{replies: map[string]string{
		"/orders/batch_query": `{"success":true,"data":[{"order_id":"O-2"}]}`,
	}}
	svc := newTestService(t, doer)

	task, err := svc.Export(catalog.MustGet(catalog.Orders), Source{IDs: []string{"O-2"}}, filepath.Join(t.TempDir(), "o.csv"))
	require.NoError(t, err)
	_, err = svc.Wait(task.ID)
	require.NoError(t, err)

	reqs := doer.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, map[string]any{"ids": []string{"O-2"}}, reqs[0].Body)
}

func TestExportUnsupportedResource(t *testing.T) {
	svc := newTestService(t, &stubDoer{})
	_, err := svc.Export(catalog.MustGet(catalog.Users), Source{}, "users.csv")
	require.Error(t, err)
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportInventory(t *testing.T) {
	doer := &stubDoer{replies: map[string]string{
		"/inventory/import": `{"success":true,"imported":1,"skipped_row":["nut - M8"]}`,
	}}
	svc := newTestService(t, doer)
	path := writeTemp(t, "in.csv", "cargo_name,model,categories,count,price\n"+
		"bolt,M6,tools,10,0.5\n"+
		"nut,M8,tools,3,0.2\n"+
		",M9,tools,1,1\n")

	task, err := svc.Import(catalog.MustGet(catalog.Inventory), path)
	require.NoError(t, err)
	final, err := svc.Wait(task.ID)
	require.NoError(t, err)

	require.NotNil(t, final.Result)
	assert.Equal(t, 2, final.Rows)
	assert.Equal(t, 3, final.Result.Requested)
	assert.Equal(t, 1, final.Result.Succeeded)
	assert.Equal(t, 2, final.Result.Skipped)
	assert.Equal(t, 0, final.Result.Failed())
	assert.Contains(t, final.Result.Message, "nut - M8")

	reqs := doer.requests()
	require.Len(t, reqs, 1)
	body := reqs[0].Body.(map[string]any)
	assert.Len(t, body["dataset"], 2)
}

func TestImportOrdersReportsFailedIDs(t *testing.T) {
	desc := catalog.MustGet(catalog.Orders)
	doer := &stubDoer{replies: map[string]string{
		"/orders/import": `{"success":true,"failed_order_ids":["O-2"]}`,
	}}
	svc := newTestService(t, doer)
	path := writeTemp(t, "orders.csv", strings.Join(desc.ImportFields, ",")+"\n"+
		"O-1,inbound,7,bolt,M6,tools,ACME,,waiting,Li,,,0.5,3\n"+
		"O-2,outbound,7,bolt,M6,tools,,Site,waiting,Li,,,0.5,1\n")

	task, err := svc.Import(desc, path)
	require.NoError(t, err)
	final, err := svc.Wait(task.ID)
	require.NoError(t, err)

	assert.True(t, final.Result.Detailed)
	assert.Equal(t, []string{"O-2"}, final.Result.FailedIDs)
	assert.Equal(t, 1, final.Result.Succeeded)
	assert.Equal(t, 1, final.Result.Failed())
}

func TestImportHeaderMismatchNeverUploads(t *testing.T) {
	doer := &stubDoer{}
	svc := newTestService(t, doer)
	path := writeTemp(t, "bad.csv", "name\nbolt\n")

	task, err := svc.Import(catalog.MustGet(catalog.Inventory), path)
	require.NoError(t, err)
	final, err := svc.Wait(task.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, model.StatusFailed, final.Status)
	assert.Empty(t, doer.requests())
}

func TestImportMissingFile(t *testing.T) {
	svc := newTestService(t, &stubDoer{})
	_, err := svc.Import(catalog.MustGet(catalog.Inventory), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestImportResultShapes(t *testing.T) {
	ds := &Dataset{Rows: make([]model.Record, 4), SkippedLines: []int{7}}
	decode := func(body string) *api.Envelope {
		env, err := api.DecodeEnvelope([]byte(body))
		require.NoError(t, err)
		return env
	}

	res := ImportResult(decode(`{"success":true,"succeed":3,"failed":1}`), ds)
	assert.Equal(t, 5, res.Requested)
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Failed())
	assert.False(t, res.Detailed)

	res = ImportResult(decode(`{"success":true,"imported":"4"}`), ds)
	assert.Equal(t, 4, res.Succeeded)
	assert.Equal(t, 0, res.Failed())

	res = ImportResult(decode(`{"success":true,"message":"ok"}`), ds)
	assert.Equal(t, 4, res.Succeeded)
	assert.Equal(t, "ok", res.Message)

	res = ImportResult(decode(`{"success":true,"failed_order_ids":[11,12]}`), ds)
	assert.True(t, res.Detailed)
	assert.Equal(t, []string{"11", "12"}, res.FailedIDs)
	assert.Equal(t, 2, res.Succeeded)

	res = ImportResult(decode(`{"success":true,"failed_order_ids":{"count":2}}`), ds)
	assert.True(t, res.Unreported)
	assert.False(t, res.Detailed)
	assert.Zero(t, res.Succeeded)
}

func TestSaveReceipt(t *testing.T) {
	doer := &stubDoer{raw: []byte("%PDF-1.4 receipt")}
	svc := newTestService(t, doer)

	path := filepath.Join(t.TempDir(), "receipt-O-1")
	task, err := svc.SaveReceipt("O-1", path)
	require.NoError(t, err)
	assert.Equal(t, path+".pdf", task.Path)

	final, err := svc.Wait(task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransferReceipt, final.Kind)

	data, err := os.ReadFile(path + ".pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 receipt", string(data))
	assert.Equal(t, "/orders/print/O-1", doer.requests()[0].Path)
}

func TestSaveReceiptFailure(t *testing.T) {
	doer := &stubDoer{err: apperr.Backend("order not found", 404)}
	svc := newTestService(t, doer)

	path := filepath.Join(t.TempDir(), "r.pdf")
	task, err := svc.SaveReceipt("O-9", path)
	require.NoError(t, err)
	final, err := svc.Wait(task.ID)
	require.Error(t, err)
	assert.Equal(t, "order not found", final.LastError)
	assert.Equal(t, apperr.KindBackend, apperr.KindOf(err))
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSaveReceiptNeedsOrder(t *testing.T) {
	svc := newTestService(t, &stubDoer{})
	_, err := svc.SaveReceipt(" ", "r.pdf")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestWaitUnknownTask(t *testing.T) {
	svc := newTestService(t, &stubDoer{})
	_, err := svc.Wait("transfer-missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
