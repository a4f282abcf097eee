package reports

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/stockdesk/internal/api"
	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/dispatch"
)

type replyDoer struct {
	t     *testing.T
	body  map[string]string
	calls atomic.Int32
	last  atomic.Value
}

func (d *replyDoer) Do(ctx context.Context, req api.Request) (*api.Response, error) {
	d.calls.Add(1)
	d.last.Store(req)
	body, ok := d.body[req.Path]
	if !ok {
		return nil, apperr.Backend("not found", 404)
	}
	env, err := api.DecodeEnvelope([]byte(body))
	require.NoError(d.t, err)
	if err := env.Err(); err != nil {
		return nil, err
	}
	return &api.Response{Status: 200, Envelope: env}, nil
}

func runner(t *testing.T, body map[string]string) (dispatch.Runner, *replyDoer) {
	d := &replyDoer{t: t, body: body}
	return dispatch.NewService(d, nil), d
}

func TestHistorySearch(t *testing.T) {
	r, doer := runner(t, map[string]string{
		"/history/search": `{"success":true,"data":[{"id":1,"cargo_name":"bolt"},{"id":2,"cargo_name":"nut"}]}`,
	})
	recs, err := NewHistory(r, nil).Search(" 2024", "05")
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	req := doer.last.Load().(api.Request)
	assert.Equal(t, "2024", req.Query.Get("year"))
	assert.Equal(t, "5", req.Query.Get("month"))
}

func TestHistorySearchValidatesLocally(t *testing.T) {
	r, doer := runner(t, nil)
	_, err := NewHistory(r, nil).Search("24", "13")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, int32(0), doer.calls.Load())
}

func TestHistorySearchBackendFailure(t *testing.T) {
	r, _ := runner(t, map[string]string{
		"/history/search": `{"success":false,"message":"no data for this month"}`,
	})
	_, err := NewHistory(r, nil).Search("2023", "1")
	assert.Equal(t, "no data for this month", apperr.Message(err))
}

func TestLogFilesNewestFirst(t *testing.T) {
	r, _ := runner(t, map[string]string{
		"/logs/getfiles": `{"success":true,"data":["2024-01-02.log","2024-03-01.log","2024-02-10.log"]}`,
	})
	files, err := NewLogs(r).Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-01.log", "2024-02-10.log", "2024-01-02.log"}, files)
}

func TestLogContentShapes(t *testing.T) {
	r, _ := runner(t, map[string]string{
		"/logs/content/a.log": `{"success":true,"data":["login admin\n","delete 3\r\n"]}`,
		"/logs/content/b.log": `{"success":true,"data":"first\nsecond\n"}`,
		"/logs/content/c.log": `{"success":true}`,
	})
	logs := NewLogs(r)

	lines, err := logs.Content("a.log")
	require.NoError(t, err)
	assert.Equal(t, []string{"login admin", "delete 3"}, lines)

	lines, err = logs.Content("b.log")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, lines)

	lines, err = logs.Content("c.log")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLogContentNeedsName(t *testing.T) {
	r, doer := runner(t, nil)
	_, err := NewLogs(r).Content("")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, int32(0), doer.calls.Load())
}
