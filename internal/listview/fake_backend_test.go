package listview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ytget/stockdesk/internal/api"
	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/catalog"
	"github.com/ytget/stockdesk/internal/dispatch"
	"github.com/ytget/stockdesk/internal/model"
)

// fakeBackend serves one resource from memory with the same envelope shapes
// the real backend uses.
type fakeBackend struct {
	t       *testing.T
	desc    *catalog.Descriptor
	mu      sync.Mutex
	rows    []map[string]any
	nextID  int
	calls   []string
	failOn  map[string]error
	deleted []string
	// failedIDs is echoed back by /delete when set.
	failedIDs []string
	// failedReply replaces the echoed failedIDs in the /delete reply.
	failedReply any
	// pageGate, when set, holds /page calls until it is closed.
	pageGate chan struct{}
}

func newFakeBackend(t *testing.T, desc *catalog.Descriptor, n int) *fakeBackend {
	b := &fakeBackend{t: t, desc: desc, failOn: map[string]error{}}
	for i := 0; i < n; i++ {
		b.add(map[string]any{"cargo_name": fmt.Sprintf("item-%02d", i+1), "categories": category(i)})
	}
	return b
}

func category(i int) string {
	if i%3 == 0 {
		return "tools"
	}
	return "paint"
}

func (b *fakeBackend) add(row map[string]any) {
	b.nextID++
	row[b.desc.IDField] = strconv.Itoa(b.nextID)
	b.rows = append(b.rows, row)
}

func (b *fakeBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func (b *fakeBackend) fail(op string, err error) {
	b.mu.Lock()
	b.failOn[op] = err
	b.mu.Unlock()
}

func (b *fakeBackend) holdPages() chan struct{} {
	gate := make(chan struct{})
	b.mu.Lock()
	b.pageGate = gate
	b.mu.Unlock()
	return gate
}

func (b *fakeBackend) Do(ctx context.Context, req api.Request) (*api.Response, error) {
	b.mu.Lock()
	gate := b.pageGate
	b.mu.Unlock()
	if gate != nil && strings.Contains(req.Path, "/page/") {
		<-gate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, req.String())

	parts := strings.Split(strings.TrimPrefix(req.Path, "/"+b.desc.Path+"/"), "/")
	op := parts[0]
	if err, ok := b.failOn[op]; ok {
		return nil, err
	}

	filtered := b.matching(req.Query.Get(b.desc.FilterKey), req.Query.Get("cargo_name"))
	switch {
	case op == "count":
		return b.reply(map[string]any{"success": true, "count": len(filtered)})
	case op == "page":
		n, _ := strconv.Atoi(parts[1])
		return b.reply(map[string]any{"success": true, "data": model.Slice(filtered, n, model.PageSize)})
	case op == "all" || op == "search":
		if len(filtered) == 0 && op == "search" {
			return nil, apperr.Backend("no matching results", 0)
		}
		return b.reply(map[string]any{"success": true, "data": filtered})
	case op == "create":
		row := map[string]any{}
		raw, _ := json.Marshal(req.Body)
		require.NoError(b.t, json.Unmarshal(raw, &row))
		b.add(row)
		return b.reply(map[string]any{"success": true, "message": "created"})
	case op == "update":
		for _, r := range b.rows {
			if r[b.desc.IDField] == parts[1] {
				raw, _ := json.Marshal(req.Body)
				require.NoError(b.t, json.Unmarshal(raw, &r))
				return b.reply(map[string]any{"success": true, "message": "updated"})
			}
		}
		return nil, apperr.Backend("not found", http.StatusNotFound)
	case op == "delete":
		ids := req.Body.(map[string]any)["ids"].([]string)
		keep := b.rows[:0]
		for _, r := range b.rows {
			if !contains(ids, r[b.desc.IDField].(string)) || contains(b.failedIDs, r[b.desc.IDField].(string)) {
				keep = append(keep, r)
			}
		}
		b.rows = keep
		b.deleted = append(b.deleted, ids...)
		body := map[string]any{"success": true}
		if b.failedIDs != nil {
			body["failed_ids"] = b.failedIDs
		}
		if b.failedReply != nil {
			body["failed_ids"] = b.failedReply
		}
		return b.reply(body)
	default:
		for _, r := range b.rows {
			if r[b.desc.IDField] == op {
				return b.reply(map[string]any{"success": true, b.desc.ItemKey: r})
			}
		}
		return nil, apperr.Backend("not found", http.StatusNotFound)
	}
}

func (b *fakeBackend) matching(category, name string) []map[string]any {
	out := []map[string]any{}
	for _, r := range b.rows {
		if category != "" && r["categories"] != category {
			continue
		}
		if name != "" && !strings.Contains(r["cargo_name"].(string), name) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (b *fakeBackend) reply(body map[string]any) (*api.Response, error) {
	raw, err := json.Marshal(body)
	require.NoError(b.t, err)
	env, err := api.DecodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}
	return &api.Response{Status: http.StatusOK, Envelope: env}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	r.notes = append(r.notes, n)
	r.mu.Unlock()
}

func (r *recorder) last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Notification{}
	}
	return r.notes[len(r.notes)-1]
}

func newFixture(t *testing.T, resource string, rows int) (*Controller, *fakeBackend, *recorder) {
	t.Helper()
	desc := catalog.MustGet(resource)
	backend := newFakeBackend(t, desc, rows)
	notes := &recorder{}
	ctrl := New(desc, dispatch.NewService(backend, nil), notes, nil)
	return ctrl, backend, notes
}
