package lookup

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/stockdesk/internal/api"
	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/dispatch"
	"github.com/ytget/stockdesk/internal/forms"
)

type cannedDoer struct {
	bodies map[string]string
	gate   chan struct{}
	calls  atomic.Int32
}

func (d *cannedDoer) Do(ctx context.Context, req api.Request) (*api.Response, error) {
	d.calls.Add(1)
	if d.gate != nil {
		<-d.gate
	}
	body, ok := d.bodies[req.Path]
	if !ok {
		return nil, apperr.Backend("not found", 404)
	}
	env, err := api.DecodeEnvelope([]byte(body))
	if err != nil {
		return nil, err
	}
	return &api.Response{Status: 200, Envelope: env}, nil
}

func TestOptions(t *testing.T) {
	doer := &cannedDoer{bodies: map[string]string{
		"/inventory/categories/get": `{"success":true,"categories":[{"categories":"tools"},{"categories":"paint"},{"categories":"tools"}]}`,
		"/providers/all":            `{"success":true,"data":[{"provider_name":"Globex"},{"provider_name":"null"},{"provider_name":"Acme"}]}`,
		"/project/all":              `{"success":true,"data":[{"project_name":"Bridge"},{"project_name":""}]}`,
		"/employees/all":            `{"success":true,"data":[{"employee_name":"Li"},{"employee_name":"Wang"}]}`,
	}}
	svc := NewService(dispatch.NewService(doer, nil), nil)

	cats, err := svc.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"paint", "tools"}, cats)

	provs, err := svc.Providers()
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Globex"}, provs)

	projs, err := svc.Projects()
	require.NoError(t, err)
	assert.Equal(t, []string{"Bridge"}, projs)

	emps, err := svc.Employees()
	require.NoError(t, err)
	assert.Equal(t, []string{"Li", "Wang"}, emps)
}

func TestOptionsUnknownSource(t *testing.T) {
	svc := NewService(dispatch.NewService(&cannedDoer{}, nil), nil)
	_, err := svc.Options("warehouses")
	assert.Error(t, err)
}

func TestOptionsFailure(t *testing.T) {
	svc := NewService(dispatch.NewService(&cannedDoer{bodies: map[string]string{}}, nil), nil)
	_, err := svc.Options(forms.SourceProviders)
	assert.Equal(t, apperr.KindBackend, apperr.KindOf(err))
}

func TestConcurrentRequestsShareOneCall(t *testing.T) {
	doer := &cannedDoer{
		gate:   make(chan struct{}),
		bodies: map[string]string{"/providers/all": `{"success":true,"data":[{"provider_name":"Acme"}]}`},
	}
	svc := NewService(dispatch.NewService(doer, nil), nil)

	var wg sync.WaitGroup
	results := make([][]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = svc.Providers()
		}(i)
	}
	require.Eventually(t, func() bool { return doer.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(doer.gate)
	wg.Wait()

	assert.EqualValues(t, 1, doer.calls.Load())
	for _, r := range results {
		assert.Equal(t, []string{"Acme"}, r)
	}
}
