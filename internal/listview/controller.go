// Package listview implements the paginated list controller shared by every
// management screen. A Controller is configured by a catalog.Descriptor and
// drives the Idle → Loading → Displaying → (Filtering | Mutating) cycle.
// Items are only ever replaced by a successful fetch; failures leave the last
// good page on screen and are reported through the Notifier.
package listview

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/ytget/stockdesk/internal/api"
	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/catalog"
	"github.com/ytget/stockdesk/internal/dispatch"
	"github.com/ytget/stockdesk/internal/model"
)

// ErrUnsupported is returned for operations the resource does not offer.
var ErrUnsupported = errors.New("operation not supported for this resource")

// Controller is the state machine behind one list screen.
type Controller struct {
	desc     *catalog.Descriptor
	runner   dispatch.Runner
	notifier Notifier
	logger   *slog.Logger

	// opMu serializes operations; mu guards the fields below it.
	opMu sync.Mutex

	mu         sync.Mutex
	state      model.ListState
	page       int
	totalPages int
	count      int
	items      []model.Record
	// local holds the full result set when paging happens client-side.
	local    []model.Record
	filter   url.Values
	criteria url.Values
	selected map[string]bool
	onChange func(Snapshot)
}

// New creates an idle controller for desc.
func New(desc *catalog.Descriptor, runner dispatch.Runner, notifier Notifier, logger *slog.Logger) *Controller {
	if notifier == nil {
		notifier = discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		desc:       desc,
		runner:     runner,
		notifier:   notifier,
		logger:     logger.With("resource", desc.Name),
		state:      model.ListIdle,
		page:       1,
		totalPages: 1,
		selected:   map[string]bool{},
	}
}

// Descriptor returns the resource configuration.
func (c *Controller) Descriptor() *catalog.Descriptor {
	return c.desc
}

// OnChange registers fn to receive a snapshot after every state change.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Load fetches page of the resource under filter and replaces the visible
// items. Count and page are requested together.
func (c *Controller) Load(page int, filter url.Values) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.load(page, compact(filter))
}

// Reload fetches the current page again under the active filter.
func (c *Controller) Reload() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.reload()
}

// SetFilter switches the listing filter and returns to page 1.
func (c *Controller) SetFilter(filter url.Values) error {
	return c.Load(1, filter)
}

// Search runs a filtered query. Empty criteria behave as Load(1, nil).
// Results are held in full and paged locally.
func (c *Controller) Search(criteria url.Values) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	criteria = compact(criteria)
	if len(criteria) == 0 {
		return c.load(1, nil)
	}
	return c.search(criteria)
}

// PrevPage moves one page back. It is a no-op on page 1.
func (c *Controller) PrevPage() error {
	return c.step(-1)
}

// NextPage moves one page forward. It is a no-op on the last page.
func (c *Controller) NextPage() error {
	return c.step(1)
}

// GoToPage jumps to page n when it is in range. The target is absolute, so
// a navigation still in flight cannot shift it.
func (c *Controller) GoToPage(n int) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.goTo(n)
}

func (c *Controller) step(delta int) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	target := c.page + delta
	c.mu.Unlock()
	return c.goTo(target)
}

// goTo shows page target. Callers hold opMu.
func (c *Controller) goTo(target int) error {
	c.mu.Lock()
	if target < 1 || target > c.totalPages || target == c.page {
		c.mu.Unlock()
		return nil
	}
	if c.local != nil {
		c.page = target
		c.items = model.Slice(c.local, target, model.PageSize)
		c.selected = map[string]bool{}
		c.mu.Unlock()
		c.publish()
		return nil
	}
	filter := c.filter
	c.mu.Unlock()

	return c.load(target, filter)
}

// Fetch reads a single record by id.
func (c *Controller) Fetch(id string) (model.Record, error) {
	return c.decodeItem(c.fetchCall(id).Resolve())
}

// FetchAsync reads a single record by id without blocking. fn runs on a
// worker goroutine once the record or the error is known.
func (c *Controller) FetchAsync(id string, fn func(model.Record, error)) {
	c.fetchCall(id).Then(func(resp *api.Response, err error) {
		fn(c.decodeItem(resp, err))
	})
}

func (c *Controller) fetchCall(id string) *dispatch.Call {
	if strings.TrimSpace(id) == "" {
		return dispatch.Completed(nil, apperr.Validation("no record selected"))
	}
	return c.runner.Dispatch(api.Get(c.desc.Path, id))
}

func (c *Controller) decodeItem(resp *api.Response, err error) (model.Record, error) {
	if err != nil {
		return nil, err
	}
	return resp.Envelope.Record(c.desc.ItemKeys()...)
}

// Create submits a new record and reloads the current page on success.
func (c *Controller) Create(rec model.Record) error {
	if !c.desc.Can.Create {
		return ErrUnsupported
	}
	return c.mutate("Create", api.Create(c.desc.Path, rec))
}

// Update submits changes to the record with id and reloads on success.
func (c *Controller) Update(id string, rec model.Record) error {
	if !c.desc.Can.Update {
		return ErrUnsupported
	}
	return c.mutate("Update", api.Update(c.desc.Path, id, rec))
}

// Delete removes the records with ids in one call and reloads on success.
// The result is per-id only when the backend reports failed ids.
func (c *Controller) Delete(ids []string) (model.BatchResult, error) {
	res := model.BatchResult{Requested: len(ids)}
	if !c.desc.Can.Delete {
		return res, ErrUnsupported
	}
	if len(ids) == 0 {
		err := apperr.Validation("select at least one row")
		c.notify(LevelWarning, "Delete", err)
		return res, err
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.setState(model.ListMutating)
	resp, err := c.runner.Dispatch(api.Delete(c.desc.Path, ids)).Resolve()
	if err != nil {
		c.fail("Delete", err)
		return res, err
	}

	res = batchResult(resp.Envelope, len(ids))
	c.logger.Info("records deleted", "requested", res.Requested, "failed", res.Failed(), "detailed", res.Detailed, "unreported", res.Unreported)
	c.notifier.Notify(Notification{
		Level:    LevelSuccess,
		Resource: c.desc.Name,
		Title:    "Delete",
		Message:  deleteMessage(res),
	})
	_ = c.reload()
	return res, nil
}

// AfterImport reloads the list from page 1 once a bulk import has finished.
func (c *Controller) AfterImport() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	criteria := c.criteria
	filter := c.filter
	c.mu.Unlock()

	if c.desc.Paging == catalog.CriteriaOnly && criteria != nil {
		return c.search(criteria)
	}
	return c.load(1, filter)
}

// Select marks or unmarks one visible row.
func (c *Controller) Select(id string, on bool) {
	c.mu.Lock()
	if !c.visibleLocked(id) {
		c.mu.Unlock()
		return
	}
	if on {
		c.selected[id] = true
	} else {
		delete(c.selected, id)
	}
	c.mu.Unlock()
	c.publish()
}

// SelectAll marks or unmarks every visible row at once.
func (c *Controller) SelectAll(on bool) {
	c.mu.Lock()
	sel := make(map[string]bool, len(c.items))
	if on {
		for _, r := range c.items {
			sel[c.desc.ID(r)] = true
		}
	}
	c.selected = sel
	c.mu.Unlock()
	c.publish()
}

// SelectedIDs returns the selected ids in display order.
func (c *Controller) SelectedIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.selected))
	for _, r := range c.items {
		if id := c.desc.ID(r); c.selected[id] {
			out = append(out, id)
		}
	}
	return out
}

// Records returns every record the controller holds: the full result set
// when paging locally, otherwise the visible page.
func (c *Controller) Records() []model.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	src := c.items
	if c.local != nil {
		src = c.local
	}
	out := make([]model.Record, len(src))
	copy(out, src)
	return out
}

func (c *Controller) load(page int, filter url.Values) error {
	if page < 1 {
		page = 1
	}
	c.setState(model.ListLoading)

	var (
		items []model.Record
		local []model.Record
		count int
		err   error
	)
	switch c.desc.Paging {
	case catalog.ServerPaged:
		items, count, page, err = c.fetchServerPage(page, filter)
	case catalog.ClientPaged:
		local, err = c.fetchAll(filter)
		count = len(local)
	case catalog.CriteriaOnly:
		local = []model.Record{}
	}
	if err != nil {
		c.fail("Load", err)
		return err
	}

	c.mu.Lock()
	c.count = count
	c.totalPages = model.TotalPages(count, model.PageSize)
	if page > c.totalPages {
		page = c.totalPages
	}
	c.page = page
	c.local = local
	if local != nil {
		items = model.Slice(local, page, model.PageSize)
	}
	c.items = items
	c.filter = cloneValues(filter)
	c.criteria = nil
	c.selected = map[string]bool{}
	c.state = model.ListDisplaying
	c.mu.Unlock()
	c.publish()
	return nil
}

func (c *Controller) fetchServerPage(page int, filter url.Values) ([]model.Record, int, int, error) {
	countCall := c.runner.Dispatch(api.Count(c.desc.Path, filter))
	pageCall := c.runner.Dispatch(api.Page(c.desc.Path, page, filter))
	resps, err := dispatch.ResolveAll(countCall, pageCall)
	if err != nil {
		return nil, 0, 0, err
	}

	count, err := resps[0].Envelope.Count()
	if err != nil {
		return nil, 0, 0, err
	}
	items, err := resps[1].Envelope.Records(c.desc.ListKeys()...)
	if err != nil {
		return nil, 0, 0, err
	}

	// The requested page can fall off the end after rows were removed.
	if last := model.TotalPages(count, model.PageSize); page > last {
		resp, err := c.runner.Dispatch(api.Page(c.desc.Path, last, filter)).Resolve()
		if err != nil {
			return nil, 0, 0, err
		}
		if items, err = resp.Envelope.Records(c.desc.ListKeys()...); err != nil {
			return nil, 0, 0, err
		}
		page = last
	}
	return c.desc.Filter(items), count, page, nil
}

func (c *Controller) fetchAll(filter url.Values) ([]model.Record, error) {
	resp, err := c.runner.Dispatch(api.All(c.desc.Path, filter)).Resolve()
	if err != nil {
		return nil, err
	}
	recs, err := resp.Envelope.Records(c.desc.ListKeys()...)
	if err != nil {
		return nil, err
	}
	return c.desc.Filter(recs), nil
}

func (c *Controller) search(criteria url.Values) error {
	c.setState(model.ListFiltering)

	var req api.Request
	if id := criteria.Get(c.desc.IDField); id != "" && len(criteria) == 1 {
		req = api.Get(c.desc.Path, id)
	} else {
		req = api.Search(c.desc.Path, criteria)
	}

	resp, err := c.runner.Dispatch(req).Resolve()
	if err != nil {
		c.fail("Search", err)
		return err
	}
	keys := append(c.desc.ListKeys(), c.desc.ItemKeys()...)
	recs, err := resp.Envelope.Records(keys...)
	if err != nil {
		c.fail("Search", err)
		return err
	}
	recs = c.desc.Filter(recs)

	c.mu.Lock()
	c.local = recs
	c.count = len(recs)
	c.totalPages = model.TotalPages(len(recs), model.PageSize)
	c.page = 1
	c.items = model.Slice(recs, 1, model.PageSize)
	c.criteria = cloneValues(criteria)
	c.selected = map[string]bool{}
	c.state = model.ListDisplaying
	c.mu.Unlock()
	c.publish()
	return nil
}

func (c *Controller) mutate(title string, req api.Request) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.setState(model.ListMutating)
	resp, err := c.runner.Dispatch(req).Resolve()
	if err != nil {
		c.fail(title, err)
		return err
	}

	msg := resp.Envelope.Message
	if msg == "" {
		msg = "Saved"
	}
	c.logger.Info("record saved", "operation", title)
	c.notifier.Notify(Notification{Level: LevelSuccess, Resource: c.desc.Name, Title: title, Message: msg})
	_ = c.reload()
	return nil
}

// reload re-reads the current page under the active filter. Callers hold opMu.
func (c *Controller) reload() error {
	c.mu.Lock()
	page, filter, criteria := c.page, c.filter, c.criteria
	c.mu.Unlock()

	if c.desc.Paging == catalog.CriteriaOnly && criteria != nil {
		return c.search(criteria)
	}
	return c.load(page, filter)
}

func (c *Controller) setState(s model.ListState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.publish()
}

// fail reports err and returns to Displaying with the previous items.
func (c *Controller) fail(title string, err error) {
	c.logger.Warn("list operation failed", "operation", title, "kind", apperr.KindOf(err), "error", err)
	c.notify(LevelWarning, title+" failed", err)
	c.setState(model.ListDisplaying)
}

func (c *Controller) notify(level Level, title string, err error) {
	c.notifier.Notify(Notification{
		Level:    level,
		Resource: c.desc.Name,
		Title:    title,
		Message:  apperr.Message(err),
		Err:      err,
	})
}

func (c *Controller) visibleLocked(id string) bool {
	for _, r := range c.items {
		if c.desc.ID(r) == id {
			return true
		}
	}
	return false
}

func (c *Controller) snapshotLocked() Snapshot {
	items := make([]model.Record, len(c.items))
	copy(items, c.items)
	sel := make(map[string]bool, len(c.selected))
	for k, v := range c.selected {
		sel[k] = v
	}
	return Snapshot{
		Resource: c.desc.Name,
		State:    c.state,
		Page: model.PageInfo{
			Page:       c.page,
			TotalPages: c.totalPages,
			Count:      c.count,
			Local:      c.local != nil,
		},
		Items:    items,
		Selected: sel,
		Filter:   cloneValues(c.filter),
		Criteria: cloneValues(c.criteria),
	}
}

// publish delivers a snapshot to the change callback outside mu.
func (c *Controller) publish() {
	c.mu.Lock()
	fn := c.onChange
	snap := c.snapshotLocked()
	c.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func batchResult(env *api.Envelope, requested int) model.BatchResult {
	res := model.BatchResult{Requested: requested, Message: env.Message}
	ids, err := env.IDs("failed_ids")
	switch {
	case err != nil:
		res.Unreported = true
	case ids == nil:
		res.Succeeded = requested
	default:
		res.Detailed = true
		res.FailedIDs = ids
		res.Succeeded = requested - len(ids)
	}
	return res
}

func deleteMessage(res model.BatchResult) string {
	if res.Unreported {
		msg := fmt.Sprintf("Delete of %d finished, the backend reported failures that could not be read", res.Requested)
		if res.Message != "" {
			msg += ": " + res.Message
		}
		return msg
	}
	if res.Detailed && len(res.FailedIDs) > 0 {
		return fmt.Sprintf("Deleted %d of %d, failed: %v", res.Succeeded, res.Requested, res.FailedIDs)
	}
	if res.Message != "" {
		return res.Message
	}
	return fmt.Sprintf("Deleted %d", res.Succeeded)
}
