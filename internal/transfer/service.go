package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/stockdesk/internal/api"
	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/catalog"
	"github.com/ytget/stockdesk/internal/dispatch"
	"github.com/ytget/stockdesk/internal/model"
	"github.com/ytget/stockdesk/internal/platform"
)

const (
	TaskIDPrefix = "transfer-"
	CSVExtension = ".csv"
	PDFExtension = ".pdf"

	filePermissions = 0o644
)

// ErrTaskNotFound is returned for unknown task ids.
var ErrTaskNotFound = errors.New("transfer task not found")

// Source selects the records an export writes.
type Source struct {
	// Records are written as given when non-nil.
	Records []model.Record
	// IDs restricts the export to these records.
	IDs []string
	// Filter is passed to the listing or search endpoint.
	Filter url.Values
}

// Service runs file transfers in the background.
type Service struct {
	runner     dispatch.Runner
	logger     *slog.Logger
	tasks      map[string]*model.TransferTask
	done       map[string]chan struct{}
	failures   map[string]error
	tasksMutex sync.RWMutex
	onUpdate   func(model.TransferTask)
}

// NewService creates a new transfer service
func NewService(runner dispatch.Runner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		runner:   runner,
		logger:   logger.With("component", "transfer"),
		tasks:    make(map[string]*model.TransferTask),
		done:     make(map[string]chan struct{}),
		failures: make(map[string]error),
	}
}

// SetUpdateCallback sets the callback function for task updates. The callback
// receives a copy of the task and runs on the task's goroutine.
func (s *Service) SetUpdateCallback(callback func(model.TransferTask)) {
	s.tasksMutex.Lock()
	s.onUpdate = callback
	s.tasksMutex.Unlock()
}

// Export writes the records selected by src to a CSV file at path.
func (s *Service) Export(desc *catalog.Descriptor, src Source, path string) (model.TransferTask, error) {
	if !desc.Can.Export {
		return model.TransferTask{}, fmt.Errorf("%s cannot be exported", desc.Name)
	}
	path = platform.EnsureExtension(path, CSVExtension)
	task, err := s.start(model.TransferExport, desc.Name, path)
	if err != nil {
		return model.TransferTask{}, err
	}
	go s.runExport(task, desc, src)
	return s.snapshot(task), nil
}

// Import uploads the rows of the CSV file at path.
func (s *Service) Import(desc *catalog.Descriptor, path string) (model.TransferTask, error) {
	if !desc.Can.Import {
		return model.TransferTask{}, fmt.Errorf("%s cannot be imported", desc.Name)
	}
	if _, err := os.Stat(path); err != nil {
		return model.TransferTask{}, fmt.Errorf("import file: %w", err)
	}
	task, err := s.start(model.TransferImport, desc.Name, path)
	if err != nil {
		return model.TransferTask{}, err
	}
	go s.runImport(task, desc)
	return s.snapshot(task), nil
}

// SaveReceipt downloads the receipt document of an order to path. A ".pdf"
// suffix is appended when missing.
func (s *Service) SaveReceipt(orderID, path string) (model.TransferTask, error) {
	if strings.TrimSpace(orderID) == "" {
		return model.TransferTask{}, apperr.Validation("select an order first")
	}
	path = platform.EnsureExtension(path, PDFExtension)
	task, err := s.start(model.TransferReceipt, catalog.Orders, path)
	if err != nil {
		return model.TransferTask{}, err
	}
	go s.runReceipt(task, orderID)
	return s.snapshot(task), nil
}

// GetTask returns a copy of a task by its ID
func (s *Service) GetTask(taskID string) (model.TransferTask, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return model.TransferTask{}, false
	}
	return *task, true
}

// Wait blocks until the task finishes and returns its final state. The error
// is the original task failure, if any.
func (s *Service) Wait(taskID string) (model.TransferTask, error) {
	s.tasksMutex.RLock()
	done, ok := s.done[taskID]
	s.tasksMutex.RUnlock()
	if !ok {
		return model.TransferTask{}, ErrTaskNotFound
	}
	<-done

	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	return *s.tasks[taskID], s.failures[taskID]
}

func (s *Service) start(kind model.TransferKind, resource, path string) (*model.TransferTask, error) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	// Two active transfers must not write the same file.
	for _, t := range s.tasks {
		if t.Path == path && t.Status.IsActive() {
			return nil, fmt.Errorf("transfer already in progress for file: %s", path)
		}
	}

	task := &model.TransferTask{
		ID:        generateTaskID(),
		Kind:      kind,
		Resource:  resource,
		Path:      path,
		Status:    model.StatusPending,
		StartedAt: time.Now(),
	}
	s.tasks[task.ID] = task
	s.done[task.ID] = make(chan struct{})
	return task, nil
}

func (s *Service) runExport(task *model.TransferTask, desc *catalog.Descriptor, src Source) {
	s.setRunning(task)

	recs, err := s.exportRecords(desc, src)
	if err != nil {
		s.setTaskError(task, err)
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, desc, recs); err != nil {
		s.setTaskError(task, err)
		return
	}
	if err := writeFile(task.Path, buf.Bytes()); err != nil {
		s.setTaskError(task, err)
		return
	}

	s.logger.Info("export finished", "resource", desc.Name, "rows", len(recs), "path", task.Path)
	s.finish(task, len(recs), nil)
}

func (s *Service) exportRecords(desc *catalog.Descriptor, src Source) ([]model.Record, error) {
	if src.Records != nil {
		return src.Records, nil
	}

	var req api.Request
	switch {
	case len(src.IDs) > 0 && desc.Name == catalog.Orders:
		req = api.BatchQuery(desc.Path, src.IDs)
	case desc.Paging == catalog.CriteriaOnly:
		if len(src.Filter) == 0 {
			return nil, apperr.Validation("run a search before exporting")
		}
		req = api.Search(desc.Path, src.Filter)
	default:
		req = api.All(desc.Path, src.Filter)
	}

	resp, err := s.runner.Dispatch(req).Resolve()
	if err != nil {
		return nil, err
	}
	recs, err := resp.Envelope.Records(desc.ListKeys()...)
	if err != nil {
		return nil, err
	}
	recs = desc.Filter(recs)

	if len(src.IDs) > 0 && desc.Name != catalog.Orders {
		recs = keepIDs(desc, recs, src.IDs)
	}
	return recs, nil
}

func keepIDs(desc *catalog.Descriptor, recs []model.Record, ids []string) []model.Record {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]model.Record, 0, len(ids))
	for _, r := range recs {
		if want[desc.ID(r)] {
			out = append(out, r)
		}
	}
	return out
}

func (s *Service) runImport(task *model.TransferTask, desc *catalog.Descriptor) {
	s.setRunning(task)

	f, err := os.Open(task.Path)
	if err != nil {
		s.setTaskError(task, err)
		return
	}
	ds, err := ReadCSV(f, desc)
	f.Close()
	if err != nil {
		s.setTaskError(task, err)
		return
	}
	if len(ds.Rows) == 0 {
		s.setTaskError(task, apperr.Validation("the file has no importable rows"))
		return
	}

	resp, err := s.runner.Dispatch(api.Import(desc.Path, ds.Rows)).Resolve()
	if err != nil {
		s.setTaskError(task, err)
		return
	}

	result := ImportResult(resp.Envelope, ds)
	s.logger.Info("import finished",
		"resource", desc.Name,
		"submitted", len(ds.Rows),
		"succeeded", result.Succeeded,
		"skipped", result.Skipped,
		"failed", result.Failed())
	s.finish(task, len(ds.Rows), &result)
}

// ImportResult normalizes the import reply. The backend answers with one of
// imported/skipped_row, failed_order_ids or succeed/failed depending on the
// resource.
func ImportResult(env *api.Envelope, ds *Dataset) model.BatchResult {
	res := model.BatchResult{
		Requested: ds.Total(),
		Skipped:   len(ds.SkippedLines),
		Message:   env.Message,
	}
	submitted := len(ds.Rows)

	switch {
	case env.Field("failed_order_ids") != nil:
		ids, err := env.IDs("failed_order_ids")
		if err != nil {
			res.Unreported = true
			break
		}
		res.FailedIDs = ids
		res.Detailed = true
		res.Succeeded = submitted - len(ids)
	case env.Field("imported") != nil:
		res.Succeeded = intField(env, "imported", submitted)
		duplicates := idList(env, "skipped_row")
		res.Skipped += len(duplicates)
		if len(duplicates) > 0 {
			res.Message = "duplicates: " + strings.Join(duplicates, "; ")
		}
	case env.Field("succeed") != nil:
		res.Succeeded = intField(env, "succeed", submitted)
	default:
		res.Succeeded = submitted
	}
	if res.Succeeded < 0 {
		res.Succeeded = 0
	}
	return res
}

func intField(env *api.Envelope, key string, fallback int) int {
	var n json.Number
	if err := json.Unmarshal(env.Field(key), &n); err != nil {
		s := strings.Trim(env.Text(key), `"`)
		n = json.Number(s)
	}
	v, err := n.Int64()
	if err != nil {
		return fallback
	}
	return int(v)
}

// idList reads an id list field; an unreadable field yields nil.
func idList(env *api.Envelope, key string) []string {
	ids, err := env.IDs(key)
	if err != nil {
		return nil
	}
	return ids
}

func (s *Service) runReceipt(task *model.TransferTask, orderID string) {
	s.setRunning(task)

	resp, err := s.runner.Dispatch(api.PrintOrder(orderID)).Resolve()
	if err != nil {
		s.setTaskError(task, err)
		return
	}
	if len(resp.Raw) == 0 {
		s.setTaskError(task, apperr.Decode("empty receipt document", nil))
		return
	}
	if err := writeFile(task.Path, resp.Raw); err != nil {
		s.setTaskError(task, err)
		return
	}

	s.logger.Info("receipt saved", "order_id", orderID, "path", task.Path, "bytes", len(resp.Raw))
	s.finish(task, 1, nil)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (s *Service) setRunning(task *model.TransferTask) {
	s.tasksMutex.Lock()
	task.Status = model.StatusRunning
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)
}

func (s *Service) finish(task *model.TransferTask, rows int, result *model.BatchResult) {
	s.tasksMutex.Lock()
	task.Status = model.StatusCompleted
	task.Rows = rows
	task.Result = result
	task.FinishedAt = time.Now()
	done := s.done[task.ID]
	s.tasksMutex.Unlock()

	s.notifyUpdate(task)
	close(done)
}

// setTaskError sets an error state for a task
func (s *Service) setTaskError(task *model.TransferTask, err error) {
	s.tasksMutex.Lock()
	task.Status = model.StatusFailed
	task.LastError = apperr.Message(err)
	task.FinishedAt = time.Now()
	s.failures[task.ID] = err
	done := s.done[task.ID]
	s.tasksMutex.Unlock()

	s.logger.Warn("transfer failed", "task_id", task.ID, "kind", task.Kind, "error", err)
	s.notifyUpdate(task)
	close(done)
}

func (s *Service) snapshot(task *model.TransferTask) model.TransferTask {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	return *task
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(task *model.TransferTask) {
	s.tasksMutex.RLock()
	cb := s.onUpdate
	copied := *task
	s.tasksMutex.RUnlock()
	if cb != nil {
		cb(copied)
	}
}

func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
