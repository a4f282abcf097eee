// Package reports serves the read-only views: the monthly stock history and
// the backend operation logs.
package reports

import (
	"encoding/json"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/ytget/stockdesk/internal/api"
	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/catalog"
	"github.com/ytget/stockdesk/internal/dispatch"
	"github.com/ytget/stockdesk/internal/forms"
	"github.com/ytget/stockdesk/internal/model"
)

// History queries monthly stock snapshots.
type History struct {
	runner dispatch.Runner
	logger *slog.Logger
}

// NewHistory creates a history report.
func NewHistory(runner dispatch.Runner, logger *slog.Logger) *History {
	if logger == nil {
		logger = slog.Default()
	}
	return &History{runner: runner, logger: logger}
}

// Search validates year and month and returns the snapshot rows. Invalid
// input never reaches the backend.
func (h *History) Search(year, month string) ([]model.Record, error) {
	q, err := forms.HistoryQuery(year, month)
	if err != nil {
		return nil, err
	}
	y, _ := strconv.Atoi(q.Get("year"))
	m, _ := strconv.Atoi(q.Get("month"))

	resp, err := h.runner.Dispatch(api.HistorySearch(y, m)).Resolve()
	if err != nil {
		return nil, err
	}
	desc := catalog.MustGet(catalog.History)
	recs, err := resp.Envelope.Records(desc.ListKeys()...)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("history loaded", "year", y, "month", m, "rows", len(recs))
	return recs, nil
}

// Logs reads the backend operation logs.
type Logs struct {
	runner dispatch.Runner
}

// NewLogs creates a log reader.
func NewLogs(runner dispatch.Runner) *Logs {
	return &Logs{runner: runner}
}

// Files lists the log file names, newest first.
func (l *Logs) Files() ([]string, error) {
	resp, err := l.runner.Dispatch(api.LogFiles()).Resolve()
	if err != nil {
		return nil, err
	}
	files, err := resp.Envelope.Strings("files", "name")
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}

// Content returns the lines of one log file.
func (l *Logs) Content(name string) ([]string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("choose a log file")
	}
	resp, err := l.runner.Dispatch(api.LogContent(name)).Resolve()
	if err != nil {
		return nil, err
	}
	raw := resp.Envelope.Payload("content", "lines")
	if raw == nil {
		return []string{}, nil
	}

	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return trimNewlines(lines), nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, apperr.Decode("log content is neither text nor a list of lines", err)
	}
	return strings.Split(strings.TrimRight(text, "\n"), "\n"), nil
}

func trimNewlines(lines []string) []string {
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r\n")
	}
	return lines
}
