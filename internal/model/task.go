package model

import (
	"path/filepath"
	"strings"
	"time"
)

// TransferKind identifies what a transfer task moves.
type TransferKind string

const (
	TransferExport  TransferKind = "export"
	TransferImport  TransferKind = "import"
	TransferReceipt TransferKind = "receipt"
)

// TransferTask represents a single file transfer between the backend and disk
type TransferTask struct {
	ID         string
	Kind       TransferKind
	Resource   string
	Path       string
	Status     Status
	Rows       int    // rows written or submitted
	LastError  string // last error message if any
	Result     *BatchResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// GetDisplayTitle returns the file name without directories, or the resource
func (t *TransferTask) GetDisplayTitle() string {
	if t.Path != "" {
		base := filepath.Base(strings.ReplaceAll(t.Path, "\\", "/"))
		if base != "." && base != "/" {
			return base
		}
	}
	return t.Resource
}

// BatchResult aggregates the outcome of a bulk operation (delete or import).
type BatchResult struct {
	Requested int
	Succeeded int
	Skipped   int
	// FailedIDs is populated only when the backend reports per-row outcomes.
	FailedIDs []string
	// Detailed is false when the backend returned a single success flag, in
	// which case Succeeded is either Requested or zero.
	Detailed bool
	// Unreported is set when the backend flagged failures in a form that
	// could not be read. Neither count is known then.
	Unreported bool
	Message    string
}

// Failed returns the number of rows the backend rejected.
func (b BatchResult) Failed() int {
	if b.Unreported {
		return 0
	}
	if b.Detailed {
		return len(b.FailedIDs)
	}
	return b.Requested - b.Succeeded - b.Skipped
}
