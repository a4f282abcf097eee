package ui

import (
	"fmt"
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/stockdesk/internal/model"
)

// TransferRow represents a compact transfer task row widget
type TransferRow struct {
	widget.BaseWidget

	task         model.TransferTask
	localization *Localization

	titleLabel  *widget.Label
	statusLabel *widget.Label
	detailLabel *widget.Label

	revealBtn *widget.Button // reveal in file manager
	openBtn   *widget.Button // open with default app
	copyBtn   *widget.Button

	onReveal   func(filePath string)
	onOpen     func(filePath string)
	onCopyPath func(filePath string)
}

// NewTransferRow creates a new transfer row widget
func NewTransferRow(localization *Localization) *TransferRow {
	tr := &TransferRow{localization: localization}
	tr.ExtendBaseWidget(tr)
	tr.createUI()
	return tr
}

// SetCallbacks sets the action callbacks
func (tr *TransferRow) SetCallbacks(onReveal, onOpen, onCopyPath func(filePath string)) {
	tr.onReveal = onReveal
	tr.onOpen = onOpen
	tr.onCopyPath = onCopyPath
}

// UpdateTask updates the row with new task data
func (tr *TransferRow) UpdateTask(task model.TransferTask) {
	tr.task = task
	tr.updateFromTask()
	tr.Refresh()
}

func (tr *TransferRow) createUI() {
	tr.titleLabel = widget.NewLabel("")
	tr.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	tr.titleLabel.Truncation = fyne.TextTruncateEllipsis

	tr.statusLabel = widget.NewLabel("")
	tr.statusLabel.Alignment = fyne.TextAlignTrailing

	tr.detailLabel = widget.NewLabel("")
	tr.detailLabel.Truncation = fyne.TextTruncateEllipsis

	// The buttons read tr.task when tapped, not when created.
	tr.revealBtn = widget.NewButton(tr.localization.GetText(KeyReveal), func() {
		if tr.onReveal != nil && tr.hasOutput() {
			tr.onReveal(tr.task.Path)
		}
	})
	tr.openBtn = widget.NewButton(tr.localization.GetText(KeyOpen), func() {
		if tr.onOpen != nil && tr.hasOutput() {
			tr.onOpen(tr.task.Path)
		}
	})
	tr.copyBtn = widget.NewButton(tr.localization.GetText(KeyCopyPath), func() {
		if tr.onCopyPath != nil && tr.task.Path != "" {
			tr.onCopyPath(tr.task.Path)
		}
	})
	tr.copyBtn.Importance = widget.LowImportance
}

// hasOutput reports whether the task produced a file on disk.
func (tr *TransferRow) hasOutput() bool {
	return tr.task.Status == model.StatusCompleted && tr.task.Kind != model.TransferImport && tr.task.Path != ""
}

func (tr *TransferRow) updateFromTask() {
	kind := tr.localization.GetText(string(tr.task.Kind))
	tr.titleLabel.SetText(strings.TrimSpace(kind + MiddleDotSeparator + tr.task.GetDisplayTitle()))

	switch tr.task.Status {
	case model.StatusFailed:
		tr.statusLabel.Importance = widget.DangerImportance
		tr.statusLabel.SetText(IconError + " " + tr.task.Status.String())
	case model.StatusCompleted:
		tr.statusLabel.Importance = widget.SuccessImportance
		tr.statusLabel.SetText(IconDone + " " + tr.task.Status.String())
	default:
		tr.statusLabel.Importance = widget.MediumImportance
		tr.statusLabel.SetText(IconPending + " " + tr.task.Status.String())
	}

	tr.detailLabel.SetText(transferDetail(tr.task, tr.localization))

	if tr.hasOutput() {
		tr.revealBtn.Enable()
		tr.openBtn.Enable()
	} else {
		tr.revealBtn.Disable()
		tr.openBtn.Disable()
	}
	if tr.task.Path != "" {
		tr.copyBtn.Enable()
	} else {
		tr.copyBtn.Disable()
	}
}

// transferDetail summarizes the outcome line under the title.
func transferDetail(task model.TransferTask, l *Localization) string {
	switch {
	case task.Status == model.StatusFailed:
		return task.LastError
	case task.Status != model.StatusCompleted:
		return DashPlaceholder
	case task.Result != nil:
		res := task.Result
		s := fmt.Sprintf(l.GetText(KeyImportSummary), res.Succeeded, res.Skipped, res.Failed())
		if len(res.FailedIDs) > 0 {
			s += MiddleDotSeparator + strings.Join(res.FailedIDs, ", ")
		}
		return s
	default:
		return fmt.Sprintf(l.GetText(KeyRecordsCount), task.Rows) + MiddleDotSeparator + task.FinishedAt.Format("15:04:05")
	}
}

// CreateRenderer creates the widget renderer
func (tr *TransferRow) CreateRenderer() fyne.WidgetRenderer {
	fixedWidth := func(w float32, obj fyne.CanvasObject) fyne.CanvasObject {
		spacer := canvas.NewRectangle(color.Transparent)
		spacer.SetMinSize(fyne.NewSize(w, obj.MinSize().Height))
		return container.NewStack(spacer, obj)
	}

	actions := container.NewHBox(tr.revealBtn, tr.openBtn, tr.copyBtn)
	right := container.NewHBox(fixedWidth(StatusLabelWidth, tr.statusLabel), actions)
	top := container.NewBorder(nil, nil, nil, right, tr.titleLabel)
	content := container.NewVBox(top, tr.detailLabel, widget.NewSeparator())

	return &transferRowRenderer{content: content}
}

// transferRowRenderer renders the transfer row widget
type transferRowRenderer struct {
	content *fyne.Container
}

func (r *transferRowRenderer) Layout(size fyne.Size) {
	r.content.Resize(size)
}

func (r *transferRowRenderer) MinSize() fyne.Size {
	ms := r.content.MinSize()
	return fyne.NewSize(fyne.Max(ms.Width, RowMinWidth), fyne.Max(ms.Height, RowMinHeight))
}

func (r *transferRowRenderer) Refresh() {
	r.content.Refresh()
}

func (r *transferRowRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.content}
}

func (r *transferRowRenderer) Destroy() {}
