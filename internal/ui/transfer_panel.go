package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/stockdesk/internal/model"
)

// TransferPanel lists the transfers of this session, newest first.
type TransferPanel struct {
	localization *Localization
	tasks        []model.TransferTask
	list         *widget.List

	onReveal   func(string)
	onOpen     func(string)
	onCopyPath func(string)
}

func newTransferPanel(l *Localization, onReveal, onOpen, onCopyPath func(string)) *TransferPanel {
	p := &TransferPanel{
		localization: l,
		onReveal:     onReveal,
		onOpen:       onOpen,
		onCopyPath:   onCopyPath,
	}
	p.list = widget.NewList(
		func() int { return len(p.tasks) },
		func() fyne.CanvasObject {
			row := NewTransferRow(p.localization)
			row.SetCallbacks(p.onReveal, p.onOpen, p.onCopyPath)
			return row
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(p.tasks) {
				obj.(*TransferRow).UpdateTask(p.tasks[id])
			}
		},
	)
	return p
}

// Upsert adds or replaces a task. It must run on the UI goroutine.
func (p *TransferPanel) Upsert(task model.TransferTask) {
	for i := range p.tasks {
		if p.tasks[i].ID == task.ID {
			p.tasks[i] = task
			p.list.RefreshItem(i)
			return
		}
	}
	p.tasks = append([]model.TransferTask{task}, p.tasks...)
	p.list.Refresh()
}

// Container returns the panel content.
func (p *TransferPanel) Container() fyne.CanvasObject {
	return p.list
}
