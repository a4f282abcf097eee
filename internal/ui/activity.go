package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/stockdesk/internal/dispatch"
)

// activityIndicator is the status bar spinner shown while backend calls run.
type activityIndicator struct {
	monitor      dispatch.Monitor
	localization *Localization

	bar   *widget.ProgressBarInfinite
	label *widget.Label
	box   *fyne.Container
}

func newActivityIndicator(monitor dispatch.Monitor, l *Localization) *activityIndicator {
	ai := &activityIndicator{
		monitor:      monitor,
		localization: l,
		bar:          widget.NewProgressBarInfinite(),
		label:        widget.NewLabel(""),
	}
	ai.label.Importance = widget.LowImportance
	ai.box = container.NewBorder(nil, nil, ai.label, nil, ai.bar)
	ai.refresh()
	return ai
}

// Watch subscribes to call updates. Updates arrive on worker goroutines and
// are moved to the UI goroutine.
func (ai *activityIndicator) Watch() {
	if ai.monitor == nil {
		return
	}
	ai.monitor.SetUpdateCallback(func(*dispatch.Call) {
		fyne.Do(ai.refresh)
	})
}

// Container returns the status bar content.
func (ai *activityIndicator) Container() fyne.CanvasObject {
	return ai.box
}

// refresh must run on the UI goroutine.
func (ai *activityIndicator) refresh() {
	n := 0
	if ai.monitor != nil {
		n = ai.monitor.Active()
	}
	if n == 0 {
		ai.bar.Stop()
		ai.box.Hide()
		return
	}
	ai.label.SetText(fmt.Sprintf(ai.localization.GetText(KeyRequestsActive), n))
	ai.bar.Start()
	ai.box.Show()
}
