package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/stockdesk/internal/apperr"
)

// logsScreen browses the backend's operation log files.
type logsScreen struct {
	app *App

	fileSelect *widget.Select
	list       *widget.List
	lines      []string
	progress   *widget.ProgressBarInfinite
}

func newLogsScreen(a *App) *logsScreen {
	s := &logsScreen{app: a}
	s.fileSelect = widget.NewSelect(nil, s.load)
	s.fileSelect.PlaceHolder = a.localization.GetText(KeyLogFile)
	s.list = widget.NewList(
		func() int { return len(s.lines) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(s.lines) {
				obj.(*widget.Label).SetText(s.lines[id])
			}
		},
	)
	s.progress = widget.NewProgressBarInfinite()
	s.progress.Hide()
	s.refreshFiles()
	return s
}

// Container returns the screen content.
func (s *logsScreen) Container() fyne.CanvasObject {
	refresh := widget.NewButton(s.app.localization.GetText(KeyRefresh), s.refreshFiles)
	top := container.NewVBox(container.NewBorder(nil, nil, nil, refresh, s.fileSelect), s.progress)
	return container.NewBorder(top, nil, nil, nil, s.list)
}

func (s *logsScreen) refreshFiles() {
	s.progress.Show()
	go func() {
		files, err := s.app.svc.Logs.Files()
		fyne.Do(func() {
			s.progress.Hide()
			if err != nil {
				s.app.toast.Warn(s.app.localization.GetText(KeyLogs), apperr.Message(err))
				return
			}
			s.fileSelect.Options = files
			s.fileSelect.Refresh()
			if len(files) > 0 && s.fileSelect.Selected == "" {
				s.fileSelect.SetSelected(files[0])
			}
		})
	}()
}

func (s *logsScreen) load(name string) {
	if name == "" {
		return
	}
	s.progress.Show()
	go func() {
		lines, err := s.app.svc.Logs.Content(name)
		fyne.Do(func() {
			s.progress.Hide()
			if err != nil {
				s.app.toast.Warn(s.app.localization.GetText(KeyLogs), apperr.Message(err))
				return
			}
			s.lines = lines
			s.list.Refresh()
			s.list.ScrollToTop()
		})
	}()
}
