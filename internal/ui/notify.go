package ui

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/stockdesk/internal/listview"
)

// toaster shows short-lived notifications in the top-right corner of a window.
type toaster struct {
	window fyne.Window
}

// Notify implements listview.Notifier. It may be called from any goroutine.
func (t *toaster) Notify(n listview.Notification) {
	hide := ToastAutoHide
	if n.Level == listview.LevelError || n.Level == listview.LevelWarning {
		hide = ErrorToastHide
	}
	fyne.Do(func() {
		t.show(n.Title, n.Message, importanceFor(n.Level), hide)
	})
}

// Info shows a message from the UI goroutine.
func (t *toaster) Info(title, message string) {
	t.show(title, message, widget.MediumImportance, ToastAutoHide)
}

// Warn shows a problem from the UI goroutine.
func (t *toaster) Warn(title, message string) {
	t.show(title, message, widget.DangerImportance, ErrorToastHide)
}

func importanceFor(level listview.Level) widget.Importance {
	switch level {
	case listview.LevelSuccess:
		return widget.SuccessImportance
	case listview.LevelWarning:
		return widget.WarningImportance
	case listview.LevelError:
		return widget.DangerImportance
	default:
		return widget.MediumImportance
	}
}

// show must run on the UI goroutine.
func (t *toaster) show(title, message string, importance widget.Importance, hideAfter time.Duration, actions ...fyne.CanvasObject) {
	titleLabel := widget.NewLabel(title)
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	titleLabel.Importance = importance

	messageLabel := widget.NewLabel(message)
	messageLabel.Wrapping = fyne.TextWrapWord

	var popup *widget.PopUp
	closeBtn := widget.NewButton(IconClose, func() {
		if popup != nil {
			popup.Hide()
		}
	})
	closeBtn.Importance = widget.LowImportance

	header := container.NewBorder(nil, nil, nil, closeBtn, titleLabel)
	content := container.NewVBox(header, messageLabel)
	if len(actions) > 0 {
		content.Add(container.NewHBox(actions...))
	}

	popup = widget.NewPopUp(content, t.window.Canvas())

	canvasSize := t.window.Canvas().Size()
	size := fyne.NewSize(ToastWidth, fyne.Max(ToastHeight, content.MinSize().Height))
	popup.Resize(size)
	popup.Move(fyne.NewPos(canvasSize.Width-size.Width-ToastMargin, ToastMargin))
	popup.Show()

	go func() {
		time.Sleep(hideAfter)
		fyne.Do(popup.Hide)
	}()
}
