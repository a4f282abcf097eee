package ui

import (
	"context"
	"errors"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/stockdesk/internal/api"
	"github.com/ytget/stockdesk/internal/apperr"
)

// loginScreen collects credentials and runs the login exchange off the UI
// goroutine.
type loginScreen struct {
	app *App

	usernameEntry *widget.Entry
	passwordEntry *widget.Entry
	signInBtn     *widget.Button
	errorLabel    *widget.Label
	progress      *widget.ProgressBarInfinite
}

func newLoginScreen(a *App) *loginScreen {
	ls := &loginScreen{app: a}
	l := a.localization

	ls.usernameEntry = widget.NewEntry()
	ls.usernameEntry.SetPlaceHolder(l.GetText(KeyUsername))
	ls.usernameEntry.SetText(a.settings.GetLastUsername())

	ls.passwordEntry = widget.NewPasswordEntry()
	ls.passwordEntry.SetPlaceHolder(l.GetText(KeyPassword))
	ls.passwordEntry.OnSubmitted = func(string) { ls.submit() }

	ls.signInBtn = widget.NewButton(l.GetText(KeySignIn), ls.submit)
	ls.signInBtn.Importance = widget.HighImportance

	ls.errorLabel = widget.NewLabel("")
	ls.errorLabel.Importance = widget.DangerImportance
	ls.errorLabel.Wrapping = fyne.TextWrapWord
	ls.errorLabel.Hide()

	ls.progress = widget.NewProgressBarInfinite()
	ls.progress.Hide()
	return ls
}

// Container returns the centered login form.
func (ls *loginScreen) Container() fyne.CanvasObject {
	l := ls.app.localization

	logo := canvas.NewImageFromResource(LoadLogoResource())
	logo.SetMinSize(fyne.NewSize(64, 64))
	logo.FillMode = canvas.ImageFillContain

	title := widget.NewLabel(l.GetText(KeyAppTitle))
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.Alignment = fyne.TextAlignCenter

	form := widget.NewForm(
		widget.NewFormItem(l.GetText(KeyUsername), ls.usernameEntry),
		widget.NewFormItem(l.GetText(KeyPassword), ls.passwordEntry),
	)

	box := container.NewVBox(logo, title, form, ls.signInBtn, ls.progress, ls.errorLabel)
	sized := container.New(layout.NewGridWrapLayout(fyne.NewSize(LoginFormWidth, box.MinSize().Height+80)), box)
	return container.NewCenter(sized)
}

func (ls *loginScreen) submit() {
	l := ls.app.localization
	username := strings.TrimSpace(ls.usernameEntry.Text)
	password := ls.passwordEntry.Text
	if username == "" || password == "" {
		ls.showError(l.GetText(KeyLoginFailed))
		return
	}

	ls.setBusy(true)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), LoginTimeout)
		defer cancel()
		err := ls.app.svc.Auth.Login(ctx, username, password)

		fyne.Do(func() {
			ls.setBusy(false)
			if err != nil {
				ls.app.logger.Warn("login failed", "user", username, "error", err)
				ls.showError(loginMessage(l, err))
				return
			}
			ls.app.onLoggedIn(username)
		})
	}()
}

func (ls *loginScreen) setBusy(busy bool) {
	if busy {
		ls.errorLabel.Hide()
		ls.signInBtn.SetText(ls.app.localization.GetText(KeySigningIn))
		ls.signInBtn.Disable()
		ls.progress.Show()
		return
	}
	ls.signInBtn.SetText(ls.app.localization.GetText(KeySignIn))
	ls.signInBtn.Enable()
	ls.progress.Hide()
}

func (ls *loginScreen) showError(msg string) {
	ls.errorLabel.SetText(msg)
	ls.errorLabel.Show()
}

// loginMessage gives every rejected login the same localized text.
func loginMessage(l *Localization, err error) string {
	if errors.Is(err, api.ErrLoginFailed) {
		return l.GetText(KeyLoginFailed)
	}
	return apperr.Message(err)
}
