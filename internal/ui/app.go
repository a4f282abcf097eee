package ui

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/stockdesk/internal/api"
	"github.com/ytget/stockdesk/internal/catalog"
	"github.com/ytget/stockdesk/internal/config"
	"github.com/ytget/stockdesk/internal/dispatch"
	"github.com/ytget/stockdesk/internal/listview"
	"github.com/ytget/stockdesk/internal/lookup"
	"github.com/ytget/stockdesk/internal/model"
	"github.com/ytget/stockdesk/internal/platform"
	"github.com/ytget/stockdesk/internal/reports"
	"github.com/ytget/stockdesk/internal/session"
	"github.com/ytget/stockdesk/internal/transfer"
)

// Session housekeeping
const (
	SessionCheckInterval = time.Minute
	LogoutTimeout        = 10 * time.Second
)

// Services are the non-UI components the windows drive.
type Services struct {
	Session  *session.Session
	Auth     *api.Auth
	Runner   dispatch.Runner
	Activity dispatch.Monitor
	Lookup   *lookup.Service
	Transfer transfer.Transferer
	Logs     *reports.Logs
	Logger   *slog.Logger
}

// App owns the main window and switches between the login and the
// management screens.
type App struct {
	fyneApp      fyne.App
	window       fyne.Window
	svc          Services
	settings     *config.Settings
	localization *Localization
	toast        *toaster
	logger       *slog.Logger

	screens   map[string]*ResourceScreen
	transfers *TransferPanel
	activity  *activityIndicator

	// stopWatch ends the session expiry watcher of the current login.
	stopWatch chan struct{}
	closeOnce sync.Once
}

// NewApp creates the application shell. Run shows the window.
func NewApp(fyneApp fyne.App, window fyne.Window, settings *config.Settings, svc Services) *App {
	if svc.Logger == nil {
		svc.Logger = slog.Default()
	}

	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	a := &App{
		fyneApp:      fyneApp,
		window:       window,
		svc:          svc,
		settings:     settings,
		localization: localization,
		toast:        &toaster{window: window},
		logger:       svc.Logger.With("component", "ui"),
	}
	a.transfers = newTransferPanel(localization, a.onRevealFile, a.onOpenFile, a.onCopyPath)
	svc.Transfer.SetUpdateCallback(a.onTransferUpdate)
	a.activity = newActivityIndicator(svc.Activity, localization)
	a.activity.Watch()

	window.SetTitle(localization.GetText(KeyAppTitle))
	window.SetIcon(LoadLogoResource())
	window.Resize(fyne.NewSize(WindowWidth, WindowHeight))
	window.SetCloseIntercept(a.onCloseRequested)
	return a
}

// Run shows the login screen and blocks until the window is closed.
func (a *App) Run() {
	a.showLogin()
	a.window.ShowAndRun()
}

func (a *App) showLogin() {
	a.window.SetMainMenu(nil)
	a.window.SetContent(newLoginScreen(a).Container())
}

// onLoggedIn runs on the UI goroutine after a successful login.
func (a *App) onLoggedIn(username string) {
	a.settings.SetLastUsername(username)
	a.logger.Info("signed in", "user", a.svc.Session.Username(), "admin", a.svc.Session.IsAdmin())
	a.showMain()
	a.watchSession()
}

func (a *App) showMain() {
	a.screens = map[string]*ResourceScreen{}
	tabs := container.NewAppTabs()

	for _, desc := range catalog.Visible(a.svc.Session.IsAdmin()) {
		notifier := listview.NotifierFunc(a.notify)
		ctrl := listview.New(desc, a.svc.Runner, notifier, a.svc.Logger)
		screen := newResourceScreen(a, desc, ctrl)
		a.screens[desc.Name] = screen
		tabs.Append(container.NewTabItem(a.localization.Resource(desc.Name, desc.Title), screen.Container()))
	}
	tabs.Append(container.NewTabItem(a.localization.GetText(KeyTransfers), a.transfers.Container()))
	if a.svc.Session.IsAdmin() {
		tabs.Append(container.NewTabItem(a.localization.GetText(KeyLogs), newLogsScreen(a).Container()))
	}
	tabs.SetTabLocation(container.TabLocationLeading)

	a.createMenu()
	a.window.SetContent(container.NewBorder(nil, a.activity.Container(), nil, nil, tabs))

	for _, s := range a.screens {
		s.Start()
	}
}

// createMenu creates the application menu
func (a *App) createMenu() {
	settingsItem := fyne.NewMenuItem(a.localization.GetText(KeySettings), a.onShowSettings)
	logoutItem := fyne.NewMenuItem(a.localization.GetText(KeyLogout), a.onLogout)

	languageMenu := fyne.NewMenu(a.localization.GetText(KeyLanguage))
	for code, name := range a.localization.GetAvailableLanguages() {
		langCode := code
		item := fyne.NewMenuItem(name, func() { a.onLanguageChange(langCode) })
		item.Checked = a.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, item)
	}

	a.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(a.localization.GetText(KeyFile), settingsItem, fyne.NewMenuItemSeparator(), logoutItem),
		languageMenu,
	))
}

func (a *App) onLanguageChange(langCode string) {
	a.localization.SetLanguage(langCode)
	a.settings.SetLanguage(langCode)
	a.window.SetTitle(a.localization.GetText(KeyAppTitle))
	if a.svc.Session.Authenticated() {
		a.showMain()
		return
	}
	a.showLogin()
}

func (a *App) onShowSettings() {
	NewSettingsDialog(a.settings, a.localization, a.window, func() {
		if lang := a.settings.GetLanguage(); lang != a.localization.GetCurrentLanguage() {
			a.onLanguageChange(lang)
		}
		a.toast.Info(a.localization.GetText(KeySettings), a.localization.GetText(KeySettingsSaved))
	}).Show()
}

// notify is the listview notifier of every screen. A 401 ends the session.
func (a *App) notify(n listview.Notification) {
	if n.Err != nil && api.IsUnauthorized(n.Err) {
		fyne.Do(a.expireSession)
		return
	}
	if n.Level == listview.LevelError {
		a.logger.Warn("operation failed", "resource", n.Resource, "title", n.Title, "error", n.Err)
	}
	a.toast.Notify(n)
}

func (a *App) watchSession() {
	a.stopWatching()
	stop := make(chan struct{})
	a.stopWatch = stop

	go func() {
		ticker := time.NewTicker(SessionCheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if a.svc.Session.Expired() {
					fyne.Do(a.expireSession)
					return
				}
			}
		}
	}()
}

func (a *App) stopWatching() {
	if a.stopWatch != nil {
		close(a.stopWatch)
		a.stopWatch = nil
	}
}

// expireSession drops the credential and returns to the login screen.
func (a *App) expireSession() {
	if !a.svc.Session.Authenticated() {
		return
	}
	a.logger.Info("session expired", "user", a.svc.Session.Username())
	a.stopWatching()
	a.svc.Session.Clear()
	a.showLogin()
	a.toast.Warn(a.localization.GetText(KeyLogin), a.localization.GetText(KeySessionExpired))
}

func (a *App) onLogout() {
	a.stopWatching()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), LogoutTimeout)
		defer cancel()
		_ = a.svc.Auth.Logout(ctx)
		fyne.Do(a.showLogin)
	}()
}

// onCloseRequested logs out before the window goes away.
func (a *App) onCloseRequested() {
	a.closeOnce.Do(func() {
		a.stopWatching()
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), LogoutTimeout)
			defer cancel()
			if err := a.svc.Auth.Logout(ctx); err != nil {
				a.logger.Warn("logout on close failed", "error", err)
			}
			fyne.Do(a.window.Close)
		}()
	})
}

// onTransferUpdate receives transfer progress from worker goroutines.
func (a *App) onTransferUpdate(task model.TransferTask) {
	fyne.Do(func() {
		a.transfers.Upsert(task)
		if !task.Status.IsFinished() {
			return
		}
		if task.Status == model.StatusFailed {
			a.toast.Warn(a.localization.GetText(KeyTransferFailed), task.GetDisplayTitle()+": "+task.LastError)
			return
		}

		var actions []fyne.CanvasObject
		if task.Kind == model.TransferImport {
			if s, ok := a.screens[task.Resource]; ok {
				go func() { _ = s.ctrl.AfterImport() }()
			}
		} else {
			path := task.Path
			actions = append(actions,
				widget.NewButton(a.localization.GetText(KeyReveal), func() { a.onRevealFile(path) }),
				widget.NewButton(a.localization.GetText(KeyOpen), func() { a.onOpenFile(path) }),
			)
		}
		a.toast.show(a.localization.GetText(KeyTransferDone), transferDetail(task, a.localization),
			widget.SuccessImportance, ToastAutoHide, actions...)
	})
}

func (a *App) onRevealFile(filePath string) {
	if err := platform.OpenFileInManager(filePath); err != nil {
		a.logger.Warn("reveal failed", "path", filePath, "error", err)
		a.toast.Warn(a.localization.GetText(KeyErrorOpeningFile), err.Error())
	}
}

func (a *App) onOpenFile(filePath string) {
	if err := platform.OpenFileWithDefaultApp(filePath); err != nil {
		a.logger.Warn("open failed", "path", filePath, "error", err)
		a.toast.Warn(a.localization.GetText(KeyErrorOpeningFile), err.Error())
	}
}

func (a *App) onCopyPath(filePath string) {
	if strings.TrimSpace(filePath) == "" {
		return
	}
	a.fyneApp.Clipboard().SetContent(filePath)
	a.toast.Info(a.localization.GetText(KeyCopyPath), a.localization.GetText(KeyPathCopied))
}
