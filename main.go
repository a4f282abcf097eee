package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2/app"
	"github.com/jonboulle/clockwork"

	"github.com/ytget/stockdesk/internal/api"
	"github.com/ytget/stockdesk/internal/config"
	"github.com/ytget/stockdesk/internal/dispatch"
	"github.com/ytget/stockdesk/internal/logging"
	"github.com/ytget/stockdesk/internal/lookup"
	"github.com/ytget/stockdesk/internal/platform"
	"github.com/ytget/stockdesk/internal/reports"
	"github.com/ytget/stockdesk/internal/session"
	"github.com/ytget/stockdesk/internal/transfer"
	"github.com/ytget/stockdesk/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.stockdesk"
	AppName = "StockDesk"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, closer, err := logging.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup failed: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	logger.Info("starting", "app", AppName, "version", version)

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	settings := config.NewSettings(myApp)
	if err := platform.CreateDirectoryIfNotExists(settings.GetExportDirectory()); err != nil {
		logger.Warn("failed to ensure export dir", "error", err)
	}

	// A saved backend override wins over file and environment configuration.
	backendURL := settings.GetBackendURL(cfg.Backend.URL)
	logger.Info("backend", "url", backendURL, "timeout", cfg.Backend.Timeout)

	sess := session.New(cfg.Backend.TokenSecret, clockwork.NewRealClock(), logger)
	client := api.NewClient(backendURL, cfg.Backend.Timeout, sess, logger)
	runner := dispatch.NewService(client, logger)

	svc := ui.Services{
		Session:  sess,
		Auth:     api.NewAuth(client, sess, logger),
		Runner:   runner,
		Activity: runner,
		Lookup:   lookup.NewService(runner, logger),
		Transfer: transfer.NewService(runner, logger),
		Logs:     reports.NewLogs(runner),
		Logger:   logger,
	}

	window := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	ui.NewApp(myApp, window, settings, svc).Run()

	if !runner.Wait(ui.LogoutTimeout) {
		logger.Warn("exiting with calls still in flight", "active", runner.Active())
	}
	logger.Info("stopped")
}
