package config

import (
	"strings"

	"fyne.io/fyne/v2"

	"github.com/ytget/stockdesk/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyBackendURL   = "backend_url"
	KeyLanguage     = "app_language"
	KeyExportDir    = "export_directory"
	KeyLastUsername = "last_username"
)

// Default values
const (
	DefaultLanguage = "en"
)

// Settings manages the per-user preferences edited in the settings dialog.
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetBackendURL returns the saved backend address, or fallback when none is
// saved.
func (s *Settings) GetBackendURL(fallback string) string {
	if u := s.app.Preferences().String(KeyBackendURL); u != "" {
		return u
	}
	return fallback
}

// SetBackendURL saves the backend address. An empty value removes the
// override.
func (s *Settings) SetBackendURL(u string) error {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	if u == "" {
		s.app.Preferences().RemoveValue(KeyBackendURL)
		return nil
	}
	if err := ValidateBackendURL(u); err != nil {
		return err
	}
	s.app.Preferences().SetString(KeyBackendURL, u)
	return nil
}

// GetExportDirectory returns the directory exports and receipts are saved to
func (s *Settings) GetExportDirectory() string {
	dir := s.app.Preferences().String(KeyExportDir)
	if dir == "" {
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = "."
		}
		s.SetExportDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetExportDirectory sets the export directory
func (s *Settings) SetExportDirectory(dir string) {
	s.app.Preferences().SetString(KeyExportDir, dir)
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if _, ok := s.GetLanguageOptions()[lang]; !ok {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"en": "English",
		"zh": "中文",
	}
}

// GetLastUsername returns the username of the last successful login
func (s *Settings) GetLastUsername() string {
	return s.app.Preferences().String(KeyLastUsername)
}

// SetLastUsername remembers the username of a successful login
func (s *Settings) SetLastUsername(name string) {
	s.app.Preferences().SetString(KeyLastUsername, strings.TrimSpace(name))
}
