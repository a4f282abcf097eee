package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

const (
	AppIcon = "stockdesk.png"
)

// LoadLogoResource loads the application icon from the working directory and
// falls back to the theme's storage icon when the file is missing.
func LoadLogoResource() fyne.Resource {
	if res, err := fyne.LoadResourceFromPath(AppIcon); err == nil {
		return res
	}
	return theme.StorageIcon()
}
