package ui

import "time"

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconClose    = "×"
	IconError    = "❌"
	IconPrev     = "◀"
	IconNext     = "▶"
	IconChecked  = "☑"
	IconBlank    = "☐"
	IconLocked   = "🔒"
	IconPending  = "⏳"
	IconDone     = "✔"
)

// Text fragments
const (
	MiddleDotSeparator = " · "
	DashPlaceholder    = "—"
	PageLabelFormat    = "%d / %d"
)

// Layout sizing
const (
	WindowWidth  float32 = 1100
	WindowHeight float32 = 700

	LoginFormWidth float32 = 360

	SelectColumnWidth  float32 = 56
	DefaultColumnWidth float32 = 120
	WideColumnWidth    float32 = 180
	PageEntryWidth     float32 = 56

	StatusLabelWidth float32 = 110
	RowMinWidth      float32 = 400
	RowMinHeight     float32 = 48

	FormDialogWidth  float32 = 460
	FormDialogHeight float32 = 420
)

// Toast notification sizing and behavior
const (
	ToastWidth     float32 = 320
	ToastHeight    float32 = 110
	ToastMargin    float32 = 20
	ToastAutoHide          = 5 * time.Second
	ErrorToastHide         = 8 * time.Second
)

// Timeouts
const (
	LoginTimeout = 30 * time.Second
)
