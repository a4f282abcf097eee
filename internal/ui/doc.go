// Package ui contains the Fyne-based desktop user interface. It shows the login
// form, then one tab per resource the signed-in user may manage, and renders
// controller snapshots, transfer tasks and notifications. Backend work always
// runs off the UI goroutine; results come back through fyne.Do. All UI strings
// are localized via Localization.
package ui
