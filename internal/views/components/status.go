package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	StatusReady     = "Ready"
	NoDocumentInfo  = "No map loaded"
	NoTilesetsInfo  = "No tileset loaded"
	zoomInfoPattern = "Zoom: %.0f%%"
)

// StatusBar displays application status, document and view information
type StatusBar struct {
	container    *fyne.Container
	statusLabel  *widget.Label
	documentInfo *widget.Label
	tilesetInfo  *widget.Label
	zoomInfo     *widget.Label
	activity     *widget.ProgressBarInfinite
}

// NewStatusBar creates a new status bar component
func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

func (sb *StatusBar) createComponents() {
	sb.statusLabel = widget.NewLabel(StatusReady)
	sb.documentInfo = widget.NewLabel(NoDocumentInfo)
	sb.tilesetInfo = widget.NewLabel(NoTilesetsInfo)
	sb.zoomInfo = widget.NewLabel(fmt.Sprintf(zoomInfoPattern, 100.0))
	sb.activity = widget.NewProgressBarInfinite()
	sb.activity.Stop()
	sb.activity.Hide()
}

func (sb *StatusBar) buildLayout() {
	sb.container = container.NewHBox(
		sb.statusLabel,
		sb.activity,
		widget.NewSeparator(),
		sb.documentInfo,
		widget.NewSeparator(),
		sb.tilesetInfo,
		widget.NewSeparator(),
		sb.zoomInfo,
	)
}

// SetStatus updates the main status message
func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

// GetStatus returns the current status message
func (sb *StatusBar) GetStatus() string {
	return sb.statusLabel.Text
}

// SetBusy shows or hides the activity indicator
func (sb *StatusBar) SetBusy(busy bool) {
	if busy {
		sb.activity.Show()
		sb.activity.Start()
		return
	}
	sb.activity.Stop()
	sb.activity.Hide()
}

// IsBusy reports whether the activity indicator is showing
func (sb *StatusBar) IsBusy() bool {
	return sb.activity.Visible()
}

// SetDocumentInfo describes the open document: cells for maps, pixels
// for images
func (sb *StatusBar) SetDocumentInfo(kind string, width, height int, format string) {
	unit := "cells"
	if kind == "image" {
		unit = "px"
	}
	sb.documentInfo.SetText(fmt.Sprintf("%s: %dx%d %s, %s", capitalize(kind), width, height, unit, format))
}

// SetTilesetInfo shows how many tilesets are loaded and from where
func (sb *StatusBar) SetTilesetInfo(count int, source string) {
	if count == 0 {
		sb.tilesetInfo.SetText(NoTilesetsInfo)
		return
	}
	sb.tilesetInfo.SetText(fmt.Sprintf("Tilesets: %d (%s)", count, source))
}

// SetZoom shows the zoom level as a percentage
func (sb *StatusBar) SetZoom(zoom float64) {
	sb.zoomInfo.SetText(fmt.Sprintf(zoomInfoPattern, zoom*100))
}

// Reset resets the status bar to initial state
func (sb *StatusBar) Reset() {
	sb.statusLabel.SetText(StatusReady)
	sb.documentInfo.SetText(NoDocumentInfo)
	sb.SetBusy(false)
}

// GetContainer returns the status bar container
func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
