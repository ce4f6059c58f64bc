package views

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"op2mapviewer/internal/render"
)

const (
	AppName   = "OP2MapViewer"
	AppAuthor = "Arthur Bowers"
)

// settingsForm edits a copy of the view settings and reports every change
type settingsForm struct {
	cfg      render.ViewConfig
	onChange func(render.ViewConfig)

	gridSwatch *canvas.Rectangle
	bgSwatch   *canvas.Rectangle
}

func newSettingsContent(window fyne.Window, cfg render.ViewConfig, tilesetSource string, onChange func(render.ViewConfig)) fyne.CanvasObject {
	f := &settingsForm{cfg: cfg, onChange: onChange}

	cellLabel := widget.NewLabel(fmt.Sprintf("%.0f px", cfg.CellSize))
	cellSlider := widget.NewSlider(render.MinCellSize, render.MaxCellSize)
	cellSlider.Step = 1
	cellSlider.Value = cfg.CellSize
	cellSlider.OnChanged = func(v float64) {
		cellLabel.SetText(fmt.Sprintf("%.0f px", v))
		f.cfg.CellSize = v
		f.changed()
	}

	zoomLabel := widget.NewLabel(fmt.Sprintf("%.0f%%", cfg.Zoom*100))
	zoomSlider := widget.NewSlider(render.MinZoom, render.MaxZoom)
	zoomSlider.Step = 0.1
	zoomSlider.Value = cfg.Zoom
	zoomSlider.OnChanged = func(v float64) {
		zoomLabel.SetText(fmt.Sprintf("%.0f%%", v*100))
		f.cfg.Zoom = v
		f.changed()
	}

	grid := widget.NewCheck("Show Grid", func(on bool) {
		f.cfg.ShowGrid = on
		f.changed()
	})
	grid.Checked = cfg.ShowGrid

	tiles := widget.NewCheck("Use Tilesets", func(on bool) {
		f.cfg.UseTilesets = on
		f.changed()
	})
	tiles.Checked = cfg.UseTilesets

	source := "No tileset loaded"
	if tilesetSource != "" {
		source = "Tileset: " + tilesetSource
	}

	f.gridSwatch = swatch(cfg.GridColor)
	f.bgSwatch = swatch(cfg.BackgroundColor)
	gridButton := widget.NewButton("Grid...", func() {
		f.pickColor(window, "Grid Color", func(c color.RGBA) {
			f.cfg.GridColor = c
			f.gridSwatch.FillColor = c
			f.gridSwatch.Refresh()
		})
	})
	bgButton := widget.NewButton("Background...", func() {
		f.pickColor(window, "Background Color", func(c color.RGBA) {
			f.cfg.BackgroundColor = c
			f.bgSwatch.FillColor = c
			f.bgSwatch.Refresh()
		})
	})

	return container.NewVBox(
		widget.NewLabelWithStyle("Display", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("Cell Size", container.NewBorder(nil, nil, nil, cellLabel, cellSlider)),
			widget.NewFormItem("Zoom", container.NewBorder(nil, nil, nil, zoomLabel, zoomSlider)),
		),
		grid,
		tiles,
		widget.NewLabel(source),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Colors", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(f.gridSwatch, gridButton),
		container.NewHBox(f.bgSwatch, bgButton),
	)
}

func (f *settingsForm) changed() {
	if f.onChange != nil {
		f.onChange(f.cfg)
	}
}

func (f *settingsForm) pickColor(window fyne.Window, title string, apply func(color.RGBA)) {
	picker := dialog.NewColorPicker(title, "", func(c color.Color) {
		r, g, b, _ := c.RGBA()
		apply(color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255})
		f.changed()
	}, window)
	picker.Advanced = true
	picker.Show()
}

func swatch(c color.RGBA) *canvas.Rectangle {
	r := canvas.NewRectangle(c)
	r.SetMinSize(fyne.NewSize(24, 24))
	r.StrokeWidth = 1
	r.StrokeColor = color.Gray{Y: 128}
	return r
}

func newAboutContent(version string) fyne.CanvasObject {
	return container.NewVBox(
		widget.NewLabelWithStyle(AppName, fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle(fmt.Sprintf("Version: %s", version), fyne.TextAlignCenter, fyne.TextStyle{}),
		widget.NewLabelWithStyle("Author: "+AppAuthor, fyne.TextAlignCenter, fyne.TextStyle{}),
		widget.NewLabelWithStyle("Outpost 2 map viewer built with Fyne", fyne.TextAlignCenter, fyne.TextStyle{}),
	)
}
