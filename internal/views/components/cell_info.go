package components

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"op2mapviewer/internal/mapfile"
)

const (
	NoMapTitle  = "No Map Loaded"
	NoMapHint   = "Open a map file to begin"
	NoCellHint  = "Hover over a cell to see information"
	InfoHeading = "Cell Information"
)

var (
	colorPosition = color.RGBA{R: 173, G: 216, B: 230, A: 255}
	colorWreckage = color.RGBA{R: 139, A: 255}
	colorUnit     = color.RGBA{R: 144, G: 238, B: 144, A: 255}
)

// TypeColor is the label colour used for a cell type in the info panel
func TypeColor(t mapfile.CellType) color.Color {
	switch t.Kind {
	case mapfile.Lava:
		return color.RGBA{R: 255, A: 255}
	case mapfile.Microbe:
		return color.RGBA{G: 255, A: 255}
	case mapfile.Mine:
		if t.Depleted() {
			return color.RGBA{R: 160, G: 160, B: 160, A: 255}
		}
		return color.RGBA{R: 255, G: 255, A: 255}
	case mapfile.Dirt:
		return color.RGBA{R: 139, G: 69, B: 19, A: 255}
	case mapfile.Rock:
		return color.RGBA{R: 160, G: 160, B: 160, A: 255}
	case mapfile.Tube:
		return color.RGBA{B: 255, A: 255}
	case mapfile.Wall:
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	default:
		return color.RGBA{R: 180, G: 180, B: 180, A: 255}
	}
}

// HeightColor shades a height from dark grey (0) to near white (255)
func HeightColor(h uint8) color.Color {
	g := uint8(float64(h)/255*200 + 55)
	return color.RGBA{R: g, G: g, B: g, A: 255}
}

// CellInfoPanel is the side panel showing the open map and the selected
// cell
type CellInfoPanel struct {
	container *fyne.Container

	title       *widget.Label
	description *widget.Label

	cellBox   *fyne.Container
	hint      *widget.Label
	position  *canvas.Text
	cellType  *canvas.Text
	height    *canvas.Text
	wreckage  *canvas.Text
	unit      *canvas.Text
	gradient  *widget.Check
	details   *widget.Check
	infoGroup *fyne.Container

	cell     *mapfile.Cell
	hasMap   bool
	showGrad bool
	showMore bool
}

// NewCellInfoPanel creates the panel in its "no map" state
func NewCellInfoPanel() *CellInfoPanel {
	p := &CellInfoPanel{showGrad: true, showMore: true}
	p.createComponents()
	p.buildLayout()
	p.update()
	return p
}

func (p *CellInfoPanel) createComponents() {
	p.title = widget.NewLabelWithStyle(NoMapTitle, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	p.description = widget.NewLabel(NoMapHint)
	p.description.Wrapping = fyne.TextWrapWord

	p.hint = widget.NewLabel(NoCellHint)
	p.position = canvas.NewText("", colorPosition)
	p.cellType = canvas.NewText("", theme.Color(theme.ColorNameForeground))
	p.height = canvas.NewText("", theme.Color(theme.ColorNameForeground))
	p.wreckage = canvas.NewText("Contains wreckage", colorWreckage)
	p.unit = canvas.NewText("Contains unit", colorUnit)

	p.gradient = widget.NewCheck("Show height gradient", func(on bool) {
		p.showGrad = on
		p.update()
	})
	p.gradient.Checked = true
	p.details = widget.NewCheck("Show additional details", func(on bool) {
		p.showMore = on
		p.update()
	})
	p.details.Checked = true
}

func (p *CellInfoPanel) buildLayout() {
	p.cellBox = container.NewVBox(
		row("Position:", p.position),
		row("Type:", p.cellType),
		row("Height:", p.height),
		p.wreckage,
		p.unit,
		widget.NewSeparator(),
		p.gradient,
		p.details,
	)
	p.infoGroup = container.NewVBox(
		widget.NewLabelWithStyle(InfoHeading, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		p.hint,
		p.cellBox,
	)
	p.container = container.NewVBox(
		p.title,
		p.description,
		widget.NewSeparator(),
		p.infoGroup,
	)
}

func row(label string, value fyne.CanvasObject) *fyne.Container {
	return container.NewHBox(widget.NewLabel(label), value)
}

// SetMapInfo shows the map heading, or the empty state when info is nil
func (p *CellInfoPanel) SetMapInfo(info *mapfile.Info) {
	if info == nil {
		p.hasMap = false
		p.cell = nil
		p.title.SetText(NoMapTitle)
		p.description.SetText(NoMapHint)
		p.description.Show()
	} else {
		p.hasMap = true
		p.cell = nil
		p.title.SetText(info.Name)
		p.description.SetText(info.Description)
		if info.Description == "" {
			p.description.Hide()
		} else {
			p.description.Show()
		}
	}
	p.update()
}

// SetImageInfo shows a heading for a plain image, which has no cells
func (p *CellInfoPanel) SetImageInfo(name, description string) {
	p.hasMap = false
	p.cell = nil
	p.title.SetText(name)
	p.description.SetText(description)
	p.description.Show()
	p.update()
}

// SetCell shows cell, or the hover hint when cell is nil
func (p *CellInfoPanel) SetCell(cell *mapfile.Cell) {
	if cell != nil {
		c := *cell
		p.cell = &c
	} else {
		p.cell = nil
	}
	p.update()
}

func (p *CellInfoPanel) update() {
	if !p.hasMap {
		p.infoGroup.Hide()
		return
	}
	p.infoGroup.Show()

	if p.cell == nil {
		p.hint.Show()
		p.cellBox.Hide()
		return
	}
	p.hint.Hide()
	p.cellBox.Show()

	c := p.cell
	p.position.Text = fmt.Sprintf("(%d, %d)", c.Position.X, c.Position.Y)
	p.cellType.Text = c.Type.String()
	p.cellType.Color = TypeColor(c.Type)
	p.height.Text = fmt.Sprintf("%d", c.Height)
	if p.showGrad {
		p.height.Color = HeightColor(c.Height)
	} else {
		p.height.Color = theme.Color(theme.ColorNameForeground)
	}
	setVisible(p.wreckage, p.showMore && c.HasWreckage)
	setVisible(p.unit, p.showMore && c.HasUnit)

	p.position.Refresh()
	p.cellType.Refresh()
	p.height.Refresh()
}

func setVisible(o fyne.CanvasObject, visible bool) {
	if visible {
		o.Show()
	} else {
		o.Hide()
	}
}

// GetContainer returns the panel container
func (p *CellInfoPanel) GetContainer() *fyne.Container {
	return p.container
}
