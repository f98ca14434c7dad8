package ui

import (
	"fmt"

	"piperoute/internal/render"
	"piperoute/internal/session"

	"github.com/gdamore/tcell/v2"
)

const (
	panelWidth  = 44
	panelHeight = 13
)

// Panel shows the modes, the selected endpoints and the last status message
type Panel struct {
	x, y          int
	width, height int
	canvas        *render.Canvas
}

// NewPanel creates a new control panel
func NewPanel(x, y, width, height int) *Panel {
	return &Panel{
		x:      x,
		y:      y,
		width:  width,
		height: height,
		canvas: render.NewCanvas(width, height),
	}
}

// PanelInfo is the app state shown next to the session state
type PanelInfo struct {
	Backend string
	Status  string
	Warning bool
}

// Draw renders the panel to the screen
func (p *Panel) Draw(screen tcell.Screen, s *session.Session, info PanelInfo) {
	c := p.canvas
	c.Clear()
	c.DrawBox(0, 0, p.width, p.height, render.StyleBorder)

	title := " piperoute "
	c.DrawText((p.width-len(title))/2, 0, title, render.StyleHeading)

	inner := p.width - 4
	row := 1
	line := func(label, value string, style tcell.Style) {
		if row >= p.height-1 {
			return
		}
		used := c.DrawText(2, row, label, render.StyleDim)
		c.DrawTextClipped(2+used, row, inner-used, value, style)
		row++
	}

	modeValue := s.MainMode().String()
	if s.MainMode() == session.ModeIdentify {
		modeValue += " / " + s.SubMode().String()
	}
	line("Mode:    ", modeValue, render.StyleLabel)
	line("Active:  ", s.ActiveRole().String(), render.StyleLabel)
	line("Start:   ", pointText(s, session.RoleStart), render.StyleStart)
	line("End:     ", pointText(s, session.RoleEnd), render.StyleEnd)
	line("Uploads: ", fmt.Sprintf("%d file(s)", len(s.Uploads())), render.StyleLabel)
	line("Result:  ", resultText(s), render.StyleLabel)
	if info.Backend != "" {
		line("Backend: ", info.Backend, render.StyleLabel)
	}
	if report := s.LastReport(); report != "" {
		line("Report:  ", report, render.StyleLabel)
	}

	help := "s/e role  k sites  m enter  g route  x eval"
	c.DrawTextClipped(2, p.height-3, inner, help, render.StyleDim)

	statusStyle := render.StyleLabel
	if info.Warning {
		statusStyle = render.StyleWarning
	}
	c.DrawTextClipped(2, p.height-2, inner, info.Status, statusStyle)

	c.Blit(screen, p.x, p.y)
}

func pointText(s *session.Session, role session.Role) string {
	if s.LookupPending(role) {
		return "checking…"
	}
	p := s.Point(role)
	if !p.Set {
		return "-"
	}
	text := fmt.Sprintf("%.4f, %.4f [%s]", p.Coord.Lat, p.Coord.Lon, p.Landmass)
	if p.Site != "" {
		text = p.Site + " " + text
	}
	return text
}

func resultText(s *session.Session) string {
	if op := s.Active(); op != session.OpNone {
		return op.String() + " in progress"
	}
	shape := s.Shape()
	if shape.Kind == session.ShapeNone {
		return "none"
	}
	return shape.Kind.String()
}

// UpdateDimensions updates the view dimensions
func (p *Panel) UpdateDimensions(x, y, width, height int) {
	p.x = x
	p.y = y
	p.width = width
	p.height = height
	p.canvas = render.NewCanvas(width, height)
}
