package ui

import (
	"piperoute/internal/render"
	"piperoute/internal/session"

	"github.com/gdamore/tcell/v2"
)

const popupMaxWidth = 60

// PopupView draws the topmost popup as a centered modal
type PopupView struct {
	screenWidth  int
	screenHeight int
}

// NewPopupView creates a popup view for a screen of the given size
func NewPopupView(screenWidth, screenHeight int) *PopupView {
	return &PopupView{screenWidth: screenWidth, screenHeight: screenHeight}
}

// Draw renders the topmost visible popup, if any
func (v *PopupView) Draw(screen tcell.Screen, popups *session.Presenter) {
	kind := popups.Top()
	if kind == session.PopupNone {
		return
	}
	msg := popups.Message(kind)

	width := min(popupMaxWidth, v.screenWidth-4)
	if width < 10 {
		return
	}
	inner := width - 4

	lines := render.WrapText(msg.Body, inner)
	if msg.Detail != "" {
		lines = append(lines, "")
		lines = append(lines, render.WrapText(msg.Detail, inner)...)
	}
	footer := ""
	if msg.Dismissable {
		footer = "Esc or Enter to close"
	}

	height := len(lines) + 4
	if height > v.screenHeight {
		height = v.screenHeight
	}

	c := render.NewCanvas(width, height)
	c.FillRect(0, 0, width, height, ' ', render.StylePopup)
	c.DrawBox(0, 0, width, height, render.StylePopup)
	c.DrawTextClipped(2, 0, inner, " "+msg.Title+" ", render.StylePopupTitle)

	for i, line := range lines {
		if 2+i >= height-1 {
			break
		}
		c.DrawText(2, 2+i, line, render.StylePopup)
	}
	if footer != "" {
		c.DrawTextClipped(width-2-len(footer), height-1, inner, footer, render.StylePopup)
	}

	c.Blit(screen, (v.screenWidth-width)/2, (v.screenHeight-height)/2)
}

// UpdateDimensions updates the screen size the popup is centered in
func (v *PopupView) UpdateDimensions(screenWidth, screenHeight int) {
	v.screenWidth = screenWidth
	v.screenHeight = screenHeight
}
