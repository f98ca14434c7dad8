package ui

import (
	"piperoute/internal/geo"
	"piperoute/internal/render"
	"piperoute/internal/session"

	"github.com/gdamore/tcell/v2"
)

// SitePicker displays a scrollable list of reference sites for one role
type SitePicker struct {
	sites         []geo.Site
	role          session.Role
	open          bool
	selectedIndex int
	scrollOffset  int
	maxVisible    int
	x, y          int
	width, height int
}

// NewSitePicker creates a new, closed site picker
func NewSitePicker(x, y, width, height int) *SitePicker {
	p := &SitePicker{}
	p.UpdateDimensions(x, y, width, height)
	return p
}

// Open shows sites for role with the first entry selected
func (p *SitePicker) Open(role session.Role, sites []geo.Site) {
	p.role = role
	p.sites = sites
	p.selectedIndex = 0
	p.scrollOffset = 0
	p.open = true
}

// Close hides the picker
func (p *SitePicker) Close() {
	p.open = false
}

// IsOpen reports whether the picker is showing
func (p *SitePicker) IsOpen() bool {
	return p.open
}

// Role returns the role the picker selects for
func (p *SitePicker) Role() session.Role {
	return p.role
}

// SelectNext moves selection down
func (p *SitePicker) SelectNext() {
	if p.selectedIndex < len(p.sites)-1 {
		p.selectedIndex++
		p.adjustScroll()
	}
}

// SelectPrev moves selection up
func (p *SitePicker) SelectPrev() {
	if p.selectedIndex > 0 {
		p.selectedIndex--
		p.adjustScroll()
	}
}

// adjustScroll adjusts scroll offset to keep selected item visible
func (p *SitePicker) adjustScroll() {
	if p.selectedIndex >= p.scrollOffset+p.maxVisible {
		p.scrollOffset = p.selectedIndex - p.maxVisible + 1
	}

	if p.selectedIndex < p.scrollOffset {
		p.scrollOffset = p.selectedIndex
	}

	if p.scrollOffset < 0 {
		p.scrollOffset = 0
	}
}

// Selected returns the highlighted site
func (p *SitePicker) Selected() (geo.Site, bool) {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.sites) {
		return p.sites[p.selectedIndex], true
	}
	return geo.Site{}, false
}

// Draw renders the picker to the screen when open
func (p *SitePicker) Draw(screen tcell.Screen) {
	if !p.open {
		return
	}

	c := render.NewCanvas(p.width, p.height)
	c.DrawBox(0, 0, p.width, p.height, render.StyleBorder)

	title := " " + p.role.String() + " sites "
	c.DrawText((p.width-len(title))/2, 0, title, render.StyleHeading)

	if len(p.sites) == 0 {
		c.DrawText(2, 1, "No sites configured", render.StyleDim)
	}

	visibleCount := min(p.maxVisible, len(p.sites)-p.scrollOffset)
	for i := 0; i < visibleCount; i++ {
		index := p.scrollOffset + i

		style := render.StyleListItem
		if index == p.selectedIndex {
			style = render.StyleListSelected
		}

		c.FillRect(1, i+1, p.width-2, 1, ' ', style)
		c.DrawTextClipped(1, i+1, p.width-2, p.sites[index].Name, style)
	}

	if len(p.sites) > p.maxVisible {
		c.Set(p.width-2, 0, '↕', render.StyleLabel)
	}

	c.Blit(screen, p.x, p.y)
}

// UpdateDimensions updates the view dimensions
func (p *SitePicker) UpdateDimensions(x, y, width, height int) {
	p.x = x
	p.y = y
	p.width = width
	p.height = height
	p.maxVisible = height - 2
	if p.maxVisible < 1 {
		p.maxVisible = 1
	}
	p.adjustScroll()
}
