package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"piperoute/internal/geo"
	"piperoute/internal/render"

	"github.com/gdamore/tcell/v2"
)

// PromptKind says what a prompt's input is used for
type PromptKind int

const (
	PromptNone PromptKind = iota
	PromptCoordinate
	PromptUploads
)

// PromptResult is the outcome of a key press in a prompt
type PromptResult int

const (
	PromptEditing PromptResult = iota
	PromptSubmitted
	PromptCancelled
)

// Prompt is a one line text input shown above the panel
type Prompt struct {
	kind  PromptKind
	label string
	input []rune
	x, y  int
	width int
}

// NewPrompt creates a new, closed prompt
func NewPrompt(x, y, width int) *Prompt {
	return &Prompt{x: x, y: y, width: width}
}

// Open shows the prompt with an empty input
func (p *Prompt) Open(kind PromptKind, label string) {
	p.kind = kind
	p.label = label
	p.input = p.input[:0]
}

// Close hides the prompt
func (p *Prompt) Close() {
	p.kind = PromptNone
}

// Kind returns what the open prompt is for, or PromptNone
func (p *Prompt) Kind() PromptKind {
	return p.kind
}

// IsOpen reports whether the prompt is showing
func (p *Prompt) IsOpen() bool {
	return p.kind != PromptNone
}

// Text returns the current input
func (p *Prompt) Text() string {
	return string(p.input)
}

// HandleKey edits the input. Enter submits and Esc cancels.
func (p *Prompt) HandleKey(ev *tcell.EventKey) PromptResult {
	switch ev.Key() {
	case tcell.KeyEnter:
		return PromptSubmitted
	case tcell.KeyEscape:
		return PromptCancelled
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(p.input) > 0 {
			p.input = p.input[:len(p.input)-1]
		}
	case tcell.KeyCtrlU:
		p.input = p.input[:0]
	case tcell.KeyRune:
		p.input = append(p.input, ev.Rune())
	}
	return PromptEditing
}

// Draw renders the prompt to the screen when open
func (p *Prompt) Draw(screen tcell.Screen) {
	if !p.IsOpen() {
		return
	}

	c := render.NewCanvas(p.width, 1)
	c.FillRect(0, 0, p.width, 1, ' ', render.StylePopup)
	used := c.DrawText(0, 0, p.label+": ", render.StylePopupTitle)

	// keep the tail of long input visible
	text := p.Text()
	room := p.width - used - 1
	if room > 0 && len(p.input) > room {
		text = string(p.input[len(p.input)-room:])
	}
	used += c.DrawText(used, 0, text, render.StylePopup)
	c.Set(used, 0, '_', render.StylePopup)

	c.Blit(screen, p.x, p.y)
}

// UpdateDimensions updates the view dimensions
func (p *Prompt) UpdateDimensions(x, y, width int) {
	p.x = x
	p.y = y
	p.width = width
}

var errCoordinateFormat = errors.New(`want "lat, lon"`)

// ParseCoordinate reads "lat, lon" or "lat lon" in decimal degrees
func ParseCoordinate(text string) (geo.Coordinate, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 2 {
		return geo.Coordinate{}, errCoordinateFormat
	}

	lat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("longitude: %w", err)
	}

	return geo.Coordinate{Lat: lat, Lon: lon}, nil
}

// ParsePaths splits a comma separated list of file paths, dropping blanks
func ParsePaths(text string) []string {
	var paths []string
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			paths = append(paths, part)
		}
	}
	return paths
}
