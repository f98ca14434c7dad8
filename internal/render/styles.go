package render

import (
	"piperoute/internal/geo"

	"github.com/gdamore/tcell/v2"
)

// Style definitions for map layers and panels
var (
	StyleStateBorder  = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	StyleCoastline    = tcell.StyleDefault.Foreground(tcell.ColorDarkBlue)
	StyleLake         = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
	StyleRoute        = tcell.StyleDefault.Foreground(tcell.ColorLime).Bold(true)
	StyleCorridor     = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	StyleStart        = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	StyleEnd          = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	StyleCursor       = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	StyleLabel        = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StyleDim          = tcell.StyleDefault.Foreground(tcell.ColorGray)
	StyleHeading      = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	StyleWarning      = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	StyleBorder       = tcell.StyleDefault.Foreground(tcell.ColorGray)
	StylePopup        = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	StylePopupTitle   = StylePopup.Bold(true)
	StyleListItem     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StyleListSelected = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
)

// GetStyleForFeature returns the appropriate style for a feature type
func GetStyleForFeature(ftype geo.FeatureType) tcell.Style {
	switch ftype {
	case geo.FeatureStateBorder:
		return StyleStateBorder
	case geo.FeatureCoastline:
		return StyleCoastline
	case geo.FeatureLake:
		return StyleLake
	default:
		return tcell.StyleDefault
	}
}

// GetCharForFeature returns the appropriate character for drawing a feature
func GetCharForFeature(ftype geo.FeatureType) rune {
	switch ftype {
	case geo.FeatureStateBorder:
		return '·'
	case geo.FeatureCoastline:
		return '-'
	case geo.FeatureLake:
		return '~'
	default:
		return '·'
	}
}
