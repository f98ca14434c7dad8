// Package landmass classifies reverse geocoded addresses into the regions a
// pipeline may be routed within.
package landmass

import (
	"strings"

	"piperoute/internal/geocode"
)

// Class is the contiguous region a point belongs to
type Class int

const (
	Invalid Class = iota
	US
	Alaska
)

// String returns a string representation of the class
func (c Class) String() string {
	switch c {
	case US:
		return "US"
	case Alaska:
		return "Alaska"
	default:
		return "Invalid"
	}
}

// Valid reports whether a route may start or end in this class
func (c Class) Valid() bool {
	return c == US || c == Alaska
}

// Parse converts a stored region name to a class. An empty name means US.
func Parse(name string) Class {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "us", "usa", "united states":
		return US
	case "alaska", "ak":
		return Alaska
	default:
		return Invalid
	}
}

// Classify maps an address to a class. A missing address, an address outside
// the United States and Hawaii are all invalid.
func Classify(addr *geocode.Address) Class {
	if addr == nil {
		return Invalid
	}
	if addr.State == "Hawaii" {
		return Invalid
	}
	if addr.Country != "United States" {
		return Invalid
	}
	if addr.State == "Alaska" {
		return Alaska
	}
	return US
}
