package session

import (
	"context"

	"github.com/rs/zerolog/log"

	"piperoute/internal/geo"
	"piperoute/internal/geocode"
	"piperoute/internal/landmass"
)

// Role says which end of the route a selection is for
type Role int

const (
	RoleNone Role = iota
	RoleStart
	RoleEnd
)

// String returns a string representation of the role
func (r Role) String() string {
	switch r {
	case RoleStart:
		return "start"
	case RoleEnd:
		return "end"
	default:
		return "none"
	}
}

// PointSelection is an accepted route endpoint
type PointSelection struct {
	Set         bool
	Coord       geo.Coordinate
	RenderCoord geo.Coordinate
	Landmass    landmass.Class
	// Site names the reference site the point came from, if any
	Site string
}

type lookup struct {
	generation uint64
	pending    bool
}

// ActiveRole returns the role map clicks apply to
func (s *Session) ActiveRole() Role {
	return s.activeRole
}

// SetActiveRole picks the role map clicks apply to
func (s *Session) SetActiveRole(r Role) {
	s.activeRole = r
}

// Point returns the accepted selection for role
func (s *Session) Point(r Role) PointSelection {
	switch r {
	case RoleStart:
		return s.start
	case RoleEnd:
		return s.end
	default:
		return PointSelection{}
	}
}

// LookupPending reports whether a geocode lookup for role is in flight
func (s *Session) LookupPending(r Role) bool {
	l, ok := s.lookups[r]
	return ok && l.pending
}

func (s *Session) commit(r Role, sel PointSelection) {
	sel.Set = true
	switch r {
	case RoleStart:
		s.start = sel
	case RoleEnd:
		s.end = sel
	}
	log.Info().
		Str("role", r.String()).
		Str("coord", sel.Coord.String()).
		Str("landmass", sel.Landmass.String()).
		Str("site", sel.Site).
		Msg("Point selected")
}

// ClickMap applies a map click to the active role. Clicks only select points in
// identify mode with a role chosen; it reports whether the click was used.
func (s *Session) ClickMap(c geo.Coordinate) bool {
	if s.mainMode != ModeIdentify || s.activeRole == RoleNone {
		return false
	}
	s.SelectPoint(s.activeRole, c)
	return true
}

// SelectPoint validates c with the geocoder and, if it lies in the US or
// Alaska, makes it the selection for role. An invalid location raises the
// invalid point popup and a failed lookup raises the server error popup; in
// both cases the previous selection is kept.
func (s *Session) SelectPoint(r Role, c geo.Coordinate) {
	s.lookupPoint(r, c, "")
}

// SelectSite makes a reference site the selection for role. The stored
// coordinate is used exactly. Without revalidation the stored region is
// trusted and no lookup is made.
func (s *Session) SelectSite(r Role, site geo.Site) {
	if s.opts.RevalidateSites {
		s.lookupPoint(r, site.Coord, site.Name)
		return
	}

	l, ok := s.lookups[r]
	if !ok {
		return
	}
	// a newer selection supersedes any lookup still running for this role
	l.generation++
	l.pending = false

	class := landmass.Parse(site.Region)
	if !class.Valid() {
		s.popups.Show(PopupInvalidPoint)
		return
	}

	s.commit(r, PointSelection{
		Coord:       site.Coord,
		RenderCoord: site.Coord,
		Landmass:    class,
		Site:        site.Name,
	})
}

func (s *Session) lookupPoint(r Role, c geo.Coordinate, siteName string) {
	l, ok := s.lookups[r]
	if !ok {
		log.Warn().Str("role", r.String()).Msg("Point selected without a role")
		return
	}

	if err := c.Validate(); err != nil {
		log.Warn().Err(err).Str("role", r.String()).Msg("Rejected point selection")
		s.popups.Show(PopupInvalidPoint)
		return
	}

	l.generation++
	l.pending = true
	gen := l.generation

	log.Debug().Str("role", r.String()).Str("coord", c.String()).Msg("Looking up point")

	s.dispatch(func(ctx context.Context) Completion {
		addr, err := s.geocoder.Reverse(ctx, c)
		return func(s *Session) {
			s.finishLookup(r, gen, c, siteName, addr, err)
		}
	})
}

func (s *Session) finishLookup(r Role, gen uint64, c geo.Coordinate, siteName string, addr *geocode.Address, err error) {
	l := s.lookups[r]
	if gen != l.generation {
		log.Debug().Str("role", r.String()).Uint64("generation", gen).Msg("Discarding stale lookup")
		return
	}
	l.pending = false

	if err != nil {
		log.Warn().Err(err).Str("role", r.String()).Str("coord", c.String()).Msg("Point lookup failed")
		s.popups.Show(PopupServerError)
		return
	}

	class := landmass.Classify(addr)
	if !class.Valid() {
		log.Info().Str("role", r.String()).Str("coord", c.String()).Msg("Point outside US and Alaska")
		s.popups.Show(PopupInvalidPoint)
		return
	}

	s.commit(r, PointSelection{
		Coord:       c,
		RenderCoord: c,
		Landmass:    class,
		Site:        siteName,
	})
}
