package session

import (
	"math"
	"testing"

	"piperoute/internal/geo"
	"piperoute/internal/landmass"
)

func TestSelectPointRejectsHawaii(t *testing.T) {
	gc := usGeocoder()
	s := newTestSession(t, gc, &fakeBackend{}, Options{})

	selectAndSettle(t, s, RoleStart, startKS)
	s.Popups().DismissTop()

	selectAndSettle(t, s, RoleStart, oahu)

	if !s.Popups().Visible(PopupInvalidPoint) {
		t.Error("expected invalid location popup")
	}
	got := s.Point(RoleStart)
	if got.Coord != startKS || got.RenderCoord != startKS || got.Landmass != landmass.US {
		t.Errorf("expected previous selection kept, got %+v", got)
	}
}

func TestSelectPointRejectsOutsideUS(t *testing.T) {
	tests := []struct {
		name  string
		coord geo.Coordinate
	}{
		{"canada", toronto},
		{"open ocean", geo.Coordinate{Lat: 30, Lon: -40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, usGeocoder(), &fakeBackend{}, Options{})

			selectAndSettle(t, s, RoleEnd, tt.coord)

			if !s.Popups().Visible(PopupInvalidPoint) {
				t.Error("expected invalid location popup")
			}
			if s.Point(RoleEnd).Set {
				t.Errorf("expected no selection, got %+v", s.Point(RoleEnd))
			}
		})
	}
}

func TestSelectPointOutOfRangeSkipsLookup(t *testing.T) {
	gc := usGeocoder()
	s := newTestSession(t, gc, &fakeBackend{}, Options{})

	s.SelectPoint(RoleStart, geo.Coordinate{Lat: 95, Lon: -98})
	s.SelectPoint(RoleStart, geo.Coordinate{Lat: math.NaN(), Lon: 0})

	if gc.Calls() != 0 {
		t.Errorf("expected no lookups, got %d", gc.Calls())
	}
	if !s.Popups().Visible(PopupInvalidPoint) {
		t.Error("expected invalid location popup")
	}
	if s.LookupPending(RoleStart) {
		t.Error("expected no pending lookup")
	}
}

func TestSelectPointLookupFailure(t *testing.T) {
	gc := usGeocoder()
	s := newTestSession(t, gc, &fakeBackend{}, Options{})

	selectAndSettle(t, s, RoleStart, startKS)
	gc.mu.Lock()
	gc.err = errUnavailable
	gc.mu.Unlock()

	selectAndSettle(t, s, RoleStart, endNE)

	if !s.Popups().Visible(PopupServerError) {
		t.Error("expected lookup failure to raise the server error popup")
	}
	if s.Point(RoleStart).Coord != startKS {
		t.Errorf("expected previous selection kept, got %+v", s.Point(RoleStart))
	}
	if s.LookupPending(RoleStart) {
		t.Error("expected lookup to settle")
	}
}

func TestRenderCoordWaitsForLookup(t *testing.T) {
	gc := usGeocoder()
	gc.gate = make(chan struct{})
	s := newTestSession(t, gc, &fakeBackend{}, Options{})

	s.SelectPoint(RoleStart, startKS)
	if s.Point(RoleStart).Set {
		t.Fatal("point committed before lookup resolved")
	}
	if !s.LookupPending(RoleStart) || s.LookupPending(RoleEnd) {
		t.Fatal("expected only the start lookup pending")
	}

	close(gc.gate)
	step(t, s)

	if got := s.Point(RoleStart); !got.Set || got.RenderCoord != startKS {
		t.Errorf("expected committed start, got %+v", got)
	}
}

func TestLatestLookupWins(t *testing.T) {
	gc := usGeocoder()
	gc.gate = make(chan struct{})
	s := newTestSession(t, gc, &fakeBackend{}, Options{})

	s.SelectPoint(RoleEnd, startKS)
	s.SelectPoint(RoleEnd, endNE)

	close(gc.gate)
	step(t, s)
	step(t, s)

	if got := s.Point(RoleEnd).Coord; got != endNE {
		t.Errorf("expected newest selection %v, got %v", endNE, got)
	}
	if s.LookupPending(RoleEnd) {
		t.Error("expected no pending lookup")
	}
}

func TestSelectSiteExact(t *testing.T) {
	site := geo.Site{Name: "Illinois Industrial Carbon Capture and Storage Project", Coord: geo.Coordinate{Lat: 39.87, Lon: -88.89}}
	gc := usGeocoder()
	s := newTestSession(t, gc, &fakeBackend{}, Options{StartSites: []geo.Site{site}})

	s.SelectSite(RoleStart, s.Sites(RoleStart)[0])

	got := s.Point(RoleStart)
	if got.RenderCoord != site.Coord || got.Coord != site.Coord {
		t.Errorf("expected exact site coordinate %v, got %+v", site.Coord, got)
	}
	if got.Landmass != landmass.US || got.Site != site.Name {
		t.Errorf("unexpected selection %+v", got)
	}
	if gc.Calls() != 0 {
		t.Errorf("expected no lookup for a trusted site, got %d", gc.Calls())
	}
}

func TestSelectSiteSupersedesPendingLookup(t *testing.T) {
	site := geo.Site{Name: "Val Verde NG Plants", Coord: geo.Coordinate{Lat: 30, Lon: -101}}
	gc := usGeocoder()
	gc.gate = make(chan struct{})
	s := newTestSession(t, gc, &fakeBackend{}, Options{})

	s.SelectPoint(RoleEnd, endNE)
	s.SelectSite(RoleEnd, site)

	close(gc.gate)
	step(t, s)

	if got := s.Point(RoleEnd).Coord; got != site.Coord {
		t.Errorf("expected site to win over older lookup, got %v", got)
	}
}

func TestSelectSiteAlaskaRegion(t *testing.T) {
	s := newTestSession(t, usGeocoder(), &fakeBackend{}, Options{})

	s.SelectSite(RoleStart, geo.Site{Name: "Prudhoe Bay", Coord: geo.Coordinate{Lat: 70.25, Lon: -148.34}, Region: "Alaska"})
	s.SelectSite(RoleEnd, geo.Site{Name: "Val Verde NG Plants", Coord: geo.Coordinate{Lat: 30, Lon: -101}})

	if err := s.GenerateRoute(); err != ErrInvalidPipeline {
		t.Fatalf("expected ErrInvalidPipeline, got %v", err)
	}
}

func TestSelectSiteRevalidate(t *testing.T) {
	site := geo.Site{Name: "Kansas Site", Coord: startKS}
	gc := usGeocoder()
	s := newTestSession(t, gc, &fakeBackend{}, Options{RevalidateSites: true})

	s.SelectSite(RoleStart, site)
	if !s.LookupPending(RoleStart) {
		t.Fatal("expected lookup for revalidated site")
	}
	step(t, s)

	got := s.Point(RoleStart)
	if got.RenderCoord != site.Coord || got.Site != site.Name {
		t.Errorf("unexpected selection %+v", got)
	}
	if gc.Calls() != 1 {
		t.Errorf("expected one lookup, got %d", gc.Calls())
	}
}

func TestClickMap(t *testing.T) {
	gc := usGeocoder()
	s := newTestSession(t, gc, &fakeBackend{}, Options{})

	if s.ClickMap(startKS) {
		t.Error("click without an active role should be ignored")
	}

	s.SetActiveRole(RoleEnd)
	if !s.ClickMap(endNE) {
		t.Fatal("expected click to select")
	}
	step(t, s)
	if s.Point(RoleEnd).Coord != endNE {
		t.Errorf("expected end selected, got %+v", s.Point(RoleEnd))
	}

	s.SetMainMode(ModeEvaluate)
	if s.ClickMap(startKS) {
		t.Error("click in evaluate mode should be ignored")
	}
	if gc.Calls() != 1 {
		t.Errorf("expected one lookup, got %d", gc.Calls())
	}
}
