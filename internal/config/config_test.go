package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"piperoute/internal/geo"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultSites(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	if len(cfg.Sites.Start) != 70 {
		t.Errorf("expected 70 start sites, got %d", len(cfg.Sites.Start))
	}
	if len(cfg.Sites.End) != 9 {
		t.Errorf("expected 9 end sites, got %d", len(cfg.Sites.End))
	}

	first := cfg.Sites.Start[0]
	if first.Name != "Illinois Industrial Carbon Capture and Storage Project" || first.Coord != (geo.Coordinate{Lat: 39.87, Lon: -88.89}) {
		t.Errorf("unexpected first start site %+v", first)
	}
	last := cfg.Sites.End[8]
	if last.Name != "Yates Oil Field EOR Operations" || last.Coord != (geo.Coordinate{Lat: 31, Lon: -102}) {
		t.Errorf("unexpected last end site %+v", last)
	}
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "piperoute.yaml")

	if _, err := Load(missing, false); err != nil {
		t.Fatalf("optional missing file: %v", err)
	}
	if _, err := Load(missing, true); err == nil {
		t.Fatal("expected error for required missing file")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeFile(t, "piperoute.yaml", `
backend:
  url: https://routes.example.com
  timeout: 90s
map:
  center: [61.2, -149.9]
  radius_miles: 400
sites:
  end:
    - name: Prudhoe Bay
      coord: [70.25, -148.34]
      region: Alaska
  revalidate: true
`)

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Backend.URL != "https://routes.example.com" || cfg.Backend.Timeout != 90*time.Second {
		t.Errorf("unexpected backend %+v", cfg.Backend)
	}
	if cfg.Backend.DesktopURL != "http://127.0.0.1:5000" {
		t.Errorf("expected default desktop url to survive, got %q", cfg.Backend.DesktopURL)
	}
	if cfg.Map.Center != (geo.Coordinate{Lat: 61.2, Lon: -149.9}) || cfg.Map.AspectRatio != 2.0 {
		t.Errorf("unexpected map %+v", cfg.Map)
	}
	if len(cfg.Sites.End) != 1 || cfg.Sites.End[0].Region != "Alaska" {
		t.Errorf("unexpected end sites %+v", cfg.Sites.End)
	}
	if len(cfg.Sites.Start) != 70 {
		t.Errorf("expected embedded start sites to remain, got %d", len(cfg.Sites.Start))
	}
	if !cfg.Sites.Revalidate {
		t.Error("expected revalidate")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadSiteCSV(t *testing.T) {
	csvPath := writeFile(t, "sites.csv", "name,latitude,longitude\nExtra Site,41.5,-99.5\n")
	path := writeFile(t, "piperoute.yaml", "sites:\n  csv: "+csvPath+"\n")

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Sites.Start[len(cfg.Sites.Start)-1]; got.Name != "Extra Site" {
		t.Errorf("expected CSV site appended to start list, got %+v", got)
	}
	if got := cfg.Sites.End[len(cfg.Sites.End)-1]; got.Name != "Extra Site" {
		t.Errorf("expected CSV site appended to end list, got %+v", got)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Map.RadiusMiles = 1
	cfg.Map.AspectRatio = 9
	cfg.Sites.End = append(cfg.Sites.End, geo.Site{Name: "Honolulu", Coord: geo.Coordinate{Lat: 21.3, Lon: -157.8}, Region: "Hawaii"})

	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	for _, want := range []string{"backend.url is required", "map.radius_miles", "map.aspect_ratio", `region "Hawaii"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error:\n%v", want, err)
		}
	}
}

func TestValidateDesktop(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Desktop = true

	if err := cfg.Validate(); err != nil {
		t.Errorf("desktop defaults should validate: %v", err)
	}
}
