// Package config loads the YAML configuration file and the embedded reference site tables.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"piperoute/internal/geo"
	"piperoute/internal/geocode"
	"piperoute/internal/landmass"
)

//go:embed sites.yaml
var defaultSites []byte

// Config represents the root configuration file structure.
type Config struct {
	Desktop   bool     `yaml:"desktop"`
	Backend   Backend  `yaml:"backend"`
	Geocoder  Geocoder `yaml:"geocoder"`
	Map       Map      `yaml:"map"`
	Downloads string   `yaml:"downloads"`
	Sites     Sites    `yaml:"sites"`
}

// Backend locates the routing service.
type Backend struct {
	URL        string        `yaml:"url"`
	DesktopURL string        `yaml:"desktop_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Geocoder locates the reverse geocoding service.
type Geocoder struct {
	URL       string        `yaml:"url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Map holds the initial view.
type Map struct {
	Center      geo.Coordinate `yaml:"center"`
	RadiusMiles float64        `yaml:"radius_miles"`
	AspectRatio float64        `yaml:"aspect_ratio"`
}

// Sites are the reference locations offered for start and end points.
type Sites struct {
	Start      []geo.Site `yaml:"start"`
	End        []geo.Site `yaml:"end"`
	CSV        string     `yaml:"csv,omitempty"`
	Revalidate bool       `yaml:"revalidate"`
}

// Default returns the built in configuration with the embedded site tables.
func Default() (*Config, error) {
	cfg := &Config{
		Backend: Backend{
			DesktopURL: "http://127.0.0.1:5000",
		},
		Geocoder: Geocoder{
			URL:       geocode.DefaultURL,
			UserAgent: "piperoute/1.0",
		},
		Map: Map{
			Center:      geo.Coordinate{Lat: 39.8283, Lon: -98.5795},
			RadiusMiles: 1500,
			AspectRatio: 2.0,
		},
		Downloads: ".",
	}

	if err := yaml.Unmarshal(defaultSites, &cfg.Sites); err != nil {
		return nil, fmt.Errorf("embedded sites: %w", err)
	}

	return cfg, nil
}

// Load reads the YAML configuration file at path over the defaults. A missing
// file is an error only when required is set.
func Load(path string, required bool) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !required:
		default:
			return nil, err
		}
	}

	if cfg.Sites.CSV != "" {
		extra, err := geo.NewSiteLoader(cfg.Sites.CSV).LoadSites()
		if err != nil {
			return nil, err
		}
		cfg.Sites.Start = append(cfg.Sites.Start, extra...)
		cfg.Sites.End = append(cfg.Sites.End, extra...)
	}

	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if !c.Desktop {
		if c.Backend.URL == "" {
			errs = append(errs, "backend.url is required outside desktop mode")
		} else if err := checkURL(c.Backend.URL); err != nil {
			errs = append(errs, fmt.Sprintf("backend.url: %v", err))
		}
	} else if err := checkURL(c.Backend.DesktopURL); err != nil {
		errs = append(errs, fmt.Sprintf("backend.desktop_url: %v", err))
	}
	if c.Backend.Timeout < 0 {
		errs = append(errs, "backend.timeout must not be negative")
	}

	if err := checkURL(c.Geocoder.URL); err != nil {
		errs = append(errs, fmt.Sprintf("geocoder.url: %v", err))
	}
	if c.Geocoder.Timeout < 0 {
		errs = append(errs, "geocoder.timeout must not be negative")
	}

	if err := c.Map.Center.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("map.center: %v", err))
	}
	if c.Map.RadiusMiles < geo.MinRadiusMiles || c.Map.RadiusMiles > geo.MaxRadiusMiles {
		errs = append(errs, fmt.Sprintf("map.radius_miles must be %.0f-%.0f, got %v", geo.MinRadiusMiles, geo.MaxRadiusMiles, c.Map.RadiusMiles))
	}
	if c.Map.AspectRatio < 1.0 || c.Map.AspectRatio > 4.0 {
		errs = append(errs, fmt.Sprintf("map.aspect_ratio must be between 1.0 and 4.0, got %v", c.Map.AspectRatio))
	}

	if c.Downloads == "" {
		errs = append(errs, "downloads is required")
	}

	errs = append(errs, checkSites("sites.start", c.Sites.Start)...)
	errs = append(errs, checkSites("sites.end", c.Sites.End)...)

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q must be an absolute URL", raw)
	}
	return nil
}

func checkSites(field string, sites []geo.Site) []string {
	var errs []string
	for i, s := range sites {
		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("%s[%d].name is required", field, i))
		}
		if err := s.Coord.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("%s[%d].coord: %v", field, i, err))
		}
		if !landmass.Parse(s.Region).Valid() {
			errs = append(errs, fmt.Sprintf("%s[%d].region %q must be US or Alaska", field, i, s.Region))
		}
	}
	return errs
}
