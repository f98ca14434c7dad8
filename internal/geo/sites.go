package geo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Site is a known reference location offered in the site picker
type Site struct {
	Name  string     `yaml:"name"`
	Coord Coordinate `yaml:"coord"`
	// Region is the stored landmass name ("US" or "Alaska"); empty means US
	Region string `yaml:"region,omitempty"`
}

// SiteLoader loads reference sites from a CSV file with a header row.
// Required columns are name, latitude and longitude; region is optional.
type SiteLoader struct {
	csvPath string
}

// NewSiteLoader creates a new site loader
func NewSiteLoader(csvPath string) *SiteLoader {
	return &SiteLoader{
		csvPath: csvPath,
	}
}

// LoadSites opens the CSV file and reads every site in it
func (s *SiteLoader) LoadSites() ([]Site, error) {
	file, err := os.Open(s.csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sites CSV: %w", err)
	}
	defer file.Close()

	return ReadSites(file)
}

// ReadSites parses sites from CSV. Rows with unparsable or out of range
// coordinates are skipped.
func ReadSites(r io.Reader) ([]Site, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndices := make(map[string]int)
	for i, col := range header {
		colIndices[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range []string{"name", "latitude", "longitude"} {
		if _, ok := colIndices[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}
	regionCol, hasRegion := colIndices["region"]

	var sites []Site

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(record[colIndices["latitude"]]), 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(record[colIndices["longitude"]]), 64)
		if err != nil {
			continue
		}
		coord, err := NewCoordinate(lat, lon)
		if err != nil {
			continue
		}

		site := Site{
			Name:  strings.TrimSpace(record[colIndices["name"]]),
			Coord: coord,
		}
		if hasRegion && regionCol < len(record) {
			site.Region = strings.TrimSpace(record[regionCol])
		}

		sites = append(sites, site)
	}

	return sites, nil
}
