package cache

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Manager handles downloading and caching Natural Earth basemap data
type Manager struct {
	cacheDir   string
	httpClient *http.Client
}

// DataFile represents a Natural Earth dataset to download
type DataFile struct {
	Name string // Friendly name
	URL  string // Download URL
	Base string // Base filename (without extension)
}

// BasemapFiles are the 1:50m layers drawn under routes
var BasemapFiles = []DataFile{
	{
		Name: "States/Provinces",
		URL:  "https://naciscdn.org/naturalearth/50m/cultural/ne_50m_admin_1_states_provinces.zip",
		Base: "ne_50m_admin_1_states_provinces",
	},
	{
		Name: "Coastlines",
		URL:  "https://naciscdn.org/naturalearth/50m/physical/ne_50m_coastline.zip",
		Base: "ne_50m_coastline",
	},
	{
		Name: "Lakes",
		URL:  "https://naciscdn.org/naturalearth/50m/physical/ne_50m_lakes.zip",
		Base: "ne_50m_lakes",
	},
}

// NewManager creates a new cache manager
// If cacheDir is empty, uses ~/.piperoute/data
func NewManager(cacheDir string) (*Manager, error) {
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cacheDir = filepath.Join(home, ".piperoute", "data")
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Manager{
		cacheDir:   cacheDir,
		httpClient: &http.Client{},
	}, nil
}

// EnsureData downloads any missing basemap layers. The basemap is decoration,
// so a layer that fails is logged and skipped; the error reports how many failed.
func (m *Manager) EnsureData(ctx context.Context, files []DataFile) error {
	var failed []string

	for _, file := range files {
		if err := m.ensureFile(ctx, file); err != nil {
			log.Warn().Err(err).Str("layer", file.Name).Msg("Skipping basemap layer")
			failed = append(failed, file.Name)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d basemap layers unavailable: %s", len(failed), len(files), strings.Join(failed, ", "))
	}
	return nil
}

// ensureFile checks if a data file exists, downloads if needed
func (m *Manager) ensureFile(ctx context.Context, file DataFile) error {
	shpPath := m.GetDataPath(file.Base)
	if _, err := os.Stat(shpPath); err == nil {
		return nil
	}

	log.Info().Str("layer", file.Name).Str("url", file.URL).Msg("Downloading basemap layer")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; piperoute/1.0)")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s (URL: %s)", resp.Status, file.URL)
	}

	tmpFile, err := os.CreateTemp("", "ne_*.zip")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return fmt.Errorf("failed to save download: %w", err)
	}

	tmpFile.Close()

	if err := m.extractZip(tmpFile.Name(), m.cacheDir); err != nil {
		return fmt.Errorf("failed to extract: %w", err)
	}

	if _, err := os.Stat(shpPath); err != nil {
		return fmt.Errorf("archive did not contain %s.shp", file.Base)
	}

	log.Info().Str("layer", file.Name).Msg("Downloaded and extracted basemap layer")
	return nil
}

// extractZip flattens the archive into destDir, skipping directories and hidden files
func (m *Manager) extractZip(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(filepath.Base(f.Name), ".") {
			continue
		}

		if err := extractFile(f, filepath.Join(destDir, filepath.Base(f.Name))); err != nil {
			return err
		}
	}

	return nil
}

func extractFile(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	outFile, err := os.Create(destPath)
	if err != nil {
		return err
	}

	_, err = io.Copy(outFile, rc)
	if cerr := outFile.Close(); err == nil {
		err = cerr
	}
	return err
}

// GetDataPath returns the cached .shp path for a layer
func (m *Manager) GetDataPath(base string) string {
	return filepath.Join(m.cacheDir, base+".shp")
}

// GetCacheDir returns the cache directory
func (m *Manager) GetCacheDir() string {
	return m.cacheDir
}

// Clear removes cached layers so they are downloaded again
func (m *Manager) Clear(files []DataFile) error {
	var errs []error
	for _, file := range files {
		matches, err := filepath.Glob(filepath.Join(m.cacheDir, file.Base+".*"))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, path := range matches {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
