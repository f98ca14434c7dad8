package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"piperoute/internal/backend"
)

// Precondition failures reported by the request operations. Each one also
// raises the matching popup.
var (
	ErrWrongMode       = errors.New("operation not available in this mode")
	ErrLookupPending   = errors.New("point lookup still in progress")
	ErrInvalidPoint    = errors.New("start or end point missing or invalid")
	ErrInvalidPipeline = errors.New("start and end are on different landmasses")
	ErrNothingToExport = errors.New("no shape to export")
)

// RouteReady reports whether a generated route is available
func (s *Session) RouteReady() bool {
	return s.routeReady
}

// Route returns the latest generated route
func (s *Session) Route() *backend.RouteResult {
	return s.route
}

// EvaluationReady reports whether a corridor evaluation is available
func (s *Session) EvaluationReady() bool {
	return s.evalReady
}

// Evaluation returns the latest corridor evaluation
func (s *Session) Evaluation() *backend.EvaluationResult {
	return s.eval
}

// GenerateRoute sends the selected endpoints to the backend. Both points must be
// accepted, settled and on the same landmass; otherwise nothing is sent and the
// reason is returned.
func (s *Session) GenerateRoute() error {
	if s.mainMode != ModeIdentify {
		return ErrWrongMode
	}
	if s.LookupPending(RoleStart) || s.LookupPending(RoleEnd) {
		s.popups.Show(PopupLookupPending)
		return ErrLookupPending
	}
	if !s.start.Set || !s.end.Set || !s.start.Landmass.Valid() || !s.end.Landmass.Valid() {
		s.popups.Show(PopupInvalidPoint)
		return ErrInvalidPoint
	}
	if s.start.Landmass != s.end.Landmass {
		s.popups.Show(PopupInvalidPipeline)
		return ErrInvalidPipeline
	}

	req := backend.RouteRequest{
		Start: s.start.Coord,
		End:   s.end.Coord,
		Mode:  s.subMode.Wire(),
	}

	s.route = nil
	s.routeReady = false
	gen := s.begin(OpRoute)

	log.Info().
		Str("start", req.Start.String()).
		Str("end", req.End.String()).
		Str("mode", string(req.Mode)).
		Uint64("generation", gen).
		Msg("Generating route")

	s.dispatch(func(ctx context.Context) Completion {
		result, err := s.backend.GenerateRoute(ctx, req)
		return func(s *Session) {
			if !s.finish(OpRoute, gen) {
				return
			}
			if err != nil {
				log.Error().Err(err).Msg("Route generation failed")
				s.popups.Show(PopupServerError)
				return
			}
			log.Info().Int("points", len(result.Points)).Msg("Route ready")
			s.route = result
			s.routeReady = true
		}
	})

	return nil
}

// SetUploads chooses the files for corridor evaluation. A .shp path brings
// its sibling files along.
func (s *Session) SetUploads(paths []string) error {
	uploads, err := backend.BundleUploads(paths)
	if err != nil {
		return err
	}
	s.uploads = uploads
	log.Info().Int("files", len(uploads)).Msg("Uploads selected")
	return nil
}

// Uploads returns the files chosen for evaluation
func (s *Session) Uploads() []backend.Upload {
	return s.uploads
}

// EvaluateCorridor uploads the chosen files for evaluation. An empty selection
// is sent as is and left for the backend to reject.
func (s *Session) EvaluateCorridor() error {
	if s.mainMode != ModeEvaluate {
		return ErrWrongMode
	}

	uploads := append([]backend.Upload(nil), s.uploads...)

	s.eval = nil
	s.evalReady = false
	gen := s.begin(OpEvaluation)

	log.Info().Int("files", len(uploads)).Uint64("generation", gen).Msg("Evaluating corridor")

	s.dispatch(func(ctx context.Context) Completion {
		result, err := s.backend.EvaluateCorridor(ctx, uploads)
		return func(s *Session) {
			if !s.finish(OpEvaluation, gen) {
				return
			}
			if err != nil {
				log.Error().Err(err).Msg("Corridor evaluation failed")
				s.popups.Show(PopupServerError)
				return
			}
			log.Info().Str("type", result.ShapeType).Int("parts", len(result.Parts)).Msg("Evaluation ready")
			s.eval = result
			s.evalReady = true
		}
	})

	return nil
}

// ReportExtension is the report type for the current mode: .zip with the route
// shapefile in identify mode, .pdf in evaluate mode
func (s *Session) ReportExtension() string {
	if s.mainMode == ModeEvaluate {
		return ".pdf"
	}
	return ".zip"
}

// LastReport returns the path of the most recently saved report
func (s *Session) LastReport() string {
	return s.lastReport
}

// DownloadReport fetches the report for ext and saves it in the download
// directory. Downloads are not processing operations and always complete.
func (s *Session) DownloadReport(ext string) error {
	if ext != ".zip" && ext != ".pdf" {
		return fmt.Errorf("%w: %q", backend.ErrUnsupportedExtension, ext)
	}

	dir := s.opts.DownloadDir
	log.Info().Str("extension", ext).Msg("Downloading report")

	s.dispatch(func(ctx context.Context) Completion {
		report, err := s.backend.DownloadReport(ctx, ext)
		if err != nil {
			return func(s *Session) {
				log.Error().Err(err).Msg("Report download failed")
				s.popups.Show(PopupServerError)
			}
		}

		path, err := saveFile(dir, report.Filename, report.Body)
		return func(s *Session) {
			if err != nil {
				log.Error().Err(err).Msg("Saving report failed")
				s.popups.ShowDetail(PopupSaveFailed, err.Error())
				return
			}
			log.Info().Str("path", path).Int("bytes", len(report.Body)).Msg("Report saved")
			s.lastReport = path
			s.popups.ShowDetail(PopupReportSaved, path)
		}
	})

	return nil
}

// OpenHelp asks the backend to show its documentation. Failures are only logged.
func (s *Session) OpenHelp() {
	s.dispatch(func(ctx context.Context) Completion {
		err := s.backend.Help(ctx)
		return func(s *Session) {
			if err != nil {
				log.Warn().Err(err).Msg("Help request failed")
			}
		}
	})
}

// ExportGeoJSON writes the shape currently drawn to the download directory
func (s *Session) ExportGeoJSON() (string, error) {
	shape := s.Shape()
	if shape.Kind == ShapeNone {
		return "", ErrNothingToExport
	}

	data, err := shape.GeoJSON()
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("piperoute_%s.geojson", s.mainMode)
	path, err := saveFile(s.opts.DownloadDir, name, data)
	if err != nil {
		return "", err
	}

	log.Info().Str("path", path).Msg("Exported GeoJSON")
	return path, nil
}

func saveFile(dir, name string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
