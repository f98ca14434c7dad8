package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"piperoute/internal/backend"
	"piperoute/internal/geo"
	"piperoute/internal/geocode"
)

var (
	kansas   = &geocode.Address{State: "Kansas", Country: "United States", CountryCode: "us"}
	nebraska = &geocode.Address{State: "Nebraska", Country: "United States", CountryCode: "us"}
	alaska   = &geocode.Address{State: "Alaska", Country: "United States", CountryCode: "us"}
	hawaii   = &geocode.Address{State: "Hawaii", Country: "United States", CountryCode: "us"}
	ontario  = &geocode.Address{State: "Ontario", Country: "Canada", CountryCode: "ca"}
)

var errUnavailable = errors.New("connection refused")

type fakeGeocoder struct {
	mu    sync.Mutex
	addrs map[geo.Coordinate]*geocode.Address
	err   error
	gate  chan struct{}
	calls int
}

func (f *fakeGeocoder) Reverse(ctx context.Context, c geo.Coordinate) (*geocode.Address, error) {
	f.mu.Lock()
	f.calls++
	gate, addr, err := f.gate, f.addrs[c], f.err
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return addr, err
}

func (f *fakeGeocoder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeBackend struct {
	mu        sync.Mutex
	gate      chan struct{}
	routeReqs []backend.RouteRequest
	uploads   [][]backend.Upload
	exts      []string
	helpCalls int

	route  func(req backend.RouteRequest) (*backend.RouteResult, error)
	eval   func(uploads []backend.Upload) (*backend.EvaluationResult, error)
	report func(ext string) (*backend.Report, error)
}

func (f *fakeBackend) wait(ctx context.Context) error {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()

	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeBackend) GenerateRoute(ctx context.Context, req backend.RouteRequest) (*backend.RouteResult, error) {
	f.mu.Lock()
	f.routeReqs = append(f.routeReqs, req)
	fn := f.route
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if fn == nil {
		return &backend.RouteResult{Points: []geo.Coordinate{req.Start, req.End}}, nil
	}
	return fn(req)
}

func (f *fakeBackend) EvaluateCorridor(ctx context.Context, uploads []backend.Upload) (*backend.EvaluationResult, error) {
	f.mu.Lock()
	f.uploads = append(f.uploads, uploads)
	fn := f.eval
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, &backend.ServerError{Op: "evaluate corridor", Status: 500}
	}
	return fn(uploads)
}

func (f *fakeBackend) DownloadReport(ctx context.Context, ext string) (*backend.Report, error) {
	f.mu.Lock()
	f.exts = append(f.exts, ext)
	fn := f.report
	f.mu.Unlock()

	if fn == nil {
		return &backend.Report{Filename: backend.DefaultReportName + ext, Body: []byte("report")}, nil
	}
	return fn(ext)
}

func (f *fakeBackend) Help(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.helpCalls++
	return nil
}

func (f *fakeBackend) RouteRequests() []backend.RouteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.RouteRequest(nil), f.routeReqs...)
}

func newTestSession(t *testing.T, gc *fakeGeocoder, be *fakeBackend, opts Options) *Session {
	t.Helper()
	if gc.addrs == nil {
		gc.addrs = make(map[geo.Coordinate]*geocode.Address)
	}
	if opts.DownloadDir == "" {
		opts.DownloadDir = t.TempDir()
	}
	s := New(context.Background(), gc, be, opts)
	t.Cleanup(s.Close)
	return s
}

// step applies one completion, failing the test if none arrives
func step(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Step(ctx); err != nil {
		t.Fatalf("no completion: %v", err)
	}
}

// selectAndSettle selects a point and applies its lookup
func selectAndSettle(t *testing.T, s *Session, r Role, c geo.Coordinate) {
	t.Helper()
	s.SelectPoint(r, c)
	step(t, s)
}

func containsJSON(data []byte, fragment string) bool {
	return strings.Contains(string(data), fragment)
}
