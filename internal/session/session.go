// Package session holds the state of one routing session: modes, selected
// points, in-flight requests, the shape to draw and the popups to show.
//
// A Session is owned by a single goroutine. Geocode and backend calls run on
// their own goroutines and hand their results back as Completions, which the
// owner applies with Apply or Step. No state changes outside those calls.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"piperoute/internal/backend"
	"piperoute/internal/geo"
	"piperoute/internal/geocode"
)

// Geocoder looks up the address of a coordinate
type Geocoder interface {
	Reverse(ctx context.Context, coord geo.Coordinate) (*geocode.Address, error)
}

// Backend is the routing service
type Backend interface {
	GenerateRoute(ctx context.Context, req backend.RouteRequest) (*backend.RouteResult, error)
	EvaluateCorridor(ctx context.Context, uploads []backend.Upload) (*backend.EvaluationResult, error)
	DownloadReport(ctx context.Context, ext string) (*backend.Report, error)
	Help(ctx context.Context) error
}

// Completion applies the result of an asynchronous call to the session
type Completion func(s *Session)

// Options configure a Session
type Options struct {
	// DownloadDir receives reports and GeoJSON exports
	DownloadDir string
	StartSites  []geo.Site
	EndSites    []geo.Site
	// RevalidateSites sends reference site selections through the geocoder
	RevalidateSites bool
}

// Operation is the long running backend call currently shown as processing
type Operation int

const (
	OpNone Operation = iota
	OpRoute
	OpEvaluation
)

// String returns a string representation of the operation
func (o Operation) String() string {
	switch o {
	case OpRoute:
		return "route"
	case OpEvaluation:
		return "evaluation"
	default:
		return "none"
	}
}

const completionQueueSize = 16

// Session is the coordination state of the routing UI
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	geocoder    Geocoder
	backend     Backend
	opts        Options
	completions chan Completion
	inflight    sync.WaitGroup

	mainMode MainMode
	subMode  SubMode

	activeRole Role
	start      PointSelection
	end        PointSelection
	lookups    map[Role]*lookup

	active     Operation
	generation uint64

	route      *backend.RouteResult
	routeReady bool
	eval       *backend.EvaluationResult
	evalReady  bool
	uploads    []backend.Upload
	lastReport string

	popups *Presenter
}

// New creates a session in identify mode with the disclaimer showing.
// Closing the session or cancelling ctx abandons all in-flight calls.
func New(ctx context.Context, gc Geocoder, be Backend, opts Options) *Session {
	ctx, cancel := context.WithCancel(ctx)

	return &Session{
		ctx:         ctx,
		cancel:      cancel,
		geocoder:    gc,
		backend:     be,
		opts:        opts,
		completions: make(chan Completion, completionQueueSize),
		mainMode:    ModeIdentify,
		subMode:     SubRoute,
		lookups: map[Role]*lookup{
			RoleStart: {},
			RoleEnd:   {},
		},
		popups: NewPresenter(),
	}
}

// Completions delivers results of finished calls. Pass each one to Apply.
func (s *Session) Completions() <-chan Completion {
	return s.completions
}

// Apply runs a completion on the session
func (s *Session) Apply(c Completion) {
	if c != nil {
		c(s)
	}
}

// Step waits for one completion and applies it
func (s *Session) Step(ctx context.Context) error {
	select {
	case c := <-s.completions:
		s.Apply(c)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels in-flight calls and waits for their goroutines to exit
func (s *Session) Close() {
	s.cancel()
	s.inflight.Wait()
}

// dispatch runs work off the owner goroutine and queues its completion
func (s *Session) dispatch(work func(ctx context.Context) Completion) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		c := work(s.ctx)
		select {
		case s.completions <- c:
		case <-s.ctx.Done():
		}
	}()
}

// begin marks op as the active operation and returns its generation.
// Whatever was active before is superseded.
func (s *Session) begin(op Operation) uint64 {
	if s.active != OpNone && s.active != op {
		log.Debug().Str("superseded", s.active.String()).Str("operation", op.String()).Msg("Operation superseded")
	}
	s.generation++
	s.active = op
	s.popups.SetProcessing(processingPopup(op))
	return s.generation
}

// finish clears op if gen is still current. It reports false for a stale completion.
func (s *Session) finish(op Operation, gen uint64) bool {
	if gen != s.generation || s.active != op {
		log.Debug().
			Str("operation", op.String()).
			Uint64("generation", gen).
			Uint64("current", s.generation).
			Msg("Discarding stale completion")
		return false
	}
	s.active = OpNone
	s.popups.SetProcessing(PopupNone)
	return true
}

// abandon drops op without waiting for its completion
func (s *Session) abandon(op Operation) {
	if s.active != op {
		return
	}
	s.generation++
	s.active = OpNone
	s.popups.SetProcessing(PopupNone)
}

func processingPopup(op Operation) PopupKind {
	switch op {
	case OpRoute:
		return PopupProcessingRoute
	case OpEvaluation:
		return PopupProcessingEvaluation
	default:
		return PopupNone
	}
}

// Active returns the operation currently processing
func (s *Session) Active() Operation {
	return s.active
}

// Popups returns the popup presenter
func (s *Session) Popups() *Presenter {
	return s.popups
}

// Sites returns the reference sites offered for role
func (s *Session) Sites(role Role) []geo.Site {
	switch role {
	case RoleStart:
		return s.opts.StartSites
	case RoleEnd:
		return s.opts.EndSites
	default:
		return nil
	}
}
