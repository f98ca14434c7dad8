package session

import (
	"github.com/rs/zerolog/log"

	"piperoute/internal/backend"
)

// MainMode is the top level mode: identify a new route or evaluate an uploaded corridor
type MainMode int

const (
	ModeIdentify MainMode = iota
	ModeEvaluate
)

// String returns a string representation of the mode
func (m MainMode) String() string {
	if m == ModeEvaluate {
		return "evaluate"
	}
	return "identify"
}

// SubMode selects the network a route is generated on
type SubMode int

const (
	SubRoute SubMode = iota
	SubRail
)

// String returns the wire name of the sub-mode
func (m SubMode) String() string {
	return string(m.Wire())
}

// Wire converts the sub-mode to the backend's mode value
func (m SubMode) Wire() backend.Mode {
	if m == SubRail {
		return backend.ModeRail
	}
	return backend.ModeRoute
}

// MainMode returns the current main mode
func (s *Session) MainMode() MainMode {
	return s.mainMode
}

// SubMode returns the current sub-mode
func (s *Session) SubMode() SubMode {
	return s.subMode
}

// SetMainMode switches the main mode. The result and any processing operation
// of the mode being left are discarded. Setting the current mode does nothing.
func (s *Session) SetMainMode(m MainMode) {
	if m == s.mainMode {
		return
	}

	switch s.mainMode {
	case ModeIdentify:
		s.route = nil
		s.routeReady = false
		s.abandon(OpRoute)
	case ModeEvaluate:
		s.eval = nil
		s.evalReady = false
		s.abandon(OpEvaluation)
	}

	log.Info().Str("from", s.mainMode.String()).Str("to", m.String()).Msg("Main mode changed")
	s.mainMode = m
}

// SetSubMode switches between pipeline and rail routing. Existing results are kept.
func (s *Session) SetSubMode(m SubMode) {
	if m == s.subMode {
		return
	}
	log.Info().Str("sub_mode", m.String()).Msg("Sub-mode changed")
	s.subMode = m
}
