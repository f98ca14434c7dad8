package backend

import (
	"errors"
	"fmt"
)

// ErrServer is the single failure kind for backend calls. The UI cannot tell a
// bad point from a crashed server, so every transport failure and non-2xx
// response is reported as ErrServer.
var ErrServer = errors.New("backend request failed")

// ErrUnsupportedExtension is returned for a report extension other than .zip or .pdf
var ErrUnsupportedExtension = errors.New("unsupported report extension")

// ServerError records which call failed and how.
// errors.Is(err, ErrServer) holds for every ServerError.
type ServerError struct {
	Op     string
	Status int
	Err    error
}

func (e *ServerError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": " + ErrServer.Error()
	}
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

// Is makes every ServerError match ErrServer
func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}
