package frontend

import (
	"errors"
	"net/http"

	"appgw/protocol"
)

// ErrBadRequest means the incoming HTTP request could not be parsed.
var ErrBadRequest = errors.New("frontend: bad request")

// ErrUnsupportedMethod means the request-line method is outside the
// enumerated Method set. The gateway contract rejects these at the
// front-end with HTTP 501, never dialing a worker.
var ErrUnsupportedMethod = errors.New("frontend: unsupported method")

// ErrNoWorker means the worker pool is empty — Discover returned no slots.
var ErrNoWorker = errors.New("frontend: no worker available")

// ErrWorkerUnreachable means dialing the selected worker's socket failed.
var ErrWorkerUnreachable = errors.New("frontend: worker unreachable")

// ErrWorkerAborted means the worker's connection closed before a complete
// response (Start and Body) was received.
var ErrWorkerAborted = errors.New("frontend: worker aborted the request")

// ErrWorkerProtocol means the worker sent a well-formed frame that violates
// the Start-then-Body contract (e.g. two Starts, a Body with no Start).
var ErrWorkerProtocol = errors.New("frontend: worker protocol violation")

// StatusForError maps a dispatch error to the HTTP status the front-end
// sends back to the client. Unrecognized errors fall back to 500, matching
// the behavior of an application-level failure.
func StatusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnsupportedMethod):
		return http.StatusNotImplemented
	case errors.Is(err, ErrNoWorker):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrWorkerUnreachable):
		return http.StatusBadGateway
	case errors.Is(err, ErrWorkerAborted):
		return http.StatusBadGateway
	case errors.Is(err, ErrWorkerProtocol):
		return http.StatusBadGateway
	case isFrameError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isFrameError(err error) bool {
	var trunc *protocol.Truncated
	var tooLarge *protocol.FrameTooLarge
	return errors.As(err, &trunc) || errors.As(err, &tooLarge)
}
