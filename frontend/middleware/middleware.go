// Package middleware implements the onion-model middleware chain wrapped
// around a dispatched request, the same shape the front-end's teacher uses
// for its RPC business handler — cross-cutting concerns (logging, timeout,
// rate limiting) are composed around a single HandlerFunc rather than
// scattered through the dispatcher.
//
// Onion model execution order:
//
//	Chain(A, B, C)(handler)  →  A(B(C(handler)))
//
//	Request:   A.before → B.before → C.before → handler
//	Response:  handler → C.after → B.after → A.after
//
// Each middleware can:
//   - Do pre-processing (before calling next)
//   - Call next(ctx, req) to pass to the next layer
//   - Do post-processing (after next returns)
//   - Short-circuit by returning early without calling next (e.g., rate limiting)
package middleware

import (
	"context"

	"appgw/message"
)

// Response bundles the two messages a successful dispatch produces: exactly
// one ResponseStart followed by one ResponseBody, per the gateway contract.
type Response struct {
	Start message.ResponseStart
	Body  message.ResponseBody
}

// HandlerFunc is the function signature for request handlers. Both the
// dispatcher's business handler and middleware-wrapped handlers share this
// signature. A non-nil error means the request could not be completed —
// the front-end turns it into an HTTP error response, it does not ride
// inside Response the way the teacher's RPCMessage.Error string does.
type HandlerFunc func(ctx context.Context, req *message.ParsedRequest) (*Response, error)

// Middleware takes a handler and returns a new handler that wraps it.
// This is the decorator pattern — each middleware adds behavior around the next handler.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes multiple middlewares into a single middleware.
// It builds the chain from right to left so that the first middleware in the list
// is the outermost layer (executed first on request, last on response).
//
// Example:
//
//	chain := Chain(Logging, Timeout, RateLimit)
//	handler := chain(businessHandler)
//	// Execution: Logging → Timeout → RateLimit → businessHandler → RateLimit → Timeout → Logging
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
