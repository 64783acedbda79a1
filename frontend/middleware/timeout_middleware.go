package middleware

import (
	"context"
	"fmt"
	"time"

	"appgw/message"
)

// TimeoutMiddleware enforces a maximum duration for each dispatched request.
// If the handler doesn't complete within the timeout, it returns an error immediately.
//
// Implementation:
//  1. Create a context with timeout (ctx.Done() fires when timeout expires)
//  2. Run the next handler in a goroutine, sending its result to a channel
//  3. Select between the result channel and ctx.Done()
//
// Note: the handler goroutine is NOT cancelled — it continues running in the
// background against the worker connection it already dialed. The timeout
// only controls when the caller gives up waiting; the handler must check
// ctx.Done() internally for true cancellation (the dispatcher does, on its
// Unix-socket read).
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.ParsedRequest) (*Response, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			type result struct {
				resp *Response
				err  error
			}
			done := make(chan result, 1) // Buffered: prevent goroutine leak if timeout fires
			go func() {
				resp, err := next(ctx, req)
				done <- result{resp, err}
			}()

			select {
			case r := <-done:
				return r.resp, r.err
			case <-ctx.Done():
				return nil, fmt.Errorf("request timed out after %s", timeout)
			}
		}
	}
}
