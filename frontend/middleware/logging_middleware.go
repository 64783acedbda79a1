package middleware

import (
	"context"
	"log"
	"time"

	"appgw/message"
)

// LoggingMiddleware records the request path, status, and duration of each
// dispatched request. It captures the start time before calling next, and
// logs the elapsed time after next returns.
//
// Example output:
//
//	path=/widgets method=GET status=200 duration=1.2ms
func LoggingMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.ParsedRequest) (*Response, error) {
			start := time.Now()

			resp, err := next(ctx, req)

			duration := time.Since(start)
			if err != nil {
				log.Printf("path=%s method=%s duration=%s error=%v", req.URI.Path, req.Method, duration, err)
			} else {
				log.Printf("path=%s method=%s status=%d duration=%s", req.URI.Path, req.Method, resp.Start.Status, duration)
			}
			return resp, err
		}
	}
}
