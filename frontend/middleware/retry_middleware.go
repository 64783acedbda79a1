package middleware

import (
	"context"
	"log"
	"strings"
	"time"

	"appgw/message"
)

// RetryMiddleware retries a dispatched request against a fresh worker pick
// when the failure looks transient (timeout, connection refused). It is not
// installed by default: retrying across workers changes the delivery
// semantics an AppRuntime sees (a non-idempotent handler could run twice),
// so it is an explicit opt-in extension point rather than baked into the
// default pipeline.
func RetryMiddleware(maxRetries int, baseDelay time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.ParsedRequest) (*Response, error) {
			resp, err := next(ctx, req)
			for i := 0; i < maxRetries; i++ {
				if err == nil {
					return resp, nil
				}
				if !isRetryable(err) {
					return resp, err
				}
				log.Printf("retry attempt %d for %s due to: %v", i+1, req.URI.Path, err)
				time.Sleep(baseDelay * time.Duration(uint(1)<<uint(i))) // Exponential backoff
				resp, err = next(ctx, req)
			}
			return resp, err
		}
	}
}

func isRetryable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "timed out") || strings.Contains(msg, "connection refused") || strings.Contains(msg, "no worker")
}
