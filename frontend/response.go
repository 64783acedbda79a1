package frontend

import (
	"bufio"
	"fmt"
	"net/http"

	"appgw/frontend/middleware"
)

// writeResponse serializes a middleware.Response as an HTTP/1.1 response.
// Headers are written in the exact order and case the application produced
// them in — no normalization, matching the gateway contract's preservation
// guarantee.
func writeResponse(w *bufio.Writer, resp *middleware.Response) error {
	status := resp.Start.Status
	if status == 0 {
		status = http.StatusOK
	}
	if _, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", status, http.StatusText(int(status))); err != nil {
		return err
	}

	// The application is responsible for its own Content-Length (or
	// Transfer-Encoding); the core does not compute or add one on its behalf.
	for _, h := range resp.Start.Headers {
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", h.Name, h.Value); err != nil {
			return err
		}
	}
	if _, err := w.WriteString("\r\n"); err != nil {
		return err
	}
	if _, err := w.Write(resp.Body.Body); err != nil {
		return err
	}
	return w.Flush()
}

// writeErrorResponse sends a minimal, synthetic HTTP error response for a
// request that never reached a worker (bad request, no worker available)
// or that a worker could not complete.
func writeErrorResponse(w *bufio.Writer, status int, message string) error {
	body := []byte(message)
	if _, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", status, http.StatusText(status)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Content-Length: %d\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n", len(body)); err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	return w.Flush()
}
