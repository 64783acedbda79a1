package frontend

import (
	"fmt"
	"io"
	"net/http"

	"appgw/message"
)

// maxRequestBody bounds how much of a request body buildParsedRequest will
// buffer into memory. A request larger than this is rejected with
// ErrBadRequest before a worker is ever dialed.
const maxRequestBody = 32 * 1024 * 1024 // 32 MiB

// buildParsedRequest converts a parsed HTTP/1.1 request into the fully
// buffered ParsedRequest snapshot handed to a worker. The original
// http.Request is not retained afterward.
func buildParsedRequest(r *http.Request) (*message.ParsedRequest, error) {
	method, ok := message.ParseMethod(r.Method)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, r.Method)
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if len(body) > maxRequestBody {
		return nil, fmt.Errorf("%w: request body exceeds %d bytes", ErrBadRequest, maxRequestBody)
	}

	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}
	if r.Host != "" {
		headers["host"] = r.Host
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	return &message.ParsedRequest{
		Method: method,
		URI: message.URI{
			Scheme:      scheme,
			Path:        r.URL.Path,
			QueryString: r.URL.RawQuery,
		},
		Headers: headers,
		Body:    body,
	}, nil
}
