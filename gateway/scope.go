// Package gateway implements the adapter between the worker's IPC server
// and an application runtime: it builds the per-request Scope, invokes the
// runtime through a single-threaded Bridge, and enforces the
// AwaitStart → AwaitBody → Done response ordering the gateway contract
// requires.
package gateway

import (
	"appgw/message"
)

// Scope is the per-request context handed to an AppRuntime, modeled on the
// original implementation's scope dict: a plain snapshot of everything the
// application needs to know about the request, built once up front and
// never mutated afterward.
type Scope struct {
	Type         string // always "http"
	ASGIVersion  string
	SpecVersion  string
	HTTPVersion  string
	Method       string
	Scheme       string
	Path         string
	RawPath      []byte
	QueryString  string
	RootPath     string
	Headers      []message.Header // [(name, value)] pairs, lowercased name
	ClientAddr   string
	ServerAddr   string
}

// NewScope builds a Scope from a ParsedRequest, following the original
// implementation's field-for-field construction. Headers become a list of
// (name, value) byte-pairs with each name lowercased and each value copied
// unchanged. They come from the request's header map, so there is one entry
// per name and the list order follows map iteration, which is not stable.
func NewScope(req *message.ParsedRequest, clientAddr, serverAddr string) *Scope {
	headers := make([]message.Header, 0, len(req.Headers))
	for name, value := range req.Headers {
		headers = append(headers, message.Header{Name: []byte(lowerASCII(name)), Value: []byte(value)})
	}

	return &Scope{
		Type:        "http",
		ASGIVersion: "3.0",
		SpecVersion: "2.1",
		HTTPVersion: "1.1",
		Method:      req.Method.String(),
		Scheme:      req.URI.Scheme,
		Path:        req.URI.Path,
		RawPath:     []byte(req.URI.Path),
		QueryString: req.URI.QueryString,
		RootPath:    "",
		Headers:     headers,
		ClientAddr:  clientAddr,
		ServerAddr:  serverAddr,
	}
}

// lowerASCII lowercases a header name the way the gateway contract requires.
// Header names are restricted to ASCII, so a byte-wise shift is sufficient —
// no need for the Unicode-aware strings.ToLower.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
