// Package message defines the envelope types exchanged between the front-end
// and a worker over the IPC channel.
//
// ParsedRequest travels front-end → worker. ResponseMsg travels worker → front-end,
// as exactly two values per request: a Start followed by a Body. Both get serialized
// by the wire codec and wrapped in a length-prefixed frame for transmission over the
// worker's Unix socket.
package message

// Method is the enumerated set of HTTP methods the front-end accepts. Anything
// else is rejected at the front-end with HTTP 501 before a worker is ever involved.
type Method byte

const (
	MethodGET Method = iota
	MethodPOST
	MethodPATCH
	MethodOPTIONS
	MethodDELETE
	MethodHEAD
	MethodPUT
)

var methodNames = [...]string{"GET", "POST", "PATCH", "OPTIONS", "DELETE", "HEAD", "PUT"}

func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return "UNKNOWN"
}

// ParseMethod maps an HTTP request-line method token to the enumerated Method.
// ok is false for any method outside the enumerated set.
func ParseMethod(s string) (m Method, ok bool) {
	for i, name := range methodNames {
		if name == s {
			return Method(i), true
		}
	}
	return 0, false
}

// URI holds the parsed request target. Scheme and QueryString are optional:
// their zero value (empty string) and "absent" are indistinguishable on the
// wire, which matches the source contract (no scheme/query is common for
// origin-form requests).
type URI struct {
	Scheme      string // empty if absent
	Path        string
	QueryString string // empty if absent
}

// Header is a single name/value pair preserved in on-the-wire byte form: no
// case normalization, no reordering, duplicates kept as distinct entries.
type Header struct {
	Name  []byte
	Value []byte
}

// ParsedRequest is one fully-buffered HTTP request snapshot, built by the
// front-end and consumed by a worker. It is not retained after the response
// completes.
type ParsedRequest struct {
	Method  Method
	URI     URI
	Headers map[string]string // case-insensitive name match is the caller's concern
	Body    []byte
}

// ResponseStart is the first message of a response stream. Headers preserve
// duplicate entries and arrival order exactly as the application produced them.
type ResponseStart struct {
	Status         uint16
	Headers        []Header
	TrailersFollow bool
}

// ResponseBody is a response payload chunk. In the core contract exactly one
// ResponseBody follows each ResponseStart.
type ResponseBody struct {
	Body []byte
}

// MsgKind tags the variant carried by a ResponseMsg.
type MsgKind byte

const (
	KindStart MsgKind = iota
	KindBody
)

// ResponseMsg is the tagged sum Start|Body that travels worker → front-end.
// Exactly one of Start/Body is meaningful, selected by Kind.
type ResponseMsg struct {
	Kind  MsgKind
	Start ResponseStart
	Body  ResponseBody
}

// NewStart wraps a ResponseStart as a ResponseMsg.
func NewStart(s ResponseStart) ResponseMsg { return ResponseMsg{Kind: KindStart, Start: s} }

// NewBody wraps a ResponseBody as a ResponseMsg.
func NewBody(b ResponseBody) ResponseMsg { return ResponseMsg{Kind: KindBody, Body: b} }
