package gateway

import "appgw/message"

// SyntheticStart builds the ResponseStart the worker sends back when
// Bridge.Invoke fails before the application ever captured a real Start:
// status 500, no headers. The body is always the zero-value empty
// ResponseBody — the gateway contract gives the client an HTTP 500 with an
// empty body in this case, never a synthesized error page.
func SyntheticStart(status uint16) message.ResponseStart {
	return message.ResponseStart{Status: status}
}
