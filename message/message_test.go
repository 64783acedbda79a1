package message

import "testing"

func TestParseMethod(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"GET", true},
		{"POST", true},
		{"PATCH", true},
		{"OPTIONS", true},
		{"DELETE", true},
		{"HEAD", true},
		{"PUT", true},
		{"CONNECT", false},
		{"get", false}, // case-sensitive on purpose: the front-end matches request-line tokens verbatim
	}

	for _, tc := range cases {
		m, ok := ParseMethod(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParseMethod(%q): ok=%v, want %v", tc.in, ok, tc.ok)
		}
		if ok && m.String() != tc.in {
			t.Fatalf("ParseMethod(%q).String() = %q, want %q", tc.in, m.String(), tc.in)
		}
	}
}

func TestResponseMsgConstructors(t *testing.T) {
	start := NewStart(ResponseStart{Status: 200, Headers: []Header{{Name: []byte("content-type"), Value: []byte("text/plain")}}})
	if start.Kind != KindStart {
		t.Fatalf("expected KindStart, got %v", start.Kind)
	}
	if start.Start.Status != 200 {
		t.Fatalf("expected status 200, got %d", start.Start.Status)
	}

	body := NewBody(ResponseBody{Body: []byte("hi")})
	if body.Kind != KindBody {
		t.Fatalf("expected KindBody, got %v", body.Kind)
	}
	if string(body.Body.Body) != "hi" {
		t.Fatalf("expected body %q, got %q", "hi", body.Body.Body)
	}
}
