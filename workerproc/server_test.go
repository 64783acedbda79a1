package workerproc

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"appgw/codec"
	"appgw/gateway"
	"appgw/message"
	"appgw/protocol"
)

func dialWithRetry(sockPath string) (net.Conn, error) {
	var lastErr error
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.Dial("unix", sockPath)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		time.Sleep(5 * time.Millisecond)
	}
	return nil, lastErr
}

func startTestServer(t *testing.T, app gateway.AppRuntime) (sockPath string, srv *Server) {
	t.Helper()
	dir := t.TempDir()
	sockPath = filepath.Join(dir, "worker.sock")

	bridge := gateway.NewBridge(app, 4)
	srv = &Server{Bridge: bridge, Codec: &codec.JSONCodec{}, ServerAddr: sockPath}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(sockPath) }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(sockPath); err == nil {
			break
		}
		select {
		case err := <-errCh:
			t.Fatalf("server exited early: %v", err)
		default:
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Cleanup(func() {
		srv.Close()
		bridge.Close()
		os.Remove(sockPath)
	})
	return sockPath, srv
}

func TestServerEchoRoundTrip(t *testing.T) {
	sockPath, _ := startTestServer(t, &gateway.EchoApp{})

	conn, err := dialWithRetry(sockPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	req := &message.ParsedRequest{
		Method:  message.MethodPOST,
		URI:     message.URI{Path: "/x"},
		Headers: map[string]string{"content-type": "text/plain"},
		Body:    []byte("payload"),
	}
	c := &codec.JSONCodec{}
	data, err := c.Encode(req)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := protocol.WriteFrame(conn, data); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	startBytes, err := protocol.ReadFrame(conn, 0)
	if err != nil {
		t.Fatalf("read start frame: %v", err)
	}
	var startMsg message.ResponseMsg
	if err := c.Decode(startBytes, &startMsg); err != nil {
		t.Fatalf("decode start: %v", err)
	}
	if startMsg.Kind != message.KindStart || startMsg.Start.Status != 200 {
		t.Fatalf("unexpected start message: %+v", startMsg)
	}

	bodyBytes, err := protocol.ReadFrame(conn, 0)
	if err != nil {
		t.Fatalf("read body frame: %v", err)
	}
	var bodyMsg message.ResponseMsg
	if err := c.Decode(bodyBytes, &bodyMsg); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if bodyMsg.Kind != message.KindBody || string(bodyMsg.Body.Body) != "payload" {
		t.Fatalf("unexpected body message: %+v", bodyMsg)
	}
}

type brokenApp struct{}

func (brokenApp) Handle(ctx context.Context, scope *gateway.Scope, receive gateway.ReceiveFunc, send gateway.SendFunc) error {
	return errors.New("application blew up")
}

// TestServerSyntheticErrorOnAppException covers a failure before the
// application ever called send(): the worker must synthesize both a bare
// 500 Start (no headers) and an empty Body, never a text error page.
func TestServerSyntheticErrorOnAppException(t *testing.T) {
	sockPath, _ := startTestServer(t, brokenApp{})

	conn, err := dialWithRetry(sockPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	req := &message.ParsedRequest{Method: message.MethodGET, URI: message.URI{Path: "/"}}
	c := &codec.JSONCodec{}
	data, _ := c.Encode(req)
	if err := protocol.WriteFrame(conn, data); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	startBytes, err := protocol.ReadFrame(conn, 0)
	if err != nil {
		t.Fatalf("read start frame: %v", err)
	}
	var startMsg message.ResponseMsg
	if err := c.Decode(startBytes, &startMsg); err != nil {
		t.Fatalf("decode start: %v", err)
	}
	if startMsg.Start.Status != 500 {
		t.Fatalf("expected synthetic 500, got %d", startMsg.Start.Status)
	}
	if len(startMsg.Start.Headers) != 0 {
		t.Fatalf("expected no headers on a synthesized Start, got %+v", startMsg.Start.Headers)
	}

	bodyBytes, err := protocol.ReadFrame(conn, 0)
	if err != nil {
		t.Fatalf("read body frame: %v", err)
	}
	var bodyMsg message.ResponseMsg
	if err := c.Decode(bodyBytes, &bodyMsg); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(bodyMsg.Body.Body) != 0 {
		t.Fatalf("expected empty body, got %q", bodyMsg.Body.Body)
	}
}

type startThenFailApp struct{}

func (startThenFailApp) Handle(ctx context.Context, scope *gateway.Scope, receive gateway.ReceiveFunc, send gateway.SendFunc) error {
	if err := send(ctx, message.NewStart(message.ResponseStart{
		Status:  201,
		Headers: []message.Header{{Name: []byte("x-app"), Value: []byte("yes")}},
	})); err != nil {
		return err
	}
	return errors.New("failed after Start")
}

// TestServerPreservesStartOnFailureAfterStart covers a failure that happens
// after the application already sent a real Start: the worker must keep
// that Start (status and headers intact) and only synthesize an empty Body.
func TestServerPreservesStartOnFailureAfterStart(t *testing.T) {
	sockPath, _ := startTestServer(t, startThenFailApp{})

	conn, err := dialWithRetry(sockPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	req := &message.ParsedRequest{Method: message.MethodGET, URI: message.URI{Path: "/"}}
	c := &codec.JSONCodec{}
	data, _ := c.Encode(req)
	if err := protocol.WriteFrame(conn, data); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	startBytes, err := protocol.ReadFrame(conn, 0)
	if err != nil {
		t.Fatalf("read start frame: %v", err)
	}
	var startMsg message.ResponseMsg
	if err := c.Decode(startBytes, &startMsg); err != nil {
		t.Fatalf("decode start: %v", err)
	}
	if startMsg.Start.Status != 201 {
		t.Fatalf("expected the app's real Start (201) to be preserved, got %d", startMsg.Start.Status)
	}
	if len(startMsg.Start.Headers) != 1 || string(startMsg.Start.Headers[0].Name) != "x-app" {
		t.Fatalf("expected the app's real headers to be preserved, got %+v", startMsg.Start.Headers)
	}

	bodyBytes, err := protocol.ReadFrame(conn, 0)
	if err != nil {
		t.Fatalf("read body frame: %v", err)
	}
	var bodyMsg message.ResponseMsg
	if err := c.Decode(bodyBytes, &bodyMsg); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(bodyMsg.Body.Body) != 0 {
		t.Fatalf("expected empty body, got %q", bodyMsg.Body.Body)
	}
}
