// Package workerproc implements the worker side of the IPC channel: a Unix
// socket server that accepts connections from the front-end, decodes one
// request per frame, drives it through a gateway.Bridge, and writes back
// exactly two response frames (Start, then Body).
package workerproc

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"sync"

	"appgw/codec"
	"appgw/gateway"
	"appgw/message"
	"appgw/protocol"
)

// Server binds a Unix socket and serves gateway-contract requests from it,
// grounded on the original worker's accept-loop-per-connection shape
// (handle_connection): one goroutine per connection, a strict read-then-
// two-frame-write loop, and disconnect handled as a clean break rather than
// an error.
type Server struct {
	Bridge       *gateway.Bridge
	Codec        codec.Codec
	MaxFrameSize uint32 // 0 uses protocol.DefaultMaxFrameSize
	ServerAddr   string // advertised in Scope.ServerAddr, e.g. the worker's -sock path

	listener net.Listener
	wg       sync.WaitGroup
}

// Serve binds sockPath and accepts connections until the listener is closed
// (typically by the signal handler in cmd/worker, which closes the server and
// unlinks the socket).
func (s *Server) Serve(sockPath string) error {
	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return err
	}
	s.listener = listener

	connID := 0
	for {
		conn, err := listener.Accept()
		if err != nil {
			return err
		}
		connID++
		s.wg.Add(1)
		go s.handleConnection(conn, connID)
	}
}

// Close stops accepting new connections and waits for in-flight ones to finish.
func (s *Server) Close() error {
	err := s.listener.Close()
	s.wg.Wait()
	return err
}

func (s *Server) handleConnection(conn net.Conn, connID int) {
	defer s.wg.Done()
	defer conn.Close()

	for {
		reqBytes, err := protocol.ReadFrame(conn, s.MaxFrameSize)
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Printf("worker: connection %d closed by front-end", connID)
			} else {
				log.Printf("worker: connection %d read error: %v", connID, err)
			}
			return
		}

		var req message.ParsedRequest
		if err := s.Codec.Decode(reqBytes, &req); err != nil {
			log.Printf("worker: connection %d malformed request: %v", connID, err)
			return
		}

		start, body := s.handleRequest(conn.RemoteAddr(), &req)

		if err := s.writeResponseMsg(conn, message.NewStart(start)); err != nil {
			log.Printf("worker: connection %d writing Start: %v", connID, err)
			return
		}
		if err := s.writeResponseMsg(conn, message.NewBody(body)); err != nil {
			log.Printf("worker: connection %d writing Body: %v", connID, err)
			return
		}
	}
}

func (s *Server) handleRequest(remoteAddr net.Addr, req *message.ParsedRequest) (message.ResponseStart, message.ResponseBody) {
	clientAddr := ""
	if remoteAddr != nil {
		clientAddr = remoteAddr.String()
	}
	scope := gateway.NewScope(req, clientAddr, s.ServerAddr)

	start, body, startSent, err := s.Bridge.Invoke(context.Background(), scope, req.Body)
	if err != nil {
		log.Printf("worker: application error: %v", err)
		if startSent {
			// The application already produced a real Start; keep it and
			// only the Body is synthesized empty.
			return start, message.ResponseBody{}
		}
		return gateway.SyntheticStart(500), message.ResponseBody{}
	}
	return start, body
}

func (s *Server) writeResponseMsg(conn net.Conn, msg message.ResponseMsg) error {
	data, err := s.Codec.Encode(&msg)
	if err != nil {
		return err
	}
	return protocol.WriteFrame(conn, data)
}
