// Package frontend implements the front-end half of the gateway: it accepts
// HTTP connections, parses requests, selects a worker via the registry and
// Balancer, and round-trips each request over that worker's Unix socket.
package frontend

import (
	"context"
	"fmt"
	"net"

	"appgw/codec"
	"appgw/frontend/middleware"
	"appgw/loadbalance"
	"appgw/message"
	"appgw/protocol"
	"appgw/registry"
)

// Dispatcher owns worker selection and the single-round-trip IPC exchange.
// A Dispatcher is shared by every connection the Server accepts; its Dispatch
// method is safe for concurrent use.
type Dispatcher struct {
	PoolName     string
	Registry     registry.Registry
	Balancer     loadbalance.Balancer
	Codec        codec.Codec
	MaxFrameSize uint32 // 0 uses protocol.DefaultMaxFrameSize
}

// Dispatch selects a worker slot, dials its socket, writes the request frame,
// and reads back exactly the two response frames (Start, then Body) the
// gateway contract guarantees.
//
// Steps:
//  1. Discover available worker slots from the registry
//  2. Pick one slot using the load balancer
//  3. Dial the selected worker's Unix socket
//  4. Encode and write the request frame
//  5. Read and decode the ResponseStart frame
//  6. Read and decode the ResponseBody frame
func (d *Dispatcher) Dispatch(ctx context.Context, req *message.ParsedRequest) (*middleware.Response, error) {
	slots, err := d.Registry.Discover(d.PoolName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoWorker, err)
	}

	slot, err := d.Balancer.Pick(req.URI.Path, slots)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoWorker, err)
	}

	conn, err := net.Dial("unix", slot.SocketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkerUnreachable, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	reqBytes, err := d.Codec.Encode(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if err := protocol.WriteFrame(conn, reqBytes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkerUnreachable, err)
	}

	startBytes, err := protocol.ReadFrame(conn, d.MaxFrameSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkerAborted, err)
	}
	var startMsg message.ResponseMsg
	if err := d.Codec.Decode(startBytes, &startMsg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkerProtocol, err)
	}
	if startMsg.Kind != message.KindStart {
		return nil, fmt.Errorf("%w: expected Start, got kind %d", ErrWorkerProtocol, startMsg.Kind)
	}

	bodyBytes, err := protocol.ReadFrame(conn, d.MaxFrameSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkerAborted, err)
	}
	var bodyMsg message.ResponseMsg
	if err := d.Codec.Decode(bodyBytes, &bodyMsg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkerProtocol, err)
	}
	if bodyMsg.Kind != message.KindBody {
		return nil, fmt.Errorf("%w: expected Body, got kind %d", ErrWorkerProtocol, bodyMsg.Kind)
	}

	return &middleware.Response{Start: startMsg.Start, Body: bodyMsg.Body}, nil
}
