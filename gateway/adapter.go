package gateway

import (
	"context"
	"fmt"
	"sync"

	"appgw/message"
)

// ErrAppProtocol means the application runtime called send() out of order
// (e.g. two Starts, or a Body before a Start) or never produced a complete
// response at all.
var ErrAppProtocol = fmt.Errorf("gateway: application violated the send protocol")

// ErrAppException means the application runtime's Handle returned an error.
var ErrAppException = fmt.Errorf("gateway: application raised an exception")

// Event is the single receive() event an AppRuntime can ask for: the fully
// buffered request body. The gateway contract does not stream request
// bodies in chunks (an explicit non-goal), so MoreBody is always false —
// it is carried on Event anyway so an AppRuntime written against the
// richer, chunked contract still type-checks against this one.
type Event struct {
	Body     []byte
	MoreBody bool
}

// ReceiveFunc is the "receive" callable handed to an AppRuntime. The first
// call returns the request body with MoreBody false; there is nothing further
// to receive, so any later call blocks until ctx is done and then returns
// ctx.Err().
type ReceiveFunc func(ctx context.Context) (Event, error)

// SendFunc is the "send" callable handed to an AppRuntime. The first call
// must carry a ResponseStart, the second a ResponseBody; a third call, a
// call in the wrong order, or send never being called at all, is reported
// to the caller as ErrAppProtocol.
type SendFunc func(ctx context.Context, msg message.ResponseMsg) error

// AppRuntime is the boundary interface standing in for "whatever embeds the
// application" (a language runtime, an in-process Go handler, a plugin). It
// is invoked once per request with a Scope and the receive/send callables,
// modeled directly on the three-callable convention from the scope/receive/
// send construction in the original implementation's request handler.
type AppRuntime interface {
	Handle(ctx context.Context, scope *Scope, receive ReceiveFunc, send SendFunc) error
}

// invocation carries one request through the Bridge's single goroutine.
type invocation struct {
	ctx    context.Context
	scope  *Scope
	body   []byte
	result chan invocationResult
}

type invocationResult struct {
	start     message.ResponseStart
	body      message.ResponseBody
	startSent bool // true once the application's Start was captured, even if it later failed
	err       error
}

// responseState enforces AwaitStart → AwaitBody → Done.
type responseState int

const (
	stateAwaitStart responseState = iota
	stateAwaitBody
	stateDone
)

// Bridge serializes access to a single AppRuntime instance through one
// goroutine, the same "one goroutine owns the handle, callers submit over a
// channel" shape the teacher uses for its per-connection write mutex, here
// applied to the embedded runtime itself rather than a socket. Runtimes
// that are not safe for concurrent invocation (the common case for an
// embedded interpreter) can rely on Bridge never calling Handle from two
// goroutines at once.
type Bridge struct {
	app   AppRuntime
	queue chan *invocation

	closeOnce sync.Once
	done      chan struct{}
}

// NewBridge starts the Bridge's worker goroutine. queueDepth bounds how many
// in-flight invocations may queue before Invoke blocks — this is the
// back-pressure mechanism: a slow or single-threaded AppRuntime naturally
// throttles the worker's accept loop instead of buffering unboundedly.
func NewBridge(app AppRuntime, queueDepth int) *Bridge {
	if queueDepth <= 0 {
		queueDepth = 1
	}
	b := &Bridge{
		app:   app,
		queue: make(chan *invocation, queueDepth),
		done:  make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Bridge) run() {
	defer close(b.done)
	for inv := range b.queue {
		inv.result <- b.invoke(inv)
	}
}

func (b *Bridge) invoke(inv *invocation) invocationResult {
	state := stateAwaitStart
	var mu sync.Mutex
	var start message.ResponseStart
	var body message.ResponseBody
	gotBody := false

	receivedBody := false
	receive := func(ctx context.Context) (Event, error) {
		if receivedBody {
			<-ctx.Done()
			return Event{}, ctx.Err()
		}
		receivedBody = true
		return Event{Body: inv.body, MoreBody: false}, nil
	}

	var protoErr error
	violation := func(err error) error {
		if protoErr == nil {
			protoErr = err
		}
		return err
	}

	send := func(ctx context.Context, msg message.ResponseMsg) error {
		mu.Lock()
		defer mu.Unlock()

		switch state {
		case stateAwaitStart:
			if msg.Kind != message.KindStart {
				return violation(fmt.Errorf("%w: expected Start first, got kind %d", ErrAppProtocol, msg.Kind))
			}
			start = msg.Start
			state = stateAwaitBody
			return nil
		case stateAwaitBody:
			if msg.Kind != message.KindBody {
				return violation(fmt.Errorf("%w: expected Body after Start, got kind %d", ErrAppProtocol, msg.Kind))
			}
			body = msg.Body
			gotBody = true
			state = stateDone
			return nil
		default:
			return violation(fmt.Errorf("%w: send() called after response already completed", ErrAppProtocol))
		}
	}

	err := b.app.Handle(inv.ctx, inv.scope, receive, send)

	mu.Lock()
	startSent := state != stateAwaitStart
	sendErr := protoErr
	mu.Unlock()

	if sendErr != nil {
		return invocationResult{start: start, startSent: startSent, err: sendErr}
	}
	if err != nil {
		return invocationResult{start: start, startSent: startSent, err: fmt.Errorf("%w: %v", ErrAppException, err)}
	}
	if !gotBody {
		return invocationResult{start: start, startSent: startSent, err: fmt.Errorf("%w: application returned without completing the response", ErrAppProtocol)}
	}
	return invocationResult{start: start, body: body, startSent: true}
}

// Invoke submits one request to the Bridge and blocks until the application
// has produced a complete response or failed. On failure, startSent reports
// whether the application's ResponseStart was already captured before the
// failure: the caller (the worker's IPC server) must keep that real Start
// and only synthesize an empty Body if startSent is true, and must
// synthesize both a 500 Start and an empty Body if it is false.
func (b *Bridge) Invoke(ctx context.Context, scope *Scope, body []byte) (start message.ResponseStart, resp message.ResponseBody, startSent bool, err error) {
	inv := &invocation{ctx: ctx, scope: scope, body: body, result: make(chan invocationResult, 1)}

	select {
	case b.queue <- inv:
	case <-ctx.Done():
		return message.ResponseStart{}, message.ResponseBody{}, false, ctx.Err()
	}

	select {
	case res := <-inv.result:
		return res.start, res.body, res.startSent, res.err
	case <-ctx.Done():
		return message.ResponseStart{}, message.ResponseBody{}, false, ctx.Err()
	}
}

// Close stops the Bridge's worker goroutine once all queued invocations
// have drained. Calling Invoke after Close panics (send on closed channel),
// matching the teacher's own "shut down after in-flight work completes"
// supervisor discipline rather than silently dropping a request.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		close(b.queue)
	})
	<-b.done
}
