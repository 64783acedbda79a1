package gateway

import (
	"context"
	"fmt"

	"appgw/message"
)

// Factory constructs an AppRuntime from the attribute name following the
// colon in a -module value (e.g. "app" in "echo:app"). Registering new
// factories is how a worker binary gains application runtimes without this
// package knowing about them in advance.
type Factory func(attr string) (AppRuntime, error)

var registry = map[string]Factory{
	"echo": func(attr string) (AppRuntime, error) { return &EchoApp{}, nil },
}

// RegisterRuntime makes a module name available to LoadRuntime. Intended to
// be called from cmd/worker's init-time wiring when a deployment embeds a
// Go-native AppRuntime instead of (or alongside) the built-in EchoApp.
func RegisterRuntime(module string, factory Factory) {
	registry[module] = factory
}

// LoadRuntime resolves a "-module" flag value of the form "module:attr"
// into a constructed AppRuntime, the same split the original implementation
// does once at worker startup rather than per request.
func LoadRuntime(moduleSpec string) (AppRuntime, error) {
	module, attr, ok := splitModuleSpec(moduleSpec)
	if !ok {
		return nil, fmt.Errorf("gateway: malformed -module value %q, want \"module:attr\"", moduleSpec)
	}
	factory, ok := registry[module]
	if !ok {
		return nil, fmt.Errorf("gateway: no runtime registered for module %q", module)
	}
	return factory(attr)
}

func splitModuleSpec(spec string) (module, attr string, ok bool) {
	for i := 0; i < len(spec); i++ {
		if spec[i] == ':' {
			return spec[:i], spec[i+1:], true
		}
	}
	return "", "", false
}

// EchoApp is the reference AppRuntime: it reads the request body and echoes
// it back with a 200 status and the same content-type header the request
// carried, if any. It stands in for "an embedded application" so the
// dispatch/IPC core can be exercised end-to-end without linking a foreign
// interpreter, matching the original implementation's own default
// "echo_server:app" module.
type EchoApp struct{}

func (a *EchoApp) Handle(ctx context.Context, scope *Scope, receive ReceiveFunc, send SendFunc) error {
	event, err := receive(ctx)
	if err != nil {
		return err
	}

	contentType := "text/plain; charset=utf-8"
	for _, h := range scope.Headers {
		if string(h.Name) == "content-type" {
			contentType = string(h.Value)
			break
		}
	}

	start := message.NewStart(message.ResponseStart{
		Status: 200,
		Headers: []message.Header{
			{Name: []byte("content-type"), Value: []byte(contentType)},
		},
	})
	if err := send(ctx, start); err != nil {
		return err
	}

	return send(ctx, message.NewBody(message.ResponseBody{Body: event.Body}))
}
