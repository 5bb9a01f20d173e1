package shutdown

import "context"

// Shutdowner is implemented by servers with a graceful Shutdown method,
// such as *http.Server and the timeline server.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// ServerComponent stops a server gracefully.
type ServerComponent struct {
	name   string
	server Shutdowner
}

// NewServerComponent creates a server shutdown component.
func NewServerComponent(name string, server Shutdowner) *ServerComponent {
	return &ServerComponent{name: name, server: server}
}

// Name returns the component name.
func (c *ServerComponent) Name() string {
	return c.name
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (c *ServerComponent) Shutdown(ctx context.Context) error {
	return c.server.Shutdown(ctx)
}

// FuncComponent wraps a shutdown function as a component.
type FuncComponent struct {
	name string
	fn   func(ctx context.Context) error
}

// NewFuncComponent creates a function-based shutdown component.
func NewFuncComponent(name string, fn func(ctx context.Context) error) *FuncComponent {
	return &FuncComponent{name: name, fn: fn}
}

// Name returns the component name.
func (c *FuncComponent) Name() string {
	return c.name
}

// Shutdown calls the wrapped function.
func (c *FuncComponent) Shutdown(ctx context.Context) error {
	return c.fn(ctx)
}

// Stop adapts a function without a context or error, such as a hub's
// Close, into a component.
func Stop(name string, fn func()) *FuncComponent {
	return NewFuncComponent(name, func(context.Context) error {
		fn()
		return nil
	})
}
