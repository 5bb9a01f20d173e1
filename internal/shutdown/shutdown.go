// Package shutdown stops the timeline server's parts in order when the
// process is asked to exit.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/narvanalabs/timeline/pkg/logger"
)

// DefaultTimeout bounds the whole shutdown sequence.
const DefaultTimeout = 15 * time.Second

// Component is something that must be stopped before the process exits.
type Component interface {
	Name() string
	Shutdown(ctx context.Context) error
}

// Coordinator stops registered components in reverse registration order,
// one at a time, under a single deadline.
type Coordinator struct {
	mu         sync.Mutex
	components []Component
	timeout    time.Duration
	logger     *logger.Logger

	signalCh chan os.Signal

	once     sync.Once
	done     chan struct{}
	err      error
	exitCode int
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTimeout sets the shutdown deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Coordinator) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithSignalChannel replaces SIGINT/SIGTERM delivery, for tests.
func WithSignalChannel(ch chan os.Signal) Option {
	return func(c *Coordinator) {
		c.signalCh = ch
	}
}

// NewCoordinator creates a coordinator.
func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		timeout: DefaultTimeout,
		logger:  logger.Default(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("shutdown")
	return c
}

// Register adds a component. Later registrations stop first, so register
// dependencies before the things that use them.
func (c *Coordinator) Register(component Component) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.components = append(c.components, component)
	c.logger.Debug("registered shutdown component", "name", component.Name())
}

// WaitForSignal blocks until SIGINT/SIGTERM arrives or ctx is done. A
// signal triggers Shutdown; a cancelled ctx returns without shutting down.
func (c *Coordinator) WaitForSignal(ctx context.Context) error {
	sigCh := c.signalCh
	if sigCh == nil {
		sigCh = make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
	}

	select {
	case sig := <-sigCh:
		c.logger.Info("received shutdown signal", "signal", sig.String())
		return c.Shutdown()
	case <-ctx.Done():
		return nil
	}
}

// Shutdown stops every component once. Later calls return the first
// result. Components still run after the deadline has passed but see an
// expired context.
func (c *Coordinator) Shutdown() error {
	c.once.Do(func() {
		defer close(c.done)

		c.logger.Info("initiating graceful shutdown", "timeout", c.timeout.String())

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		c.mu.Lock()
		components := make([]Component, len(c.components))
		copy(components, c.components)
		c.mu.Unlock()

		var errs []error
		for i := len(components) - 1; i >= 0; i-- {
			comp := components[i]
			start := time.Now()
			if err := comp.Shutdown(ctx); err != nil {
				c.logger.Error("component shutdown error", "name", comp.Name(), "error", err)
				errs = append(errs, err)
				continue
			}
			c.logger.Info("component stopped", "name", comp.Name(), "duration", time.Since(start).String())
		}

		if ctx.Err() != nil {
			c.logger.Warn("shutdown deadline exceeded")
			c.exitCode = 1
		} else if len(errs) > 0 {
			c.exitCode = 1
		}
		c.err = errors.Join(errs...)
	})

	<-c.done
	return c.err
}

// Done is closed once Shutdown has finished.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// ExitCode is 0 after a clean shutdown and 1 when a component failed or
// the deadline passed.
func (c *Coordinator) ExitCode() int {
	<-c.done
	return c.exitCode
}
