// Package shutdown provides the process wide, one-shot shutdown signal.
package shutdown

import (
	"context"
	"errors"
	"sync"
)

var ErrAlreadyTriggered = errors.New("shutdown already triggered")

// Error is the cancellation cause of Controller.Context.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "shutdown: " + e.Reason
}

// Controller fans a single shutdown request out to the rest of the process.
// Only the first trigger has an effect.
type Controller struct {
	ctx    context.Context
	cancel context.CancelCauseFunc

	mu        sync.Mutex
	triggered bool
	reason    string
	hooks     []func(reason string)
}

func New() *Controller {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &Controller{ctx: ctx, cancel: cancel}
}

// TriggerShutdown records reason, runs the registered hooks in order and
// closes Done. Later calls return ErrAlreadyTriggered.
func (c *Controller) TriggerShutdown(reason string) error {
	c.mu.Lock()
	if c.triggered {
		c.mu.Unlock()
		return ErrAlreadyTriggered
	}
	c.triggered = true
	c.reason = reason
	hooks := c.hooks
	c.hooks = nil
	c.mu.Unlock()

	c.cancel(&Error{Reason: reason})
	for _, hook := range hooks {
		hook(reason)
	}
	return nil
}

// OnShutdown registers a hook. Hooks registered after the trigger run
// immediately.
func (c *Controller) OnShutdown(hook func(reason string)) {
	c.mu.Lock()
	if !c.triggered {
		c.hooks = append(c.hooks, hook)
		c.mu.Unlock()
		return
	}
	reason := c.reason
	c.mu.Unlock()

	hook(reason)
}

func (c *Controller) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Context is canceled with an *Error cause on shutdown.
func (c *Controller) Context() context.Context {
	return c.ctx
}

func (c *Controller) Reason() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason, c.triggered
}
