// Package eglcore owns the lifecycle of the native rendering context bound to a
// destination surface. Every method must be called from the goroutine that
// owns the context (the render scheduler), which has locked its OS thread.
package eglcore

import (
	"errors"
	"fmt"
	"unsafe"
)

var (
	// ErrContextCreation matches any *CreationError via errors.Is.
	ErrContextCreation = errors.New("rendering context creation failed")

	// ErrNotInitialized is returned by MakeCurrent and SwapBuffers when called
	// before a successful Initialize, or after Release.
	ErrNotInitialized = errors.New("rendering context not initialized")

	// ErrAlreadyInitialized is returned when Initialize is called twice without
	// an intervening Release.
	ErrAlreadyInitialized = errors.New("rendering context already initialized")
)

// Handle is an opaque native context handle (an EGLContext for the native
// backend). It is only meaningful to the backend that produced it.
type Handle unsafe.Pointer

// Surface describes the destination the context renders into. A zero Window
// asks the backend for an offscreen pbuffer of Width x Height.
type Surface struct {
	Display unsafe.Pointer // native display connection, nil for the default display
	Window  uintptr        // native window id
	Width   int
	Height  int
}

func (s Surface) Headless() bool {
	return s.Window == 0
}

// Backend is the platform binding used by Core.
type Backend interface {
	CreateContext(surface Surface, shared Handle) (Handle, error)
	MakeCurrent(ctx Handle) error
	SwapBuffers(ctx Handle) error
	DestroyContext(ctx Handle) error
}

// CreationError wraps a backend failure during Initialize.
type CreationError struct {
	Surface Surface
	Err     error
}

func (e *CreationError) Error() string {
	if e.Surface.Headless() {
		return fmt.Sprintf("create context for %dx%d pbuffer: %v", e.Surface.Width, e.Surface.Height, e.Err)
	}
	return fmt.Sprintf("create context for window %#x: %v", e.Surface.Window, e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}

func (e *CreationError) Is(target error) bool {
	return target == ErrContextCreation
}

// Core is the GPU context manager:
// Initialize -> (MakeCurrent | SwapBuffers)* -> Release.
type Core struct {
	backend Backend
	ctx     Handle
}

func New(backend Backend) *Core {
	return &Core{backend: backend}
}

// Initialize creates a context able to render into surface, optionally
// sharing objects with shared.
func (c *Core) Initialize(surface Surface, shared Handle) error {
	if c.ctx != nil {
		return ErrAlreadyInitialized
	}

	ctx, err := c.backend.CreateContext(surface, shared)
	if err != nil {
		return &CreationError{Surface: surface, Err: err}
	}
	if ctx == nil {
		return &CreationError{Surface: surface, Err: errors.New("backend returned no context")}
	}

	c.ctx = ctx
	return nil
}

// MakeCurrent binds the context to the calling OS thread. Calling it before
// Initialize is a precondition violation and returns ErrNotInitialized.
func (c *Core) MakeCurrent() error {
	if c.ctx == nil {
		return ErrNotInitialized
	}
	if err := c.backend.MakeCurrent(c.ctx); err != nil {
		return fmt.Errorf("make current: %w", err)
	}
	return nil
}

// SwapBuffers presents the back buffer.
func (c *Core) SwapBuffers() error {
	if c.ctx == nil {
		return ErrNotInitialized
	}
	if err := c.backend.SwapBuffers(c.ctx); err != nil {
		return fmt.Errorf("swap buffers: %w", err)
	}
	return nil
}

// Release destroys the context and every GL object tied to it. Safe to call
// more than once.
func (c *Core) Release() error {
	if c.ctx == nil {
		return nil
	}

	ctx := c.ctx
	c.ctx = nil
	if err := c.backend.DestroyContext(ctx); err != nil {
		return fmt.Errorf("destroy context: %w", err)
	}
	return nil
}

// Context returns the live handle, or nil outside Initialize..Release.
func (c *Core) Context() Handle {
	return c.ctx
}

func (c *Core) Initialized() bool {
	return c.ctx != nil
}
