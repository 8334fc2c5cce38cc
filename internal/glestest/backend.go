package glestest

import (
	"sync"
	"unsafe"

	"github.com/matjam/camview/internal/eglcore"
)

// Backend is a fake eglcore.Backend that hands out distinct handles and
// counts every call.
type Backend struct {
	mu sync.Mutex

	CreateErr  error
	CurrentErr error
	SwapErr    error
	DestroyErr error

	live     map[eglcore.Handle]*int
	surfaces []eglcore.Surface
	created  int
	current  int
	swaps    int
	destroys int
}

var _ eglcore.Backend = (*Backend)(nil)

func NewBackend() *Backend {
	return &Backend{live: make(map[eglcore.Handle]*int)}
}

func (b *Backend) CreateContext(surface eglcore.Surface, shared eglcore.Handle) (eglcore.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.surfaces = append(b.surfaces, surface)
	if b.CreateErr != nil {
		return nil, b.CreateErr
	}
	b.created++
	n := b.created
	h := eglcore.Handle(unsafe.Pointer(&n))
	b.live[h] = &n
	return h, nil
}

func (b *Backend) MakeCurrent(ctx eglcore.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current++
	return b.CurrentErr
}

func (b *Backend) SwapBuffers(ctx eglcore.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.swaps++
	return b.SwapErr
}

func (b *Backend) DestroyContext(ctx eglcore.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroys++
	delete(b.live, ctx)
	return b.DestroyErr
}

func (b *Backend) Created() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.created
}

func (b *Backend) MakeCurrentCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *Backend) Swaps() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.swaps
}

func (b *Backend) Destroyed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.destroys
}

// Live is the number of contexts created and not yet destroyed.
func (b *Backend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}

// Surfaces returns every surface passed to CreateContext, including failed
// attempts.
func (b *Backend) Surfaces() []eglcore.Surface {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]eglcore.Surface(nil), b.surfaces...)
}
