// Package texture binds an externally produced frame stream to a GL texture
// owned by the render context.
package texture

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/matjam/camview/internal/gles"
)

// ErrDetachFailed wraps a producer's failure to detach from its previous
// context. The binder logs and swallows it.
var ErrDetachFailed = errors.New("detach from previous context failed")

// Producer is the external frame source, the analogue of a platform surface
// texture. Frames are latched into the attached texture by UpdateTexImage.
type Producer interface {
	Target() uint32                         // TEXTURE_EXTERNAL_OES or TEXTURE_2D
	AttachToContext(textureID uint32) error // Start producing into textureID
	DetachFromContext() error               // Stop producing into the current texture
	SetOnFrameAvailable(listener func())    // nil clears the listener
	UpdateTexImage() error                  // Latch the most recent frame
	TransformMatrix() mgl32.Mat4            // Texture coordinate transform for the latched frame
}

// Binder keeps exactly one texture id per producer. A fresh id is allocated
// on every producer change and ids are never deleted, so they are never
// reused for the lifetime of the context.
type Binder struct {
	mu        sync.Mutex
	gl        gles.Functions
	producer  Producer
	textureID uint32
	allocated []uint32
	onFrame   func()
}

// NewBinder returns a binder whose producers notify onFrame when a new frame
// is ready. onFrame must not block.
func NewBinder(gl gles.Functions, onFrame func()) *Binder {
	return &Binder{gl: gl, onFrame: onFrame}
}

// Rebind attaches p to a newly allocated texture. It reports false when p is
// already bound.
func (b *Binder) Rebind(p Producer) (bool, error) {
	if p == nil {
		return false, errors.New("nil producer")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.producer == p && b.textureID != 0 {
		return false, nil
	}

	if err := p.DetachFromContext(); err != nil {
		log.Debugf("%v", fmt.Errorf("%w: %w", ErrDetachFailed, err))
	}

	target := p.Target()
	id := b.gl.GenTexture()
	if id == 0 {
		return false, fmt.Errorf("glGenTextures returned 0 for target %#x", target)
	}
	b.gl.BindTexture(target, id)
	b.gl.TexParameteri(target, gles.TEXTURE_MIN_FILTER, gles.NEAREST)
	b.gl.TexParameteri(target, gles.TEXTURE_MAG_FILTER, gles.LINEAR)
	b.gl.TexParameteri(target, gles.TEXTURE_WRAP_S, gles.CLAMP_TO_EDGE)
	b.gl.TexParameteri(target, gles.TEXTURE_WRAP_T, gles.CLAMP_TO_EDGE)
	b.gl.BindTexture(target, 0)
	b.allocated = append(b.allocated, id)

	if err := p.AttachToContext(id); err != nil {
		return false, fmt.Errorf("attach texture %d: %w", id, err)
	}

	if b.producer != nil && b.producer != p {
		b.producer.SetOnFrameAvailable(nil)
	}
	p.SetOnFrameAvailable(b.onFrame)

	b.producer = p
	b.textureID = id
	return true, nil
}

// Latch pulls the newest frame into the bound texture and returns the
// texture id and its coordinate transform. It returns id 0 when nothing is
// bound.
func (b *Binder) Latch() (uint32, mgl32.Mat4, error) {
	b.mu.Lock()
	p, id := b.producer, b.textureID
	b.mu.Unlock()

	if p == nil || id == 0 {
		return 0, mgl32.Ident4(), nil
	}
	if err := p.UpdateTexImage(); err != nil {
		return id, mgl32.Ident4(), fmt.Errorf("update tex image: %w", err)
	}
	return id, p.TransformMatrix(), nil
}

// Reset forgets the current binding without touching GL. It is used when the
// owning context goes away.
func (b *Binder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.producer != nil {
		b.producer.SetOnFrameAvailable(nil)
		if err := b.producer.DetachFromContext(); err != nil {
			log.Debugf("%v", fmt.Errorf("%w: %w", ErrDetachFailed, err))
		}
	}
	b.producer = nil
	b.textureID = 0
}

func (b *Binder) TextureID() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.textureID
}

func (b *Binder) Producer() Producer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.producer
}

// Allocated returns every texture id handed out, oldest first.
func (b *Binder) Allocated() []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]uint32(nil), b.allocated...)
}
