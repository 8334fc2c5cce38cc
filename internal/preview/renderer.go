// Package preview is the default two-pass renderer: the producer's texture is
// drawn cropped and rotated into an offscreen framebuffer, and that
// framebuffer's texture is then copied to the destination surface.
package preview

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/matjam/camview/internal/eglcore"
	"github.com/matjam/camview/internal/gles"
	"github.com/matjam/camview/internal/matrix"
	"github.com/matjam/camview/internal/render"
)

var (
	_ render.Renderer = (*Renderer)(nil)
	_ render.Releaser = (*Renderer)(nil)
)

type Option func(*Renderer)

// WithTextureTarget selects the sampler used for the producer's texture. The
// default is TEXTURE_EXTERNAL_OES.
func WithTextureTarget(target uint32) Option {
	return func(r *Renderer) {
		r.textureTarget = target
	}
}

// Renderer embeds the matrix composer so the host can configure crop and
// rotation directly on it.
type Renderer struct {
	*matrix.Composer

	gl            gles.Functions
	textureTarget uint32
	offscreen     *OffscreenPass
	display       *DisplayPass

	mu        sync.Mutex
	ctx       eglcore.Handle
	previewID atomic.Uint32
}

func NewRenderer(gl gles.Functions, opts ...Option) *Renderer {
	r := &Renderer{
		Composer:      matrix.NewComposer(),
		gl:            gl,
		textureTarget: gles.TEXTURE_EXTERNAL_OES,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.offscreen = NewOffscreenPass(gl, r.textureTarget)
	r.display = NewDisplayPass(gl)
	return r
}

// OnContextCreated resets the transform and builds both passes.
func (r *Renderer) OnContextCreated(ctx eglcore.Handle) error {
	r.mu.Lock()
	r.ctx = ctx
	r.mu.Unlock()
	r.previewID.Store(0)

	r.ResetMatrix()

	if err := r.offscreen.OnContextCreated(); err != nil {
		return fmt.Errorf("offscreen pass: %w", err)
	}
	if err := r.display.OnContextCreated(); err != nil {
		return fmt.Errorf("display pass: %w", err)
	}
	return nil
}

func (r *Renderer) OnSizeChanged(width, height int) error {
	if err := r.offscreen.OnSizeChanged(width, height); err != nil {
		return err
	}
	r.display.OnSizeChanged(width, height)
	r.previewID.Store(r.offscreen.FramebufferTextureID())
	return nil
}

// DrawTexture runs the offscreen pass with the composed vertex matrix and
// then the display pass.
func (r *Renderer) DrawTexture(textureID uint32, textureMatrix mgl32.Mat4) {
	r.offscreen.Draw(textureID, textureMatrix, r.Final())
	r.display.Draw(r.offscreen.FramebufferTextureID())
}

// Release deletes the GL objects owned by both passes. It must run with the
// context current.
func (r *Renderer) Release() {
	r.offscreen.Release()
	r.display.Release()
	r.previewID.Store(0)

	r.mu.Lock()
	r.ctx = nil
	r.mu.Unlock()
	log.Debug("preview renderer released")
}

// PreviewTextureID is the offscreen framebuffer's color texture, usable by
// any context sharing objects with Context. It is 0 until the first size.
func (r *Renderer) PreviewTextureID() uint32 {
	return r.previewID.Load()
}

// Context is the render context the renderer was last initialised on.
func (r *Renderer) Context() eglcore.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctx
}

func (r *Renderer) TextureTarget() uint32 {
	return r.textureTarget
}
