// Package source provides texture producers that upload CPU-side frames into
// the texture the render goroutine attaches them to.
package source

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/matjam/camview/internal/gles"
	"github.com/matjam/camview/internal/texture"
	"github.com/matjam/camview/internal/types"
)

var (
	ErrAlreadyAttached = errors.New("producer already attached to a texture")
	ErrNotAttached     = errors.New("producer not attached to a texture")
)

// Source is a producer the host can drive.
type Source interface {
	texture.Producer
	Run(ctx context.Context) error // Produce frames until ctx is done
	Next() error                   // Advance to the next frame set
	Name() string                  // Human readable description
	FrameSize() types.Size         // Size of the most recently published frame
	SetOnFrameSize(func(types.Size))
}

// stream holds at most one pending frame. Publishing a frame before the
// previous one was latched replaces it. Attaching to a new texture queues the
// last frame again so the new texture is not left empty.
type stream struct {
	gl gles.Functions

	mu        sync.Mutex
	textureID uint32
	listener  func()
	onSize    func(types.Size)
	pending   *image.NRGBA
	last      *image.NRGBA
	replay    bool
	frameSize types.Size
	published uint64
	dropped   uint64
}

func (s *stream) Target() uint32 {
	return gles.TEXTURE_2D
}

func (s *stream) AttachToContext(textureID uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.textureID != 0 {
		return ErrAlreadyAttached
	}
	s.textureID = textureID
	if s.pending == nil && s.last != nil {
		s.pending, s.replay = s.last, true
	}
	return nil
}

func (s *stream) DetachFromContext() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.textureID == 0 {
		return ErrNotAttached
	}
	s.textureID = 0
	return nil
}

// SetOnFrameAvailable installs listener. A listener installed while a frame
// is pending is notified at once.
func (s *stream) SetOnFrameAvailable(listener func()) {
	s.mu.Lock()
	s.listener = listener
	pending := s.pending != nil
	s.mu.Unlock()

	if listener != nil && pending {
		listener()
	}
}

// UpdateTexImage uploads the pending frame, if any, into the attached
// texture. Without a new frame the texture keeps its contents.
func (s *stream) UpdateTexImage() error {
	s.mu.Lock()
	id, frame := s.textureID, s.pending
	if id == 0 {
		s.mu.Unlock()
		return ErrNotAttached
	}
	s.pending, s.replay = nil, false
	s.mu.Unlock()

	if frame == nil {
		return nil
	}

	b := frame.Bounds()
	s.gl.BindTexture(gles.TEXTURE_2D, id)
	s.gl.TexImage2D(gles.TEXTURE_2D, int32(b.Dx()), int32(b.Dy()), gles.RGBA, frame.Pix)
	s.gl.BindTexture(gles.TEXTURE_2D, 0)
	return nil
}

// Frames are uploaded in GL row order, so no texture coordinate transform is
// needed.
func (s *stream) TransformMatrix() mgl32.Mat4 {
	return mgl32.Ident4()
}

// SetOnFrameSize installs fn, which is called whenever a published frame has
// a different size than the one before it, ahead of the frame listener. A
// size already known is reported at once.
func (s *stream) SetOnFrameSize(fn func(types.Size)) {
	s.mu.Lock()
	s.onSize = fn
	size := s.frameSize
	s.mu.Unlock()

	if fn != nil && size.Valid() {
		fn(size)
	}
}

func (s *stream) FrameSize() types.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameSize
}

// Counters reports how many frames were published and how many were replaced
// before being latched.
func (s *stream) Counters() (published, dropped uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.published, s.dropped
}

// publish queues frame and notifies the listeners outside the lock. A size
// change is reported before the frame becomes available.
func (s *stream) publish(frame *image.NRGBA) {
	b := frame.Bounds()
	size := types.Size{Width: b.Dx(), Height: b.Dy()}

	s.mu.Lock()
	resized := size != s.frameSize
	s.frameSize = size
	onSize := s.onSize
	s.mu.Unlock()

	if resized && onSize != nil {
		onSize(size)
	}

	s.mu.Lock()
	if s.pending != nil && !s.replay {
		s.dropped++
	}
	s.pending, s.last, s.replay = frame, frame, false
	s.published++
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener()
	}
}
