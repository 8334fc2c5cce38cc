// Package scheduler runs the render goroutine. It owns the rendering context
// and processes lifecycle events strictly in the order they were posted.
package scheduler

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/matjam/camview/internal/eglcore"
	"github.com/matjam/camview/internal/gles"
	"github.com/matjam/camview/internal/render"
	"github.com/matjam/camview/internal/texture"
	"github.com/matjam/camview/internal/types"
)

var (
	ErrAlreadyStarted = errors.New("render scheduler already started")
	ErrStopped        = errors.New("render scheduler stopped")
)

type Event int

const (
	ContextCreate Event = iota
	RendererChanged
	SizeChanged
	TextureChanged
	DrawFrame

	release
)

func (e Event) String() string {
	switch e {
	case ContextCreate:
		return "context-create"
	case RendererChanged:
		return "renderer-changed"
	case SizeChanged:
		return "size-changed"
	case TextureChanged:
		return "texture-changed"
	case DrawFrame:
		return "draw-frame"
	case release:
		return "release"
	default:
		return "unknown"
	}
}

// Host is the destination the scheduler renders for. Every method is called
// from the render goroutine.
type Host interface {
	Surface() eglcore.Surface
	Size() types.Size
	Renderer() render.Renderer
	DataSource() texture.Producer
	ContextFailed(err error)         // Called once when the context cannot be created
	RendererReady(r render.Renderer) // Called after r was initialised on the context
}

type Config struct {
	// Host resolves the host for each event. It returns nil once the host is
	// gone, which turns every handler into a no-op.
	Host func() Host

	Core *eglcore.Core
	GL   gles.Functions

	// CoalesceDraws drops a DrawFrame post while another is still queued.
	CoalesceDraws bool
}

// Stats is a snapshot of the scheduler's counters.
type Stats struct {
	FramesDrawn     uint64 `json:"frames_drawn"`
	FramesSkipped   uint64 `json:"frames_skipped"`
	FramesCoalesced uint64 `json:"frames_coalesced"`
	Rebinds         uint64 `json:"rebinds"`
	TextureID       uint32 `json:"texture_id"`
	ContextLive     bool   `json:"context_live"`
	ContextFailed   bool   `json:"context_failed"`
}

type Scheduler struct {
	cfg    Config
	log    *log.Logger
	queue  *queue
	binder *texture.Binder

	mu       sync.Mutex
	started  bool
	stopping bool
	done     chan struct{}

	// Owned by the render goroutine.
	renderer      render.Renderer
	rendererBound bool
	sizeKnown     bool
	textureBound  bool
	size          types.Size
	failed        bool

	drawn     atomic.Uint64
	skipped   atomic.Uint64
	coalesced atomic.Uint64
	rebinds   atomic.Uint64
	textureID atomic.Uint32
	live      atomic.Bool
	dead      atomic.Bool
}

func New(cfg Config) *Scheduler {
	s := &Scheduler{
		cfg:   cfg,
		log:   log.WithPrefix("render"),
		queue: newQueue(),
		done:  make(chan struct{}),
	}
	s.binder = texture.NewBinder(cfg.GL, func() {
		s.Post(DrawFrame)
	})
	return s
}

// Start launches the render goroutine and queues context creation ahead of
// anything already posted.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	if s.stopping {
		return ErrStopped
	}
	s.started = true
	s.queue.pushFront(ContextCreate)
	go s.run()
	return nil
}

// Post queues an event without blocking. It returns false once the scheduler
// is stopping.
func (s *Scheduler) Post(ev Event) bool {
	if ev == release {
		return false
	}

	s.mu.Lock()
	stopping := s.stopping
	s.mu.Unlock()
	if stopping {
		return false
	}

	if ev == DrawFrame && s.cfg.CoalesceDraws {
		if !s.queue.pushUnique(ev) {
			s.coalesced.Add(1)
		}
		return true
	}
	s.queue.push(ev)
	return true
}

// Stop discards queued context, size, texture and draw events, then queues
// the release step. It does not wait for the goroutine to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopping {
		return
	}
	s.stopping = true

	if !s.started {
		close(s.done)
		return
	}

	n := s.queue.remove(func(ev Event) bool {
		switch ev {
		case ContextCreate, SizeChanged, TextureChanged, DrawFrame:
			return true
		}
		return false
	})
	if n > 0 {
		s.log.Debugf("discarded %d pending events", n)
	}
	s.queue.push(release)
}

// Done is closed once the render goroutine has released the context and
// exited.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

func (s *Scheduler) Wait() {
	<-s.done
}

func (s *Scheduler) Stats() Stats {
	return Stats{
		FramesDrawn:     s.drawn.Load(),
		FramesSkipped:   s.skipped.Load(),
		FramesCoalesced: s.coalesced.Load(),
		Rebinds:         s.rebinds.Load(),
		TextureID:       s.textureID.Load(),
		ContextLive:     s.live.Load(),
		ContextFailed:   s.dead.Load(),
	}
}

// Allocated returns every external texture id handed out so far.
func (s *Scheduler) Allocated() []uint32 {
	return s.binder.Allocated()
}

func (s *Scheduler) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(s.done)

	for {
		ev := s.queue.pop()
		if ev == release {
			s.handleRelease()
			return
		}
		s.dispatch(ev)
	}
}

func (s *Scheduler) host() Host {
	if s.cfg.Host == nil {
		return nil
	}
	return s.cfg.Host()
}

func (s *Scheduler) dispatch(ev Event) {
	h := s.host()
	if h == nil {
		if ev == DrawFrame {
			s.skipped.Add(1)
		}
		return
	}

	switch ev {
	case ContextCreate:
		s.handleContextCreate(h)
	case RendererChanged:
		s.handleRendererChanged(h)
	case SizeChanged:
		s.handleSizeChanged(h)
	case TextureChanged:
		s.handleTextureChanged(h)
	case DrawFrame:
		s.handleDrawFrame()
	}
}

func (s *Scheduler) handleContextCreate(h Host) {
	if s.failed || s.cfg.Core.Initialized() {
		return
	}

	surface := h.Surface()
	err := s.cfg.Core.Initialize(surface, nil)
	if err == nil {
		if err = s.cfg.Core.MakeCurrent(); err == nil {
			err = s.cfg.GL.Init()
		}
		if err != nil {
			if rerr := s.cfg.Core.Release(); rerr != nil {
				s.log.Debugf("release after failed setup: %v", rerr)
			}
			err = &eglcore.CreationError{Surface: surface, Err: err}
		}
	}
	if err != nil {
		s.failed = true
		s.dead.Store(true)
		s.log.Errorf("context creation failed: %v", err)
		h.ContextFailed(err)
		return
	}

	s.live.Store(true)
	s.log.Debugf("context created for %dx%d surface", surface.Width, surface.Height)
}

func (s *Scheduler) handleRendererChanged(h Host) {
	if !s.cfg.Core.Initialized() {
		return
	}

	r := h.Renderer()
	if r == nil {
		s.unbindRenderer()
		return
	}
	if r == s.renderer && s.rendererBound {
		return
	}
	s.unbindRenderer()

	if err := r.OnContextCreated(s.cfg.Core.Context()); err != nil {
		s.log.Errorf("renderer init failed: %v", err)
		return
	}
	s.renderer = r
	s.rendererBound = true

	if s.sizeKnown {
		if err := r.OnSizeChanged(s.size.Width, s.size.Height); err != nil {
			s.log.Errorf("renderer resize to %s failed: %v", s.size, err)
		}
	}
	h.RendererReady(r)
}

func (s *Scheduler) unbindRenderer() {
	if s.renderer == nil {
		return
	}
	if rel, ok := s.renderer.(render.Releaser); ok {
		rel.Release()
	}
	s.renderer = nil
	s.rendererBound = false
}

func (s *Scheduler) handleSizeChanged(h Host) {
	size := h.Size()
	if !size.Valid() {
		return
	}
	s.size = size
	s.sizeKnown = true

	if !s.cfg.Core.Initialized() || !s.rendererBound {
		return
	}
	if err := s.renderer.OnSizeChanged(size.Width, size.Height); err != nil {
		s.log.Errorf("renderer resize to %s failed: %v", size, err)
	}
}

func (s *Scheduler) handleTextureChanged(h Host) {
	if !s.cfg.Core.Initialized() {
		return
	}
	p := h.DataSource()
	if p == nil {
		return
	}

	changed, err := s.binder.Rebind(p)
	if err != nil {
		s.log.Errorf("texture rebind failed: %v", err)
	}
	s.textureBound = s.binder.TextureID() != 0
	if changed {
		s.rebinds.Add(1)
		s.textureID.Store(s.binder.TextureID())
		s.log.Debugf("external texture %d bound", s.binder.TextureID())
	}
}

func (s *Scheduler) handleDrawFrame() {
	if !s.cfg.Core.Initialized() || !s.rendererBound || !s.sizeKnown || !s.textureBound {
		s.skipped.Add(1)
		return
	}

	id, texMatrix, err := s.binder.Latch()
	if err != nil {
		s.log.Debugf("latch frame: %v", err)
		s.skipped.Add(1)
		return
	}

	s.renderer.DrawTexture(id, texMatrix)
	if err := s.cfg.Core.SwapBuffers(); err != nil {
		s.log.Errorf("%v", err)
		return
	}
	s.drawn.Add(1)
}

func (s *Scheduler) handleRelease() {
	if s.cfg.Core.Initialized() {
		s.unbindRenderer()
	}
	s.binder.Reset()
	s.rendererBound = false
	s.textureBound = false

	if err := s.cfg.Core.Release(); err != nil {
		s.log.Errorf("release context: %v", err)
	}
	s.live.Store(false)
	s.textureID.Store(0)
	s.log.Debug("render goroutine exiting")
}
