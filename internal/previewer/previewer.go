// Package previewer is the host-facing side of the preview pipeline. A View
// owns the renderer and data source, and starts a render scheduler for each
// destination surface the host makes available.
package previewer

import (
	"sync"
	"weak"

	"github.com/charmbracelet/log"
	"github.com/matjam/camview/internal/eglcore"
	"github.com/matjam/camview/internal/gles"
	"github.com/matjam/camview/internal/preview"
	"github.com/matjam/camview/internal/render"
	"github.com/matjam/camview/internal/scheduler"
	"github.com/matjam/camview/internal/texture"
	"github.com/matjam/camview/internal/types"
)

// Watcher is told about size and renderer changes. Calls arrive on the
// goroutine that caused the change.
type Watcher interface {
	OnSizeChanged(width, height int)
	OnRenderChanged(r render.Renderer)
}

// ContextWatcher is an optional extension of Watcher. OnContextCreated is
// called from the render goroutine once r is ready on a new context, after
// any known size has been applied.
type ContextWatcher interface {
	OnContextCreated(r render.Renderer)
}

type Option func(*View)

// WithErrorHandler receives the context creation error. It is called at most
// once per destination surface, from the render goroutine.
func WithErrorHandler(fn func(error)) Option {
	return func(v *View) {
		v.onError = fn
	}
}

func WithCoalesceDraws(enabled bool) Option {
	return func(v *View) {
		v.coalesce = enabled
	}
}

// WithRenderer replaces the default preview renderer.
func WithRenderer(r render.Renderer) Option {
	return func(v *View) {
		v.renderer = r
	}
}

type View struct {
	gl       gles.Functions
	backend  eglcore.Backend
	coalesce bool
	onError  func(error)

	mu         sync.Mutex
	renderer   render.Renderer
	source     texture.Producer
	watcher    Watcher
	surface    eglcore.Surface
	size       types.Size
	sched      *scheduler.Scheduler
	generation uint64
}

// New returns a view with a default preview.Renderer installed.
func New(gl gles.Functions, backend eglcore.Backend, opts ...Option) *View {
	v := &View{
		gl:      gl,
		backend: backend,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.renderer == nil {
		v.renderer = preview.NewRenderer(gl)
	}
	return v
}

// SetRenderer installs r. The watcher is always notified, the render
// goroutine only when r differs from the current renderer.
func (v *View) SetRenderer(r render.Renderer) {
	v.mu.Lock()
	changed := v.renderer != r
	v.renderer = r
	sched, watcher := v.sched, v.watcher
	v.mu.Unlock()

	if changed && sched != nil {
		sched.Post(scheduler.RendererChanged)
	}
	if watcher != nil {
		watcher.OnRenderChanged(r)
	}
}

// SetDataSource replaces the producer feeding the preview.
func (v *View) SetDataSource(p texture.Producer) {
	v.mu.Lock()
	if v.source == p {
		v.mu.Unlock()
		log.Info("data source not changed")
		return
	}
	v.source = p
	sched := v.sched
	v.mu.Unlock()

	if sched != nil {
		sched.Post(scheduler.TextureChanged)
	}
}

// SetWatcher registers w, replacing any previous watcher, and immediately
// replays the current size and renderer to it.
func (v *View) SetWatcher(w Watcher) {
	v.mu.Lock()
	v.watcher = w
	size, r := v.size, v.renderer
	v.mu.Unlock()

	if w != nil {
		w.OnSizeChanged(size.Width, size.Height)
		w.OnRenderChanged(r)
	}
}

// OnDestinationAvailable starts a render scheduler for surface. A second
// call while one is running is ignored.
func (v *View) OnDestinationAvailable(surface eglcore.Surface, width, height int) {
	v.mu.Lock()
	if v.sched != nil {
		v.mu.Unlock()
		log.Error("renderer thread already launched")
		return
	}

	surface.Width, surface.Height = width, height
	v.surface = surface
	v.size = types.Size{Width: width, Height: height}
	v.generation++
	sched := scheduler.New(scheduler.Config{
		Host:          v.hostRef(v.generation),
		Core:          eglcore.New(v.backend),
		GL:            v.gl,
		CoalesceDraws: v.coalesce,
	})
	v.sched = sched
	hasRenderer, hasSource := v.renderer != nil, v.source != nil
	watcher := v.watcher
	v.mu.Unlock()

	// The watcher learns the size before the first draw can happen.
	if watcher != nil {
		watcher.OnSizeChanged(width, height)
	}

	if err := sched.Start(); err != nil {
		log.Errorf("start render scheduler: %v", err)
		return
	}
	if hasRenderer {
		sched.Post(scheduler.RendererChanged)
	}
	sched.Post(scheduler.SizeChanged)
	if hasSource {
		sched.Post(scheduler.TextureChanged)
	}
}

func (v *View) OnDestinationSizeChanged(width, height int) {
	v.mu.Lock()
	v.size = types.Size{Width: width, Height: height}
	v.surface.Width, v.surface.Height = width, height
	sched, watcher := v.sched, v.watcher
	v.mu.Unlock()

	if watcher != nil {
		watcher.OnSizeChanged(width, height)
	}
	if sched != nil {
		sched.Post(scheduler.SizeChanged)
	}
}

// OnDestinationDestroyed stops the scheduler without waiting for it. The
// returned channel is closed once the context has been released, or is nil
// when nothing was running.
func (v *View) OnDestinationDestroyed() <-chan struct{} {
	v.mu.Lock()
	sched := v.sched
	v.sched = nil
	v.mu.Unlock()

	if sched == nil {
		return nil
	}
	sched.Stop()
	return sched.Done()
}

// RequestRender asks for a frame to be drawn from the current texture.
func (v *View) RequestRender() bool {
	v.mu.Lock()
	sched := v.sched
	v.mu.Unlock()
	if sched == nil {
		return false
	}
	return sched.Post(scheduler.DrawFrame)
}

func (v *View) Renderer() render.Renderer {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.renderer
}

func (v *View) DataSource() texture.Producer {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.source
}

func (v *View) Size() types.Size {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.size
}

func (v *View) Surface() eglcore.Surface {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.surface
}

// Running reports whether a render scheduler is attached.
func (v *View) Running() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sched != nil
}

// Stats returns the attached scheduler's counters, or zero values.
func (v *View) Stats() scheduler.Stats {
	v.mu.Lock()
	sched := v.sched
	v.mu.Unlock()
	if sched == nil {
		return scheduler.Stats{}
	}
	return sched.Stats()
}

// hostRef resolves the view for a scheduler started at generation gen. The
// scheduler only holds a weak reference, and it stops seeing the view once
// the view has moved on to another surface.
func (v *View) hostRef(gen uint64) func() scheduler.Host {
	wp := weak.Make(v)
	return func() scheduler.Host {
		view := wp.Value()
		if view == nil {
			return nil
		}
		view.mu.Lock()
		current := view.generation == gen && view.sched != nil
		view.mu.Unlock()
		if !current {
			return nil
		}
		return viewHost{view}
	}
}

// viewHost adds the scheduler callbacks that are not part of the public View
// API.
type viewHost struct {
	*View
}

func (h viewHost) ContextFailed(err error) {
	h.mu.Lock()
	onError := h.onError
	h.mu.Unlock()
	if onError != nil {
		onError(err)
	}
}

func (h viewHost) RendererReady(r render.Renderer) {
	h.mu.Lock()
	watcher := h.watcher
	h.mu.Unlock()
	if cw, ok := watcher.(ContextWatcher); ok {
		cw.OnContextCreated(r)
	}
}
