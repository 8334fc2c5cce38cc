package previewer_test

import (
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matjam/camview/internal/eglcore"
	"github.com/matjam/camview/internal/gles"
	"github.com/matjam/camview/internal/glestest"
	"github.com/matjam/camview/internal/preview"
	"github.com/matjam/camview/internal/previewer"
	"github.com/matjam/camview/internal/render"
	"github.com/matjam/camview/internal/types"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type fakeRenderer struct {
	mu    sync.Mutex
	inits int
	sizes []types.Size
	draws int
}

func (r *fakeRenderer) OnContextCreated(eglcore.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inits++
	return nil
}

func (r *fakeRenderer) OnSizeChanged(w, h int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sizes = append(r.sizes, types.Size{Width: w, Height: h})
	return nil
}

func (r *fakeRenderer) DrawTexture(uint32, mgl32.Mat4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draws++
}

func (r *fakeRenderer) lastSize() types.Size {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sizes) == 0 {
		return types.Size{}
	}
	return r.sizes[len(r.sizes)-1]
}

func (r *fakeRenderer) initCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inits
}

type fakeProducer struct {
	mu       sync.Mutex
	listener func()
}

func (p *fakeProducer) Target() uint32 { return gles.TEXTURE_2D }

func (p *fakeProducer) AttachToContext(uint32) error { return nil }

func (p *fakeProducer) DetachFromContext() error { return nil }

func (p *fakeProducer) UpdateTexImage() error { return nil }

func (p *fakeProducer) TransformMatrix() mgl32.Mat4 { return mgl32.Ident4() }

func (p *fakeProducer) SetOnFrameAvailable(l func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listener = l
}

type event struct {
	kind     string
	size     types.Size
	renderer render.Renderer
}

type recordingWatcher struct {
	mu     sync.Mutex
	events []event
}

func (w *recordingWatcher) OnSizeChanged(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, event{kind: "size", size: types.Size{Width: width, Height: height}})
}

func (w *recordingWatcher) OnRenderChanged(r render.Renderer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, event{kind: "renderer", renderer: r})
}

func (w *recordingWatcher) snapshot() []event {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]event(nil), w.events...)
}

type contextWatcher struct {
	recordingWatcher
	created chan render.Renderer
}

func (w *contextWatcher) OnContextCreated(r render.Renderer) {
	w.created <- r
}

func newView(t *testing.T, opts ...previewer.Option) (*previewer.View, *glestest.Backend) {
	t.Helper()
	backend := glestest.NewBackend()
	v := previewer.New(glestest.NewFunctions(), backend, opts...)
	t.Cleanup(func() {
		if done := v.OnDestinationDestroyed(); done != nil {
			<-done
		}
	})
	return v, backend
}

func TestView_DefaultRenderer(t *testing.T) {
	v, _ := newView(t)
	_, ok := v.Renderer().(*preview.Renderer)
	assert.True(t, ok)
}

func TestView_SetWatcherReplaysState(t *testing.T) {
	assert := assert.New(t)
	r := &fakeRenderer{}
	v, _ := newView(t, previewer.WithRenderer(r))
	v.OnDestinationAvailable(eglcore.Surface{}, 320, 200)

	w := &recordingWatcher{}
	v.SetWatcher(w)

	events := w.snapshot()
	require.Len(t, events, 2)
	assert.Equal(event{kind: "size", size: types.Size{Width: 320, Height: 200}}, events[0])
	assert.Equal("renderer", events[1].kind)
	assert.Same(r, events[1].renderer)
}

func TestView_SetRendererNotifiesWatcher(t *testing.T) {
	assert := assert.New(t)
	v, _ := newView(t)
	w := &recordingWatcher{}
	v.SetWatcher(w)

	r := &fakeRenderer{}
	v.SetRenderer(r)
	v.SetRenderer(r)

	events := w.snapshot()
	require.Len(t, events, 4)
	assert.Same(r, events[2].renderer)
	assert.Same(r, events[3].renderer)
	assert.Same(r, v.Renderer())
}

func TestView_LaunchSequence(t *testing.T) {
	assert := assert.New(t)
	r := &fakeRenderer{}
	v, backend := newView(t, previewer.WithRenderer(r))
	p := &fakeProducer{}
	v.SetDataSource(p)

	w := &contextWatcher{created: make(chan render.Renderer, 1)}
	v.SetWatcher(w)

	v.OnDestinationAvailable(eglcore.Surface{Window: 0x10}, 1280, 720)
	assert.True(v.Running())

	select {
	case got := <-w.created:
		assert.Same(r, got)
	case <-time.After(waitFor):
		t.Fatal("context watcher not notified")
	}

	require.Eventually(t, func() bool { return v.Stats().Rebinds == 1 }, waitFor, tick)
	assert.True(v.RequestRender())
	require.Eventually(t, func() bool { return v.Stats().FramesDrawn == 1 }, waitFor, tick)

	assert.Equal(types.Size{Width: 1280, Height: 720}, r.lastSize())
	surfaces := backend.Surfaces()
	require.Len(t, surfaces, 1)
	assert.Equal(eglcore.Surface{Window: 0x10, Width: 1280, Height: 720}, surfaces[0])
}

func TestView_DuplicateLaunchIgnored(t *testing.T) {
	v, backend := newView(t, previewer.WithRenderer(&fakeRenderer{}))
	v.OnDestinationAvailable(eglcore.Surface{}, 100, 100)
	v.OnDestinationAvailable(eglcore.Surface{}, 200, 200)

	require.Eventually(t, func() bool { return v.Stats().ContextLive }, waitFor, tick)
	assert.Equal(t, 1, backend.Created())
	assert.Equal(t, types.Size{Width: 100, Height: 100}, v.Size())
}

func TestView_SameDataSourceIgnored(t *testing.T) {
	v, _ := newView(t, previewer.WithRenderer(&fakeRenderer{}))
	p := &fakeProducer{}
	v.SetDataSource(p)
	v.OnDestinationAvailable(eglcore.Surface{}, 100, 100)
	require.Eventually(t, func() bool { return v.Stats().Rebinds == 1 }, waitFor, tick)

	v.SetDataSource(p)
	v.SetDataSource(&fakeProducer{})
	require.Eventually(t, func() bool { return v.Stats().Rebinds == 2 }, waitFor, tick)
}

func TestView_SizeChanged(t *testing.T) {
	assert := assert.New(t)
	r := &fakeRenderer{}
	v, _ := newView(t, previewer.WithRenderer(r))
	w := &recordingWatcher{}
	v.SetWatcher(w)

	v.OnDestinationAvailable(eglcore.Surface{}, 100, 100)
	v.OnDestinationSizeChanged(300, 150)

	want := types.Size{Width: 300, Height: 150}
	require.Eventually(t, func() bool { return r.lastSize() == want }, waitFor, tick)
	assert.Equal(want, v.Size())

	events := w.snapshot()
	assert.Equal(event{kind: "size", size: want}, events[len(events)-1])
}

func TestView_DestroyReleasesContext(t *testing.T) {
	assert := assert.New(t)
	v, backend := newView(t, previewer.WithRenderer(&fakeRenderer{}))

	assert.Nil(v.OnDestinationDestroyed())

	v.OnDestinationAvailable(eglcore.Surface{}, 64, 64)
	require.Eventually(t, func() bool { return v.Stats().ContextLive }, waitFor, tick)

	done := v.OnDestinationDestroyed()
	require.NotNil(t, done)
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("scheduler did not exit")
	}
	assert.False(v.Running())
	assert.False(v.RequestRender())
	assert.Equal(1, backend.Destroyed())
	assert.Equal(0, backend.Live())
}

func TestView_RelaunchCreatesNewContext(t *testing.T) {
	r := &fakeRenderer{}
	v, backend := newView(t, previewer.WithRenderer(r))

	v.OnDestinationAvailable(eglcore.Surface{}, 64, 64)
	require.Eventually(t, func() bool { return r.initCount() == 1 }, waitFor, tick)
	<-v.OnDestinationDestroyed()

	v.OnDestinationAvailable(eglcore.Surface{}, 64, 64)
	require.Eventually(t, func() bool { return r.initCount() == 2 }, waitFor, tick)
	assert.Equal(t, 2, backend.Created())
}

func TestView_ErrorHandler(t *testing.T) {
	errs := make(chan error, 2)
	backend := glestest.NewBackend()
	backend.CreateErr = glestest.ErrInjected
	v := previewer.New(glestest.NewFunctions(), backend, previewer.WithErrorHandler(func(err error) {
		errs <- err
	}))
	t.Cleanup(func() {
		if done := v.OnDestinationDestroyed(); done != nil {
			<-done
		}
	})

	v.OnDestinationAvailable(eglcore.Surface{}, 64, 64)
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, eglcore.ErrContextCreation)
	case <-time.After(waitFor):
		t.Fatal("error handler not called")
	}
	assert.True(t, v.Stats().ContextFailed)
	assert.Len(t, errs, 0)
}
