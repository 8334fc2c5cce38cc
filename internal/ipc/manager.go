package ipc

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matjam/camview/internal/eglcore"
	"github.com/matjam/camview/internal/gles"
	"github.com/matjam/camview/internal/preview"
	"github.com/matjam/camview/internal/previewer"
	"github.com/matjam/camview/internal/render"
	"github.com/matjam/camview/internal/source"
	"github.com/matjam/camview/internal/types"
)

const pollInterval = 50 * time.Millisecond

// Display is the destination surface the preview is drawn to.
type Display interface {
	Surface() eglcore.Surface
	Size() types.Size
	Poll() []types.DisplayEvent // Pending resize and close events, never blocks
	Close()
}

// transformer is implemented by renderers that accept a crop and rotation.
type transformer interface {
	Configure(isLandscape bool, surface, texture types.Size, degrees int) error
}

type ManagerConfig struct {
	GL            gles.Functions
	Backend       eglcore.Backend
	Display       Display
	DisplayMode   types.DisplayMode
	Source        string
	SourceOptions source.Options
	Orientation   types.Orientation
	Rotation      int
	CoalesceDraws bool
}

// Manager owns the preview view and runs the host side of the pipeline:
// the destination surface, the frame source and the control commands.
type Manager struct {
	sync.Mutex
	cfg        ManagerConfig
	view       *previewer.View
	cmds       chan Command
	source     source.Source
	sourceName string
	stopSource context.CancelFunc
	sources    sync.WaitGroup
	rotation   int
	surface    types.Size
	frame      types.Size
}

var (
	_ previewer.Watcher        = (*Manager)(nil)
	_ previewer.ContextWatcher = (*Manager)(nil)
)

func NewManager(cfg ManagerConfig) *Manager {
	m := &Manager{
		cfg:      cfg,
		cmds:     make(chan Command, 8),
		rotation: cfg.Rotation,
	}
	m.view = previewer.New(cfg.GL, cfg.Backend,
		previewer.WithRenderer(preview.NewRenderer(cfg.GL, preview.WithTextureTarget(gles.TEXTURE_2D))),
		previewer.WithCoalesceDraws(cfg.CoalesceDraws),
		previewer.WithErrorHandler(func(err error) {
			log.Errorf("Preview context failed: %v", err)
			m.EnqueueCommand(Command{Type: CommandStop})
		}),
	)
	return m
}

func (m *Manager) View() *previewer.View {
	return m.view
}

// Run will block until ctx is done, a stop command arrives or the display
// goes away.
func (m *Manager) Run(ctx context.Context) error {
	log.Info("Starting preview manager...")

	m.view.SetWatcher(m)
	if err := m.SwitchSource(ctx, m.cfg.Source); err != nil {
		m.cfg.Display.Close()
		return err
	}

	size := m.cfg.Display.Size()
	m.view.OnDestinationAvailable(m.cfg.Display.Surface(), size.Width, size.Height)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	running := true
	for running {
		select {
		case <-ctx.Done():
			running = false
		case cmd := <-m.cmds:
			running = m.handleCommand(ctx, cmd)
		case <-ticker.C:
			running = m.pollDisplay()
		}
	}

	m.shutdown()
	log.Info("Preview manager stopped.")
	return nil
}

func (m *Manager) handleCommand(ctx context.Context, cmd Command) bool {
	switch cmd.Type {
	case CommandStop:
		log.Info("Stopping preview manager ...")
		return false
	case CommandNext:
		log.Info("Received next command")
		if err := m.currentSource().Next(); err != nil {
			log.Errorf("Failed to advance source: %v", err)
		}
	case CommandRotate:
		if len(cmd.Args) == 0 {
			log.Error("No angle specified for rotate command")
			return true
		}
		degrees, err := strconv.Atoi(cmd.Args[0])
		if err != nil {
			log.Errorf("Invalid rotation %q: %v", cmd.Args[0], err)
			return true
		}
		log.Infof("Rotating preview to %d degrees", degrees)
		m.Lock()
		m.rotation = degrees
		m.Unlock()
		m.applyTransform(m.view.Renderer())
	case CommandSource:
		if len(cmd.Args) == 0 {
			log.Error("No source specified for source command")
			return true
		}
		if err := m.SwitchSource(ctx, cmd.Args[0]); err != nil {
			log.Errorf("Failed to switch source: %v", err)
		}
	default:
		log.Error("Unknown command:", cmd.Type)
	}
	return true
}

// SwitchSource opens name and makes it the view's data source. The previous
// source keeps producing until the new one is installed.
func (m *Manager) SwitchSource(ctx context.Context, name string) error {
	src, err := source.Open(m.cfg.GL, name, m.cfg.SourceOptions)
	if err != nil {
		return fmt.Errorf("opening source %q: %w", name, err)
	}
	log.Infof("Using source %s", src.Name())

	srcCtx, cancel := context.WithCancel(ctx)
	m.Lock()
	stopPrevious := m.stopSource
	m.source, m.sourceName, m.stopSource = src, name, cancel
	m.frame = types.Size{}
	m.Unlock()

	src.SetOnFrameSize(func(size types.Size) { m.onFrameSize(src, size) })
	m.view.SetDataSource(src)

	m.sources.Add(1)
	go func() {
		defer m.sources.Done()
		if err := src.Run(srcCtx); err != nil {
			log.Errorf("Source %s stopped: %v", src.Name(), err)
		}
	}()

	if stopPrevious != nil {
		stopPrevious()
	}
	return nil
}

func (m *Manager) currentSource() source.Source {
	m.Lock()
	defer m.Unlock()
	return m.source
}

func (m *Manager) pollDisplay() bool {
	for _, ev := range m.cfg.Display.Poll() {
		switch ev.Kind {
		case types.DisplayResized:
			log.Debugf("Display resized to %s", ev.Size)
			m.view.OnDestinationSizeChanged(ev.Size.Width, ev.Size.Height)
		case types.DisplayClosed:
			log.Info("Display closed")
			return false
		}
	}
	return true
}

// onFrameSize reapplies the transform when src starts producing frames of a
// new size. It runs on the source goroutine before the frame is available, so
// the frame is never drawn with a stale crop.
func (m *Manager) onFrameSize(src source.Source, size types.Size) {
	m.Lock()
	if m.source != src {
		m.Unlock()
		return
	}
	m.frame = size
	m.Unlock()

	log.Debugf("Source frame size is %s", size)
	m.applyTransform(m.view.Renderer())
}

func (m *Manager) applyTransform(r render.Renderer) {
	t, ok := r.(transformer)
	if !ok {
		return
	}

	m.Lock()
	surface, frame, degrees := m.surface, m.frame, m.rotation
	m.Unlock()

	if !surface.Valid() || !frame.Valid() {
		log.Debugf("Transform deferred: surface %s, frame %s", surface, frame)
		return
	}
	if err := t.Configure(m.cfg.Orientation.IsLandscape(), surface, frame, degrees); err != nil {
		log.Errorf("Failed to configure preview transform: %v", err)
	}
}

func (m *Manager) shutdown() {
	m.Lock()
	stop := m.stopSource
	m.stopSource = nil
	m.Unlock()
	if stop != nil {
		stop()
	}
	m.sources.Wait()

	if done := m.view.OnDestinationDestroyed(); done != nil {
		<-done
	}
	m.cfg.Display.Close()
}

// OnSizeChanged records the surface size and refreshes the transform.
func (m *Manager) OnSizeChanged(width, height int) {
	m.Lock()
	m.surface = types.Size{Width: width, Height: height}
	m.Unlock()
	m.applyTransform(m.view.Renderer())
}

func (m *Manager) OnRenderChanged(r render.Renderer) {
	m.applyTransform(r)
}

// OnContextCreated runs on the render goroutine after r was reset on a new
// context.
func (m *Manager) OnContextCreated(r render.Renderer) {
	log.Debug("Preview context created")
	m.applyTransform(r)
}

func (m *Manager) Status() PreviewStatus {
	m.Lock()
	st := PreviewStatus{
		Source:      m.sourceName,
		Display:     string(m.cfg.DisplayMode),
		Orientation: string(m.cfg.Orientation),
		Rotation:    m.rotation,
		Surface:     m.surface,
		Frame:       m.frame,
	}
	src := m.source
	m.Unlock()

	if show, ok := src.(*source.Slideshow); ok {
		st.Current = show.Current()
	}
	if r, ok := m.view.Renderer().(*preview.Renderer); ok {
		st.PreviewTexture = r.PreviewTextureID()
	}
	st.Scheduler = m.view.Stats()
	return st
}

// EnqueueCommand queues cmd for the manager loop. It never blocks, so it is
// safe to call from the render goroutine.
func (m *Manager) EnqueueCommand(cmd Command) {
	select {
	case m.cmds <- cmd:
	default:
		log.Warnf("Command queue full, dropping %s", cmd.Type)
	}
}
