// Package eglnative implements eglcore.Backend with EGL and an OpenGL ES 2
// context. Window surfaces are used for X11 windows and pbuffers otherwise.
package eglnative

/*
#cgo LDFLAGS: -lEGL
#include <EGL/egl.h>
#include <stdint.h>
#include <stdlib.h>

static EGLDisplay camview_get_display(void *native) {
    if (native == NULL) {
        return eglGetDisplay(EGL_DEFAULT_DISPLAY);
    }
    return eglGetDisplay((EGLNativeDisplayType)native);
}

static EGLSurface camview_window_surface(EGLDisplay dpy, EGLConfig cfg, uintptr_t win) {
    return eglCreateWindowSurface(dpy, cfg, (EGLNativeWindowType)win, NULL);
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/charmbracelet/log"
	"github.com/matjam/camview/internal/eglcore"
)

type binding struct {
	display C.EGLDisplay
	config  C.EGLConfig
	surface C.EGLSurface
	context C.EGLContext
}

// Backend tracks the display and surface behind every context it creates.
type Backend struct {
	mu       sync.Mutex
	bindings map[eglcore.Handle]*binding
	displays map[C.EGLDisplay]int
}

var _ eglcore.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{
		bindings: make(map[eglcore.Handle]*binding),
		displays: make(map[C.EGLDisplay]int),
	}
}

func eglError(op string) error {
	return fmt.Errorf("%s failed: EGL error %#x", op, int(C.eglGetError()))
}

func (b *Backend) CreateContext(surface eglcore.Surface, shared eglcore.Handle) (eglcore.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	dpy := C.camview_get_display(surface.Display)
	if dpy == 0 {
		return nil, fmt.Errorf("no EGL display")
	}
	if C.eglInitialize(dpy, nil, nil) == C.EGL_FALSE {
		return nil, eglError("eglInitialize")
	}
	b.displays[dpy]++
	ok := false
	defer func() {
		if !ok {
			b.releaseDisplay(dpy)
		}
	}()

	if C.eglBindAPI(C.EGL_OPENGL_ES_API) == C.EGL_FALSE {
		return nil, eglError("eglBindAPI")
	}

	surfaceType := C.EGLint(C.EGL_WINDOW_BIT)
	if surface.Headless() {
		surfaceType = C.EGL_PBUFFER_BIT
	}
	attribs := []C.EGLint{
		C.EGL_SURFACE_TYPE, surfaceType,
		C.EGL_RED_SIZE, 8,
		C.EGL_GREEN_SIZE, 8,
		C.EGL_BLUE_SIZE, 8,
		C.EGL_ALPHA_SIZE, 8,
		C.EGL_RENDERABLE_TYPE, C.EGL_OPENGL_ES2_BIT,
		C.EGL_NONE,
	}
	var config C.EGLConfig
	var numConfigs C.EGLint
	if C.eglChooseConfig(dpy, &attribs[0], &config, 1, &numConfigs) == C.EGL_FALSE || numConfigs == 0 {
		return nil, eglError("eglChooseConfig")
	}

	var eglSurface C.EGLSurface
	if surface.Headless() {
		pbufAttribs := []C.EGLint{
			C.EGL_WIDTH, C.EGLint(max(surface.Width, 1)),
			C.EGL_HEIGHT, C.EGLint(max(surface.Height, 1)),
			C.EGL_NONE,
		}
		eglSurface = C.eglCreatePbufferSurface(dpy, config, &pbufAttribs[0])
		if eglSurface == nil {
			return nil, eglError("eglCreatePbufferSurface")
		}
	} else {
		eglSurface = C.camview_window_surface(dpy, config, C.uintptr_t(surface.Window))
		if eglSurface == nil {
			return nil, eglError("eglCreateWindowSurface")
		}
	}

	var sharedCtx C.EGLContext
	if shared != nil {
		if sb, found := b.bindings[shared]; found {
			sharedCtx = sb.context
		}
	}
	ctxAttribs := []C.EGLint{
		C.EGL_CONTEXT_CLIENT_VERSION, 2,
		C.EGL_NONE,
	}
	ctx := C.eglCreateContext(dpy, config, sharedCtx, &ctxAttribs[0])
	if ctx == nil {
		C.eglDestroySurface(dpy, eglSurface)
		return nil, eglError("eglCreateContext")
	}

	handle := eglcore.Handle(unsafe.Pointer(ctx))
	b.bindings[handle] = &binding{
		display: dpy,
		config:  config,
		surface: eglSurface,
		context: ctx,
	}
	ok = true
	log.Debugf("EGL context %p created (headless=%v)", unsafe.Pointer(ctx), surface.Headless())
	return handle, nil
}

func (b *Backend) lookup(ctx eglcore.Handle) (*binding, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bd, ok := b.bindings[ctx]
	if !ok {
		return nil, fmt.Errorf("unknown context %p", unsafe.Pointer(ctx))
	}
	return bd, nil
}

func (b *Backend) MakeCurrent(ctx eglcore.Handle) error {
	bd, err := b.lookup(ctx)
	if err != nil {
		return err
	}
	if C.eglMakeCurrent(bd.display, bd.surface, bd.surface, bd.context) == C.EGL_FALSE {
		return eglError("eglMakeCurrent")
	}
	return nil
}

func (b *Backend) SwapBuffers(ctx eglcore.Handle) error {
	bd, err := b.lookup(ctx)
	if err != nil {
		return err
	}
	if C.eglSwapBuffers(bd.display, bd.surface) == C.EGL_FALSE {
		return eglError("eglSwapBuffers")
	}
	return nil
}

func (b *Backend) DestroyContext(ctx eglcore.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	bd, ok := b.bindings[ctx]
	if !ok {
		return fmt.Errorf("unknown context %p", unsafe.Pointer(ctx))
	}
	delete(b.bindings, ctx)

	C.eglMakeCurrent(bd.display, nil, nil, nil)
	var err error
	if C.eglDestroySurface(bd.display, bd.surface) == C.EGL_FALSE {
		err = eglError("eglDestroySurface")
	}
	if C.eglDestroyContext(bd.display, bd.context) == C.EGL_FALSE && err == nil {
		err = eglError("eglDestroyContext")
	}
	C.eglReleaseThread()
	b.releaseDisplay(bd.display)
	return err
}

// releaseDisplay terminates dpy once no context uses it.
func (b *Backend) releaseDisplay(dpy C.EGLDisplay) {
	b.displays[dpy]--
	if b.displays[dpy] > 0 {
		return
	}
	delete(b.displays, dpy)
	C.eglTerminate(dpy)
}
