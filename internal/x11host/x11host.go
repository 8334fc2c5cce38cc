// Package x11host opens a plain X11 window to serve as the preview
// destination surface.
package x11host

/*
#cgo LDFLAGS: -lX11
#include <X11/Xlib.h>
#include <X11/Xutil.h>
#include <stdlib.h>

enum {
    CAMVIEW_EVENT_NONE = 0,
    CAMVIEW_EVENT_RESIZE = 1,
    CAMVIEW_EVENT_CLOSE = 2,
    CAMVIEW_EVENT_OTHER = 3,
};

static int io_error_seen = 0;

static int camview_io_error_handler(Display *dpy) {
    io_error_seen = 1;
    return 0;
}

static void camview_set_io_error_handler(void) {
    XSetIOErrorHandler(camview_io_error_handler);
}

static int camview_display_dead(void) {
    return io_error_seen;
}

static Window camview_create_window(Display *dpy, int width, int height, const char *title, Atom *wm_delete) {
    int screen = DefaultScreen(dpy);
    Window root = RootWindow(dpy, screen);

    XSetWindowAttributes attrs;
    attrs.background_pixel = BlackPixel(dpy, screen);
    attrs.event_mask = StructureNotifyMask | ExposureMask;

    Window win = XCreateWindow(dpy, root, 0, 0, width, height, 0,
        CopyFromParent, InputOutput, CopyFromParent,
        CWBackPixel | CWEventMask, &attrs);

    XStoreName(dpy, win, title);
    *wm_delete = XInternAtom(dpy, "WM_DELETE_WINDOW", False);
    XSetWMProtocols(dpy, win, wm_delete, 1);
    XMapWindow(dpy, win);
    XFlush(dpy);
    return win;
}

static int camview_next_event(Display *dpy, Atom wm_delete, int *width, int *height) {
    if (XPending(dpy) == 0) {
        return CAMVIEW_EVENT_NONE;
    }
    XEvent ev;
    XNextEvent(dpy, &ev);
    switch (ev.type) {
    case ConfigureNotify:
        *width = ev.xconfigure.width;
        *height = ev.xconfigure.height;
        return CAMVIEW_EVENT_RESIZE;
    case ClientMessage:
        if ((Atom)ev.xclient.data.l[0] == wm_delete) {
            return CAMVIEW_EVENT_CLOSE;
        }
        break;
    case DestroyNotify:
        return CAMVIEW_EVENT_CLOSE;
    }
    return CAMVIEW_EVENT_OTHER;
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/charmbracelet/log"
	"github.com/matjam/camview/internal/eglcore"
	"github.com/matjam/camview/internal/types"
)

var initThreads sync.Once

// Window is an X11 window. The display connection is shared with the render
// goroutine through EGL, so Xlib is initialised for threaded use.
type Window struct {
	display  *C.Display
	window   C.Window
	wmDelete C.Atom
	size     types.Size
	closed   bool
}

// Open connects to $DISPLAY and maps a width x height window.
func Open(title string, width, height int) (*Window, error) {
	initThreads.Do(func() {
		C.XInitThreads()
	})

	dpy := C.XOpenDisplay(nil)
	if dpy == nil {
		return nil, fmt.Errorf("unable to open X11 display")
	}
	C.camview_set_io_error_handler()

	ctitle := C.CString(title)
	defer C.free(unsafe.Pointer(ctitle))

	w := &Window{
		display: dpy,
		size:    types.Size{Width: width, Height: height},
	}
	w.window = C.camview_create_window(dpy, C.int(width), C.int(height), ctitle, &w.wmDelete)
	if w.window == 0 {
		C.XCloseDisplay(dpy)
		return nil, fmt.Errorf("unable to create X11 window")
	}
	log.Debugf("x11 window %#x mapped at %s", uint64(w.window), w.size)
	return w, nil
}

// Surface describes the window for the EGL backend.
func (w *Window) Surface() eglcore.Surface {
	return eglcore.Surface{
		Display: unsafe.Pointer(w.display),
		Window:  uintptr(w.window),
		Width:   w.size.Width,
		Height:  w.size.Height,
	}
}

func (w *Window) Size() types.Size {
	return w.size
}

// Poll drains pending X events without blocking. Consecutive resizes are
// collapsed into the last one.
func (w *Window) Poll() []types.DisplayEvent {
	if w.closed {
		return nil
	}
	if C.camview_display_dead() != 0 {
		w.closed = true
		return []types.DisplayEvent{{Kind: types.DisplayClosed}}
	}

	var events []types.DisplayEvent
	for {
		var cw, ch C.int
		switch C.camview_next_event(w.display, w.wmDelete, &cw, &ch) {
		case C.CAMVIEW_EVENT_NONE:
			return events
		case C.CAMVIEW_EVENT_RESIZE:
			size := types.Size{Width: int(cw), Height: int(ch)}
			if size == w.size {
				continue
			}
			w.size = size
			if n := len(events); n > 0 && events[n-1].Kind == types.DisplayResized {
				events[n-1].Size = size
				continue
			}
			events = append(events, types.DisplayEvent{Kind: types.DisplayResized, Size: size})
		case C.CAMVIEW_EVENT_CLOSE:
			events = append(events, types.DisplayEvent{Kind: types.DisplayClosed})
			return events
		}
	}
}

// Close destroys the window and closes the display. The render context must
// be released first.
func (w *Window) Close() {
	if w.display == nil {
		return
	}
	if C.camview_display_dead() == 0 {
		C.XDestroyWindow(w.display, w.window)
		C.XCloseDisplay(w.display)
	}
	w.display = nil
	w.closed = true
}
