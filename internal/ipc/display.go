package ipc

import (
	"github.com/matjam/camview/internal/eglcore"
	"github.com/matjam/camview/internal/types"
)

// Headless is a display without a window. The render context draws into a
// pbuffer of the given size.
type Headless struct {
	size types.Size
}

var _ Display = (*Headless)(nil)

func NewHeadless(width, height int) *Headless {
	return &Headless{size: types.Size{Width: width, Height: height}}
}

func (h *Headless) Surface() eglcore.Surface {
	return eglcore.Surface{Width: h.size.Width, Height: h.size.Height}
}

func (h *Headless) Size() types.Size {
	return h.size
}

func (h *Headless) Poll() []types.DisplayEvent {
	return nil
}

func (h *Headless) Close() {}
