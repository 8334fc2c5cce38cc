package matrix

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/matjam/camview/internal/types"
)

// ErrInvalidSize is returned when a crop is requested with a zero or negative
// surface or texture dimension.
var ErrInvalidSize = types.ErrInvalidSize

// Orthographic depth range. The composer never uses depth.
const (
	near float32 = 1
	far  float32 = -1
)

// Bounds are the orthographic projection edges chosen by CenterCrop.
type Bounds struct {
	Left, Right, Bottom, Top float32
}

// Composer builds the vertex transform used by the offscreen pass:
// final = projection * rotation.
//
// All methods are safe for concurrent use. The host configures the transform
// while the render goroutine reads Final.
type Composer struct {
	mu         sync.Mutex
	projection mgl32.Mat4
	rotation   mgl32.Mat4
	final      mgl32.Mat4
	bounds     Bounds
}

func NewComposer() *Composer {
	c := &Composer{}
	c.resetLocked()
	return c
}

// ResetMatrix sets projection, rotation and final back to identity.
func (c *Composer) ResetMatrix() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Rotate right-multiplies a rotation about the view axis into the rotation
// matrix. Calls accumulate until the next reset.
func (c *Composer) Rotate(degrees int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotateLocked(degrees)
}

// CenterCrop sets an orthographic projection so the texture fills the surface
// without distortion, cropping whichever axis overflows.
func (c *Composer) CenterCrop(isLandscape bool, surface, texture types.Size) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.centerCropLocked(isLandscape, surface, texture)
}

// TransformMatrix recomputes final from the current projection and rotation.
// It must be called after changing either factor.
func (c *Composer) TransformMatrix() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.final = c.projection.Mul4(c.rotation)
}

// Configure performs reset, crop, rotate and compose under a single lock so a
// concurrent reader never observes a partially built transform.
func (c *Composer) Configure(isLandscape bool, surface, texture types.Size, degrees int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	projection, rotation, final, bounds := c.projection, c.rotation, c.final, c.bounds
	c.resetLocked()
	if err := c.centerCropLocked(isLandscape, surface, texture); err != nil {
		c.projection, c.rotation, c.final, c.bounds = projection, rotation, final, bounds
		return err
	}
	c.rotateLocked(degrees)
	c.final = c.projection.Mul4(c.rotation)
	return nil
}

func (c *Composer) Final() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.final
}

func (c *Composer) Projection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *Composer) Rotation() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rotation
}

// Bounds returns the edges of the last crop projection. After a reset they
// are the identity edges [-1, 1] on both axes.
func (c *Composer) Bounds() Bounds {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bounds
}

func (c *Composer) resetLocked() {
	c.projection = mgl32.Ident4()
	c.rotation = mgl32.Ident4()
	c.final = mgl32.Ident4()
	c.bounds = Bounds{Left: -1, Right: 1, Bottom: -1, Top: 1}
}

func (c *Composer) rotateLocked(degrees int) {
	c.rotation = c.rotation.Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(float32(degrees))))
}

func (c *Composer) centerCropLocked(isLandscape bool, surface, texture types.Size) error {
	if !surface.Valid() || !texture.Valid() {
		return fmt.Errorf("%w: surface %v, texture %v", ErrInvalidSize, surface, texture)
	}

	b := CropBounds(isLandscape, surface, texture)
	c.projection = mgl32.Ortho(b.Left, b.Right, b.Bottom, b.Top, near, far)
	c.bounds = b
	return nil
}

// CropBounds computes the orthographic edges for a center crop. Portrait
// capture swaps the texture axes before comparing aspect ratios.
func CropBounds(isLandscape bool, surface, texture types.Size) Bounds {
	aspectSurface := float32(surface.Width) / float32(surface.Height)
	var aspectTexture float32
	if isLandscape {
		aspectTexture = float32(texture.Width) / float32(texture.Height)
	} else {
		aspectTexture = float32(texture.Height) / float32(texture.Width)
	}

	if aspectTexture > aspectSurface {
		// crop the sides
		right := aspectSurface / aspectTexture
		return Bounds{Left: -right, Right: right, Bottom: -1, Top: 1}
	}

	// crop top and bottom
	top := aspectTexture / aspectSurface
	return Bounds{Left: -1, Right: 1, Bottom: -top, Top: top}
}
