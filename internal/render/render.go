package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/matjam/camview/internal/eglcore"
)

// Renderer is driven by the render scheduler. Every method runs on the render
// goroutine with the context current.
type Renderer interface {
	OnContextCreated(ctx eglcore.Handle) error              // Create GL objects for a fresh context
	OnSizeChanged(width, height int) error                  // Destination size changed
	DrawTexture(textureID uint32, textureMatrix mgl32.Mat4) // Draw one frame of the external texture
}

// Releaser is implemented by renderers that want to delete their GL objects
// before the context is destroyed.
type Releaser interface {
	Release()
}
