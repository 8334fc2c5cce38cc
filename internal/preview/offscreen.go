package preview

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/matjam/camview/internal/gles"
	"github.com/matjam/camview/internal/types"
)

var ErrFramebufferIncomplete = errors.New("framebuffer incomplete")

type framebufferTarget struct {
	width, height  int
	framebufferID  uint32
	colorTextureID uint32
}

// OffscreenPass draws the external texture, cropped and rotated, into a
// framebuffer whose color attachment is an ordinary 2D texture.
type OffscreenPass struct {
	pass
	target framebufferTarget
}

// NewOffscreenPass returns a pass that samples textures of the given target,
// TEXTURE_EXTERNAL_OES or TEXTURE_2D.
func NewOffscreenPass(gl gles.Functions, textureTarget uint32) *OffscreenPass {
	fragment := externalFragmentShaderSrc
	if textureTarget == gles.TEXTURE_2D {
		fragment = fragmentShaderSrc
	}
	return &OffscreenPass{pass: pass{
		gl:        gl,
		fragment:  fragment,
		texTarget: textureTarget,
	}}
}

// OnContextCreated discards ids from any previous context and builds the
// program and vertex buffer.
func (o *OffscreenPass) OnContextCreated() error {
	o.reset()
	o.target = framebufferTarget{}
	return o.setup()
}

// OnSizeChanged sets the viewport and, the first time only, allocates the
// framebuffer at exactly width x height. Later sizes keep the original
// framebuffer.
func (o *OffscreenPass) OnSizeChanged(width, height int) error {
	size := types.Size{Width: width, Height: height}
	if !size.Valid() {
		return fmt.Errorf("offscreen size %s: %w", size, types.ErrInvalidSize)
	}
	o.gl.Viewport(0, 0, int32(width), int32(height))

	if o.target.framebufferID != 0 {
		if o.target.width != width || o.target.height != height {
			log.Debugf("keeping %dx%d framebuffer for %s surface", o.target.width, o.target.height, size)
		}
		return nil
	}

	tex := o.gl.GenTexture()
	if tex == 0 {
		return fmt.Errorf("glGenTextures returned 0")
	}
	o.gl.BindTexture(gles.TEXTURE_2D, tex)
	o.gl.TexParameteri(gles.TEXTURE_2D, gles.TEXTURE_MIN_FILTER, gles.LINEAR)
	o.gl.TexParameteri(gles.TEXTURE_2D, gles.TEXTURE_MAG_FILTER, gles.LINEAR)
	o.gl.TexParameteri(gles.TEXTURE_2D, gles.TEXTURE_WRAP_S, gles.CLAMP_TO_EDGE)
	o.gl.TexParameteri(gles.TEXTURE_2D, gles.TEXTURE_WRAP_T, gles.CLAMP_TO_EDGE)
	o.gl.TexImage2D(gles.TEXTURE_2D, int32(width), int32(height), gles.RGBA, nil)
	o.gl.BindTexture(gles.TEXTURE_2D, 0)

	fbo := o.gl.GenFramebuffer()
	if fbo == 0 {
		o.gl.DeleteTexture(tex)
		return fmt.Errorf("glGenFramebuffers returned 0")
	}
	o.gl.BindFramebuffer(gles.FRAMEBUFFER, fbo)
	o.gl.FramebufferTexture2D(gles.FRAMEBUFFER, gles.COLOR_ATTACHMENT0, gles.TEXTURE_2D, tex)
	status := o.gl.CheckFramebufferStatus(gles.FRAMEBUFFER)
	o.gl.BindFramebuffer(gles.FRAMEBUFFER, 0)

	if status != gles.FRAMEBUFFER_COMPLETE {
		o.gl.DeleteFramebuffer(fbo)
		o.gl.DeleteTexture(tex)
		return fmt.Errorf("%w: status %#x", ErrFramebufferIncomplete, status)
	}

	o.target = framebufferTarget{
		width:          width,
		height:         height,
		framebufferID:  fbo,
		colorTextureID: tex,
	}
	log.Debugf("offscreen framebuffer %d (texture %d) allocated at %s", fbo, tex, size)
	return nil
}

// Draw renders textureID into the framebuffer. It does nothing until both
// the program and the framebuffer exist.
func (o *OffscreenPass) Draw(textureID uint32, textureMatrix, vertexMatrix mgl32.Mat4) {
	if !o.ready() || o.target.framebufferID == 0 {
		return
	}

	o.gl.BindFramebuffer(gles.FRAMEBUFFER, o.target.framebufferID)
	o.gl.Viewport(0, 0, int32(o.target.width), int32(o.target.height))
	o.gl.ClearColor(0, 0, 0, 0)
	o.gl.Clear(gles.COLOR_BUFFER_BIT)
	o.drawQuad(textureID, textureMatrix, vertexMatrix)
	o.gl.BindFramebuffer(gles.FRAMEBUFFER, 0)
}

// FramebufferTextureID is the color attachment, or 0 before the first size.
func (o *OffscreenPass) FramebufferTextureID() uint32 {
	return o.target.colorTextureID
}

// FramebufferSize is the size the framebuffer was allocated at.
func (o *OffscreenPass) FramebufferSize() types.Size {
	return types.Size{Width: o.target.width, Height: o.target.height}
}

func (o *OffscreenPass) Release() {
	if o.target.framebufferID != 0 {
		o.gl.DeleteFramebuffer(o.target.framebufferID)
	}
	if o.target.colorTextureID != 0 {
		o.gl.DeleteTexture(o.target.colorTextureID)
	}
	o.target = framebufferTarget{}
	o.release()
}
