package preview

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/matjam/camview/internal/gles"
	"github.com/matjam/camview/internal/types"
)

// DisplayPass copies a 2D texture onto the default framebuffer with an
// identity transform.
type DisplayPass struct {
	pass
	size types.Size
}

func NewDisplayPass(gl gles.Functions) *DisplayPass {
	return &DisplayPass{pass: pass{
		gl:        gl,
		fragment:  fragmentShaderSrc,
		texTarget: gles.TEXTURE_2D,
	}}
}

func (d *DisplayPass) OnContextCreated() error {
	d.reset()
	return d.setup()
}

func (d *DisplayPass) OnSizeChanged(width, height int) {
	d.size = types.Size{Width: width, Height: height}
}

// Draw renders textureID onto framebuffer 0. Presenting is left to the
// caller.
func (d *DisplayPass) Draw(textureID uint32) {
	if !d.ready() || textureID == 0 {
		return
	}

	d.gl.BindFramebuffer(gles.FRAMEBUFFER, 0)
	if d.size.Valid() {
		d.gl.Viewport(0, 0, int32(d.size.Width), int32(d.size.Height))
	}
	d.gl.ClearColor(0, 0, 0, 1)
	d.gl.Clear(gles.COLOR_BUFFER_BIT)
	d.drawQuad(textureID, mgl32.Ident4(), mgl32.Ident4())
}

func (d *DisplayPass) Release() {
	d.release()
}
