package preview_test

import (
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matjam/camview/internal/eglcore"
	"github.com/matjam/camview/internal/gles"
	"github.com/matjam/camview/internal/glestest"
	"github.com/matjam/camview/internal/preview"
	"github.com/matjam/camview/internal/types"
)

func TestOffscreenPass_SetupOncePerContext(t *testing.T) {
	assert := assert.New(t)
	gl := glestest.NewFunctions()
	pass := preview.NewOffscreenPass(gl, gles.TEXTURE_EXTERNAL_OES)

	require.NoError(t, pass.OnContextCreated())
	assert.Equal(1, gl.Count("CreateProgram"))
	assert.Equal(1, gl.Count("GenBuffer"))
	assert.Equal(1, gl.Count("BufferData"))

	require.NoError(t, pass.OnSizeChanged(640, 480))
	require.NoError(t, pass.OnSizeChanged(640, 480))
	assert.Equal(1, gl.Count("CreateProgram"))
	assert.Equal(1, gl.Count("GenFramebuffer"))
}

func TestOffscreenPass_FramebufferNeverResized(t *testing.T) {
	assert := assert.New(t)
	gl := glestest.NewFunctions()
	pass := preview.NewOffscreenPass(gl, gles.TEXTURE_EXTERNAL_OES)
	require.NoError(t, pass.OnContextCreated())

	require.NoError(t, pass.OnSizeChanged(1080, 1920))
	id := pass.FramebufferTextureID()
	assert.NotZero(id)

	require.NoError(t, pass.OnSizeChanged(1920, 1080))
	assert.Equal(id, pass.FramebufferTextureID())
	assert.Equal(types.Size{Width: 1080, Height: 1920}, pass.FramebufferSize())
	assert.Equal([4]int32{0, 0, 1920, 1080}, gl.LastViewport())

	images := gl.Images()
	require.Len(t, images, 1)
	assert.Equal(int32(1080), images[0].Width)
	assert.Equal(int32(1920), images[0].Height)
	assert.Zero(images[0].Pixels)

	for pname, want := range map[uint32]int32{
		gles.TEXTURE_MIN_FILTER: gles.LINEAR,
		gles.TEXTURE_MAG_FILTER: gles.LINEAR,
		gles.TEXTURE_WRAP_S:     gles.CLAMP_TO_EDGE,
		gles.TEXTURE_WRAP_T:     gles.CLAMP_TO_EDGE,
	} {
		got, ok := gl.TexParameter(id, pname)
		assert.True(ok)
		assert.Equal(want, got)
	}
}

func TestOffscreenPass_DrawPreconditions(t *testing.T) {
	assert := assert.New(t)
	gl := glestest.NewFunctions()
	pass := preview.NewOffscreenPass(gl, gles.TEXTURE_EXTERNAL_OES)

	pass.Draw(1, mgl32.Ident4(), mgl32.Ident4())
	assert.Zero(gl.Total())

	require.NoError(t, pass.OnContextCreated())
	pass.Draw(1, mgl32.Ident4(), mgl32.Ident4())
	assert.Zero(gl.Count("DrawArrays"))

	require.NoError(t, pass.OnSizeChanged(320, 240))
	pass.Draw(1, mgl32.Ident4(), mgl32.Ident4())
	assert.Equal(1, gl.Count("DrawArrays"))
	assert.Equal([4]int32{0, 0, 320, 240}, gl.LastViewport())
}

func TestOffscreenPass_IncompleteFramebuffer(t *testing.T) {
	assert := assert.New(t)
	gl := glestest.NewFunctions()
	gl.FramebufferStatus = 0x8CD6
	pass := preview.NewOffscreenPass(gl, gles.TEXTURE_2D)
	require.NoError(t, pass.OnContextCreated())

	err := pass.OnSizeChanged(64, 64)
	assert.ErrorIs(err, preview.ErrFramebufferIncomplete)
	assert.Zero(pass.FramebufferTextureID())
	assert.Equal(1, gl.Count("DeleteFramebuffer"))
	assert.Equal(1, gl.Count("DeleteTexture"))

	pass.Draw(1, mgl32.Ident4(), mgl32.Ident4())
	assert.Zero(gl.Count("DrawArrays"))
}

func TestOffscreenPass_InvalidSize(t *testing.T) {
	gl := glestest.NewFunctions()
	pass := preview.NewOffscreenPass(gl, gles.TEXTURE_2D)
	require.NoError(t, pass.OnContextCreated())
	assert.ErrorIs(t, pass.OnSizeChanged(0, 10), types.ErrInvalidSize)
	assert.Zero(t, gl.Count("GenFramebuffer"))
}

func TestOffscreenPass_CompileFailure(t *testing.T) {
	assert := assert.New(t)
	gl := glestest.NewFunctions()
	gl.FailCompile = true
	pass := preview.NewOffscreenPass(gl, gles.TEXTURE_EXTERNAL_OES)

	err := pass.OnContextCreated()
	assert.ErrorIs(err, gles.ErrCompile)
	assert.Contains(err.Error(), "fake compile failure")

	require.NoError(t, pass.OnSizeChanged(64, 64))
	pass.Draw(1, mgl32.Ident4(), mgl32.Ident4())
	assert.Zero(gl.Count("DrawArrays"))
}

func TestOffscreenPass_LinkFailure(t *testing.T) {
	assert := assert.New(t)
	gl := glestest.NewFunctions()
	gl.FailLink = true
	pass := preview.NewOffscreenPass(gl, gles.TEXTURE_EXTERNAL_OES)

	err := pass.OnContextCreated()
	assert.ErrorIs(err, gles.ErrLink)
	assert.Equal(1, gl.Count("DeleteProgram"))
	assert.Equal(2, gl.Count("DeleteShader"))
}

func TestDisplayPass_Draw(t *testing.T) {
	assert := assert.New(t)
	gl := glestest.NewFunctions()
	pass := preview.NewDisplayPass(gl)

	require.NoError(t, pass.OnContextCreated())
	pass.Draw(0)
	assert.Zero(gl.Count("DrawArrays"))

	pass.OnSizeChanged(800, 600)
	pass.Draw(5)
	assert.Equal(1, gl.Count("DrawArrays"))
	assert.Equal([4]int32{0, 0, 800, 600}, gl.LastViewport())
}

func fakeHandle() eglcore.Handle {
	n := 1
	return eglcore.Handle(unsafe.Pointer(&n))
}

func TestRenderer_TwoPasses(t *testing.T) {
	assert := assert.New(t)
	gl := glestest.NewFunctions()
	r := preview.NewRenderer(gl)
	ctx := fakeHandle()

	require.NoError(t, r.OnContextCreated(ctx))
	assert.Equal(ctx, r.Context())
	assert.Zero(r.PreviewTextureID())

	require.NoError(t, r.OnSizeChanged(1080, 1920))
	assert.NotZero(r.PreviewTextureID())

	require.NoError(t, r.Configure(false, types.Size{Width: 1080, Height: 1920}, types.Size{Width: 1920, Height: 1080}, 90))
	texMatrix := mgl32.Scale3D(1, -1, 1)
	r.DrawTexture(7, texMatrix)
	assert.Equal(2, gl.Count("DrawArrays"))

	// The offscreen program is created first.
	vertex, ok := gl.LastMatrix(1, "uVertexMatrix")
	require.True(t, ok)
	assert.Equal([16]float32(r.Final()), vertex)
	tm, ok := gl.LastMatrix(1, "uTextureMatrix")
	require.True(t, ok)
	assert.Equal([16]float32(texMatrix), tm)

	displayVertex, ok := gl.LastMatrix(2, "uVertexMatrix")
	require.True(t, ok)
	assert.Equal([16]float32(mgl32.Ident4()), displayVertex)
}

func TestRenderer_ContextCreatedResetsTransform(t *testing.T) {
	assert := assert.New(t)
	gl := glestest.NewFunctions()
	r := preview.NewRenderer(gl)

	r.Rotate(90)
	r.TransformMatrix()
	assert.NotEqual(mgl32.Ident4(), r.Final())

	require.NoError(t, r.OnContextCreated(fakeHandle()))
	assert.Equal(mgl32.Ident4(), r.Final())
}

func TestRenderer_Release(t *testing.T) {
	assert := assert.New(t)
	gl := glestest.NewFunctions()
	r := preview.NewRenderer(gl, preview.WithTextureTarget(gles.TEXTURE_2D))
	assert.Equal(gles.TEXTURE_2D, r.TextureTarget())

	require.NoError(t, r.OnContextCreated(fakeHandle()))
	require.NoError(t, r.OnSizeChanged(10, 10))
	r.Release()

	assert.Nil(r.Context())
	assert.Zero(r.PreviewTextureID())
	assert.Equal(2, gl.Count("DeleteProgram"))
	assert.Equal(2, gl.Count("DeleteBuffer"))
	assert.Equal(1, gl.Count("DeleteFramebuffer"))

	r.DrawTexture(1, mgl32.Ident4())
	assert.Zero(gl.Count("DrawArrays"))
}
