package matrix

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/matjam/camview/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-5

// nearlyEqual compares absolutely: rotations leave values like -4.37e-8 where an
// exact zero is expected.
func nearlyEqual(a, b float32) bool {
	return mgl32.Abs(a-b) < epsilon
}

func TestComposer_ResetThenTransformIsIdentity(t *testing.T) {
	assert := assert.New(t)

	c := NewComposer()
	c.Rotate(37)
	assert.NoError(c.CenterCrop(true, types.Size{Width: 640, Height: 480}, types.Size{Width: 1920, Height: 1080}))
	c.TransformMatrix()
	assert.NotEqual(mgl32.Ident4(), c.Final())

	c.ResetMatrix()
	c.TransformMatrix()
	assert.Equal(mgl32.Ident4(), c.Final())
	assert.Equal(Bounds{Left: -1, Right: 1, Bottom: -1, Top: 1}, c.Bounds())
}

func TestComposer_PortraitSensorOnPortraitSurfaceIsNotCropped(t *testing.T) {
	assert := assert.New(t)

	c := NewComposer()
	err := c.CenterCrop(false, types.Size{Width: 1080, Height: 1920}, types.Size{Width: 1920, Height: 1080})
	require.NoError(t, err)

	assert.Equal(Bounds{Left: -1, Right: 1, Bottom: -1, Top: 1}, c.Bounds())
	assert.True(c.Projection().ApproxFuncEqual(mgl32.Ident4(), nearlyEqual))
}

func TestComposer_RotateNinetyMapsXToY(t *testing.T) {
	assert := assert.New(t)

	c := NewComposer()
	c.Rotate(90)
	c.TransformMatrix()

	got := c.Final().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.True(got.ApproxFuncEqual(mgl32.Vec4{0, 1, 0, 1}, nearlyEqual), "got %v", got)
}

func TestComposer_RotateQuarterTurns(t *testing.T) {
	tests := []struct {
		degrees int
		want    mgl32.Vec4
	}{
		{0, mgl32.Vec4{1, 0, 0, 1}},
		{90, mgl32.Vec4{0, 1, 0, 1}},
		{180, mgl32.Vec4{-1, 0, 0, 1}},
		{270, mgl32.Vec4{0, -1, 0, 1}},
		{-90, mgl32.Vec4{0, -1, 0, 1}},
	}

	for _, tt := range tests {
		c := NewComposer()
		c.Rotate(tt.degrees)
		c.TransformMatrix()

		got := c.Final().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
		assert.True(t, got.ApproxFuncEqual(tt.want, nearlyEqual), "rotate %d: got %v", tt.degrees, got)
	}
}

func TestComposer_RotateAccumulates(t *testing.T) {
	c := NewComposer()
	c.Rotate(45)
	c.Rotate(45)

	want := mgl32.HomogRotate3DZ(mgl32.DegToRad(90))
	assert.True(t, c.Rotation().ApproxFuncEqual(want, nearlyEqual))
}

func TestComposer_FinalIsProjectionTimesRotation(t *testing.T) {
	c := NewComposer()
	require.NoError(t, c.CenterCrop(true, types.Size{Width: 800, Height: 600}, types.Size{Width: 1920, Height: 1080}))
	c.Rotate(270)
	c.TransformMatrix()

	want := c.Projection().Mul4(c.Rotation())
	assert.Equal(t, want, c.Final())
}

func TestCropBounds_NeverStretches(t *testing.T) {
	surfaces := []types.Size{
		{Width: 1080, Height: 1920},
		{Width: 1920, Height: 1080},
		{Width: 640, Height: 480},
		{Width: 500, Height: 500},
		{Width: 321, Height: 977},
	}
	textures := []types.Size{
		{Width: 1920, Height: 1080},
		{Width: 1280, Height: 720},
		{Width: 640, Height: 480},
		{Width: 1000, Height: 1000},
		{Width: 720, Height: 1280},
	}

	for _, surface := range surfaces {
		for _, texture := range textures {
			for _, landscape := range []bool{true, false} {
				b := CropBounds(landscape, surface, texture)

				// one axis always spans exactly [-1, 1], the other is cropped
				if b.Top == 1 {
					assert.Equal(t, float32(-1), b.Bottom)
					assert.LessOrEqual(t, b.Right, float32(1))
				} else {
					assert.Equal(t, float32(1), b.Right)
					assert.Equal(t, float32(-1), b.Left)
					assert.LessOrEqual(t, b.Top, float32(1))
				}

				// the quad covers surface/bound pixels on each axis; its aspect
				// must match the (orientation adjusted) texture aspect
				renderedW := float32(surface.Width) / b.Right
				renderedH := float32(surface.Height) / b.Top
				want := float32(texture.Width) / float32(texture.Height)
				if !landscape {
					want = float32(texture.Height) / float32(texture.Width)
				}
				assert.InDelta(t, want, renderedW/renderedH, 1e-4,
					"surface %v texture %v landscape %v", surface, texture, landscape)
			}
		}
	}
}

func TestComposer_CenterCropRejectsEmptySizes(t *testing.T) {
	assert := assert.New(t)

	c := NewComposer()
	err := c.CenterCrop(true, types.Size{Width: 0, Height: 100}, types.Size{Width: 10, Height: 10})
	assert.ErrorIs(err, ErrInvalidSize)
	assert.Equal(mgl32.Ident4(), c.Projection())
}

func TestComposer_ConfigureKeepsPreviousTransformOnError(t *testing.T) {
	assert := assert.New(t)

	c := NewComposer()
	require.NoError(t, c.Configure(true, types.Size{Width: 640, Height: 480}, types.Size{Width: 1920, Height: 1080}, 90))
	before := c.Final()

	err := c.Configure(true, types.Size{}, types.Size{Width: 1920, Height: 1080}, 180)
	assert.ErrorIs(err, ErrInvalidSize)
	assert.Equal(before, c.Final())
}
