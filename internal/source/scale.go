package source

import (
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Fit scales img down so neither side exceeds maxSide, keeping the aspect
// ratio. Images already within bounds are returned unchanged.
func Fit(img image.Image, maxSide int) image.Image {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()
	if maxSide <= 0 || (srcW <= maxSide && srcH <= maxSide) {
		return img
	}

	scale := float64(maxSide) / float64(max(srcW, srcH))
	w := max(int(float64(srcW)*scale), 1)
	h := max(int(float64(srcH)*scale), 1)

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	d := draw.CatmullRom
	d.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// glOrder flips img into bottom-up row order for a GL upload. The result is
// tightly packed.
func glOrder(img image.Image) *image.NRGBA {
	return imaging.FlipV(img)
}
