package source

import (
	"context"
	"image"
	"image/color"
	"sync/atomic"
	"time"

	"github.com/matjam/camview/internal/gles"
	"golang.org/x/image/draw"
)

// palettes cycled by Pattern.Next.
var palettes = [][]color.NRGBA{
	{
		{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff},
		{R: 0xc0, G: 0xc0, B: 0x00, A: 0xff},
		{R: 0x00, G: 0xc0, B: 0xc0, A: 0xff},
		{R: 0x00, G: 0xc0, B: 0x00, A: 0xff},
		{R: 0xc0, G: 0x00, B: 0xc0, A: 0xff},
		{R: 0xc0, G: 0x00, B: 0x00, A: 0xff},
		{R: 0x00, G: 0x00, B: 0xc0, A: 0xff},
	},
	{
		{R: 0x10, G: 0x10, B: 0x10, A: 0xff},
		{R: 0x50, G: 0x50, B: 0x50, A: 0xff},
		{R: 0x90, G: 0x90, B: 0x90, A: 0xff},
		{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff},
	},
}

// Pattern is a synthetic producer of scrolling color bars with a marker in
// the top left corner, useful for checking crop and rotation.
type Pattern struct {
	stream
	width, height int
	framerate     int
	palette       atomic.Uint32
	frame         atomic.Uint64
}

var _ Source = (*Pattern)(nil)

func NewPattern(gl gles.Functions, width, height, framerate int) *Pattern {
	return &Pattern{
		stream:    stream{gl: gl},
		width:     max(width, 1),
		height:    max(height, 1),
		framerate: max(framerate, 1),
	}
}

func (p *Pattern) Name() string {
	return "pattern"
}

// Next switches to the next palette.
func (p *Pattern) Next() error {
	p.palette.Store((p.palette.Load() + 1) % uint32(len(palettes)))
	return nil
}

// Frame renders frame n in top-down row order.
func (p *Pattern) Frame(n uint64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	colors := palettes[p.palette.Load()]

	barW := max(p.width/len(colors), 1)
	offset := int(n % uint64(len(colors)*barW))
	for i := range len(colors) + 1 {
		x0 := i*barW - offset
		c := colors[i%len(colors)]
		for _, x := range []int{x0, x0 + len(colors)*barW} {
			r := image.Rect(x, 0, x+barW, p.height).Intersect(img.Bounds())
			draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
		}
	}

	marker := image.Rect(0, 0, max(p.width/8, 1), max(p.height/8, 1))
	draw.Draw(img, marker, &image.Uniform{C: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}}, image.Point{}, draw.Src)
	return img
}

// Step publishes the next frame.
func (p *Pattern) Step() {
	n := p.frame.Add(1) - 1
	p.publish(glOrder(p.Frame(n)))
}

// Run publishes frames at the configured rate until ctx is done.
func (p *Pattern) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(p.framerate))
	defer ticker.Stop()

	p.Step()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Step()
		}
	}
}
