package source

import (
	"time"

	"github.com/matjam/camview/internal/gles"
)

// PatternName selects the synthetic test pattern in Open.
const PatternName = "pattern"

type Options struct {
	Width, Height int // Pattern frame size
	Framerate     int
	MaxSide       int // Largest texture side for slideshow frames
	Interval      time.Duration
	Shuffle       bool
}

// Open returns the test pattern for "pattern" and a slideshow over the
// images in the named directory otherwise.
func Open(gl gles.Functions, name string, opts Options) (Source, error) {
	if name == PatternName {
		return NewPattern(gl, opts.Width, opts.Height, opts.Framerate), nil
	}

	paths, err := Scan(name)
	if err != nil {
		return nil, err
	}
	playlist := NewPlaylist(paths)
	if opts.Shuffle {
		playlist.Shuffle()
	}
	return NewSlideshow(gl, playlist, opts.MaxSide, opts.Interval), nil
}
