package source

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matjam/camview/internal/gles"
)

// Slideshow publishes the images of a playlist one at a time, advancing on
// Next or every interval.
type Slideshow struct {
	stream
	playlist *Playlist
	maxSide  int
	interval time.Duration
	advance  chan struct{}
}

var _ Source = (*Slideshow)(nil)

// NewSlideshow returns a slideshow over playlist. Frames are scaled to fit
// maxSide. A zero interval only advances on Next.
func NewSlideshow(gl gles.Functions, playlist *Playlist, maxSide int, interval time.Duration) *Slideshow {
	return &Slideshow{
		stream:   stream{gl: gl},
		playlist: playlist,
		maxSide:  maxSide,
		interval: interval,
		advance:  make(chan struct{}, 1),
	}
}

func (s *Slideshow) Name() string {
	return fmt.Sprintf("slideshow (%d images)", s.playlist.Len())
}

func (s *Slideshow) Current() string {
	return s.playlist.Current()
}

// Next loads and publishes the next image of the playlist.
func (s *Slideshow) Next() error {
	path := s.playlist.Next()
	if path == "" {
		return ErrNoImages
	}

	img, err := loadImage(path)
	if err != nil {
		return err
	}
	log.Infof("loading %v (%vx%v)", path, img.Bounds().Dx(), img.Bounds().Dy())

	s.publish(glOrder(Fit(img, s.maxSide)))
	return nil
}

// Skip asks a running slideshow to advance without waiting for the interval.
func (s *Slideshow) Skip() {
	select {
	case s.advance <- struct{}{}:
	default:
	}
}

// Run publishes the first image and then advances until ctx is done. Images
// that fail to load are logged and skipped.
func (s *Slideshow) Run(ctx context.Context) error {
	if err := s.Next(); err != nil {
		log.Errorf("Failed to load image: %v", err)
	}

	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
		case <-s.advance:
		}
		if err := s.Next(); err != nil {
			log.Errorf("Failed to load image: %v", err)
		}
	}
}

func loadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image file: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}
