package source

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var ErrNoImages = errors.New("no images found")

// Playlist rotates through a list of image paths.
type Playlist struct {
	sync.Mutex
	files   []string
	current string
}

func NewPlaylist(files []string) *Playlist {
	return &Playlist{files: append([]string(nil), files...)}
}

// Next moves the head of the list to the back and returns it.
func (p *Playlist) Next() string {
	p.Lock()
	defer p.Unlock()
	if len(p.files) == 0 {
		return ""
	}
	next := p.files[0]
	p.files = append(p.files[1:], next)
	p.current = next
	return next
}

func (p *Playlist) Current() string {
	p.Lock()
	defer p.Unlock()
	return p.current
}

func (p *Playlist) Files() []string {
	p.Lock()
	defer p.Unlock()
	return append([]string(nil), p.files...)
}

func (p *Playlist) Len() int {
	p.Lock()
	defer p.Unlock()
	return len(p.files)
}

func (p *Playlist) Shuffle() {
	p.Lock()
	defer p.Unlock()

	rand.Shuffle(len(p.files), func(i, j int) {
		p.files[i], p.files[j] = p.files[j], p.files[i]
	})
}

// CanonicalPath expands a leading ~ to $HOME.
func CanonicalPath(path string) string {
	if path == "" {
		return ""
	}

	if path == "~" {
		return os.Getenv("HOME")
	}

	if strings.HasPrefix(path, "~/") {
		homeDir := os.Getenv("HOME")
		return strings.Replace(path, "~", homeDir, 1)
	}

	return path
}

// Scan returns the png, jpeg and gif files directly inside dir, in directory
// order.
func Scan(dir string) ([]string, error) {
	dir = CanonicalPath(dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading image directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := strings.ToLower(entry.Name())
		if strings.HasSuffix(name, ".png") ||
			strings.HasSuffix(name, ".jpg") ||
			strings.HasSuffix(name, ".jpeg") ||
			strings.HasSuffix(name, ".gif") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoImages)
	}
	return paths, nil
}
