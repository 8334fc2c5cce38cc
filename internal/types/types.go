package types

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned for a zero or negative dimension.
var ErrInvalidSize = errors.New("invalid size")

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Orientation describes how the producer's sensor is held relative to the
// destination surface.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

func (o Orientation) IsLandscape() bool {
	return o != OrientationPortrait
}

// DisplayMode selects the kind of destination surface the daemon renders to.
type DisplayMode string

const (
	DisplayX11      DisplayMode = "x11"
	DisplayHeadless DisplayMode = "headless"
)

type DisplayEventKind int

const (
	DisplayResized DisplayEventKind = iota + 1
	DisplayClosed
)

// DisplayEvent is reported by a destination surface when it changes size or
// goes away.
type DisplayEvent struct {
	Kind DisplayEventKind
	Size Size
}
