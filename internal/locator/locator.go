// Package locator finds the two mark regions of a template image.
package locator

import (
	"errors"

	"github.com/kozaktomas/photo-stamper/internal/pixels"
)

// ErrRegionNotFound is returned when no split yields two distinct marks.
var ErrRegionNotFound = errors.New("marks not found")

// Axis is the direction a buffer is cut along.
type Axis int

const (
	// Vertical cuts the buffer into left and right halves.
	Vertical Axis = iota
	// Horizontal cuts the buffer into top and bottom halves.
	Horizontal
)

func (a Axis) String() string {
	switch a {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	default:
		return "unknown"
	}
}

// Region is a mark found inside one half of a template.
// Rect is expressed in the half's own coordinates; the half starts at (OffsetX, OffsetY).
type Region struct {
	Rect    pixels.Rect
	OffsetX int
	OffsetY int
	Axis    Axis
}

// Absolute returns the mark rectangle in template coordinates.
func (r Region) Absolute() pixels.Rect {
	return r.Rect.Translate(r.OffsetX, r.OffsetY)
}

// Locator is the interface for mark detection strategies
type Locator interface {
	Locate(buf *pixels.Buffer) ([2]Region, error)
}
