package locator

import (
	"fmt"

	"github.com/kozaktomas/photo-stamper/internal/pixels"
)

// Bisect locates marks by cutting the template in half, first into left and
// right halves and then into top and bottom halves, taking the bounding box
// of the opaque content of each half.
type Bisect struct{}

// NewBisect creates a bisection locator
func NewBisect() *Bisect {
	return &Bisect{}
}

// Locate returns the two marks of buf or ErrRegionNotFound.
func (b *Bisect) Locate(buf *pixels.Buffer) ([2]Region, error) {
	for _, axis := range []Axis{Vertical, Horizontal} {
		if regions, ok := split(buf, axis); ok {
			return regions, nil
		}
	}
	return [2]Region{}, fmt.Errorf("%w in %dx%d template", ErrRegionNotFound, buf.Width(), buf.Height())
}

// halves returns the two half rectangles of buf along axis in buf coordinates.
func halves(buf *pixels.Buffer, axis Axis) (pixels.Rect, pixels.Rect) {
	w, h := buf.Width(), buf.Height()
	if axis == Vertical {
		half := w / 2
		return pixels.Rect{Width: half, Height: h},
			pixels.Rect{Left: half, Width: w - half, Height: h}
	}
	half := h / 2
	return pixels.Rect{Width: w, Height: half},
		pixels.Rect{Top: half, Width: w, Height: h - half}
}

func split(buf *pixels.Buffer, axis Axis) ([2]Region, bool) {
	firstHalf, secondHalf := halves(buf, axis)

	first, err := buf.Sub(firstHalf)
	if err != nil {
		return [2]Region{}, false
	}
	second, err := buf.Sub(secondHalf)
	if err != nil {
		return [2]Region{}, false
	}

	a, ok := contentRect(first)
	if !ok {
		return [2]Region{}, false
	}
	b, ok := contentRect(second)
	if !ok {
		return [2]Region{}, false
	}

	if straddles(axis, a, b, first) {
		return [2]Region{}, false
	}

	return [2]Region{
		{Rect: a, OffsetX: firstHalf.Left, OffsetY: firstHalf.Top, Axis: axis},
		{Rect: b, OffsetX: secondHalf.Left, OffsetY: secondHalf.Top, Axis: axis},
	}, true
}

// contentRect returns the smallest rectangle enclosing every opaque pixel of buf.
func contentRect(buf *pixels.Buffer) (pixels.Rect, bool) {
	w, h := buf.Width(), buf.Height()
	minX, minY := w, h
	maxX, maxY := -1, -1

	pix := buf.Pixels()
	for y := range h {
		for x := range w {
			if !pix[y*w+x].Opaque() {
				continue
			}
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}

	rect := pixels.Rect{Top: minY, Left: minX, Width: maxX - minX + 1, Height: maxY - minY + 1}
	if maxX < 0 || !rect.Within(w, h) {
		return pixels.Rect{}, false
	}
	return rect, true
}

// straddles reports whether both content rectangles touch the cut and share
// the same extent across it, which means one blob was cut in two.
func straddles(axis Axis, a, b pixels.Rect, first *pixels.Buffer) bool {
	if axis == Vertical {
		return a.Right() == first.Width() && b.Left == 0 &&
			a.Top == b.Top && a.Bottom() == b.Bottom()
	}
	return a.Bottom() == first.Height() && b.Top == 0 &&
		a.Left == b.Left && a.Right() == b.Right()
}
