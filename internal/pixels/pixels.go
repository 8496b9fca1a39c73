// Package pixels provides an addressable RGBA grid with rectangular region
// extraction and running colour statistics.
package pixels

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ErrOutOfRange is returned when a coordinate or rectangle falls outside the buffer.
var ErrOutOfRange = errors.New("coordinate out of range")

// Pixel is a single non-premultiplied RGBA sample.
type Pixel struct {
	R, G, B, A uint8
}

// Opaque reports whether the pixel is not fully transparent.
func (p Pixel) Opaque() bool {
	return p.A != 0
}

// Buffer is a width x height grid of pixels stored in row-major order.
// The pixel at (x, y) lives at index y*width + x in every construction path.
type Buffer struct {
	width  int
	height int
	pix    []Pixel
}

// New creates a buffer from a flat RGBA byte sequence (4 bytes per pixel, row-major).
func New(width, height int, rgba []byte) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid buffer size %dx%d", width, height)
	}
	if len(rgba) != width*height*4 {
		return nil, fmt.Errorf("rgba length %d does not match %dx%d", len(rgba), width, height)
	}
	pix := make([]Pixel, width*height)
	for i := range pix {
		o := i * 4
		pix[i] = Pixel{R: rgba[o], G: rgba[o+1], B: rgba[o+2], A: rgba[o+3]}
	}
	return &Buffer{width: width, height: height, pix: pix}, nil
}

// FromPixels creates a buffer over an existing row-major pixel slice.
func FromPixels(width, height int, pix []Pixel) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid buffer size %dx%d", width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("pixel count %d does not match %dx%d", len(pix), width, height)
	}
	return &Buffer{width: width, height: height, pix: pix}, nil
}

// FromImage converts a decoded image into a buffer of non-premultiplied pixels.
func FromImage(img image.Image) (*Buffer, error) {
	bounds := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	}

	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	rgba := make([]byte, 0, w*h*4)
	for y := range h {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		rgba = append(rgba, row...)
	}
	return New(w, h, rgba)
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.height }

// Len returns the number of pixels in the buffer.
func (b *Buffer) Len() int { return len(b.pix) }

// Bounds returns the rectangle covering the whole buffer.
func (b *Buffer) Bounds() Rect {
	return Rect{Width: b.width, Height: b.height}
}

func (b *Buffer) index(x, y int) int {
	return y*b.width + x
}

// Get returns the pixel at (x, y).
func (b *Buffer) Get(x, y int) (Pixel, error) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return Pixel{}, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfRange, x, y, b.width, b.height)
	}
	return b.pix[b.index(x, y)], nil
}

// at is the unchecked variant of Get for loops that already respect the bounds.
func (b *Buffer) at(x, y int) Pixel {
	return b.pix[b.index(x, y)]
}

// Pixels returns the underlying row-major pixel slice.
func (b *Buffer) Pixels() []Pixel {
	return b.pix
}

// Opaque returns all pixels with a non-zero alpha in row-major order.
func (b *Buffer) Opaque() []Pixel {
	return opaque(b.pix)
}

// Sub returns a new buffer holding every pixel of rect, transparent ones included.
func (b *Buffer) Sub(rect Rect) (*Buffer, error) {
	region, err := RegionOf(rect, b, true)
	if err != nil {
		return nil, err
	}
	return region.Buffer()
}

// Image returns the buffer as an *image.NRGBA.
func (b *Buffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	for y := range b.height {
		for x := range b.width {
			p := b.at(x, y)
			img.SetNRGBA(x, y, color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A})
		}
	}
	return img
}

func opaque(pix []Pixel) []Pixel {
	out := make([]Pixel, 0, len(pix))
	for _, p := range pix {
		if p.Opaque() {
			out = append(out, p)
		}
	}
	return out
}
