package pixels

import (
	"errors"
	"fmt"
)

// ErrIncompleteRegion is returned when a buffer is requested from a region
// that dropped its transparent pixels.
var ErrIncompleteRegion = errors.New("region does not retain transparent pixels")

// RegionStats accumulates colour statistics over the opaque pixels of a region.
type RegionStats struct {
	RSum  uint64
	GSum  uint64
	BSum  uint64
	Count int
	Min   [3]uint8
	Max   [3]uint8
}

func newRegionStats() RegionStats {
	return RegionStats{Min: [3]uint8{255, 255, 255}}
}

func (s *RegionStats) add(p Pixel) {
	s.RSum += uint64(p.R)
	s.GSum += uint64(p.G)
	s.BSum += uint64(p.B)
	s.Count++
	for i, v := range [3]uint8{p.R, p.G, p.B} {
		s.Min[i] = min(s.Min[i], v)
		s.Max[i] = max(s.Max[i], v)
	}
}

// Range returns max - min for channel i (0=red, 1=green, 2=blue).
func (s RegionStats) Range(i int) int {
	if s.Count == 0 {
		return 0
	}
	return int(s.Max[i]) - int(s.Min[i])
}

// Volume is the product of the per-channel ranges.
func (s RegionStats) Volume() int {
	return s.Range(0) * s.Range(1) * s.Range(2)
}

// Priority is the volume weighted by the opaque pixel count.
func (s RegionStats) Priority() int {
	return s.Volume() * s.Count
}

// Region is a rectangular extract of a buffer.
type Region struct {
	Rect   Rect
	Stats  RegionStats
	pixels []Pixel
	full   bool
}

// RegionOf extracts rect from buf in row-major order. Statistics only cover
// opaque pixels; transparent ones are kept in the extract when includeTransparent is set.
func RegionOf(rect Rect, buf *Buffer, includeTransparent bool) (*Region, error) {
	if !rect.Within(buf.width, buf.height) {
		return nil, fmt.Errorf("%w: rect %s in %dx%d", ErrOutOfRange, rect, buf.width, buf.height)
	}

	region := &Region{
		Rect:   rect,
		Stats:  newRegionStats(),
		pixels: make([]Pixel, 0, rect.Width*rect.Height),
		full:   includeTransparent,
	}
	for y := rect.Top; y < rect.Bottom(); y++ {
		for x := rect.Left; x < rect.Right(); x++ {
			p := buf.at(x, y)
			if p.Opaque() {
				region.Stats.add(p)
				region.pixels = append(region.pixels, p)
			} else if includeTransparent {
				region.pixels = append(region.pixels, p)
			}
		}
	}
	return region, nil
}

// Pixels returns the extracted pixels in row-major order.
func (r *Region) Pixels() []Pixel {
	return r.pixels
}

// Opaque returns the extracted pixels with a non-zero alpha.
func (r *Region) Opaque() []Pixel {
	if !r.full {
		return r.pixels
	}
	return opaque(r.pixels)
}

// Buffer returns the region as a standalone buffer addressed from (0, 0).
func (r *Region) Buffer() (*Buffer, error) {
	if !r.full {
		return nil, ErrIncompleteRegion
	}
	return FromPixels(r.Rect.Width, r.Rect.Height, r.pixels)
}
