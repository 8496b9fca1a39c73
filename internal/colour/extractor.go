package colour

import (
	"errors"
	"fmt"
	"math"

	"github.com/kozaktomas/photo-stamper/internal/constants"
	"github.com/kozaktomas/photo-stamper/internal/pixels"
)

// ErrQuantize is returned when no usable palette can be produced for a pixel set.
var ErrQuantize = errors.New("quantize failed")

// Quantizer reduces a colour multiset to a palette of at most k colours.
type Quantizer interface {
	Quantize(colors []RGB, k int) ([]RGB, error)
}

// Extractor picks one representative colour for a set of pixels.
type Extractor struct {
	quantizer        Quantizer
	pixelThreshold   float64
	paletteThreshold float64
}

// NewExtractor creates an extractor backed by q.
func NewExtractor(q Quantizer) *Extractor {
	return &Extractor{
		quantizer:        q,
		pixelThreshold:   constants.PixelDominanceThreshold,
		paletteThreshold: constants.PaletteDominanceThreshold,
	}
}

// Extract returns the representative colour of the opaque pixels in pix.
//
// A colour covering at least the pixel threshold is returned directly.
// Otherwise the pixels are quantized, the palette is checked for a dominant
// entry, and finally the palette colour with the smallest summed distance to
// all others is returned.
func (e *Extractor) Extract(pix []pixels.Pixel) (RGB, error) {
	colors := make([]RGB, 0, len(pix))
	for _, p := range pix {
		if p.Opaque() {
			colors = append(colors, FromPixel(p))
		}
	}
	if len(colors) == 0 {
		return RGB{}, fmt.Errorf("%w: no opaque pixels", ErrQuantize)
	}

	if c, ok := dominant(colors, e.pixelThreshold); ok {
		return c, nil
	}

	k := PaletteSize(len(colors))
	palette, err := e.quantizer.Quantize(colors, k)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %w", ErrQuantize, err)
	}
	if len(palette) == 0 {
		return RGB{}, fmt.Errorf("%w: empty palette for %d pixels", ErrQuantize, len(colors))
	}

	if c, ok := dominant(palette, e.paletteThreshold); ok {
		return c, nil
	}
	return central(palette, Distance), nil
}

// PaletteSize returns the quantizer palette size for n pixels.
func PaletteSize(n int) int {
	k := int(math.Ceil(float64(n) / constants.PixelsPerPaletteColor))
	return min(max(k, constants.MinPaletteSize), constants.MaxPaletteSize)
}

// dominant returns the most frequent exact colour if its share of colors is
// at least threshold. Ties go to the colour seen first.
func dominant(colors []RGB, threshold float64) (RGB, bool) {
	counts := make(map[uint32]int, len(colors))
	order := make([]RGB, 0)
	for _, c := range colors {
		k := c.key()
		if counts[k] == 0 {
			order = append(order, c)
		}
		counts[k]++
	}

	best, bestCount := order[0], 0
	for _, c := range order {
		if n := counts[c.key()]; n > bestCount {
			best, bestCount = c, n
		}
	}

	if float64(bestCount)/float64(len(colors)) >= threshold {
		return best, true
	}
	return RGB{}, false
}

// pairKey identifies an unordered pair of colours.
func pairKey(a, b RGB) uint64 {
	ka, kb := a.key(), b.key()
	if ka > kb {
		ka, kb = kb, ka
	}
	return uint64(ka)<<24 | uint64(kb)
}

// central returns the palette colour with the minimal summed distance to the
// rest of the palette. Ties keep the earliest entry. dist is evaluated once per
// unordered pair of distinct colour values.
func central(palette []RGB, dist func(a, b RGB) float64) RGB {
	cache := make(map[uint64]float64)
	best := palette[0]
	bestSum := math.Inf(1)

	for i, c1 := range palette {
		var sum float64
		for j, c2 := range palette {
			if i == j {
				continue
			}
			key := pairKey(c1, c2)
			d, ok := cache[key]
			if !ok {
				d = dist(c1, c2)
				cache[key] = d
			}
			sum += d
		}
		if sum < bestSum {
			best, bestSum = c1, sum
		}
	}
	return best
}
