package colour

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// MedianCut quantizes with the median cut algorithm, averaging each bucket.
type MedianCut struct{}

// Quantize implements Quantizer.
func (MedianCut) Quantize(colors []RGB, k int) ([]RGB, error) {
	q := quantize.MedianCutQuantizer{Aggregation: quantize.Mean}
	palette := q.Quantize(make(color.Palette, 0, k), stripImage(colors))
	return fromPalette(palette)
}

// KMeans quantizes by clustering colours in RGB space. Clusters are returned
// largest first.
type KMeans struct{}

// Quantize implements Quantizer.
func (KMeans) Quantize(colors []RGB, k int) ([]RGB, error) {
	dataset := make(clusters.Observations, 0, len(colors))
	for _, c := range colors {
		dataset = append(dataset, clusters.Coordinates{float64(c.R), float64(c.G), float64(c.B)})
	}

	k = min(k, len(dataset))
	if k <= 0 {
		return nil, nil
	}
	cc, err := kmeans.New().Partition(dataset, k)
	if err != nil {
		return nil, fmt.Errorf("kmeans partition: %w", err)
	}

	slices.SortStableFunc(cc, func(a, b clusters.Cluster) int {
		return cmp.Compare(len(b.Observations), len(a.Observations))
	})

	palette := make([]RGB, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		palette = append(palette, RGB{
			R: channel(c.Center[0]),
			G: channel(c.Center[1]),
			B: channel(c.Center[2]),
		})
	}
	return palette, nil
}

// Dominant quantizes by weighted dominant colour detection.
type Dominant struct{}

// Quantize implements Quantizer.
func (Dominant) Quantize(colors []RGB, k int) ([]RGB, error) {
	if len(colors) == 0 {
		return nil, nil
	}
	found := dominantcolor.FindWeight(tileImage(colors), k)
	palette := make([]RGB, 0, len(found))
	for _, c := range found {
		palette = append(palette, RGB{R: c.RGBA.R, G: c.RGBA.G, B: c.RGBA.B})
	}
	return palette, nil
}

// NewQuantizer returns the quantizer registered under name.
func NewQuantizer(name string) (Quantizer, error) {
	switch name {
	case "mediancut", "":
		return MedianCut{}, nil
	case "kmeans":
		return KMeans{}, nil
	case "dominant":
		return Dominant{}, nil
	default:
		return nil, fmt.Errorf("unknown quantizer: %s", name)
	}
}

func channel(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(min(max(math.Round(v), 0), 255))
}

func fromPalette(palette color.Palette) ([]RGB, error) {
	out := make([]RGB, 0, len(palette))
	for _, c := range palette {
		r, g, b, a := c.RGBA()
		if a == 0 {
			continue
		}
		rgb, err := fromRGBA(r, g, b)
		if err != nil {
			return nil, err
		}
		out = append(out, rgb)
	}
	return out, nil
}

// stripImage lays colors out as a single opaque row.
func stripImage(colors []RGB) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, len(colors), 1))
	for i, c := range colors {
		img.SetNRGBA(i, 0, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	}
	return img
}

// tileImage lays colors out in a near-square opaque image, cycling through
// the colours to fill the last row.
func tileImage(colors []RGB) *image.NRGBA {
	w := int(math.Ceil(math.Sqrt(float64(len(colors)))))
	h := (len(colors) + w - 1) / w
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range w * h {
		c := colors[i%len(colors)]
		img.SetNRGBA(i%w, i/w, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	}
	return img
}
