// Package colour reduces pixel sets to a single representative colour and
// compares colours with a perceptual contrast metric.
package colour

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/kozaktomas/photo-stamper/internal/pixels"
)

// RGB is an opaque 24-bit colour.
type RGB struct {
	R, G, B uint8
}

// FromPixel drops the alpha channel of p.
func FromPixel(p pixels.Pixel) RGB {
	return RGB{R: p.R, G: p.G, B: p.B}
}

// key packs the colour into its 24-bit 0xRRGGBB value.
func (c RGB) key() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Hex formats the colour as "#rrggbb".
func (c RGB) Hex() string {
	return c.colorful().Hex()
}

func (c RGB) String() string {
	return c.Hex()
}

// MarshalText implements encoding.TextMarshaler so colours serialize as hex.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *RGB) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseHex parses a "#rrggbb" or "#rgb" colour.
func ParseHex(s string) (RGB, error) {
	col, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	r, g, b := col.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// fromRGBA converts a 16-bit-per-channel colour as returned by color.Color.RGBA.
func fromRGBA(r, g, b uint32) (RGB, error) {
	r, g, b = r>>8, g>>8, b>>8
	if r > 255 || g > 255 || b > 255 {
		return RGB{}, fmt.Errorf("colour channel overflow (%d,%d,%d)", r, g, b)
	}
	return RGB{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}
