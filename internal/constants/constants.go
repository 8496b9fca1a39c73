// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Colour extraction constants
const (
	// PixelDominanceThreshold is the minimum share of a region's opaque pixels
	// a single exact colour must cover to be returned without quantization
	PixelDominanceThreshold = 0.35

	// PaletteDominanceThreshold is the minimum share of palette entries a single
	// exact colour must cover to be returned without central-colour selection
	PaletteDominanceThreshold = 0.33

	// PixelsPerPaletteColor divides the pixel count to derive the palette size
	PixelsPerPaletteColor = 256

	// MinPaletteSize is the lower bound of the quantizer palette size
	MinPaletteSize = 16

	// MaxPaletteSize is the upper bound of the quantizer palette size
	MaxPaletteSize = 128
)

// Perceptual distance constants
const (
	// ChannelGamma linearizes 8-bit channel values: (v/255)^ChannelGamma
	ChannelGamma = 2.218

	// Luminance coefficients for linearized red, green and blue
	LumaRed   = 0.2126
	LumaGreen = 0.7156
	LumaBlue  = 0.0722

	// BlackThreshold is the luminance below which the darker colour is soft clamped
	BlackThreshold = 0.02

	// BlackClampExponent is applied to the distance from BlackThreshold
	BlackClampExponent = 1.75

	// Exponents for the lighter (background) and darker (foreground) luminance
	NormalBackgroundExponent  = 0.38
	NormalForegroundExponent  = 0.43
	ReverseBackgroundExponent = 0.5
	ReverseForegroundExponent = 0.43

	// ContrastScale scales the exponent difference into contrast units
	ContrastScale = 161.8

	// MinContrast is the magnitude below which contrast is treated as zero
	MinContrast = 15
)

// Output layout constants
const (
	// OutputDirName is the sibling directory of the image folder receiving stamped images
	OutputDirName = "output"

	// ErrorDirName is the sibling directory of the image folder receiving failed images
	ErrorDirName = "error"

	// DefaultLogFileName is the run log appended inside the image folder
	DefaultLogFileName = "log.log"

	// DefaultJPEGQuality is the encoder quality for JPEG output
	DefaultJPEGQuality = 100
)
