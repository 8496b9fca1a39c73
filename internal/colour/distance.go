package colour

import (
	"math"

	"github.com/kozaktomas/photo-stamper/internal/constants"
)

func linear(v uint8) float64 {
	return math.Pow(float64(v)/255, constants.ChannelGamma)
}

// Luminance returns the relative luminance of c from gamma-linearized channels.
func Luminance(c RGB) float64 {
	return constants.LumaRed*linear(c.R) +
		constants.LumaGreen*linear(c.G) +
		constants.LumaBlue*linear(c.B)
}

// Contrast returns the signed lightness contrast between two colours.
// The lighter colour acts as background; magnitudes below the threshold are 0.
func Contrast(a, b RGB) float64 {
	bg, txt := Luminance(a), Luminance(b)
	if txt > bg {
		bg, txt = txt, bg
	}
	if txt < constants.BlackThreshold {
		txt += math.Pow(math.Abs(txt-constants.BlackThreshold), constants.BlackClampExponent)
	}

	var c float64
	if bg > txt {
		c = (math.Pow(bg, constants.NormalBackgroundExponent) -
			math.Pow(txt, constants.NormalForegroundExponent)) * constants.ContrastScale
	} else {
		c = (math.Pow(bg, constants.ReverseBackgroundExponent) -
			math.Pow(txt, constants.ReverseForegroundExponent)) * constants.ContrastScale
	}

	if math.Abs(c) < constants.MinContrast {
		return 0
	}
	return c
}

// Distance is the squared contrast between a and b. It is symmetric and
// Distance(c, c) is 0.
func Distance(a, b RGB) float64 {
	c := Contrast(a, b)
	return c * c
}
