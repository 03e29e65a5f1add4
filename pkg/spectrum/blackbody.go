// Package spectrum maps blackbody temperatures to linear RGB colors.
package spectrum

import (
	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Valid range of the Planckian locus approximation
const (
	MinTemperature = 1667.0
	MaxTemperature = 25000.0
)

// Chromaticity returns the CIE 1931 xy chromaticity of a blackbody at the
// given temperature in Kelvin, using the cubic spline fit of Kim et al.
// Temperatures outside [MinTemperature, MaxTemperature] are clamped.
func Chromaticity(kelvin float64) (x, y float64) {
	t := min(max(kelvin, MinTemperature), MaxTemperature)
	t2 := t * t
	t3 := t2 * t

	if t <= 4000 {
		x = -0.2661239e9/t3 - 0.2343589e6/t2 + 0.8776956e3/t + 0.179910
	} else {
		x = -3.0258469e9/t3 + 2.1070379e6/t2 + 0.2226347e3/t + 0.240390
	}

	x2 := x * x
	x3 := x2 * x
	switch {
	case t <= 2222:
		y = -1.1063814*x3 - 1.34811020*x2 + 2.18555832*x - 0.20219683
	case t <= 4000:
		y = -0.9549476*x3 - 1.37418593*x2 + 2.09137015*x - 0.16748867
	default:
		y = 3.0817580*x3 - 5.87338670*x2 + 3.75112997*x - 0.37001483
	}
	return x, y
}

// Blackbody returns the linear sRGB color of a blackbody at the given
// temperature, normalised so that its brightest channel is 1
func Blackbody(kelvin float64) mgl32.Vec3 {
	x, y := Chromaticity(kelvin)
	X, Y, Z := colorful.XyyToXyz(x, y, 1)
	r, g, b := colorful.XyzToLinearRgb(X, Y, Z)

	// out-of-gamut chromaticities go slightly negative
	r, g, b = max(r, 0), max(g, 0), max(b, 0)

	peak := max(r, g, b)
	if peak <= 0 {
		return mgl32.Vec3{}
	}
	return mgl32.Vec3{float32(r / peak), float32(g / peak), float32(b / peak)}
}
