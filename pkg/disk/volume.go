package disk

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/df07/go-blackhole-raytracer/pkg/noise"
	"github.com/df07/go-blackhole-raytracer/pkg/spectrum"
)

// Volume shaping constants
const (
	volumeOctaves     = 8
	noiseScale        = 2.0
	noiseHeightScale  = 4.0
	swirlRadial       = 2.5
	swirlHeight       = 4.0
	emissionStrength  = 4.0
	emissionFalloff   = 1.5
	densityStrength   = 20.0
	densityFalloff    = 4.0
	minDiskTempKelvin = 2500.0
	maxDiskTempKelvin = 10000.0
)

// Volume is a turbulent, emissive and absorbing disk driven by fractal noise
type Volume struct {
	Params
}

// NewVolume creates a volumetric disk
func NewVolume(p Params) *Volume {
	return &Volume{Params: p}
}

// Contains reports whether p lies inside the disk's bounding region
func (d *Volume) Contains(p mgl32.Vec3) bool {
	r2 := p[0]*p[0] + p[2]*p[2]
	return r2 <= d.Radius && p[1]*p[1] <= d.Thickness
}

// Sample evaluates emission and density at p. Outside the bounding region
// it returns a zero sample and false. The sampler supplies the emission
// temperature, so emission color varies from sample to sample.
func (d *Volume) Sample(p mgl32.Vec3, rng *core.Sampler) (Sample, bool) {
	if !d.Contains(p) {
		return Sample{}, false
	}

	r2 := p[0]*p[0] + p[2]*p[2]
	r := math32.Sqrt(r2)

	// inner rings are wound further than outer ones, and height adds shear
	angle := swirlRadial/(r+0.25) + swirlHeight*p[1]
	sin, cos := math32.Sin(angle), math32.Cos(angle)
	q := mgl32.Vec3{
		(cos*p[0] - sin*p[2]) * noiseScale,
		p[1] * noiseScale * noiseHeightScale,
		(sin*p[0] + cos*p[2]) * noiseScale,
	}
	n := noise.Fractal(q, volumeOctaves)

	t := r2 / d.Radius
	emitTerm := math32.Exp(-emissionFalloff * r)
	densityTerm := math32.Exp(-densityFalloff*t) * (1 - p[1]*p[1]/d.Thickness)

	kelvin := minDiskTempKelvin + (maxDiskTempKelvin-minDiskTempKelvin)*rng.Get1D()
	color := spectrum.Blackbody(float64(kelvin))

	return Sample{
		Emission: color.Mul(n * emitTerm * emissionStrength),
		Density:  n * densityTerm * densityStrength,
	}, true
}

// ScatterProbability is the Beer–Lambert probability that a photon
// travelling a distance h through extinction density interacts with the
// medium
func ScatterProbability(h, density float32) float32 {
	return 1 - math32.Exp(-h*density)
}

// Scatters draws whether the photon interacts over a step of size h
func Scatters(h, density float32, rng *core.Sampler) bool {
	return rng.Get1D() < ScatterProbability(h, density)
}
