package sky

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-blackhole-raytracer/pkg/noise"
	"github.com/df07/go-blackhole-raytracer/pkg/spectrum"
)

const (
	starOctaves      = 8
	starBaseScale    = 48.0
	starScaleGrowth  = 1.7
	starBaseTempK    = 6500.0
	starTempSpreadK  = 3500.0
	starTempFreqU    = 400.0
	starTempFreqV    = 200.0
	starMinSize      = 0.02
	starSizeVariance = 0.06
)

// Procedural is a starfield built from layered cellular star placement.
// Each octave hashes a grid cell to place one star of random size and
// offset; star color comes from a blackbody temperature driven by simplex
// noise over the same coordinates.
type Procedural struct {
	Brightness float32
}

// NewProcedural creates a procedural starfield with the given brightness
func NewProcedural(brightness float32) *Procedural {
	return &Procedural{Brightness: brightness}
}

func (p *Procedural) Sample(dir mgl32.Vec3) mgl32.Vec3 {
	uv := Equirect(dir)
	intensity := p.Brightness * starIntensity(uv)
	if intensity <= 0 {
		return mgl32.Vec3{}
	}

	t := noise.Simplex2(mgl32.Vec2{uv[0] * starTempFreqU, uv[1] * starTempFreqV})
	kelvin := starBaseTempK + starTempSpreadK*t
	return spectrum.Blackbody(float64(kelvin)).Mul(intensity)
}

func starIntensity(uv mgl32.Vec2) float32 {
	var intensity float32
	scale := float32(starBaseScale)

	for i := 0; i < starOctaves; i++ {
		// u spans twice the angle of v, so cells are twice as many across
		gx, gy := uv[0]*scale*2, uv[1]*scale
		cx, cy := math32.Floor(gx), math32.Floor(gy)
		fx, fy := gx-cx, gy-cy

		h := noise.Hash(cx, cy, float32(i))
		ox := 0.2 + 0.6*h
		oy := 0.2 + 0.6*noise.Hash(cy, cx, float32(i)+0.5)
		size := starMinSize + starSizeVariance*h*h

		dx, dy := fx-ox, fy-oy
		d := math32.Sqrt(dx*dx + dy*dy)
		falloff := max(0, 1-d/size)
		intensity += falloff * falloff / float32(1+i)

		scale *= starScaleGrowth
	}
	return intensity
}
