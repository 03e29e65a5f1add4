package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Sampler is a counter-based PCG4D stream. Every draw hashes the whole
// four-word state forward, so a stream depends only on its seed.
//
// A Sampler is owned by exactly one pixel invocation; it is a plain value
// and is never shared between goroutines.
type Sampler struct {
	state [4]uint32
}

// NewSampler returns a sampler seeded for one pixel of one sample pass
func NewSampler(x, y, width, height, sampleIndex uint32) Sampler {
	var s Sampler
	s.Seed(x, y, width, height, sampleIndex)
	return s
}

// Seed resets the stream for pixel (x, y) of a width x height image at the
// given sample index. The same arguments always produce the same stream.
func (s *Sampler) Seed(x, y, width, height, sampleIndex uint32) {
	s.state = [4]uint32{x, y, sampleIndex, (y*width + x) ^ (height << 16)}
	pcg4d(&s.state)
}

// State returns a copy of the raw generator state
func (s *Sampler) State() [4]uint32 {
	return s.state
}

// pcg4d advances v in place: multiply-add per lane, cross-lane feedback,
// xorshift, then a second round of feedback.
func pcg4d(v *[4]uint32) {
	for i := range v {
		v[i] = v[i]*1664525 + 1013904223
	}

	v[0] += v[1] * v[3]
	v[1] += v[2] * v[0]
	v[2] += v[0] * v[1]
	v[3] += v[1] * v[2]

	for i := range v {
		v[i] ^= v[i] >> 16
	}

	v[0] += v[1] * v[3]
	v[1] += v[2] * v[0]
	v[2] += v[0] * v[1]
	v[3] += v[1] * v[2]
}

// toUnit maps the top 24 bits of u onto [0, 1) without rounding up to 1
func toUnit(u uint32) float32 {
	return float32(u>>8) * (1.0 / 16777216.0)
}

func (s *Sampler) next() [4]uint32 {
	pcg4d(&s.state)
	return s.state
}

// Get1D returns a random float32 in [0, 1)
func (s *Sampler) Get1D() float32 {
	v := s.next()
	return toUnit(v[0])
}

// Get2D returns two random values in [0, 1)
func (s *Sampler) Get2D() mgl32.Vec2 {
	v := s.next()
	return mgl32.Vec2{toUnit(v[0]), toUnit(v[1])}
}

// Get3D returns three random values in [0, 1)
func (s *Sampler) Get3D() mgl32.Vec3 {
	v := s.next()
	return mgl32.Vec3{toUnit(v[0]), toUnit(v[1]), toUnit(v[2])}
}

// Get4D returns four random values in [0, 1)
func (s *Sampler) Get4D() mgl32.Vec4 {
	v := s.next()
	return mgl32.Vec4{toUnit(v[0]), toUnit(v[1]), toUnit(v[2]), toUnit(v[3])}
}

// UnitCircle returns a uniformly distributed point on the unit circle
func (s *Sampler) UnitCircle() mgl32.Vec2 {
	phi := 2 * math32.Pi * s.Get1D()
	return mgl32.Vec2{math32.Cos(phi), math32.Sin(phi)}
}

// UnitSphere returns a uniformly distributed direction on the unit sphere.
// Azimuth is uniform in [0, 2π); inclination is acos(2u-1) so that area is
// sampled uniformly rather than angle.
func (s *Sampler) UnitSphere() mgl32.Vec3 {
	u := s.Get2D()
	phi := 2 * math32.Pi * u[0]
	theta := math32.Acos(2*u[1] - 1)

	sinTheta := math32.Sin(theta)
	return mgl32.Vec3{
		sinTheta * math32.Cos(phi),
		math32.Cos(theta),
		sinTheta * math32.Sin(phi),
	}
}

// Gaussian2 returns a 2D normal deviate with the given mean and standard
// deviation, using the Box–Muller transform on two uniform draws
func (s *Sampler) Gaussian2(mean mgl32.Vec2, sigma float32) mgl32.Vec2 {
	u := s.Get2D()
	// 1-u is in (0, 1], keeping the log finite
	r := math32.Sqrt(-2*math32.Log(1-u[0])) * sigma
	phi := 2 * math32.Pi * u[1]
	return mgl32.Vec2{
		mean[0] + r*math32.Cos(phi),
		mean[1] + r*math32.Sin(phi),
	}
}
