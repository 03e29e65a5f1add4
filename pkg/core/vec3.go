package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MulVec returns component-wise multiplication of two vectors
func MulVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// Mix linearly interpolates from a towards b by t, written so that
// Mix(c, c, t) == c exactly for any t
func Mix(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// MaxComponent returns the largest component of v
func MaxComponent(v mgl32.Vec3) float32 {
	return max(v[0], v[1], v[2])
}

// Luminance returns the perceptual luminance of an RGB color
// Uses standard luminance weights: 0.299*R + 0.587*G + 0.114*B
func Luminance(v mgl32.Vec3) float32 {
	return 0.299*v[0] + 0.587*v[1] + 0.114*v[2]
}

// GammaCorrect applies gamma correction to color values
func GammaCorrect(v mgl32.Vec3, gamma float32) mgl32.Vec3 {
	invGamma := 1.0 / gamma
	return mgl32.Vec3{
		math32.Pow(v[0], invGamma),
		math32.Pow(v[1], invGamma),
		math32.Pow(v[2], invGamma),
	}
}

// Clamp returns a vector with components clamped to [minVal, maxVal]
func Clamp(v mgl32.Vec3, minVal, maxVal float32) mgl32.Vec3 {
	return mgl32.Vec3{
		mgl32.Clamp(v[0], minVal, maxVal),
		mgl32.Clamp(v[1], minVal, maxVal),
		mgl32.Clamp(v[2], minVal, maxVal),
	}
}

// Ray represents a ray with an origin and direction
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// NewRay creates a new ray
func NewRay(origin, direction mgl32.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}
