package core

import "github.com/go-gl/mathgl/mgl32"

// validComponent reports whether x is a finite, non-negative radiance value.
// NaN fails self-comparison; of all floats only 0 and ±Inf survive doubling.
func validComponent(x float32) bool {
	if x != x {
		return false
	}
	if x*2 == x && x != 0 {
		return false
	}
	return x >= 0
}

// IsValidRadiance reports whether every component of c is finite and non-negative
func IsValidRadiance(c mgl32.Vec3) bool {
	return validComponent(c[0]) && validComponent(c[1]) && validComponent(c[2])
}

// SanitizeRadiance replaces an invalid sample with zero radiance so that it
// can still be blended into the running mean
func SanitizeRadiance(c mgl32.Vec3) mgl32.Vec3 {
	if IsValidRadiance(c) {
		return c
	}
	return mgl32.Vec3{}
}
