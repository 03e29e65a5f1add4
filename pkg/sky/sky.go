// Package sky provides the background radiance seen by escaped photons.
package sky

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Model returns background radiance for a unit view direction. Models are
// pure functions of direction and safe for concurrent use.
type Model interface {
	Sample(dir mgl32.Vec3) mgl32.Vec3
}

// Equirect maps a unit direction to equirectangular texture coordinates in
// [0,1]². u follows azimuth around the y axis, v runs from the zenith
// (v=0) to the nadir (v=1).
func Equirect(dir mgl32.Vec3) mgl32.Vec2 {
	y := mgl32.Clamp(dir[1], -1, 1)
	return mgl32.Vec2{
		0.5 - math32.Atan2(dir[2], dir[0])/(2*math32.Pi),
		0.5 - math32.Asin(y)/math32.Pi,
	}
}

// Uniform is a constant-radiance sky, used when no texture is available
type Uniform struct {
	Radiance mgl32.Vec3
}

// NewUniform creates a sky with the same radiance in every direction
func NewUniform(radiance mgl32.Vec3) *Uniform {
	return &Uniform{Radiance: radiance}
}

func (u *Uniform) Sample(mgl32.Vec3) mgl32.Vec3 {
	return u.Radiance
}
