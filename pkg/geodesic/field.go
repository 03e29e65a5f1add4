// Package geodesic advances photon state through the black hole's
// approximate gravitational field.
package geodesic

import "github.com/go-gl/mathgl/mgl32"

// HorizonRadius is the event horizon radius; photons closer than this to
// the origin are absorbed.
const HorizonRadius float32 = 0.6

// Field returns the acceleration a photon experiences at position p
type Field func(p mgl32.Vec3) mgl32.Vec3

// Gravity is the inverse-fifth-power central field -6·r/|r|^5 with
// r = p/HorizonRadius. It is singular at the origin; callers stop marching
// before reaching the horizon so it is never evaluated there.
func Gravity(p mgl32.Vec3) mgl32.Vec3 {
	r := p.Mul(1 / HorizonRadius)
	rn := r.Len()
	return r.Mul(-6 / (rn * rn * rn * rn * rn))
}

// NoField is a zero field, useful for straight-line propagation
func NoField(mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{}
}
