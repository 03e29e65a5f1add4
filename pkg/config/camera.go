package config

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	minPhi = 0.1
	maxPhi = math32.Pi - 0.1
)

// OrbitCamera orbits a target at a bounded distance. Phi is the
// inclination from +y, Theta the azimuth in the xz plane.
type OrbitCamera struct {
	FOV       float32    `toml:"fov" yaml:"fov" validate:"gt=0,lt=180"` // degrees
	Radius    float32    `toml:"radius" yaml:"radius" validate:"gt=0"`
	MinRadius float32    `toml:"min_radius" yaml:"min_radius" validate:"gte=0"`
	MaxRadius float32    `toml:"max_radius" yaml:"max_radius" validate:"gtfield=MinRadius"`
	Target    [3]float32 `toml:"target" yaml:"target"`
	Phi       float32    `toml:"phi" yaml:"phi"`
	Theta     float32    `toml:"theta" yaml:"theta"`
}

// DefaultOrbitCamera looks at the origin from distance 3.3 with a 90° field of view
func DefaultOrbitCamera() OrbitCamera {
	return OrbitCamera{
		FOV:       90,
		Radius:    3.3,
		MinRadius: 0.5,
		MaxRadius: 3.5,
		Phi:       math32.Pi / 2,
		Theta:     0,
	}
}

// Eye returns the camera position
func (c OrbitCamera) Eye() mgl32.Vec3 {
	ts, tc := math32.Sin(c.Theta), math32.Cos(c.Theta)
	ps, pc := math32.Sin(c.Phi), math32.Cos(c.Phi)
	offset := mgl32.Vec3{ps * tc, pc, ps * ts}.Mul(c.Radius)
	return mgl32.Vec3(c.Target).Add(offset)
}

// View returns the camera-to-world transform. The camera looks down its
// local -z axis with +y up.
func (c OrbitCamera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), mgl32.Vec3(c.Target), mgl32.Vec3{0, 1, 0}).Inv()
}

// FOVRadians returns the field of view in radians
func (c OrbitCamera) FOVRadians() float32 {
	return mgl32.DegToRad(c.FOV)
}

// Orbit moves the camera by dTheta around the vertical axis and dPhi in
// inclination, keeping clear of the poles.
func (c *OrbitCamera) Orbit(dTheta, dPhi float32) {
	c.Theta += dTheta
	c.Phi = mgl32.Clamp(c.Phi+dPhi, minPhi, maxPhi)
}

// Zoom changes the orbit radius by delta if the result stays within
// [MinRadius, MaxRadius]; otherwise the camera does not move.
func (c *OrbitCamera) Zoom(delta float32) {
	zoomed := c.Radius + delta
	if zoomed >= c.MinRadius && zoomed <= c.MaxRadius {
		c.Radius = zoomed
	}
}
