// Package disk models the accretion disk, either as an emissive and
// absorbing volume or as a solid signed-distance cylinder.
package disk

import "github.com/go-gl/mathgl/mgl32"

// Params describes the disk as configured by the host. Radius is compared
// against the squared horizontal distance, so the geometric radius of the
// disk is sqrt(Radius); Thickness is likewise compared against y² by the
// volumetric model and used directly as the half-height of the solid one.
type Params struct {
	Color     mgl32.Vec3
	Radius    float32
	Thickness float32
}

// DefaultParams returns the default disk
func DefaultParams() Params {
	return Params{
		Color:     mgl32.Vec3{0.3, 0.2, 0.1},
		Radius:    8,
		Thickness: 0.1,
	}
}

// Sample is the disk's local emission and extinction at one point
type Sample struct {
	Emission mgl32.Vec3
	Density  float32
}
