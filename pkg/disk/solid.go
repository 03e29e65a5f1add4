package disk

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Solid is the disk as an opaque, unshaded finite cylinder around the y axis
type Solid struct {
	Params
	radius     float32
	halfHeight float32
}

// NewSolid creates a solid disk of radius sqrt(p.Radius) and half-height p.Thickness
func NewSolid(p Params) *Solid {
	return &Solid{
		Params:     p,
		radius:     math32.Sqrt(p.Radius),
		halfHeight: p.Thickness,
	}
}

// Distance returns the signed distance from p to the cylinder surface,
// negative inside
func (d *Solid) Distance(p mgl32.Vec3) float32 {
	qx := math32.Sqrt(p[0]*p[0]+p[2]*p[2]) - d.radius
	qy := math32.Abs(p[1]) - d.halfHeight

	outside := mgl32.Vec2{max(qx, 0), max(qy, 0)}.Len()
	inside := min(max(qx, qy), 0)
	return inside + outside
}

// Hit reports whether p is on or inside the disk
func (d *Solid) Hit(p mgl32.Vec3) bool {
	return d.Distance(p) <= 0
}
