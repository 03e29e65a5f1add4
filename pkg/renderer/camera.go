package renderer

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-blackhole-raytracer/pkg/config"
	"github.com/df07/go-blackhole-raytracer/pkg/core"
)

// Bloom parameters: the fraction of samples thrown off-pixel and the
// spread of the throw in pixels
const (
	BloomProbability = 0.05
	BloomSigma       = 6.0
)

// Camera generates primary rays through pixel coordinates. The image plane
// sits at distance 1 along the camera's -z axis and the longer image side
// spans the field of view.
type Camera struct {
	origin    mgl32.Vec3
	transform mgl32.Mat4
	halfRes   mgl32.Vec2
	invExtent float32
	scale     float32
}

// NewCamera creates a camera for one dispatch
func NewCamera(rc config.RenderConfig, width, height int) Camera {
	w, h := float32(width), float32(height)
	return Camera{
		origin:    rc.Origin,
		transform: rc.Transform,
		halfRes:   mgl32.Vec2{w / 2, h / 2},
		invExtent: 2 / max(w, h),
		scale:     math32.Tan(rc.FOV / 2),
	}
}

// GetRay returns the ray through pixel coordinate px, where pixel (x, y)
// covers [x, x+1) × [y, y+1) and y grows downward
func (c Camera) GetRay(px mgl32.Vec2) core.Ray {
	uv := px.Sub(c.halfRes).Mul(c.invExtent * c.scale)
	local := mgl32.Vec4{uv[0], -uv[1], -1, 0}
	dir := c.transform.Mul4x1(local).Vec3().Normalize()
	return core.NewRay(c.origin, dir)
}

// Jitter perturbs the sample position inside pixel (x, y). Anti-aliasing
// draws a uniform offset within the pixel, bloom occasionally throws the
// sample a Gaussian distance away. Without either the pixel center is used.
func Jitter(x, y int, features config.Features, rng *core.Sampler) mgl32.Vec2 {
	px := mgl32.Vec2{float32(x) + 0.5, float32(y) + 0.5}

	if features.Has(config.AntiAlias) {
		px = px.Add(rng.Get2D().Sub(mgl32.Vec2{0.5, 0.5}))
	}
	if features.Has(config.Bloom) && rng.Get1D() < BloomProbability {
		px = rng.Gaussian2(px, BloomSigma)
	}
	return px
}
