package sky

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Texture is an environment map sampled with bilinear filtering. The
// horizontal coordinate wraps, the vertical one clamps at the poles.
type Texture struct {
	Width  int
	Height int
	Pixels []mgl32.Vec3 // row-major, row 0 is the zenith
}

// NewTexture creates a texture sky from row-major linear pixels
func NewTexture(width, height int, pixels []mgl32.Vec3) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

func (t *Texture) Sample(dir mgl32.Vec3) mgl32.Vec3 {
	return t.Lookup(Equirect(dir))
}

// Lookup samples the texture at uv, with texel centers at half-integers
func (t *Texture) Lookup(uv mgl32.Vec2) mgl32.Vec3 {
	if t.Width == 0 || t.Height == 0 {
		return mgl32.Vec3{}
	}

	x := uv[0]*float32(t.Width) - 0.5
	y := uv[1]*float32(t.Height) - 0.5

	x0f, y0f := math32.Floor(x), math32.Floor(y)
	fx, fy := x-x0f, y-y0f
	x0, y0 := int(x0f), int(y0f)

	c00 := t.texel(x0, y0)
	c10 := t.texel(x0+1, y0)
	c01 := t.texel(x0, y0+1)
	c11 := t.texel(x0+1, y0+1)

	top := c00.Mul(1 - fx).Add(c10.Mul(fx))
	bottom := c01.Mul(1 - fx).Add(c11.Mul(fx))
	return top.Mul(1 - fy).Add(bottom.Mul(fy))
}

func (t *Texture) texel(x, y int) mgl32.Vec3 {
	x %= t.Width
	if x < 0 {
		x += t.Width
	}
	y = max(0, min(y, t.Height-1))
	return t.Pixels[y*t.Width+x]
}
