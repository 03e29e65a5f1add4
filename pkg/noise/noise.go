// Package noise provides stateless lattice noise: value noise, 2D simplex
// noise and a fractal sum of value noise. Hashing uses the polynomial
// permutation (34x²+x) mod 289, so there are no shared tables.
package noise

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func mod289(x float32) float32 {
	r := math32.Mod(x, 289)
	if r < 0 {
		r += 289
	}
	return r
}

func permute(x float32) float32 {
	return mod289((x*34.0 + 1.0) * x)
}

func fract(x float32) float32 {
	return x - math32.Floor(x)
}

// Hash returns a pseudo-random value in [0, 1) for an integer lattice point
func Hash(x, y, z float32) float32 {
	h := permute(permute(permute(mod289(x))+mod289(y)) + mod289(z))
	return h * (1.0 / 289.0)
}

// Value3 returns trilinearly interpolated value noise in [0, 1)
func Value3(p mgl32.Vec3) float32 {
	ix, iy, iz := math32.Floor(p[0]), math32.Floor(p[1]), math32.Floor(p[2])
	fx, fy, fz := p[0]-ix, p[1]-iy, p[2]-iz

	// smoothstep weights
	ux := fx * fx * (3 - 2*fx)
	uy := fy * fy * (3 - 2*fy)
	uz := fz * fz * (3 - 2*fz)

	c000 := Hash(ix, iy, iz)
	c100 := Hash(ix+1, iy, iz)
	c010 := Hash(ix, iy+1, iz)
	c110 := Hash(ix+1, iy+1, iz)
	c001 := Hash(ix, iy, iz+1)
	c101 := Hash(ix+1, iy, iz+1)
	c011 := Hash(ix, iy+1, iz+1)
	c111 := Hash(ix+1, iy+1, iz+1)

	x00 := lerp(c000, c100, ux)
	x10 := lerp(c010, c110, ux)
	x01 := lerp(c001, c101, ux)
	x11 := lerp(c011, c111, ux)

	return lerp(lerp(x00, x10, uy), lerp(x01, x11, uy), uz)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Simplex2 constants: (3-√3)/6, (√3-1)/2, -1+2*C0, 1/41
const (
	c0 = 0.211324865405187
	c1 = 0.366025403784439
	c2 = -0.577350269189626
	c3 = 0.024390243902439
)

// Simplex2 returns 2D simplex noise in roughly [-1, 1]
func Simplex2(v mgl32.Vec2) float32 {
	// skewed cell origin
	s := (v[0] + v[1]) * c1
	ix := math32.Floor(v[0] + s)
	iy := math32.Floor(v[1] + s)

	t := (ix + iy) * c0
	x0 := v[0] - ix + t
	y0 := v[1] - iy + t

	var i1x, i1y float32
	if x0 > y0 {
		i1x = 1
	} else {
		i1y = 1
	}

	x1 := x0 + c0 - i1x
	y1 := y0 + c0 - i1y
	x2 := x0 + c2
	y2 := y0 + c2

	ix = mod289(ix)
	iy = mod289(iy)

	p := [3]float32{
		permute(permute(iy) + ix),
		permute(permute(iy+i1y) + ix + i1x),
		permute(permute(iy+1) + ix + 1),
	}

	m := [3]float32{
		max(0.5-(x0*x0+y0*y0), 0),
		max(0.5-(x1*x1+y1*y1), 0),
		max(0.5-(x2*x2+y2*y2), 0),
	}

	px := [3]float32{x0, x1, x2}
	py := [3]float32{y0, y1, y2}

	var n float32
	for i := range p {
		mi := m[i] * m[i]
		mi *= mi

		// gradients from 41 points on a line mapped onto a diamond
		x := 2*fract(p[i]*c3) - 1
		h := math32.Abs(x) - 0.5
		a0 := x - math32.Floor(x+0.5)

		// normalise gradient implicitly by scaling m
		mi *= 1.79284291400159 - 0.85373472095314*(a0*a0+h*h)

		n += mi * (a0*px[i] + h*py[i])
	}

	return 130 * n
}

// Fractal sums octaves of Value3, halving amplitude and scaling frequency
// by 2.5 each octave. The sum is normalised by the total amplitude unless
// that total is zero.
func Fractal(p mgl32.Vec3, octaves int) float32 {
	var sum, weight float32
	amplitude := float32(1)
	frequency := float32(1)

	for i := 0; i < octaves; i++ {
		sum += amplitude * Value3(p.Mul(frequency))
		weight += amplitude
		amplitude *= 0.5
		frequency *= 2.5
	}

	if weight == 0 {
		return sum
	}
	return sum / weight
}
