package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/df07/go-blackhole-raytracer/pkg/config"
	"github.com/df07/go-blackhole-raytracer/pkg/core"
)

func identityConfig() config.RenderConfig {
	return config.RenderConfig{
		Origin:    mgl32.Vec3{0, 0, 5},
		FOV:       mgl32.DegToRad(90),
		Transform: mgl32.Translate3D(0, 0, 5),
	}
}

func TestCameraGetRay(t *testing.T) {
	cam := NewCamera(identityConfig(), 200, 100)

	tests := []struct {
		name string
		px   mgl32.Vec2
		want mgl32.Vec3
	}{
		{"center", mgl32.Vec2{100, 50}, mgl32.Vec3{0, 0, -1}},
		{"right edge", mgl32.Vec2{200, 50}, mgl32.Vec3{1, 0, -1}.Normalize()},
		{"left edge", mgl32.Vec2{0, 50}, mgl32.Vec3{-1, 0, -1}.Normalize()},
		{"top edge", mgl32.Vec2{100, 0}, mgl32.Vec3{0, 0.5, -1}.Normalize()},
		{"bottom edge", mgl32.Vec2{100, 100}, mgl32.Vec3{0, -0.5, -1}.Normalize()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := cam.GetRay(tt.px)
			assert.Equal(t, mgl32.Vec3{0, 0, 5}, ray.Origin)
			assert.True(t, ray.Direction.ApproxEqualThreshold(tt.want, 1e-6), "got %v want %v", ray.Direction, tt.want)
		})
	}
}

func TestCameraFollowsOrbit(t *testing.T) {
	cfg := config.Default()
	cfg.Camera.Orbit(1.1, -0.3)
	rc := cfg.RenderConfig(0)
	cam := NewCamera(rc, 64, 64)

	ray := cam.GetRay(mgl32.Vec2{32, 32})
	toTarget := rc.Origin.Mul(-1).Normalize()
	assert.InDelta(t, 1, ray.Direction.Dot(toTarget), 1e-5)
}

func TestJitterCenterWithoutFeatures(t *testing.T) {
	rng := core.NewSampler(3, 4, 8, 8, 0)
	before := rng.State()
	assert.Equal(t, mgl32.Vec2{3.5, 4.5}, Jitter(3, 4, 0, &rng))
	assert.Equal(t, before, rng.State(), "no random draws without jitter features")
}

func TestJitterAntiAliasStaysInPixel(t *testing.T) {
	for i := uint32(0); i < 1000; i++ {
		rng := core.NewSampler(7, 9, 16, 16, i)
		px := Jitter(7, 9, config.AntiAlias, &rng)
		assert.GreaterOrEqual(t, px[0], float32(7))
		assert.Less(t, px[0], float32(8))
		assert.GreaterOrEqual(t, px[1], float32(9))
		assert.Less(t, px[1], float32(10))
	}
}

func TestJitterBloomFraction(t *testing.T) {
	const n = 20000
	moved := 0
	for i := uint32(0); i < n; i++ {
		rng := core.NewSampler(10, 10, 32, 32, i)
		px := Jitter(10, 10, config.Bloom, &rng)
		if px != (mgl32.Vec2{10.5, 10.5}) {
			moved++
		}
	}
	// binomial(n, 0.05): sigma ~ 31
	assert.InDelta(t, n*BloomProbability, float64(moved), 150)
}
