package integrator

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-blackhole-raytracer/pkg/config"
	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/df07/go-blackhole-raytracer/pkg/disk"
	"github.com/df07/go-blackhole-raytracer/pkg/geodesic"
	"github.com/df07/go-blackhole-raytracer/pkg/sky"
)

func newSampler(i uint32) core.Sampler {
	return core.NewSampler(i%64, i/64, 64, 64, 0)
}

// A camera outside the skybox aimed at the center falls into the horizon.
func TestTraceAbsorbedAtHorizon(t *testing.T) {
	for _, method := range []geodesic.Method{geodesic.MethodEuler, geodesic.MethodRK4, geodesic.MethodAdaptive} {
		t.Run(method.String(), func(t *testing.T) {
			m := NewMarcher(DefaultLimits(), geodesic.New(method, geodesic.Gravity), sky.NewUniform(mgl32.Vec3{1, 1, 1}))
			rng := newSampler(0)

			res := m.Trace(core.NewRay(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1}), &rng)

			assert.Equal(t, Absorbed, res.State)
			assert.Equal(t, mgl32.Vec3{}, res.Radiance, "no sky behind the horizon")
			assert.Less(t, res.Position.Len(), geodesic.HorizonRadius)
			assert.Less(t, res.Steps, DefaultLimits().MaxSteps)
		})
	}
}

// A tangential ray far from the hole escapes almost undeflected and
// returns the sky sample for its final direction.
func TestTraceEscapesToSky(t *testing.T) {
	background := sky.NewProcedural(1)
	m := NewMarcher(DefaultLimits(), geodesic.New(geodesic.MethodRK4, geodesic.Gravity), background)
	rng := newSampler(1)

	dir := mgl32.Vec3{1, 0, 0}
	res := m.Trace(core.NewRay(mgl32.Vec3{0, 3.2, 0}, dir), &rng)

	require.Equal(t, Escaped, res.State)
	assert.Greater(t, res.Position.Len(), DefaultLimits().SkyboxRadius)
	assert.Greater(t, res.Velocity.Normalize().Dot(dir), float32(0.99))
	assert.Equal(t, background.Sample(res.Velocity.Normalize()), res.Radiance)
	assert.Zero(t, res.Bounces)
}

// A ray aimed through the plane of an opaque disk returns the flat disk color.
func TestTraceSolidDiskHit(t *testing.T) {
	color := mgl32.Vec3{0.3, 0.2, 0.1}
	m := NewMarcher(DefaultLimits(), geodesic.New(geodesic.MethodEuler, geodesic.Gravity), sky.NewUniform(mgl32.Vec3{1, 1, 1})).
		WithSolid(disk.NewSolid(disk.Params{Color: color, Radius: 8, Thickness: 0.1}))
	rng := newSampler(2)

	res := m.Trace(core.NewRay(mgl32.Vec3{3.0, 0, 0}, mgl32.Vec3{-1, 0, 0}), &rng)

	assert.Equal(t, Absorbed, res.State)
	assert.Equal(t, color, res.Radiance)
	// the rim at sqrt(8) is 0.17 away; a few steps of 0.05 reach it
	assert.LessOrEqual(t, res.Steps, 5)
	assert.LessOrEqual(t, res.Position.Vec2().Len(), float32(2.83))
}

func TestTraceSoftTimeout(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxSteps = 3
	skyColor := mgl32.Vec3{0.2, 0.4, 0.6}
	m := NewMarcher(limits, geodesic.New(geodesic.MethodEuler, geodesic.Gravity), sky.NewUniform(skyColor))
	rng := newSampler(3)

	res := m.Trace(core.NewRay(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{1, 0, 0}), &rng)

	assert.Equal(t, Escaped, res.State)
	assert.Equal(t, 3, res.Steps)
	assert.Equal(t, skyColor, res.Radiance)
}

// A dense, unbounded medium traps photons until the bounce budget runs out.
func TestTraceDiscardsTrappedPhotons(t *testing.T) {
	medium := disk.NewVolume(disk.Params{Color: mgl32.Vec3{0.5, 0.5, 0.5}, Radius: 1000, Thickness: 1000})
	m := NewMarcher(DefaultLimits(), geodesic.New(geodesic.MethodEuler, geodesic.Gravity), sky.NewUniform(mgl32.Vec3{1, 1, 1})).
		WithVolume(medium)

	discarded := 0
	for i := uint32(0); i < 100; i++ {
		rng := newSampler(i)
		res := m.Trace(core.NewRay(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{0, 1, 0}), &rng)
		if res.State != Discarded {
			continue
		}
		discarded++
		assert.Equal(t, DiscardedRadiance, res.Radiance)
		assert.Equal(t, DefaultLimits().MaxBounces+1, res.Bounces)
		assert.False(t, core.IsValidRadiance(res.Radiance))
	}
	assert.GreaterOrEqual(t, discarded, 80)
}

// Scattering redraws the direction but keeps the photon's speed.
func TestTraceScatterPreservesSpeed(t *testing.T) {
	medium := disk.NewVolume(disk.Params{Color: mgl32.Vec3{1, 1, 1}, Radius: 1000, Thickness: 1000})
	limits := DefaultLimits()
	limits.MaxSteps = 1
	m := NewMarcher(limits, geodesic.New(geodesic.MethodEuler, geodesic.NoField), nil).WithVolume(medium)

	for i := uint32(0); i < 200; i++ {
		rng := newSampler(i)
		res := m.Trace(core.NewRay(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{0, 0.8, 0}), &rng)
		assert.InDelta(t, 0.8, res.Velocity.Len(), 1e-5)
	}
}

func TestTraceVolumeEmits(t *testing.T) {
	m := NewMarcher(DefaultLimits(), geodesic.New(geodesic.MethodRK4, geodesic.Gravity), nil).
		WithVolume(disk.NewVolume(disk.DefaultParams()))

	lit := 0
	for i := uint32(0); i < 64; i++ {
		rng := newSampler(i)
		// grazing the disk plane from above
		res := m.Trace(core.NewRay(mgl32.Vec3{0, 0.1, 2.5}, mgl32.Vec3{0, -0.05, -1}.Normalize()), &rng)
		if res.State == Discarded {
			continue
		}
		assert.True(t, core.IsValidRadiance(res.Radiance), "radiance %v", res.Radiance)
		if res.Radiance.Len() > 0 {
			lit++
		}
	}
	assert.Greater(t, lit, 0)
}

func TestTraceDeterministic(t *testing.T) {
	m := FromRenderConfig(config.Default().RenderConfig(0), sky.NewProcedural(1))
	ray := core.NewRay(mgl32.Vec3{0.2, 0.05, 2.5}, mgl32.Vec3{-0.1, -0.02, -1}.Normalize())

	a, b := newSampler(42), newSampler(42)
	assert.Equal(t, m.Trace(ray, &a), m.Trace(ray, &b))
}

func TestMethodFor(t *testing.T) {
	tests := []struct {
		features config.Features
		want     geodesic.Method
	}{
		{0, geodesic.MethodEuler},
		{config.RK4, geodesic.MethodRK4},
		{config.Adaptive, geodesic.MethodAdaptive},
		{config.RK4 | config.Adaptive, geodesic.MethodAdaptive},
		{config.AntiAlias | config.Bloom, geodesic.MethodEuler},
	}
	for _, tt := range tests {
		t.Run(tt.features.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, MethodFor(tt.features))
		})
	}
}

func TestFromRenderConfig(t *testing.T) {
	rc := config.Default().RenderConfig(0)

	rc.Features = config.DiskVolumetric | config.RK4
	m := FromRenderConfig(rc, nil)
	assert.NotNil(t, m.volume)
	assert.Nil(t, m.solid)
	assert.IsType(t, &geodesic.RK4{}, m.stepper)

	rc.Features = config.DiskSDF | config.DiskVolumetric
	m = FromRenderConfig(rc, nil)
	assert.NotNil(t, m.solid)
	assert.Nil(t, m.volume)
	assert.Equal(t, rc.DiskColor, m.diskColor)

	rc.Features = 0
	m = FromRenderConfig(rc, nil)
	assert.Nil(t, m.solid)
	assert.Nil(t, m.volume)
	assert.IsType(t, &geodesic.Euler{}, m.stepper)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "absorbed", Absorbed.String())
	assert.Equal(t, "State(9)", State(9).String())
}
