package integrator

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-blackhole-raytracer/pkg/config"
	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/df07/go-blackhole-raytracer/pkg/disk"
	"github.com/df07/go-blackhole-raytracer/pkg/geodesic"
	"github.com/df07/go-blackhole-raytracer/pkg/sky"
)

// State is the phase of a photon in the ray marching loop
type State int

const (
	Marching  State = iota
	Absorbed        // fell into the horizon or hit the opaque disk
	Escaped         // left the skybox, or ran out of steps
	Discarded       // trapped in the volumetric disk, sample must be dropped
)

func (s State) String() string {
	switch s {
	case Marching:
		return "marching"
	case Absorbed:
		return "absorbed"
	case Escaped:
		return "escaped"
	case Discarded:
		return "discarded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DiscardedRadiance is the invalid value returned for discarded samples.
// It fails core.IsValidRadiance and is zeroed before accumulation.
var DiscardedRadiance = mgl32.Vec3{-1, -1, -1}

// Limits bounds the marching loop
type Limits struct {
	HorizonRadius float32
	SkyboxRadius  float32
	MaxSteps      int
	MaxBounces    int
}

// DefaultLimits returns the standard scene scale and loop ceilings
func DefaultLimits() Limits {
	return Limits{
		HorizonRadius: geodesic.HorizonRadius,
		SkyboxRadius:  3.6,
		MaxSteps:      256,
		MaxBounces:    8,
	}
}

// Result is the outcome of marching one photon
type Result struct {
	Radiance mgl32.Vec3
	State    State
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Steps    int
	Bounces  int
}

// Marcher integrates photons through the gravitational field, collecting
// disk emission along the way and sky radiance on escape. A Marcher is
// built once per dispatch and shared read-only by every pixel.
type Marcher struct {
	limits    Limits
	stepper   geodesic.Stepper
	sky       sky.Model
	volume    *disk.Volume
	solid     *disk.Solid
	diskColor mgl32.Vec3
}

// NewMarcher creates a marcher with no disk
func NewMarcher(limits Limits, stepper geodesic.Stepper, background sky.Model) *Marcher {
	return &Marcher{
		limits:  limits,
		stepper: stepper,
		sky:     background,
	}
}

// WithVolume adds a volumetric disk, replacing any solid disk
func (m *Marcher) WithVolume(v *disk.Volume) *Marcher {
	m.volume, m.solid = v, nil
	m.diskColor = v.Color
	return m
}

// WithSolid adds an opaque disk, replacing any volumetric disk
func (m *Marcher) WithSolid(s *disk.Solid) *Marcher {
	m.solid, m.volume = s, nil
	m.diskColor = s.Color
	return m
}

// MethodFor resolves the integration scheme from feature bits. Adaptive
// wins over RK4; neither selects Euler.
func MethodFor(f config.Features) geodesic.Method {
	switch {
	case f.Has(config.Adaptive):
		return geodesic.MethodAdaptive
	case f.Has(config.RK4):
		return geodesic.MethodRK4
	default:
		return geodesic.MethodEuler
	}
}

// FromRenderConfig builds the marcher for one dispatch. Feature bits are
// resolved here once instead of per step. The signed-distance disk wins if
// both disk bits are set.
func FromRenderConfig(rc config.RenderConfig, background sky.Model) *Marcher {
	m := NewMarcher(DefaultLimits(), geodesic.New(MethodFor(rc.Features), geodesic.Gravity), background)

	params := disk.Params{
		Color:     rc.DiskColor,
		Radius:    rc.DiskRadius,
		Thickness: rc.DiskThickness,
	}
	switch {
	case rc.Features.Has(config.DiskSDF):
		m.WithSolid(disk.NewSolid(params))
	case rc.Features.Has(config.DiskVolumetric):
		m.WithVolume(disk.NewVolume(params))
	}
	return m
}

// Limits returns the loop bounds
func (m *Marcher) Limits() Limits {
	return m.limits
}

// Trace marches a photon starting at ray.Origin with velocity ray.Direction
func (m *Marcher) Trace(ray core.Ray, rng *core.Sampler) Result {
	s := geodesic.State{Position: ray.Origin, Velocity: ray.Direction}
	radiance := mgl32.Vec3{}
	attenuation := mgl32.Vec3{1, 1, 1}
	bounces := 0

	horizon2 := m.limits.HorizonRadius * m.limits.HorizonRadius
	skybox2 := m.limits.SkyboxRadius * m.limits.SkyboxRadius

	result := func(state State, c mgl32.Vec3, steps int) Result {
		return Result{
			Radiance: c,
			State:    state,
			Position: s.Position,
			Velocity: s.Velocity,
			Steps:    steps,
			Bounces:  bounces,
		}
	}

	for step := 0; step < m.limits.MaxSteps; step++ {
		if bounces > m.limits.MaxBounces {
			return result(Discarded, DiscardedRadiance, step)
		}

		r2 := s.Position.LenSqr()
		if r2 < horizon2 {
			return result(Absorbed, radiance, step)
		}
		// only outbound photons escape, so a camera beyond the skybox can look in
		if r2 > skybox2 && s.Position.Dot(s.Velocity) >= 0 {
			return result(Escaped, radiance.Add(m.background(s.Velocity, attenuation)), step)
		}

		if m.solid != nil && m.solid.Hit(s.Position) {
			return result(Absorbed, m.diskColor, step)
		}

		if m.volume != nil {
			if sample, ok := m.volume.Sample(s.Position, rng); ok {
				h := m.stepper.StepSize(s)
				radiance = radiance.Add(core.MulVec(attenuation, sample.Emission).Mul(h))

				if disk.Scatters(h, sample.Density, rng) {
					s.Velocity = rng.UnitSphere().Mul(s.Velocity.Len())
					attenuation = core.MulVec(attenuation, m.diskColor)
					bounces++
				}
			}
		}

		m.stepper.Step(&s)
	}

	// soft timeout, treated as an escape
	return result(Escaped, radiance.Add(m.background(s.Velocity, attenuation)), m.limits.MaxSteps)
}

func (m *Marcher) background(v, attenuation mgl32.Vec3) mgl32.Vec3 {
	if m.sky == nil {
		return mgl32.Vec3{}
	}
	return core.MulVec(attenuation, m.sky.Sample(v.Normalize()))
}
