package geodesic

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Step size defaults
const (
	DefaultStep      float32 = 0.05
	DefaultMinStep   float32 = 0.005
	DefaultMaxStep   float32 = 0.1
	DefaultTolerance float32 = 1e-4
)

// State is the integrated photon state. H is only meaningful to the
// adaptive stepper, which carries its step size from one step to the next;
// a zero H starts the adaptive stepper at its maximum step.
type State struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	H        float32
}

// derivative evaluates d/dt (position, velocity) = (velocity, field(position)).
// The result reuses State as a (dp, dv) pair.
func derivative(f Field, s State) State {
	return State{Position: s.Velocity, Velocity: f(s.Position)}
}

// axpy returns s + h*d over the position and velocity blocks
func axpy(s State, h float32, d State) State {
	return State{
		Position: s.Position.Add(d.Position.Mul(h)),
		Velocity: s.Velocity.Add(d.Velocity.Mul(h)),
		H:        s.H,
	}
}

// Stepper advances a photon state by one integration step
type Stepper interface {
	// StepSize returns the step size the next Step on s will apply
	StepSize(s State) float32
	// Step advances s in place and returns the step size that was applied
	Step(s *State) float32
}

// Method selects an integration scheme
type Method int

const (
	MethodEuler Method = iota
	MethodRK4
	MethodAdaptive
)

func (m Method) String() string {
	switch m {
	case MethodEuler:
		return "euler"
	case MethodRK4:
		return "rk4"
	case MethodAdaptive:
		return "adaptive"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// New returns a stepper for method with default step parameters
func New(method Method, f Field) Stepper {
	switch method {
	case MethodRK4:
		return NewRK4(f, DefaultStep)
	case MethodAdaptive:
		return NewAdaptive(f, DefaultMinStep, DefaultMaxStep, DefaultTolerance)
	default:
		return NewEuler(f, DefaultStep)
	}
}

// Euler is a fixed-step explicit Euler integrator
type Euler struct {
	field Field
	h     float32
}

// NewEuler creates an Euler stepper with fixed step h
func NewEuler(f Field, h float32) *Euler {
	return &Euler{field: f, h: h}
}

func (e *Euler) StepSize(State) float32 { return e.h }

func (e *Euler) Step(s *State) float32 {
	*s = axpy(*s, e.h, derivative(e.field, *s))
	return e.h
}

// RK4 is the classical fixed-step fourth-order Runge–Kutta integrator
type RK4 struct {
	field Field
	h     float32
}

// NewRK4 creates an RK4 stepper with fixed step h
func NewRK4(f Field, h float32) *RK4 {
	return &RK4{field: f, h: h}
}

func (r *RK4) StepSize(State) float32 { return r.h }

func (r *RK4) Step(s *State) float32 {
	h := r.h
	k1 := derivative(r.field, *s)
	k2 := derivative(r.field, axpy(*s, h/2, k1))
	k3 := derivative(r.field, axpy(*s, h/2, k2))
	k4 := derivative(r.field, axpy(*s, h, k3))

	next := axpy(*s, h/6, k1)
	next = axpy(next, h/3, k2)
	next = axpy(next, h/3, k3)
	next = axpy(next, h/6, k4)
	*s = next
	return h
}

// Adaptive is the Bogacki–Shampine 3(2) pair used as a step size
// controller. The third-order solution is always applied; the error
// estimate only chooses the size of the next step, steps are never
// rejected and retried.
type Adaptive struct {
	field     Field
	minH      float32
	maxH      float32
	tolerance float32
}

// NewAdaptive creates an adaptive stepper bounded to [minH, maxH]
func NewAdaptive(f Field, minH, maxH, tolerance float32) *Adaptive {
	return &Adaptive{field: f, minH: minH, maxH: maxH, tolerance: tolerance}
}

// Bounds returns the step size bounds
func (a *Adaptive) Bounds() (minH, maxH float32) {
	return a.minH, a.maxH
}

// StepSize returns the carried step size, or the maximum on the first step
func (a *Adaptive) StepSize(s State) float32 {
	if s.H <= 0 {
		return a.maxH
	}
	return s.H
}

func (a *Adaptive) Step(s *State) float32 {
	h := a.StepSize(*s)

	k1 := derivative(a.field, *s)
	k2 := derivative(a.field, axpy(*s, h/2, k1))
	k3 := derivative(a.field, axpy(*s, 3*h/4, k2))

	third := axpy(*s, h*2/9, k1)
	third = axpy(third, h/3, k2)
	third = axpy(third, h*4/9, k3)

	k4 := derivative(a.field, third)

	second := axpy(*s, h*7/24, k1)
	second = axpy(second, h/4, k2)
	second = axpy(second, h/3, k3)
	second = axpy(second, h/8, k4)

	err := max(
		third.Position.Sub(second.Position).Len(),
		third.Velocity.Sub(second.Velocity).Len(),
	)

	third.H = a.nextStep(h, err)
	*s = third
	return h
}

// nextStep scales h by the safety factor and the square root of the error
// ratio, clamped to the configured bounds
func (a *Adaptive) nextStep(h, err float32) float32 {
	if !(err > 0) {
		return a.maxH
	}
	// safety factor goes inside the clamp so h stays in [minH, maxH] and
	// reaches maxH in a flat field
	next := 0.9 * h * math32.Sqrt(a.tolerance/(2*err))
	return mgl32.Clamp(next, a.minH, a.maxH)
}
