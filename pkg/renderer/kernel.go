package renderer

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-blackhole-raytracer/pkg/config"
	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/df07/go-blackhole-raytracer/pkg/integrator"
	"github.com/df07/go-blackhole-raytracer/pkg/sky"
)

// DefaultGamma is the display gamma applied before accumulation
const DefaultGamma = 2.2

// Kernel is the per-pixel computation for one dispatch: seed, jitter,
// camera ray, marching, validation, gamma. It holds no mutable state and
// is shared by all workers.
type Kernel struct {
	rc      config.RenderConfig
	width   int
	height  int
	gamma   float32
	camera  Camera
	marcher *integrator.Marcher
}

// NewKernel prepares the kernel for one dispatch, resolving feature bits
// into concrete strategies
func NewKernel(rc config.RenderConfig, width, height int, gamma float32, background sky.Model) *Kernel {
	if gamma <= 0 {
		gamma = DefaultGamma
	}
	return &Kernel{
		rc:      rc,
		width:   width,
		height:  height,
		gamma:   gamma,
		camera:  NewCamera(rc, width, height),
		marcher: integrator.FromRenderConfig(rc, background),
	}
}

// Sample computes the display-encoded color of pixel (x, y) for this
// dispatch's sample index. Invalid and discarded radiance becomes zero.
func (k *Kernel) Sample(x, y int) (mgl32.Vec3, integrator.Result) {
	rng := core.NewSampler(uint32(x), uint32(y), uint32(k.width), uint32(k.height), k.rc.SampleIndex)

	px := Jitter(x, y, k.rc.Features, &rng)
	res := k.marcher.Trace(k.camera.GetRay(px), &rng)

	c := core.SanitizeRadiance(res.Radiance)
	return core.GammaCorrect(c, k.gamma), res
}

// Dispatch runs the kernel over bounds and blends every pixel into buf
func (k *Kernel) Dispatch(bounds image.Rectangle, buf *AccumulationBuffer, stats *RenderStats) {
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c, res := k.Sample(x, y)
			buf.Blend(x, y, c, k.rc.SampleIndex)
			stats.AddSample(res)
		}
	}
}
