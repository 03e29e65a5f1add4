package renderer

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/df07/go-blackhole-raytracer/pkg/integrator"
)

// RenderStats contains statistics about one or more dispatches
type RenderStats struct {
	TotalSamples int // Samples taken
	Absorbed     int // Photons that fell into the horizon or hit the opaque disk
	Escaped      int // Photons that reached the sky, including soft timeouts
	Discarded    int // Photons dropped after exhausting the bounce budget
	Invalid      int // Samples with NaN, infinite or negative radiance
	TotalSteps   int // Integration steps over all samples
	TotalBounces int // Disk scattering events over all samples
}

// AddSample records the outcome of one kernel invocation
func (s *RenderStats) AddSample(res integrator.Result) {
	s.TotalSamples++
	s.TotalSteps += res.Steps
	s.TotalBounces += res.Bounces

	switch res.State {
	case integrator.Absorbed:
		s.Absorbed++
	case integrator.Escaped:
		s.Escaped++
	case integrator.Discarded:
		s.Discarded++
	}
	if res.State != integrator.Discarded && !core.IsValidRadiance(res.Radiance) {
		s.Invalid++
	}
}

// Merge adds other into s
func (s *RenderStats) Merge(other RenderStats) {
	s.TotalSamples += other.TotalSamples
	s.Absorbed += other.Absorbed
	s.Escaped += other.Escaped
	s.Discarded += other.Discarded
	s.Invalid += other.Invalid
	s.TotalSteps += other.TotalSteps
	s.TotalBounces += other.TotalBounces
}

// AverageSteps returns the mean integration steps per sample
func (s RenderStats) AverageSteps() float64 {
	if s.TotalSamples == 0 {
		return 0
	}
	return float64(s.TotalSteps) / float64(s.TotalSamples)
}

// FrameStats summarizes one rendered frame
type FrameStats struct {
	Frame         int           // 1-based frame number within the epoch
	SampleIndex   uint32        // Next sample index after this frame
	Samples       RenderStats   // Kernel outcomes for this frame
	Duration      time.Duration // Wall time of the frame
	MeanLuminance float64       // Mean luminance of the accumulated image
	LuminanceStd  float64       // Standard deviation of the accumulated luminance
}

// LuminanceStats returns the mean and standard deviation of the
// accumulated luminance over all pixels
func LuminanceStats(buf *AccumulationBuffer) (mean, std float64) {
	switch len(buf.Pix) {
	case 0:
		return 0, 0
	case 1:
		return float64(core.Luminance(buf.Pix[0])), 0
	}
	lum := make([]float64, len(buf.Pix))
	for i, c := range buf.Pix {
		lum[i] = float64(core.Luminance(c))
	}
	return stat.MeanStdDev(lum, nil)
}
