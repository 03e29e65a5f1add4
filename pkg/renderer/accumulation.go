package renderer

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
)

// AccumulationBuffer holds the running mean color of every pixel across
// dispatches. Each pixel has one slot and is written only by the
// invocation rendering that pixel, so blends need no locking as long as
// dispatches are separated by a barrier.
type AccumulationBuffer struct {
	Width  int
	Height int
	Pix    []mgl32.Vec3 // row-major
}

// NewAccumulationBuffer creates a zeroed buffer
func NewAccumulationBuffer(width, height int) *AccumulationBuffer {
	return &AccumulationBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]mgl32.Vec3, width*height),
	}
}

// At returns the accumulated color of pixel (x, y)
func (b *AccumulationBuffer) At(x, y int) mgl32.Vec3 {
	return b.Pix[y*b.Width+x]
}

// Blend folds sample c into pixel (x, y) as the (sampleIndex+1)-th value
// of a running mean. Sample index 0 overwrites whatever the slot held.
func (b *AccumulationBuffer) Blend(x, y int, c mgl32.Vec3, sampleIndex uint32) {
	i := y*b.Width + x
	if sampleIndex == 0 {
		b.Pix[i] = c
		return
	}
	b.Pix[i] = core.Mix(b.Pix[i], c, 1/float32(sampleIndex+1))
}

// Reset zeroes every slot
func (b *AccumulationBuffer) Reset() {
	clear(b.Pix)
}

// Image quantizes the buffer to 8-bit RGBA. The buffer already holds
// display-encoded values, so they are only clamped.
func (b *AccumulationBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			img.SetRGBA(x, y, toRGBA(b.At(x, y)))
		}
	}
	return img
}

func toRGBA(c mgl32.Vec3) color.RGBA {
	c = core.Clamp(c, 0, 1)
	return color.RGBA{
		R: uint8(255*c[0] + 0.5),
		G: uint8(255*c[1] + 0.5),
		B: uint8(255*c[2] + 0.5),
		A: 255,
	}
}
