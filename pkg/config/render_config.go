package config

import "github.com/go-gl/mathgl/mgl32"

// RenderConfig is the immutable parameter block handed to the kernel for
// one dispatch.
type RenderConfig struct {
	Origin        mgl32.Vec3
	FOV           float32 // radians
	Transform     mgl32.Mat4
	DiskColor     mgl32.Vec3
	DiskRadius    float32
	DiskThickness float32
	SampleIndex   uint32
	Features      Features
}

// RenderConfig derives the kernel parameters for the given sample index
func (c *Config) RenderConfig(sampleIndex uint32) RenderConfig {
	return RenderConfig{
		Origin:        c.Camera.Eye(),
		FOV:           c.Camera.FOVRadians(),
		Transform:     c.Camera.View(),
		DiskColor:     mgl32.Vec3(c.Disk.Color),
		DiskRadius:    c.Disk.Radius,
		DiskThickness: c.Disk.Thickness,
		SampleIndex:   sampleIndex,
		Features:      c.Features,
	}
}
