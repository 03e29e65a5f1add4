package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-blackhole-raytracer/pkg/config"
	"github.com/df07/go-blackhole-raytracer/pkg/loaders"
	"github.com/df07/go-blackhole-raytracer/pkg/sky"
)

// Scene holds the loaded backgrounds. The sky feature bit picks one per
// dispatch.
type Scene struct {
	Texture    sky.Model
	Procedural sky.Model
}

// LoadScene builds the backgrounds described by cfg. Without a texture
// path the texture sky falls back to a uniform color.
func LoadScene(cfg config.SkyConfig) (*Scene, error) {
	scene := &Scene{
		Procedural: sky.NewProcedural(cfg.Brightness),
		Texture:    sky.NewUniform(mgl32.Vec3(cfg.Uniform)),
	}
	if cfg.Texture != "" {
		tex, err := loaders.LoadSkyTexture(cfg.Texture, cfg.MaxWidth)
		if err != nil {
			return nil, fmt.Errorf("failed to load scene: %w", err)
		}
		scene.Texture = tex
	}
	return scene, nil
}

// Sky returns the background selected by features
func (s *Scene) Sky(features config.Features) sky.Model {
	if features.Has(config.SkyProcedural) {
		return s.Procedural
	}
	return s.Texture
}
