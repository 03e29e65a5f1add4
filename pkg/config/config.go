// Package config holds the host-side render configuration: feature
// selection, camera, disk, image and sky settings, and their file formats.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned for configurations that fail validation
var ErrInvalidConfig = errors.New("invalid config")

// Format is a configuration file encoding
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension, defaulting to TOML
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// DiskConfig describes the accretion disk
type DiskConfig struct {
	Radius    float32    `toml:"radius" yaml:"radius" validate:"gt=0"`
	Thickness float32    `toml:"thickness" yaml:"thickness" validate:"gt=0"`
	Color     [3]float32 `toml:"color" yaml:"color" validate:"dive,gte=0"`
}

// ImageConfig describes output resolution and progressive sampling
type ImageConfig struct {
	Width           int `toml:"width" yaml:"width" validate:"gt=0,lte=16384"`
	Height          int `toml:"height" yaml:"height" validate:"gt=0,lte=16384"`
	SamplesPerFrame int `toml:"samples_per_frame" yaml:"samples_per_frame" validate:"gte=1,lte=1024"`
	Frames          int `toml:"frames" yaml:"frames" validate:"gte=1"`
	TileSize        int `toml:"tile_size" yaml:"tile_size" validate:"gte=8,lte=1024"`
	Workers         int `toml:"workers" yaml:"workers" validate:"gte=0"` // 0 = one per CPU
}

// SkyConfig selects the background. Texture is only used when the
// procedural sky feature is off; with no texture a uniform color is used.
type SkyConfig struct {
	Texture    string     `toml:"texture,omitempty" yaml:"texture,omitempty"`
	MaxWidth   int        `toml:"max_width" yaml:"max_width" validate:"gte=0"`
	Brightness float32    `toml:"brightness" yaml:"brightness" validate:"gte=0"`
	Uniform    [3]float32 `toml:"uniform" yaml:"uniform" validate:"dive,gte=0"`
}

// Config is the persisted host configuration
type Config struct {
	Features Features    `toml:"features" yaml:"features"`
	Camera   OrbitCamera `toml:"camera" yaml:"camera"`
	Disk     DiskConfig  `toml:"disk" yaml:"disk"`
	Image    ImageConfig `toml:"image" yaml:"image"`
	Sky      SkyConfig   `toml:"sky" yaml:"sky"`
	Gamma    float32     `toml:"gamma" yaml:"gamma" validate:"gt=0"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Features: DiskVolumetric | SkyProcedural | AntiAlias | Adaptive,
		Camera:   DefaultOrbitCamera(),
		Disk: DiskConfig{
			Radius:    8,
			Thickness: 0.1,
			Color:     [3]float32{0.3, 0.2, 0.1},
		},
		Image: ImageConfig{
			Width:           640,
			Height:          360,
			SamplesPerFrame: 1,
			Frames:          64,
			TileSize:        32,
		},
		Sky: SkyConfig{
			MaxWidth:   4096,
			Brightness: 1,
			Uniform:    [3]float32{0, 0, 0},
		},
		Gamma: 2.2,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks parameter ranges and feature consistency
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q (value %v)", ErrInvalidConfig, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Features.validate(); err != nil {
		return err
	}
	if c.Camera.Radius < c.Camera.MinRadius || c.Camera.Radius > c.Camera.MaxRadius {
		return fmt.Errorf("%w: camera radius %v outside [%v, %v]",
			ErrInvalidConfig, c.Camera.Radius, c.Camera.MinRadius, c.Camera.MaxRadius)
	}
	return nil
}

// Clone returns a copy of c
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Load reads and validates a config file. The format follows the extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a config over the defaults, so missing keys keep their
// default values, and validates the result.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := Default()

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, cfg)
	case FormatTOML:
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s config: %w", format, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config in the given format
func (c *Config) Save(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("failed to encode yaml config: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(c); err != nil {
			return fmt.Errorf("failed to encode toml config: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, format)
	}
}
