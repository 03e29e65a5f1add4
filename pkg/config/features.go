package config

import (
	"fmt"
	"strings"
)

// Features is the bit-field of runtime-selectable kernel variants
type Features uint32

const (
	DiskSDF        Features = 1 << iota // opaque signed-distance disk
	DiskVolumetric                      // emissive, absorbing noise disk
	SkyProcedural                       // procedural starfield instead of the texture
	AntiAlias                           // sub-pixel jitter
	RK4                                 // fixed-step Runge–Kutta instead of Euler
	Adaptive                            // adaptive Bogacki–Shampine, wins over RK4
	Bloom                               // stochastic Gaussian glow
)

var featureNames = []struct {
	bit  Features
	name string
}{
	{DiskSDF, "disk-sdf"},
	{DiskVolumetric, "disk-vol"},
	{SkyProcedural, "sky-proc"},
	{AntiAlias, "aa"},
	{RK4, "rk4"},
	{Adaptive, "adaptive"},
	{Bloom, "bloom"},
}

// Has reports whether every bit of f2 is set in f
func (f Features) Has(f2 Features) bool {
	return f&f2 == f2
}

// Names lists the enabled features in bit order
func (f Features) Names() []string {
	names := make([]string, 0, len(featureNames))
	for _, fn := range featureNames {
		if f.Has(fn.bit) {
			names = append(names, fn.name)
		}
	}
	return names
}

func (f Features) String() string {
	if f == 0 {
		return "none"
	}
	return strings.Join(f.Names(), ",")
}

// ParseFeatures converts feature names into a bit-field. Names are
// case-insensitive; "none" and empty names are ignored.
func ParseFeatures(names ...string) (Features, error) {
	var f Features
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || name == "none" {
			continue
		}
		bit, ok := lookupFeature(name)
		if !ok {
			return 0, fmt.Errorf("%w: unknown feature %q", ErrInvalidConfig, name)
		}
		f |= bit
	}
	return f, nil
}

func lookupFeature(name string) (Features, bool) {
	for _, fn := range featureNames {
		if fn.name == name {
			return fn.bit, true
		}
	}
	return 0, false
}

// FeatureNames lists every known feature name
func FeatureNames() []string {
	names := make([]string, len(featureNames))
	for i, fn := range featureNames {
		names[i] = fn.name
	}
	return names
}

// MarshalText encodes features as a comma-separated list of names
func (f Features) MarshalText() ([]byte, error) {
	return []byte(strings.Join(f.Names(), ",")), nil
}

// UnmarshalText decodes a comma-separated list of names
func (f *Features) UnmarshalText(text []byte) error {
	parsed, err := ParseFeatures(strings.Split(string(text), ",")...)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// validate rejects feature combinations the kernel cannot honor
func (f Features) validate() error {
	if f.Has(DiskSDF | DiskVolumetric) {
		return fmt.Errorf("%w: disk-sdf and disk-vol are mutually exclusive", ErrInvalidConfig)
	}
	if f>>len(featureNames) != 0 {
		return fmt.Errorf("%w: unknown feature bits %#x", ErrInvalidConfig, uint32(f))
	}
	return nil
}
