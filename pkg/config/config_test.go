package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeaturesNames(t *testing.T) {
	f := DiskVolumetric | AntiAlias | RK4
	assert.Equal(t, []string{"disk-vol", "aa", "rk4"}, f.Names())
	assert.Equal(t, "disk-vol,aa,rk4", f.String())
	assert.Equal(t, "none", Features(0).String())
	assert.Len(t, FeatureNames(), 7)
}

func TestParseFeatures(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    Features
		wantErr bool
	}{
		{"empty", nil, 0, false},
		{"none", []string{"none"}, 0, false},
		{"single", []string{"bloom"}, Bloom, false},
		{"mixed case and spaces", []string{" Disk-SDF ", "AA"}, DiskSDF | AntiAlias, false},
		{"all", FeatureNames(), DiskSDF | DiskVolumetric | SkyProcedural | AntiAlias | RK4 | Adaptive | Bloom, false},
		{"unknown", []string{"rk5"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFeatures(tt.input...)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFeaturesText(t *testing.T) {
	f := SkyProcedural | Adaptive | Bloom
	text, err := f.MarshalText()
	require.NoError(t, err)

	var back Features
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, f, back)

	var empty Features
	require.NoError(t, empty.UnmarshalText(nil))
	assert.Equal(t, Features(0), empty)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		valid  bool
	}{
		{"default", func(c *Config) {}, true},
		{"both disks", func(c *Config) { c.Features |= DiskSDF | DiskVolumetric }, false},
		{"rk4 and adaptive", func(c *Config) { c.Features |= RK4 | Adaptive }, true},
		{"unknown bits", func(c *Config) { c.Features |= 1 << 12 }, false},
		{"negative thickness", func(c *Config) { c.Disk.Thickness = -0.1 }, false},
		{"zero fov", func(c *Config) { c.Camera.FOV = 0 }, false},
		{"zero width", func(c *Config) { c.Image.Width = 0 }, false},
		{"negative color", func(c *Config) { c.Disk.Color[1] = -1 }, false},
		{"inverted bounds", func(c *Config) { c.Camera.MaxRadius = 0.1 }, false},
		{"radius out of bounds", func(c *Config) { c.Camera.Radius = 10 }, false},
		{"zero gamma", func(c *Config) { c.Gamma = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestSaveParseRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Features = DiskSDF | RK4 | Bloom
	cfg.Disk.Radius = 6
	cfg.Camera.Orbit(0.5, -0.2)
	cfg.Sky.Texture = "stars.png"

	for _, format := range []Format{FormatTOML, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, cfg.Save(&buf, format))
			assert.Contains(t, buf.String(), "disk-sdf,rk4,bloom")

			back, err := Parse(buf.Bytes(), format)
			require.NoError(t, err)
			assert.Equal(t, cfg, back)
		})
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("features = \"disk-vol,aa\"\n[disk]\nradius = 5.0\n"), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, DiskVolumetric|AntiAlias, cfg.Features)
	assert.Equal(t, float32(5), cfg.Disk.Radius)
	assert.Equal(t, float32(0.1), cfg.Disk.Thickness)
	assert.Equal(t, Default().Camera, cfg.Camera)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"unknown feature", "features = \"warp\"\n", FormatTOML},
		{"unknown key", "colour = 1\n", FormatTOML},
		{"invalid value", "disk:\n  thickness: -1\n", FormatYAML},
		{"both disks", "features: disk-sdf,disk-vol\n", FormatYAML},
		{"bad syntax", "[disk\n", FormatTOML},
		{"unknown format", "", Format("ini")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yml")
	require.NoError(t, os.WriteFile(path, []byte("features: sky-proc,adaptive\nimage:\n  width: 320\n  height: 200\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SkyProcedural|Adaptive, cfg.Features)
	assert.Equal(t, 320, cfg.Image.Width)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("a.yaml"))
	assert.Equal(t, FormatYAML, FormatFromPath("a.YML"))
	assert.Equal(t, FormatTOML, FormatFromPath("a.toml"))
	assert.Equal(t, FormatTOML, FormatFromPath("a"))
}

func TestRenderConfig(t *testing.T) {
	cfg := Default()
	rc := cfg.RenderConfig(7)

	assert.Equal(t, uint32(7), rc.SampleIndex)
	assert.Equal(t, cfg.Features, rc.Features)
	assert.Equal(t, mgl32.Vec3{0.3, 0.2, 0.1}, rc.DiskColor)
	assert.InDelta(t, math32.Pi/2, rc.FOV, 1e-6)
	assertVecInDelta(t, cfg.Camera.Eye(), rc.Origin, 1e-6)
}

func assertVecInDelta(t *testing.T, want, got mgl32.Vec3, delta float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "component %d of %v", i, got)
	}
}

func TestOrbitCameraEye(t *testing.T) {
	cam := DefaultOrbitCamera()
	assertVecInDelta(t, mgl32.Vec3{3.3, 0, 0}, cam.Eye(), 1e-5)

	cam.Orbit(math32.Pi/2, 0)
	assertVecInDelta(t, mgl32.Vec3{0, 0, 3.3}, cam.Eye(), 1e-5)

	cam.Target = [3]float32{1, 2, 3}
	assertVecInDelta(t, mgl32.Vec3{1, 2, 6.3}, cam.Eye(), 1e-5)
}

func TestOrbitCameraView(t *testing.T) {
	cam := DefaultOrbitCamera()
	cam.Orbit(0.7, -0.4)
	view := cam.View()

	// camera origin maps to the eye
	origin := view.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	assertVecInDelta(t, cam.Eye(), origin, 1e-5)

	// local -z looks at the target
	forward := view.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	toTarget := mgl32.Vec3(cam.Target).Sub(cam.Eye()).Normalize()
	assert.InDelta(t, 1, forward.Dot(toTarget), 1e-5)
}

func TestOrbitCameraPhiClamp(t *testing.T) {
	cam := DefaultOrbitCamera()
	cam.Orbit(0, 10)
	assert.InDelta(t, math32.Pi-0.1, cam.Phi, 1e-6)
	cam.Orbit(0, -10)
	assert.InDelta(t, 0.1, cam.Phi, 1e-6)
}

func TestOrbitCameraZoom(t *testing.T) {
	cam := DefaultOrbitCamera()

	cam.Zoom(-1)
	assert.InDelta(t, 2.3, cam.Radius, 1e-6)

	// out of bounds leaves the radius alone
	cam.Zoom(5)
	assert.InDelta(t, 2.3, cam.Radius, 1e-6)
	cam.Zoom(-2)
	assert.InDelta(t, 2.3, cam.Radius, 1e-6)

	cam.Zoom(1)
	assert.InDelta(t, 3.3, cam.Radius, 1e-5)
}
