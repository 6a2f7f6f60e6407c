package config

import (
	"os"
	"path/filepath"
	"testing"

	"fieldnav-backend/algorithms"
	"fieldnav-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFieldConfig(t *testing.T) {
	cfg := DefaultFieldConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3660.0, cfg.GetFieldSizeMM())
	assert.Equal(t, 75, cfg.GetScale())
	assert.Equal(t, 75.0, cfg.GetProximityMM())
	assert.Equal(t, algorithms.DefaultStuckTolerance, cfg.GetStuckTolerance())
	assert.Len(t, cfg.Static, 5)
	assert.Equal(t, algorithms.Target, cfg.SpaceForLabel("Gold Mineral"))
	assert.Equal(t, algorithms.Obstacle, cfg.SpaceForLabel("Silver Mineral"))

	cam, ok := cfg.Camera("front")
	require.True(t, ok)
	assert.Equal(t, 640, cam.Width)
}

func TestEmptyConfigUsesDefaults(t *testing.T) {
	cfg, err := ParseFieldConfig([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, DefaultFieldSizeMM, cfg.GetFieldSizeMM())
	assert.Equal(t, DefaultPixelTolerance, cfg.GetPixelTolerance())
	assert.Equal(t, algorithms.Obstacle, cfg.SpaceForLabel("anything"))
}

func TestCameraMounts(t *testing.T) {
	cfg, err := ParseFieldConfig([]byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, CameraMountsConfigured, cfg.GetCameraMounts())
	assert.Equal(t, DefaultMountRadiusMM, cfg.GetMountRadiusMM())
	assert.Equal(t, DefaultCameraConfig(), cfg.BaseCamera())

	cfg, err = ParseFieldConfig([]byte(`
camera_mounts: standard
mount_radius_mm: 120
cameras:
  - name: side
    height_mm: 200
    vertical_aov: 40
    horizontal_aov: 60
    width: 320
    height: 240
`))
	require.NoError(t, err)
	assert.Equal(t, CameraMountsStandard, cfg.GetCameraMounts())
	assert.Equal(t, 120.0, cfg.GetMountRadiusMM())

	// front가 없으면 첫 카메라가 기준
	base := cfg.BaseCamera()
	assert.Equal(t, "side", base.Name)
	assert.Equal(t, 200.0, base.HeightMM)
}

func TestLoadFieldConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "field.yaml")
	data := `
field_size_mm: 1500
scale: 50
pixel_tolerance: 25
stuck_tolerance: 40
label_spaces:
  cone: target
default_space: obstacle
cameras:
  - name: front
    height_mm: 300
    vertical_aov: 40
    horizontal_aov: 60
    width: 320
    height: 240
static:
  - space: obstacle
    frame: grid
    row: 4
    col: 5
  - space: image_marker
    frame: field
    x: 750
    y: 0
static_layout: layout.geojson
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadFieldConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1500.0, cfg.GetFieldSizeMM())
	assert.Equal(t, 50, cfg.GetScale())
	assert.Equal(t, 50.0, cfg.GetProximityMM())
	assert.Equal(t, 25.0, cfg.GetPixelTolerance())
	assert.Equal(t, 40, cfg.GetStuckTolerance())
	assert.Equal(t, algorithms.Target, cfg.SpaceForLabel("cone"))
	require.Len(t, cfg.Static, 2)
	assert.Equal(t, models.StaticPlacement{Space: algorithms.Obstacle, Frame: models.FrameGrid, Row: 4, Col: 5}, cfg.Static[0])
	assert.Equal(t, algorithms.ImageMarker, cfg.Static[1].Space)
	assert.Equal(t, filepath.Join(dir, "layout.geojson"), cfg.StaticLayout)
}

func TestLoadFieldConfigRejects(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		file string
		data string
	}{
		{"wrong extension", "field.json", "{}"},
		{"bad scale", "scale.yaml", "scale: 0"},
		{"unknown space", "space.yaml", "label_spaces:\n  cone: lava"},
		{"tiny field", "tiny.yaml", "field_size_mm: 100\nscale: 75"},
		{"camera without name", "cam.yaml", "cameras:\n  - height_mm: 10\n    vertical_aov: 1\n    horizontal_aov: 1\n    width: 1\n    height: 1"},
		{"bad frame", "frame.yaml", "static:\n  - space: obstacle\n    frame: polar"},
		{"bad static space", "static.yaml", "static:\n  - space: lava"},
		{"unknown camera mounts", "mounts.yaml", "camera_mounts: ring"},
		{"negative mount radius", "radius.yaml", "camera_mounts: standard\nmount_radius_mm: -5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o644))
			_, err := LoadFieldConfig(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadFieldConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
