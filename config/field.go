package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fieldnav-backend/algorithms"
	"fieldnav-backend/models"

	"gopkg.in/yaml.v3"
)

// 기본값
const (
	DefaultFieldSizeMM    = 3660.0
	DefaultScale          = 75
	DefaultPixelTolerance = 10.0
	DefaultTargetLabel    = "Gold Mineral"
	DefaultMountRadiusMM  = 0.0

	maxConfigFileSize = 1 * 1024 * 1024 // 1MB
)

// 카메라 장착 방식
const (
	CameraMountsConfigured = "configured" // cameras 목록 그대로
	CameraMountsStandard   = "standard"   // 기준 카메라를 전/후/좌/우 4방향에 장착
)

// CameraConfig - 로봇에 장착된 카메라 하나
type CameraConfig struct {
	Name          string  `yaml:"name"`
	OffsetX       float64 `yaml:"offset_x"`       // 로봇 중심 기준 전방 (mm)
	OffsetY       float64 `yaml:"offset_y"`       // 로봇 중심 기준 좌측 (mm)
	Yaw           float64 `yaml:"yaw"`            // 로봇 전방 기준 회전 (도)
	HeightMM      float64 `yaml:"height_mm"`      // 바닥에서 렌즈까지
	VerticalAOV   float64 `yaml:"vertical_aov"`   // 수직 화각 (도)
	HorizontalAOV float64 `yaml:"horizontal_aov"` // 수평 화각 (도)
	Width         int     `yaml:"width"`          // 해상도 (px)
	Height        int     `yaml:"height"`
}

// FieldConfig - 필드 맵 설정
//
// 포인터 필드는 생략 가능하며 Get* 메서드가 기본값을 채운다.
type FieldConfig struct {
	FieldSizeMM    *float64 `yaml:"field_size_mm,omitempty"`
	Scale          *int     `yaml:"scale,omitempty"`
	PixelTolerance *float64 `yaml:"pixel_tolerance,omitempty"`
	ProximityMM    *float64 `yaml:"proximity_mm,omitempty"`
	StuckTolerance *int     `yaml:"stuck_tolerance,omitempty"`

	// 인식 라벨 → 셀 태그, 없는 라벨은 DefaultSpace
	LabelSpaces  map[string]string `yaml:"label_spaces,omitempty"`
	DefaultSpace *string           `yaml:"default_space,omitempty"`

	Cameras       []CameraConfig `yaml:"cameras,omitempty"`
	CameraMounts  string         `yaml:"camera_mounts,omitempty"`
	MountRadiusMM *float64       `yaml:"mount_radius_mm,omitempty"` // standard 장착 시 로봇 중심에서 거리

	// 정적 배치: 인라인 목록과 GeoJSON 파일
	Static       []models.StaticPlacement `yaml:"static,omitempty"`
	StaticLayout string                   `yaml:"static_layout,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// DefaultFieldConfig - 3660mm 필드, 전방 카메라 1대, 벽면 이미지 마커 5개
func DefaultFieldConfig() *FieldConfig {
	half := DefaultFieldSizeMM / 2
	quarter := half / 2
	return &FieldConfig{
		FieldSizeMM:    ptrFloat64(DefaultFieldSizeMM),
		Scale:          ptrInt(DefaultScale),
		PixelTolerance: ptrFloat64(DefaultPixelTolerance),
		LabelSpaces:    map[string]string{DefaultTargetLabel: algorithms.Target.String()},
		DefaultSpace:   ptrString(algorithms.Obstacle.String()),
		Cameras:        []CameraConfig{DefaultCameraConfig()},
		Static: []models.StaticPlacement{
			{Space: algorithms.ImageMarker, Frame: models.FrameField, X: 0, Y: -half},
			{Space: algorithms.ImageMarker, Frame: models.FrameField, X: 0, Y: half},
			{Space: algorithms.ImageMarker, Frame: models.FrameField, X: half, Y: -quarter},
			{Space: algorithms.ImageMarker, Frame: models.FrameField, X: half, Y: quarter},
			{Space: algorithms.ImageMarker, Frame: models.FrameField, X: -half, Y: 0},
		},
	}
}

// DefaultCameraConfig - 전방 카메라 (640x480)
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Name:          "front",
		HeightMM:      298.45,
		VerticalAOV:   43.3,
		HorizontalAOV: 70.42,
		Width:         640,
		Height:        480,
	}
}

// LoadFieldConfig - YAML 파일에서 설정 로드
//
// 확장자(.yaml/.yml)와 크기(1MB)를 확인한 뒤 파싱하고 검증한다.
func LoadFieldConfig(path string) (*FieldConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .yaml or .yml extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := ParseFieldConfig(data)
	if err != nil {
		return nil, err
	}

	// 상대 경로 레이아웃은 설정 파일 기준
	if cfg.StaticLayout != "" && !filepath.IsAbs(cfg.StaticLayout) {
		cfg.StaticLayout = filepath.Join(filepath.Dir(cleanPath), cfg.StaticLayout)
	}
	return cfg, nil
}

// ParseFieldConfig - YAML 바이트 파싱 + 검증
func ParseFieldConfig(data []byte) (*FieldConfig, error) {
	cfg := &FieldConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate - 값 범위 검사
func (c *FieldConfig) Validate() error {
	if c.FieldSizeMM != nil && *c.FieldSizeMM <= 0 {
		return fmt.Errorf("field_size_mm must be positive, got %f", *c.FieldSizeMM)
	}
	if c.Scale != nil && *c.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %d", *c.Scale)
	}
	if c.GetFieldSizeMM()/float64(c.GetScale()) < 3 {
		return fmt.Errorf("field_size_mm / scale must leave room inside the walls")
	}
	if c.PixelTolerance != nil && *c.PixelTolerance < 0 {
		return fmt.Errorf("pixel_tolerance must be non-negative, got %f", *c.PixelTolerance)
	}
	if c.ProximityMM != nil && *c.ProximityMM <= 0 {
		return fmt.Errorf("proximity_mm must be positive, got %f", *c.ProximityMM)
	}
	if c.StuckTolerance != nil && *c.StuckTolerance <= 0 {
		return fmt.Errorf("stuck_tolerance must be positive, got %d", *c.StuckTolerance)
	}
	for label, name := range c.LabelSpaces {
		if _, err := algorithms.ParseSpace(name); err != nil {
			return fmt.Errorf("label_spaces[%q]: %w", label, err)
		}
	}
	if c.DefaultSpace != nil {
		if _, err := algorithms.ParseSpace(*c.DefaultSpace); err != nil {
			return fmt.Errorf("default_space: %w", err)
		}
	}

	seen := make(map[string]bool)
	for i, cam := range c.Cameras {
		if cam.Name == "" {
			return fmt.Errorf("cameras[%d]: name is required", i)
		}
		if seen[cam.Name] {
			return fmt.Errorf("cameras[%d]: duplicate name %q", i, cam.Name)
		}
		seen[cam.Name] = true
		if cam.HeightMM <= 0 || cam.VerticalAOV <= 0 || cam.HorizontalAOV <= 0 {
			return fmt.Errorf("camera %q: height and angles of view must be positive", cam.Name)
		}
		if cam.Width <= 0 || cam.Height <= 0 {
			return fmt.Errorf("camera %q: resolution must be positive", cam.Name)
		}
	}

	switch c.CameraMounts {
	case "", CameraMountsConfigured, CameraMountsStandard:
	default:
		return fmt.Errorf("camera_mounts must be %q or %q, got %q", CameraMountsConfigured, CameraMountsStandard, c.CameraMounts)
	}
	if c.MountRadiusMM != nil && *c.MountRadiusMM < 0 {
		return fmt.Errorf("mount_radius_mm must be non-negative, got %f", *c.MountRadiusMM)
	}

	for i, p := range c.Static {
		if p.Frame != "" && p.Frame != models.FrameField && p.Frame != models.FrameGrid {
			return fmt.Errorf("static[%d]: unknown frame %q", i, p.Frame)
		}
	}
	return nil
}

func (c *FieldConfig) GetFieldSizeMM() float64 {
	if c.FieldSizeMM == nil {
		return DefaultFieldSizeMM
	}
	return *c.FieldSizeMM
}

func (c *FieldConfig) GetScale() int {
	if c.Scale == nil {
		return DefaultScale
	}
	return *c.Scale
}

func (c *FieldConfig) GetPixelTolerance() float64 {
	if c.PixelTolerance == nil {
		return DefaultPixelTolerance
	}
	return *c.PixelTolerance
}

// GetProximityMM - 같은 물체로 볼 거리, 기본은 셀 한 칸 크기
func (c *FieldConfig) GetProximityMM() float64 {
	if c.ProximityMM == nil {
		return float64(c.GetScale())
	}
	return *c.ProximityMM
}

func (c *FieldConfig) GetStuckTolerance() int {
	if c.StuckTolerance == nil {
		return algorithms.DefaultStuckTolerance
	}
	return *c.StuckTolerance
}

func (c *FieldConfig) GetCameraMounts() string {
	if c.CameraMounts == "" {
		return CameraMountsConfigured
	}
	return c.CameraMounts
}

func (c *FieldConfig) GetMountRadiusMM() float64 {
	if c.MountRadiusMM == nil {
		return DefaultMountRadiusMM
	}
	return *c.MountRadiusMM
}

// BaseCamera - standard 장착의 기준 카메라 (front, 없으면 첫 카메라, 그것도 없으면 기본값)
func (c *FieldConfig) BaseCamera() CameraConfig {
	if cam, ok := c.Camera("front"); ok {
		return cam
	}
	if len(c.Cameras) > 0 {
		return c.Cameras[0]
	}
	return DefaultCameraConfig()
}

// SpaceForLabel - 인식 라벨에 대응하는 셀 태그
func (c *FieldConfig) SpaceForLabel(label string) algorithms.Space {
	if name, ok := c.LabelSpaces[label]; ok {
		if s, err := algorithms.ParseSpace(name); err == nil {
			return s
		}
	}
	if c.DefaultSpace != nil {
		if s, err := algorithms.ParseSpace(*c.DefaultSpace); err == nil {
			return s
		}
	}
	return algorithms.Obstacle
}

// Camera - 이름으로 카메라 설정 조회
func (c *FieldConfig) Camera(name string) (CameraConfig, bool) {
	for _, cam := range c.Cameras {
		if cam.Name == name {
			return cam, true
		}
	}
	return CameraConfig{}, false
}
