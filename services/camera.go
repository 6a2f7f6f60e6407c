package services

import (
	"math"

	"fieldnav-backend/config"
	"fieldnav-backend/models"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r3"
)

// CameraGeometry - 픽셀 ↔ 카메라 기준 거리 변환
//
// straight는 카메라 정면 방향 거리, side는 왼쪽(+) 방향 거리이며 단위는 mm다.
type CameraGeometry interface {
	PixelToDistances(hPx, vPx float64) (straight, side float64, ok bool)
	DistancesToPixel(straight, side float64) (hPx, vPx float64, ok bool)
	Resolution() (width, height int)
}

// AngleOfViewCamera - 화각 기반 거리 모델
//
// 바닥과 수평인 카메라를 가정하고, 화면 중앙 아래로 내려간 각도로
// 바닥 지점까지의 거리를 계산한다.
type AngleOfViewCamera struct {
	HeightMM      float64
	VerticalAOV   float64 // 도
	HorizontalAOV float64 // 도
	Width         int
	Height        int
}

func (c AngleOfViewCamera) vPPD() float64 { return float64(c.Height) / c.VerticalAOV }
func (c AngleOfViewCamera) hPPD() float64 { return float64(c.Width) / c.HorizontalAOV }

func (c AngleOfViewCamera) Resolution() (int, int) { return c.Width, c.Height }

// PixelToDistances - 바닥에 닿은 픽셀의 카메라 기준 거리
//
// 화면 중앙선 이상(수평선 위)은 바닥과 만나지 않으므로 ok=false.
func (c AngleOfViewCamera) PixelToDistances(hPx, vPx float64) (float64, float64, bool) {
	depression := (vPx - float64(c.Height)/2) / c.vPPD()
	if depression <= 0 {
		return 0, 0, false
	}
	straight := c.HeightMM * math.Tan(degToRad(90-depression))
	side := straight * math.Tan(degToRad((float64(c.Width)/2-hPx)/c.hPPD()))
	return straight, side, true
}

// DistancesToPixel - 카메라 기준 거리를 픽셀로 (화면 밖이거나 뒤쪽이면 ok=false)
func (c AngleOfViewCamera) DistancesToPixel(straight, side float64) (float64, float64, bool) {
	if straight <= 0 {
		return 0, 0, false
	}
	depression := 90 - radToDeg(math.Atan(straight/c.HeightMM))
	vPx := float64(c.Height)/2 + depression*c.vPPD()
	hPx := float64(c.Width)/2 - radToDeg(math.Atan(side/straight))*c.hPPD()

	if hPx < 0 || hPx > float64(c.Width) || vPx < 0 || vPx > float64(c.Height) {
		return hPx, vPx, false
	}
	return hPx, vPx, true
}

// Camera - 로봇에 장착된 카메라 (장착 위치 + 거리 모델)
type Camera struct {
	Name     string
	Offset   r3.Vec  // 로봇 중심 기준 (x 전방, y 좌측)
	Yaw      float64 // 로봇 전방 기준 회전 (라디안)
	Geometry CameraGeometry
}

// NewCamera - 설정으로 카메라 생성
func NewCamera(cfg config.CameraConfig) *Camera {
	return &Camera{
		Name:   cfg.Name,
		Offset: r3.Vec{X: cfg.OffsetX, Y: cfg.OffsetY},
		Yaw:    degToRad(cfg.Yaw),
		Geometry: AngleOfViewCamera{
			HeightMM:      cfg.HeightMM,
			VerticalAOV:   cfg.VerticalAOV,
			HorizontalAOV: cfg.HorizontalAOV,
			Width:         cfg.Width,
			Height:        cfg.Height,
		},
	}
}

// StandardCameras - 전/후/좌/우 4방향 카메라 구성
func StandardCameras(base config.CameraConfig, mountRadius float64) []config.CameraConfig {
	mounts := []struct {
		name string
		x, y float64
		yaw  float64
	}{
		{"front", mountRadius, 0, 0},
		{"back", -mountRadius, 0, 180},
		{"left", 0, mountRadius, 90},
		{"right", 0, -mountRadius, -90},
	}

	out := make([]config.CameraConfig, 0, len(mounts))
	for _, m := range mounts {
		cam := base
		cam.Name = m.name
		cam.OffsetX, cam.OffsetY, cam.Yaw = m.x, m.y, m.yaw
		out = append(out, cam)
	}
	return out
}

// toRobot - 카메라 기준 벡터 → 로봇 기준 벡터
func (c *Camera) toRobot(v r3.Vec) r3.Vec {
	return r3.Add(c.Offset, r3.NewRotation(c.Yaw, r3.Vec{Z: 1}).Rotate(v))
}

// fromRobot - 로봇 기준 벡터 → 카메라 기준 벡터
func (c *Camera) fromRobot(v r3.Vec) r3.Vec {
	return r3.NewRotation(-c.Yaw, r3.Vec{Z: 1}).Rotate(r3.Sub(v, c.Offset))
}

// scaleFactor - 프레임 해상도와 모델 해상도 비율
func (c *Camera) scaleFactor(width, height int) (float64, float64) {
	w, h := c.Geometry.Resolution()
	if width <= 0 || height <= 0 || w <= 0 || h <= 0 {
		return 1, 1
	}
	return float64(width) / float64(w), float64(height) / float64(h)
}

// Unproject - 프레임 픽셀의 바닥 지점을 필드 좌표로
func (c *Camera) Unproject(pose models.Pose, hPx, vPx float64, width, height int) (orb.Point, bool) {
	sx, sy := c.scaleFactor(width, height)
	straight, side, ok := c.Geometry.PixelToDistances(hPx/sx, vPx/sy)
	if !ok {
		return orb.Point{}, false
	}

	robotVec := c.toRobot(r3.Vec{X: straight, Y: side})
	fieldVec := r3.NewRotation(pose.Yaw, r3.Vec{Z: 1}).Rotate(robotVec)
	return orb.Point{pose.X + fieldVec.X, pose.Y + fieldVec.Y}, true
}

// Project - 필드 좌표를 프레임 픽셀로 (시야 밖이면 ok=false)
func (c *Camera) Project(pose models.Pose, p orb.Point, width, height int) (orb.Point, bool) {
	rel := r3.Vec{X: p[0] - pose.X, Y: p[1] - pose.Y}
	robotVec := r3.NewRotation(-pose.Yaw, r3.Vec{Z: 1}).Rotate(rel)
	camVec := c.fromRobot(robotVec)

	hPx, vPx, ok := c.Geometry.DistancesToPixel(camVec.X, camVec.Y)
	if !ok {
		return orb.Point{}, false
	}
	sx, sy := c.scaleFactor(width, height)
	return orb.Point{hPx * sx, vPx * sy}, true
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }
func radToDeg(r float64) float64 { return r * 180 / math.Pi }
