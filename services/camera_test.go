package services

import (
	"math"
	"testing"

	"fieldnav-backend/config"
	"fieldnav-backend/models"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frontCameraConfig() config.CameraConfig {
	cam, _ := config.DefaultFieldConfig().Camera("front")
	return cam
}

func TestAngleOfViewPixelToDistances(t *testing.T) {
	geo := NewCamera(frontCameraConfig()).Geometry

	// 화면 맨 아래 중앙: 수직 화각의 절반만큼 내려다봄
	straight, side, ok := geo.PixelToDistances(320, 480)
	require.True(t, ok)
	expected := 298.45 * math.Tan((90-43.3/2)*math.Pi/180)
	assert.InDelta(t, expected, straight, 1e-9)
	assert.InDelta(t, 0, side, 1e-9)

	// 왼쪽 픽셀은 +side
	_, side, ok = geo.PixelToDistances(100, 400)
	require.True(t, ok)
	assert.Greater(t, side, 0.0)

	// 수평선과 그 위는 바닥에 닿지 않음
	_, _, ok = geo.PixelToDistances(320, 240)
	assert.False(t, ok)
	_, _, ok = geo.PixelToDistances(320, 100)
	assert.False(t, ok)
}

func TestAngleOfViewInverse(t *testing.T) {
	geo := NewCamera(frontCameraConfig()).Geometry

	pixels := [][2]float64{{320, 479}, {10, 300}, {600, 250}, {320, 241}, {450, 470}}
	for _, px := range pixels {
		straight, side, ok := geo.PixelToDistances(px[0], px[1])
		require.True(t, ok, "pixel %v", px)

		h, v, ok := geo.DistancesToPixel(straight, side)
		require.True(t, ok, "pixel %v", px)
		assert.InDelta(t, px[0], h, 1e-6)
		assert.InDelta(t, px[1], v, 1e-6)
	}

	_, _, ok := geo.DistancesToPixel(-100, 0)
	assert.False(t, ok, "behind the camera")
	_, _, ok = geo.DistancesToPixel(300, 0)
	assert.False(t, ok, "too close: below the image")
	_, _, ok = geo.DistancesToPixel(1000, 5000)
	assert.False(t, ok, "outside the horizontal angle of view")
}

func TestCameraUnprojectWithPose(t *testing.T) {
	cam := NewCamera(frontCameraConfig())
	straight, _, _ := cam.Geometry.PixelToDistances(320, 480)

	tests := []struct {
		name string
		pose models.Pose
		want orb.Point
	}{
		{"facing +x", models.Pose{}, orb.Point{straight, 0}},
		{"facing +y", models.Pose{X: 100, Y: -50, Yaw: math.Pi / 2}, orb.Point{100, -50 + straight}},
		{"facing -x", models.Pose{X: 500, Yaw: math.Pi}, orb.Point{500 - straight, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := cam.Unproject(tt.pose, 320, 480, 640, 480)
			require.True(t, ok)
			assert.InDelta(t, tt.want[0], p[0], 1e-6)
			assert.InDelta(t, tt.want[1], p[1], 1e-6)
		})
	}
}

func TestCameraProjectRoundTrip(t *testing.T) {
	base := frontCameraConfig()
	pose := models.Pose{X: -300, Y: 250, Yaw: 0.6}

	for _, camCfg := range StandardCameras(base, 120) {
		cam := NewCamera(camCfg)
		t.Run(cam.Name, func(t *testing.T) {
			// 절반 해상도 프레임에서도 같은 지점으로 돌아와야 함
			for _, px := range [][2]float64{{160, 235}, {40, 150}, {300, 200}} {
				p, ok := cam.Unproject(pose, px[0], px[1], 320, 240)
				require.True(t, ok)

				back, ok := cam.Project(pose, p, 320, 240)
				require.True(t, ok)
				assert.InDelta(t, px[0], back[0], 1e-6)
				assert.InDelta(t, px[1], back[1], 1e-6)
			}
		})
	}
}

func TestStandardCameras(t *testing.T) {
	cams := StandardCameras(frontCameraConfig(), 100)
	require.Len(t, cams, 4)

	names := make([]string, len(cams))
	for i, c := range cams {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"front", "back", "left", "right"}, names)

	// 왼쪽 카메라 정면의 점은 로봇 좌측(+y)에 있다
	left := NewCamera(cams[2])
	p, ok := left.Unproject(models.Pose{}, 320, 480, 640, 480)
	require.True(t, ok)
	assert.InDelta(t, 0, p[0], 1e-6)
	assert.Greater(t, p[1], 100.0)
}
