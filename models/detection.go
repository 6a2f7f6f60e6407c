package models

import "github.com/paulmach/orb"

// BoundingBox - 이미지 픽셀 좌표의 축 정렬 사각형
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Bound - orb 사각형으로 변환 (X=가로, Y=세로)
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{min(b.Left, b.Right), min(b.Top, b.Bottom)},
		Max: orb.Point{max(b.Left, b.Right), max(b.Top, b.Bottom)},
	}
}

// BottomCenter - 바닥 중앙 픽셀 (수평, 수직). 물체가 바닥에 닿는 지점이다.
func (b BoundingBox) BottomCenter() (float64, float64) {
	return (b.Left + b.Right) / 2, max(b.Top, b.Bottom)
}

// Detection - 인식기 출력 한 건
type Detection struct {
	Label      string      `json:"label"`
	Box        BoundingBox `json:"box"`
	Confidence float64     `json:"confidence"`
}

// DetectionFrame - 한 카메라의 한 틱 인식 결과와 해상도
type DetectionFrame struct {
	Camera     string      `json:"camera"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Detections []Detection `json:"detections"`
}
