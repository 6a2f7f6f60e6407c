package services

import (
	"math"

	"fieldnav-backend/algorithms"
	"fieldnav-backend/models"

	"github.com/paulmach/orb"
)

// FieldTransform - 필드 좌표(mm, 중심 원점) ↔ 그리드 좌표 변환
//
// row는 x, col은 y 축에 대응하며 둘 다 필드 중심에서 멀어질수록 줄어든다.
// 그리드 → 필드 → 그리드는 정확하지만 필드 → 그리드 → 필드는 한 셀 크기 이내의 손실이 있다.
type FieldTransform struct {
	Scale int
	Half  float64
	Size  int
}

// NewFieldTransform - 필드 크기(mm)와 스케일(mm/셀)로 변환기 생성
func NewFieldTransform(fieldSizeMM float64, scale int) FieldTransform {
	return FieldTransform{
		Scale: scale,
		Half:  fieldSizeMM / 2,
		Size:  int(fieldSizeMM / float64(scale)),
	}
}

// ToGrid - 클램프 전 그리드 좌표
func (t FieldTransform) ToGrid(p orb.Point) algorithms.Coord {
	s := float64(t.Scale)
	return algorithms.Coord{
		Row: int(math.Floor((t.Half - p[0]) / s)),
		Col: int(math.Floor((t.Half - p[1]) / s)),
	}
}

// ToField - 그리드 좌표의 필드 좌표 (셀 모서리)
func (t FieldTransform) ToField(c algorithms.Coord) orb.Point {
	s := float64(t.Scale)
	return orb.Point{t.Half - float64(c.Row)*s, t.Half - float64(c.Col)*s}
}

// FieldToGrid - 필드 좌표를 그리드 좌표로 (clampRange면 벽 안쪽, 아니면 배열 범위)
func (f *FieldMap) FieldToGrid(p orb.Point, clampRange bool) algorithms.Coord {
	c := f.transform.ToGrid(p)
	if clampRange {
		return f.grid.ClampToRange(c)
	}
	return f.grid.ClampToBounds(c)
}

// GridToField - 그리드 좌표를 필드 좌표로
func (f *FieldMap) GridToField(c algorithms.Coord) orb.Point {
	return f.transform.ToField(c)
}

func toFieldXY(p orb.Point) models.FieldXY {
	return models.FieldXY{X: p[0], Y: p[1]}
}

func fromFieldXY(p models.FieldXY) orb.Point {
	return orb.Point{p.X, p.Y}
}
