package models

import (
	"time"

	"fieldnav-backend/algorithms"
)

// 정적 배치 좌표계
const (
	FrameField = "field" // 필드 좌표 (mm)
	FrameGrid  = "grid"  // 그리드 좌표 (행, 열)
)

// FieldXY - 필드 좌표 (필드 중심 원점, mm)
type FieldXY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StaticPlacement - 초기화 시 한 번 배치되는 영구 장애물/마커
type StaticPlacement struct {
	Space algorithms.Space `json:"space" yaml:"space"`
	Frame string           `json:"frame" yaml:"frame"`
	X     float64          `json:"x" yaml:"x"`
	Y     float64          `json:"y" yaml:"y"`
	Row   int              `json:"row" yaml:"row"`
	Col   int              `json:"col" yaml:"col"`
}

// RecognitionView - 매핑된 인식의 읽기 전용 표현
type RecognitionView struct {
	ID        string           `json:"id"`
	Space     algorithms.Space `json:"space"`
	Label     string           `json:"label"`
	Position  FieldXY          `json:"position"`
	Cell      algorithms.Coord `json:"cell"`
	Hits      int              `json:"hits"`
	FirstSeen time.Time        `json:"first_seen"`
	LastSeen  time.Time        `json:"last_seen"`
}

// GridSnapshot - 그리드 스냅샷 (웹 표시용)
type GridSnapshot struct {
	Height       int               `json:"height"`
	Width        int               `json:"width"`
	Scale        int               `json:"scale"`
	Rows         []string          `json:"rows"`
	Robot        *algorithms.Coord `json:"robot,omitempty"`
	Recognitions []RecognitionView `json:"recognitions"`
	Tick         int64             `json:"tick"`
}

// WorldObject - 시뮬레이션 세계의 실제 물체
type WorldObject struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Position FieldXY `json:"position"`
	Radius   float64 `json:"radius"` // mm
}

// World - 시뮬레이터가 사용하는 실제 세계
type World struct {
	ID          string        `json:"id"`
	FieldSizeMM float64       `json:"field_size_mm"`
	Objects     []WorldObject `json:"objects"`
	Start       Pose          `json:"start"`
	Goal        FieldXY       `json:"goal"`
	CreatedAt   time.Time     `json:"created_at"`
}

// DisplayFrame - 디스플레이 싱크에 전달되는 한 틱의 상태
type DisplayFrame struct {
	Tick         int64
	Scale        int
	Grid         *algorithms.SpaceMap
	Robot        *algorithms.Coord
	Path         []algorithms.Coord
	Planner      string
	Recognitions []RecognitionView
}

// Snapshot - 경로를 표시한 웹 전송용 스냅샷
func (f DisplayFrame) Snapshot() GridSnapshot {
	snap := GridSnapshot{
		Scale:        f.Scale,
		Robot:        f.Robot,
		Recognitions: f.Recognitions,
		Tick:         f.Tick,
	}
	if f.Grid == nil {
		return snap
	}
	grid := f.Grid
	if len(f.Path) > 0 {
		grid = algorithms.MarkPath(f.Grid, f.Path)
	}
	snap.Height, snap.Width = grid.Height(), grid.Width()
	snap.Rows = grid.Rows()
	return snap
}
