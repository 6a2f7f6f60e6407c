package algorithms

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

const (
	StraightCost = 10
	DiagonalCost = 14

	// Infinity - 도달 불가 비용 (포화 연산으로 유지)
	Infinity = 1_000_000
)

// 8방향 이웃 (상하좌우 먼저)
var directions = [8]Coord{
	{Row: -1, Col: 0}, {Row: 1, Col: 0}, {Row: 0, Col: -1}, {Row: 0, Col: 1},
	{Row: -1, Col: -1}, {Row: -1, Col: 1}, {Row: 1, Col: -1}, {Row: 1, Col: 1},
}

// Octile - 8방향 이동용 휴리스틱 거리
func Octile(a, b Coord) int {
	dx := absInt(a.Row - b.Row)
	dy := absInt(a.Col - b.Col)
	return StraightCost*(dx+dy) + (DiagonalCost-2*StraightCost)*min(dx, dy)
}

// stepCost - 인접 셀 사이 이동 비용 (어느 한쪽이라도 막혀 있으면 Infinity)
func stepCost(grid *SpaceMap, a, b Coord) int {
	if !grid.Get(a).Passable() || !grid.Get(b).Passable() {
		return Infinity
	}
	if a.Row != b.Row && a.Col != b.Col {
		return DiagonalCost
	}
	return StraightCost
}

func addCost(a, b int) int {
	if a >= Infinity || b >= Infinity {
		return Infinity
	}
	if s := a + b; s < Infinity {
		return s
	}
	return Infinity
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// PathResult - 경로 탐색 결과
//
// Coords가 비어 있으면 경로가 없다는 뜻이다. Grid는 START/PATH/END가
// 표시된 그리드 사본이다.
type PathResult struct {
	Coords []Coord   `json:"coords"`
	Cost   int       `json:"cost"`
	Grid   *SpaceMap `json:"-"`
}

// Found - 경로 존재 여부
func (r PathResult) Found() bool { return len(r.Coords) > 0 }

// newPathResult - 경로 좌표로 결과 구성 (비용 합산 + 표시 그리드)
func newPathResult(grid *SpaceMap, coords []Coord) PathResult {
	if len(coords) == 0 {
		return PathResult{}
	}
	cost := 0
	for i := 1; i < len(coords); i++ {
		cost = addCost(cost, stepCost(grid, coords[i-1], coords[i]))
	}
	return PathResult{
		Coords: coords,
		Cost:   cost,
		Grid:   MarkPath(grid, coords),
	}
}

// MarkPath - 경로를 PATH_START/PATH/PATH_END로 표시한 그리드 사본
func MarkPath(grid *SpaceMap, coords []Coord) *SpaceMap {
	marked := grid.Clone()
	for i, c := range coords {
		switch i {
		case 0:
			marked.Set(c, PathStart)
		case len(coords) - 1:
			marked.Set(c, PathEnd)
		default:
			marked.Set(c, Path)
		}
	}
	return marked
}

// Waypoints - 그리드 경로에서 방향이 바뀌는 지점만 남김
//
// 대각선 계단 모양의 경로도 하나의 직선 구간으로 합친다.
func Waypoints(coords []Coord) []Coord {
	if len(coords) <= 2 {
		out := make([]Coord, len(coords))
		copy(out, coords)
		return out
	}

	ls := make(orb.LineString, len(coords))
	for i, c := range coords {
		ls[i] = orb.Point{float64(c.Col), float64(c.Row)}
	}
	reduced, ok := simplify.DouglasPeucker(0.5).Simplify(ls.Clone()).(orb.LineString)
	if !ok || len(reduced) < 2 {
		reduced = ls
	}

	out := make([]Coord, len(reduced))
	for i, p := range reduced {
		out[i] = Coord{Row: int(p[1]), Col: int(p[0])}
	}
	return out
}
