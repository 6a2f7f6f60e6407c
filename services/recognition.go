package services

import (
	"math"
	"time"

	"fieldnav-backend/algorithms"
	"fieldnav-backend/models"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// R-tree에 점을 넣을 때 쓰는 최소 사각형 크기
const pointTolerance = 0.01

// MappedRecognition - 그리드에 반영된 인식 결과
//
// Position은 정밀한 필드 좌표, Cell은 그 좌표를 반올림한 그리드 좌표다.
type MappedRecognition struct {
	ID        string
	Space     algorithms.Space
	Label     string
	Position  orb.Point
	Cell      algorithms.Coord
	Hits      int
	FirstSeen time.Time
	LastSeen  time.Time

	bounds rtreego.Rect
}

// Bounds - rtreego.Spatial 구현
func (r *MappedRecognition) Bounds() rtreego.Rect {
	return r.bounds
}

// View - 읽기 전용 표현
func (r *MappedRecognition) View() models.RecognitionView {
	return models.RecognitionView{
		ID:        r.ID,
		Space:     r.Space,
		Label:     r.Label,
		Position:  toFieldXY(r.Position),
		Cell:      r.Cell,
		Hits:      r.Hits,
		FirstSeen: r.FirstSeen,
		LastSeen:  r.LastSeen,
	}
}

// RecognitionIndex - 매핑된 인식 목록 + 근접 검색용 R-tree
//
// 셀 하나에는 최대 하나의 인식만 존재한다.
type RecognitionIndex struct {
	tree    *rtreego.Rtree
	entries []*MappedRecognition
	byCell  map[algorithms.Coord]*MappedRecognition
}

// NewRecognitionIndex - 빈 인덱스 생성
func NewRecognitionIndex() *RecognitionIndex {
	return &RecognitionIndex{
		tree:   rtreego.NewTree(2, 25, 50),
		byCell: make(map[algorithms.Coord]*MappedRecognition),
	}
}

func (idx *RecognitionIndex) Len() int { return len(idx.entries) }

// All - 삽입 순서대로 복사본 슬라이스
func (idx *RecognitionIndex) All() []*MappedRecognition {
	out := make([]*MappedRecognition, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// AtCell - 셀을 차지한 인식
func (idx *RecognitionIndex) AtCell(c algorithms.Coord) *MappedRecognition {
	return idx.byCell[c]
}

// Insert - 새 인식 추가
func (idx *RecognitionIndex) Insert(r *MappedRecognition) {
	r.bounds = rtreego.Point{r.Position[0], r.Position[1]}.ToRect(pointTolerance)
	idx.tree.Insert(r)
	idx.entries = append(idx.entries, r)
	idx.byCell[r.Cell] = r
}

// Remove - 인식 제거
func (idx *RecognitionIndex) Remove(r *MappedRecognition) bool {
	if !idx.tree.Delete(r) {
		return false
	}
	for i, e := range idx.entries {
		if e == r {
			idx.entries = append(idx.entries[:i], idx.entries[i+1:]...)
			break
		}
	}
	if idx.byCell[r.Cell] == r {
		delete(idx.byCell, r.Cell)
	}
	return true
}

// Move - 위치/셀 갱신 (R-tree 재삽입)
func (idx *RecognitionIndex) Move(r *MappedRecognition, p orb.Point, cell algorithms.Coord) {
	idx.tree.Delete(r)
	if idx.byCell[r.Cell] == r {
		delete(idx.byCell, r.Cell)
	}
	r.Position = p
	r.Cell = cell
	r.bounds = rtreego.Point{p[0], p[1]}.ToRect(pointTolerance)
	idx.tree.Insert(r)
	idx.byCell[cell] = r
}

// Nearest - 같은 태그 중 x, y 각각 rangeMM 이내에서 가장 가까운 인식
func (idx *RecognitionIndex) Nearest(p orb.Point, rangeMM float64, space algorithms.Space) *MappedRecognition {
	if rangeMM <= 0 {
		return nil
	}
	query, err := rtreego.NewRect(
		rtreego.Point{p[0] - rangeMM, p[1] - rangeMM},
		[]float64{2 * rangeMM, 2 * rangeMM},
	)
	if err != nil {
		return nil
	}

	var best *MappedRecognition
	bestDist := math.Inf(1)
	for _, item := range idx.tree.SearchIntersect(query) {
		r := item.(*MappedRecognition)
		if r.Space != space || !isNearby(r.Position, p, rangeMM) {
			continue
		}
		if d := planar.Distance(r.Position, p); d < bestDist {
			best, bestDist = r, d
		}
	}
	return best
}

// isNearby - 두 점이 한 변 2*rangeMM 정사각형 안에 있는지
func isNearby(a, b orb.Point, rangeMM float64) bool {
	return math.Abs(a[0]-b[0]) <= rangeMM && math.Abs(a[1]-b[1]) <= rangeMM
}
