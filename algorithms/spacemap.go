package algorithms

import "strings"

// Coord - 그리드 좌표 (행, 열)
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// SpaceMap - 필드를 표현하는 셀 태그 2차원 배열
//
// 테두리는 생성 시 WALL로 채워지고 정적 태그 외에는 덮어쓸 수 없다.
// rangeMin/rangeMax는 벽 안쪽의 플레이 가능 영역이다.
type SpaceMap struct {
	height   int
	width    int
	cells    []Space
	rangeMin Coord
	rangeMax Coord
}

// NewSpaceMap - 테두리 벽이 있는 height x width 그리드 생성
func NewSpaceMap(height, width int) *SpaceMap {
	if height < 1 {
		height = 1
	}
	if width < 1 {
		width = 1
	}
	m := &SpaceMap{
		height:   height,
		width:    width,
		cells:    make([]Space, height*width),
		rangeMin: Coord{Row: 1, Col: 1},
		rangeMax: Coord{Row: height - 2, Col: width - 2},
	}
	if m.rangeMax.Row < m.rangeMin.Row {
		m.rangeMin.Row, m.rangeMax.Row = 0, height-1
	}
	if m.rangeMax.Col < m.rangeMin.Col {
		m.rangeMin.Col, m.rangeMax.Col = 0, width-1
	}

	m.FillRow(0, Wall)
	m.FillRow(height-1, Wall)
	m.FillColumn(0, Wall)
	m.FillColumn(width-1, Wall)
	return m
}

func (m *SpaceMap) Height() int { return m.height }
func (m *SpaceMap) Width() int  { return m.width }

// Range - 플레이 가능 영역의 최소/최대 좌표
func (m *SpaceMap) Range() (Coord, Coord) { return m.rangeMin, m.rangeMax }

func (m *SpaceMap) index(c Coord) int { return c.Row*m.width + c.Col }

func (m *SpaceMap) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Col >= 0 && c.Row < m.height && c.Col < m.width
}

func (m *SpaceMap) InRange(c Coord) bool {
	return c.Row >= m.rangeMin.Row && c.Row <= m.rangeMax.Row &&
		c.Col >= m.rangeMin.Col && c.Col <= m.rangeMax.Col
}

func (m *SpaceMap) onBorder(c Coord) bool {
	return c.Row == 0 || c.Col == 0 || c.Row == m.height-1 || c.Col == m.width-1
}

// Get - 좌표의 태그 조회 (범위 밖은 WALL)
func (m *SpaceMap) Get(c Coord) Space {
	if !m.InBounds(c) {
		return Wall
	}
	return m.cells[m.index(c)]
}

// Set - 태그를 기록하고 이전 태그를 반환
//
// 범위 밖 좌표와 테두리에 동적 태그를 쓰는 경우는 무시된다.
func (m *SpaceMap) Set(c Coord, s Space) Space {
	if !m.InBounds(c) {
		return Wall
	}
	i := m.index(c)
	prev := m.cells[i]
	if m.onBorder(c) && !s.IsStatic() {
		return prev
	}
	m.cells[i] = s
	return prev
}

// FillRow - 한 행 전체를 같은 태그로 채움
func (m *SpaceMap) FillRow(row int, s Space) {
	if row < 0 || row >= m.height {
		return
	}
	for col := 0; col < m.width; col++ {
		m.Set(Coord{Row: row, Col: col}, s)
	}
}

// FillColumn - 한 열 전체를 같은 태그로 채움
func (m *SpaceMap) FillColumn(col int, s Space) {
	if col < 0 || col >= m.width {
		return
	}
	for row := 0; row < m.height; row++ {
		m.Set(Coord{Row: row, Col: col}, s)
	}
}

// Clone - 깊은 복사
func (m *SpaceMap) Clone() *SpaceMap {
	cells := make([]Space, len(m.cells))
	copy(cells, m.cells)
	return &SpaceMap{
		height:   m.height,
		width:    m.width,
		cells:    cells,
		rangeMin: m.rangeMin,
		rangeMax: m.rangeMax,
	}
}

// Diff - 두 그리드에서 태그가 다른 좌표 목록
//
// requireStateChange가 true면 통과 가능 여부가 바뀐 좌표만 반환한다.
// 크기가 다르면 겹치는 영역만 비교한다.
func (m *SpaceMap) Diff(other *SpaceMap, requireStateChange bool) []Coord {
	var changed []Coord
	if other == nil {
		return changed
	}
	rows := min(m.height, other.height)
	cols := min(m.width, other.width)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			c := Coord{Row: row, Col: col}
			a, b := m.Get(c), other.Get(c)
			if a == b {
				continue
			}
			if requireStateChange && a.Passable() == b.Passable() {
				continue
			}
			changed = append(changed, c)
		}
	}
	return changed
}

// ClampToBounds - 배열 전체 범위로 좌표 보정
func (m *SpaceMap) ClampToBounds(c Coord) Coord {
	return Coord{
		Row: clampInt(c.Row, 0, m.height-1),
		Col: clampInt(c.Col, 0, m.width-1),
	}
}

// ClampToRange - 벽 안쪽 플레이 영역으로 좌표 보정
func (m *SpaceMap) ClampToRange(c Coord) Coord {
	return Coord{
		Row: clampInt(c.Row, m.rangeMin.Row, m.rangeMax.Row),
		Col: clampInt(c.Col, m.rangeMin.Col, m.rangeMax.Col),
	}
}

// Count - 특정 태그 셀 개수
func (m *SpaceMap) Count(s Space) int {
	n := 0
	for _, cell := range m.cells {
		if cell == s {
			n++
		}
	}
	return n
}

// Rows - 행 단위 문자열 덤프 (글리프 사용)
func (m *SpaceMap) Rows() []string {
	rows := make([]string, m.height)
	var sb strings.Builder
	for row := 0; row < m.height; row++ {
		sb.Reset()
		for col := 0; col < m.width; col++ {
			sb.WriteRune(m.cells[row*m.width+col].Glyph())
		}
		rows[row] = sb.String()
	}
	return rows
}

func (m *SpaceMap) String() string {
	return strings.Join(m.Rows(), "\n")
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
