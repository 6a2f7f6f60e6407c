package algorithms

import (
	"container/heap"
	"math"
)

// DefaultStuckTolerance - open set 크기가 변하지 않는 반복을 몇 번까지 허용할지
const DefaultStuckTolerance = 150

// dLiteKey - (min(g,rhs) + h + keyOffset, min(g,rhs)), 사전식 비교
type dLiteKey [2]int

func (k dLiteKey) less(o dLiteKey) bool {
	if k[0] != o[0] {
		return k[0] < o[0]
	}
	return k[1] < o[1]
}

var infiniteKey = dLiteKey{math.MaxInt, math.MaxInt}

// dLiteNode - D* Lite 노드 (child는 goal 쪽으로 한 칸 가까운 노드의 arena 인덱스)
type dLiteNode struct {
	coord Coord
	g     int
	rhs   int
	key   dLiteKey
	child int
	index int // for heap, -1이면 open set 밖
	seen  bool
}

type dLiteQueue []*dLiteNode

func (pq dLiteQueue) Len() int           { return len(pq) }
func (pq dLiteQueue) Less(i, j int) bool { return pq[i].key.less(pq[j].key) }

func (pq dLiteQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *dLiteQueue) Push(x interface{}) {
	node := x.(*dLiteNode)
	node.index = len(*pq)
	*pq = append(*pq, node)
}

func (pq *dLiteQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*pq = old[0 : n-1]
	return node
}

// DLiteStats - 플래너 내부 카운터
type DLiteStats struct {
	Recomputes int `json:"recomputes"` // computeShortestPath 호출 수
	Iterations int `json:"iterations"` // 메인 루프 누적 반복 수
	StuckExits int `json:"stuck_exits"`
	Updates    int `json:"updates"`
	Memoized   int `json:"memoized"` // 변경 없음으로 재계산을 건너뛴 횟수
}

// DLite - 목표에서 거꾸로 탐색하는 증분 경로 계획기
//
// 하나의 인스턴스가 고정된 goal에 대해 움직이는 start와 바뀌는 그리드를
// 따라가며, 바뀐 영역만 다시 계산한다.
type DLite struct {
	grid      *SpaceMap
	start     Coord
	lastStart Coord
	goal      Coord
	keyOffset int

	nodes []dLiteNode
	open  dLiteQueue

	stuckTolerance int
	stats          DLiteStats
	computed       bool
	last           PathResult
}

// DLiteOption - 플래너 옵션
type DLiteOption func(*DLite)

// WithStuckTolerance - 진행 없는 반복 허용 횟수 변경
func WithStuckTolerance(n int) DLiteOption {
	return func(d *DLite) {
		if n > 0 {
			d.stuckTolerance = n
		}
	}
}

// NewDLite - 그리드 사본 위에 goal을 기준으로 플래너 생성
func NewDLite(start, goal Coord, grid *SpaceMap, opts ...DLiteOption) *DLite {
	d := &DLite{stuckTolerance: DefaultStuckTolerance}
	for _, opt := range opts {
		opt(d)
	}
	d.reset(start, goal, grid)
	return d
}

func (d *DLite) reset(start, goal Coord, grid *SpaceMap) {
	d.grid = grid.Clone()
	d.start = d.grid.ClampToBounds(start)
	d.lastStart = d.start
	d.goal = d.grid.ClampToBounds(goal)
	d.keyOffset = 0
	d.nodes = make([]dLiteNode, d.grid.height*d.grid.width)
	d.open = nil
	d.computed = false
	d.last = PathResult{}

	goalNode := d.node(d.goal)
	goalNode.rhs = 0
	goalNode.key = d.calculateKey(goalNode)
	heap.Push(&d.open, goalNode)
}

func (d *DLite) Start() Coord      { return d.start }
func (d *DLite) Goal() Coord       { return d.goal }
func (d *DLite) Stats() DLiteStats { return d.stats }

func (d *DLite) node(c Coord) *dLiteNode {
	n := &d.nodes[d.grid.index(c)]
	if !n.seen {
		n.seen = true
		n.coord = c
		n.g = Infinity
		n.rhs = Infinity
		n.child = -1
		n.index = -1
	}
	return n
}

func (d *DLite) gOf(c Coord) int {
	n := &d.nodes[d.grid.index(c)]
	if !n.seen {
		return Infinity
	}
	return n.g
}

func (d *DLite) neighbors(c Coord) []Coord {
	out := make([]Coord, 0, len(directions))
	for _, dir := range directions {
		nc := Coord{Row: c.Row + dir.Row, Col: c.Col + dir.Col}
		if d.grid.InBounds(nc) {
			out = append(out, nc)
		}
	}
	return out
}

func (d *DLite) calculateKey(n *dLiteNode) dLiteKey {
	m := min(n.g, n.rhs)
	return dLiteKey{m + Octile(d.start, n.coord) + d.keyOffset, m}
}

func (d *DLite) topKey() dLiteKey {
	if d.open.Len() == 0 {
		return infiniteKey
	}
	return d.open[0].key
}

func (d *DLite) updateVertex(n *dLiteNode) {
	queued := n.index >= 0
	switch {
	case n.g != n.rhs && queued:
		n.key = d.calculateKey(n)
		heap.Fix(&d.open, n.index)
	case n.g != n.rhs:
		n.key = d.calculateKey(n)
		heap.Push(&d.open, n)
	case queued:
		heap.Remove(&d.open, n.index)
	}
}

// recomputeRHS - 후속 노드 전체에서 rhs와 child를 다시 구함
func (d *DLite) recomputeRHS(n *dLiteNode) {
	best, child := Infinity, -1
	for _, nc := range d.neighbors(n.coord) {
		v := addCost(stepCost(d.grid, n.coord, nc), d.gOf(nc))
		if v < best {
			best, child = v, d.grid.index(nc)
		}
	}
	n.rhs = best
	n.child = child
}

// computeShortestPath - start가 일관될 때까지 open set 처리
//
// open set 크기가 stuckTolerance번 연속 그대로면 해가 없다고 보고 false를 반환한다.
func (d *DLite) computeShortestPath() bool {
	d.stats.Recomputes++
	startNode := d.node(d.start)

	lastSize, stuck := -1, 0
	for d.open.Len() > 0 &&
		(d.topKey().less(d.calculateKey(startNode)) || startNode.rhs != startNode.g) {
		d.stats.Iterations++

		if size := d.open.Len(); size == lastSize {
			stuck++
			if stuck >= d.stuckTolerance {
				d.stats.StuckExits++
				return false
			}
		} else {
			lastSize, stuck = size, 0
		}

		u := d.open[0]
		kOld, kNew := u.key, d.calculateKey(u)

		switch {
		case kOld.less(kNew):
			u.key = kNew
			heap.Fix(&d.open, u.index)

		case u.g > u.rhs:
			// 비용 감소: 이웃에 전파
			u.g = u.rhs
			heap.Remove(&d.open, u.index)
			uIdx := d.grid.index(u.coord)
			for _, pc := range d.neighbors(u.coord) {
				s := d.node(pc)
				if pc != d.goal {
					if v := addCost(stepCost(d.grid, pc, u.coord), u.g); v < s.rhs {
						s.rhs = v
						s.child = uIdx
					}
				}
				d.updateVertex(s)
			}

		default:
			// 비용 증가: u를 거쳐 계산된 rhs를 다시 구함
			gOld := u.g
			u.g = Infinity
			for _, pc := range d.neighbors(u.coord) {
				s := d.node(pc)
				c := stepCost(d.grid, pc, u.coord)
				if pc != d.goal && c < Infinity && s.rhs == addCost(c, gOld) {
					d.recomputeRHS(s)
				}
				d.updateVertex(s)
			}
			d.updateVertex(u)
		}
	}

	return startNode.rhs < Infinity
}

// collectPath - start에서 child를 따라 goal까지
func (d *DLite) collectPath() []Coord {
	if d.start == d.goal {
		return []Coord{d.start}
	}

	cur := d.node(d.start)
	path := []Coord{cur.coord}
	for steps := 0; cur.coord != d.goal; steps++ {
		if cur.child < 0 || steps > len(d.nodes) {
			return nil
		}
		next := &d.nodes[cur.child]
		if stepCost(d.grid, cur.coord, next.coord) >= Infinity {
			return nil
		}
		path = append(path, next.coord)
		cur = next
	}
	return path
}

func (d *DLite) compute() PathResult {
	d.computed = true
	if !d.computeShortestPath() {
		d.node(d.start).child = -1
		d.last = PathResult{}
		return d.last
	}

	coords := d.collectPath()
	if coords == nil {
		d.node(d.start).child = -1
	}
	d.last = newPathResult(d.grid, coords)
	return d.last
}

// FindPath - 최초 계산 (이미 계산했다면 마지막 결과)
func (d *DLite) FindPath() PathResult {
	if d.computed {
		return d.last
	}
	return d.compute()
}

// Update - 새 그리드와 현재 로봇 위치를 반영해 경로 갱신
//
// 통과 가능 여부가 바뀐 셀이 없고 start도 그대로면 재계산 없이
// 직전 경로를 반환한다.
func (d *DLite) Update(grid *SpaceMap, start Coord) PathResult {
	d.stats.Updates++

	if grid.height != d.grid.height || grid.width != d.grid.width {
		d.reset(start, d.goal, grid)
		return d.compute()
	}

	start = d.grid.ClampToBounds(start)
	changed := d.grid.Diff(grid, true)
	if d.computed && len(changed) == 0 && start == d.start {
		d.stats.Memoized++
		return d.last
	}

	if start != d.start {
		d.keyOffset += Octile(d.lastStart, start)
		d.lastStart = start
		d.start = start
	}

	old := d.grid
	d.grid = grid.Clone()

	type edge struct{ from, to Coord }
	seen := make(map[edge]struct{})
	var edges []edge
	for _, c := range changed {
		for _, nc := range d.neighbors(c) {
			for _, e := range [2]edge{{from: c, to: nc}, {from: nc, to: c}} {
				if _, ok := seen[e]; ok {
					continue
				}
				seen[e] = struct{}{}
				edges = append(edges, e)
			}
		}
	}

	for _, e := range edges {
		cOld := stepCost(old, e.from, e.to)
		cNew := stepCost(d.grid, e.from, e.to)
		if cOld == cNew {
			continue
		}
		u := d.node(e.from)
		if e.from != d.goal {
			if cOld > cNew {
				if v := addCost(cNew, d.gOf(e.to)); v < u.rhs {
					u.rhs = v
					u.child = d.grid.index(e.to)
				}
			} else if u.rhs == addCost(cOld, d.gOf(e.to)) {
				d.recomputeRHS(u)
			}
		}
		d.updateVertex(u)
	}

	return d.compute()
}
