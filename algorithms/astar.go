package algorithms

import "container/heap"

type nodeState uint8

const (
	nodeNew nodeState = iota
	nodeOpen
	nodeClosed
)

// aStarNode - A* 노드 (부모는 arena 인덱스, -1이면 없음)
type aStarNode struct {
	coord  Coord
	g      int
	h      int
	parent int
	state  nodeState
	index  int // for heap
	seen   bool
}

func (n *aStarNode) f() int { return n.g + n.h }

// aStarQueue - f 최소, 동률이면 h 최소 우선
type aStarQueue []*aStarNode

func (pq aStarQueue) Len() int { return len(pq) }

func (pq aStarQueue) Less(i, j int) bool {
	fi, fj := pq[i].f(), pq[j].f()
	if fi != fj {
		return fi < fj
	}
	return pq[i].h < pq[j].h
}

func (pq aStarQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *aStarQueue) Push(x interface{}) {
	node := x.(*aStarNode)
	node.index = len(*pq)
	*pq = append(*pq, node)
}

func (pq *aStarQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*pq = old[0 : n-1]
	return node
}

// AStar - 그리드 스냅샷 위의 1회성 최단 경로 탐색
type AStar struct {
	grid  *SpaceMap
	start Coord
	goal  Coord
	nodes []aStarNode
	open  aStarQueue

	// Expanded - 마지막 탐색에서 닫힌 노드 수
	Expanded int
}

// NewAStar - 그리드 사본을 잡고 탐색기 생성
func NewAStar(start, goal Coord, grid *SpaceMap) *AStar {
	g := grid.Clone()
	return &AStar{
		grid:  g,
		start: g.ClampToBounds(start),
		goal:  g.ClampToBounds(goal),
	}
}

func (a *AStar) node(c Coord) *aStarNode {
	n := &a.nodes[a.grid.index(c)]
	if !n.seen {
		n.seen = true
		n.coord = c
		n.g = Infinity
		n.h = Octile(c, a.goal)
		n.parent = -1
		n.index = -1
	}
	return n
}

// FindPath - 최단 경로 계산 (없으면 빈 결과)
func (a *AStar) FindPath() PathResult {
	a.nodes = make([]aStarNode, a.grid.height*a.grid.width)
	a.open = a.open[:0]
	a.Expanded = 0

	if a.start == a.goal {
		return newPathResult(a.grid, []Coord{a.start})
	}

	startNode := a.node(a.start)
	startNode.g = 0
	startNode.state = nodeOpen
	heap.Push(&a.open, startNode)

	for a.open.Len() > 0 {
		current := heap.Pop(&a.open).(*aStarNode)
		current.state = nodeClosed
		a.Expanded++

		if current.coord == a.goal {
			return newPathResult(a.grid, a.reconstruct(current))
		}

		for _, d := range directions {
			nc := Coord{Row: current.coord.Row + d.Row, Col: current.coord.Col + d.Col}
			if !a.grid.InBounds(nc) || !a.grid.Get(nc).Passable() {
				continue
			}
			neighbor := a.node(nc)
			if neighbor.state == nodeClosed {
				continue
			}

			tentativeG := current.g + StraightCost
			if d.Row != 0 && d.Col != 0 {
				tentativeG = current.g + DiagonalCost
			}
			if tentativeG >= neighbor.g {
				continue
			}

			neighbor.g = tentativeG
			neighbor.parent = a.grid.index(current.coord)
			if neighbor.state == nodeOpen {
				heap.Fix(&a.open, neighbor.index)
			} else {
				neighbor.state = nodeOpen
				heap.Push(&a.open, neighbor)
			}
		}
	}

	return PathResult{}
}

func (a *AStar) reconstruct(end *aStarNode) []Coord {
	var path []Coord
	for n := end; ; {
		path = append(path, n.coord)
		if n.parent < 0 {
			break
		}
		n = &a.nodes[n.parent]
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// FindPath - 그리드 위 start → goal 최단 경로
func FindPath(grid *SpaceMap, start, goal Coord) PathResult {
	return NewAStar(start, goal, grid).FindPath()
}
