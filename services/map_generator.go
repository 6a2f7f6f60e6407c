package services

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"fieldnav-backend/models"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// 시뮬레이션 물체 라벨
const (
	LabelGoldMineral   = "Gold Mineral"
	LabelSilverMineral = "Silver Mineral"
)

// WorldGenerator - 시뮬레이션 세계 생성 및 관리
type WorldGenerator struct {
	mu           sync.RWMutex
	active       *models.World
	generationMu sync.Mutex
	rng          *rand.Rand
}

// NewWorldGenerator - seed가 0이면 현재 시각으로 초기화
func NewWorldGenerator(seed int64) *WorldGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &WorldGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Generate - 무작위 물체가 놓인 세계 생성
//
// 물체는 벽에서 10% 여백 안쪽에 놓이며 시작 위치 근처는 비워 둔다.
// 목표 지점은 시작 위치의 반대편 사분면이다.
func (g *WorldGenerator) Generate(fieldSizeMM float64, count int) *models.World {
	g.generationMu.Lock()
	defer g.generationMu.Unlock()

	half := fieldSizeMM / 2
	start := models.Pose{X: -half * 0.7, Y: -half * 0.7, Yaw: math.Pi / 4}
	world := &models.World{
		ID:          uuid.New().String(),
		FieldSizeMM: fieldSizeMM,
		Start:       start,
		Goal:        models.FieldXY{X: half * 0.7, Y: half * 0.7},
		CreatedAt:   time.Now(),
	}
	world.Objects = g.generateObjects(world, count)

	g.mu.Lock()
	g.active = world
	g.mu.Unlock()

	return world
}

// generateObjects - 시작/목표 지점과 겹치지 않는 물체 배치
func (g *WorldGenerator) generateObjects(world *models.World, count int) []models.WorldObject {
	objects := make([]models.WorldObject, 0, count)

	// 경계에서 안전한 여백 (10%)
	half := world.FieldSizeMM / 2
	limit := half * 0.9
	keepOut := world.FieldSizeMM * 0.08
	start := orb.Point{world.Start.X, world.Start.Y}
	goal := fromFieldXY(world.Goal)

	for attempts := 0; len(objects) < count && attempts < count*20; attempts++ {
		p := orb.Point{
			-limit + g.rng.Float64()*2*limit,
			-limit + g.rng.Float64()*2*limit,
		}
		if planar.Distance(p, start) < keepOut || planar.Distance(p, goal) < keepOut {
			continue
		}

		label := LabelSilverMineral
		if g.rng.Intn(3) == 0 {
			label = LabelGoldMineral
		}
		objects = append(objects, models.WorldObject{
			ID:       fmt.Sprintf("object-%d", len(objects)+1),
			Label:    label,
			Position: toFieldXY(p),
			Radius:   30 + g.rng.Float64()*30, // 반경 30~60mm
		})
	}
	return objects
}

// Active - 현재 세계
func (g *WorldGenerator) Active() *models.World {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.active
}

// RemoveObject - 물체 제거 (사라짐 시뮬레이션)
func (g *WorldGenerator) RemoveObject(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active == nil {
		return fmt.Errorf("no active world")
	}
	for i, obj := range g.active.Objects {
		if obj.ID == id {
			g.active.Objects = append(g.active.Objects[:i], g.active.Objects[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("object not found: %s", id)
}

// MoveObject - 물체 이동
func (g *WorldGenerator) MoveObject(id string, pos models.FieldXY) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active == nil {
		return fmt.Errorf("no active world")
	}
	for i := range g.active.Objects {
		if g.active.Objects[i].ID == id {
			g.active.Objects[i].Position = pos
			return nil
		}
	}
	return fmt.Errorf("object not found: %s", id)
}

// IsPositionFree - 어떤 물체와도 겹치지 않는지
func (g *WorldGenerator) IsPositionFree(pos models.FieldXY) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.active == nil {
		return false
	}
	half := g.active.FieldSizeMM / 2
	if math.Abs(pos.X) > half || math.Abs(pos.Y) > half {
		return false
	}
	for _, obj := range g.active.Objects {
		if planar.Distance(fromFieldXY(pos), fromFieldXY(obj.Position)) < obj.Radius {
			return false
		}
	}
	return true
}

// Objects - 현재 물체 목록 사본
func (g *WorldGenerator) Objects() []models.WorldObject {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.active == nil {
		return nil
	}
	return append([]models.WorldObject(nil), g.active.Objects...)
}

// Clear - 현재 세계 제거
func (g *WorldGenerator) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = nil
}
