package services

import (
	"fmt"
	"log"
	"time"

	"fieldnav-backend/algorithms"
	"fieldnav-backend/models"

	"github.com/paulmach/orb"
)

// 플래너 이름
const (
	PlannerAStar = "astar"
	PlannerDLite = "dlite"
)

// PlanResult - 경로 계획 결과 (그리드 경로 + 필드 좌표 웨이포인트)
type PlanResult struct {
	Planner   string
	Goal      algorithms.Coord
	Path      algorithms.PathResult
	Waypoints []models.FieldXY
	Stats     *algorithms.DLiteStats
}

// ToPathData - 웹 전송용 페이로드
func (r PlanResult) ToPathData() models.PathData {
	data := models.PathData{
		Planner:   r.Planner,
		Found:     r.Path.Found(),
		Cost:      r.Path.Cost,
		Cells:     r.Path.Coords,
		Waypoints: r.Waypoints,
	}
	if r.Path.Grid != nil {
		data.Rows = r.Path.Grid.Rows()
	}
	return data
}

// Plan - 플래너 이름으로 분기
func (f *FieldMap) Plan(goal models.FieldXY, planner string) (PlanResult, error) {
	switch planner {
	case "", PlannerDLite:
		return f.PlanDLite(goal)
	case PlannerAStar:
		return f.PlanAStar(goal)
	default:
		return PlanResult{}, fmt.Errorf("unknown planner %q", planner)
	}
}

// PlanAStar - 현재 그리드 사본에서 A*로 한 번 계산
func (f *FieldMap) PlanAStar(goal models.FieldXY) (PlanResult, error) {
	f.mu.Lock()
	if f.pose == nil {
		f.mu.Unlock()
		return PlanResult{}, ErrNoRobotPose
	}

	started := time.Now()
	goalCell := f.FieldToGrid(fromFieldXY(goal), true)
	path := algorithms.NewAStar(*f.robotCell, goalCell, f.planningGrid()).FindPath()
	planDuration.WithLabelValues(PlannerAStar).Observe(time.Since(started).Seconds())

	result := f.finishPlanLocked(PlannerAStar, goalCell, path, nil)
	frame, sinks := f.displayFrameLocked(), f.sinks
	f.mu.Unlock()

	notifySinks(sinks, frame)
	return result, nil
}

// PlanDLite - 새 목표로 증분 플래너를 시작
func (f *FieldMap) PlanDLite(goal models.FieldXY) (PlanResult, error) {
	f.mu.Lock()
	if f.pose == nil {
		f.mu.Unlock()
		return PlanResult{}, ErrNoRobotPose
	}

	started := time.Now()
	goalCell := f.FieldToGrid(fromFieldXY(goal), true)
	f.planner = algorithms.NewDLite(*f.robotCell, goalCell, f.planningGrid(),
		algorithms.WithStuckTolerance(f.cfg.GetStuckTolerance()))
	path := f.planner.FindPath()
	planDuration.WithLabelValues(PlannerDLite).Observe(time.Since(started).Seconds())

	stats := f.planner.Stats()
	dliteRecomputesTotal.Add(float64(stats.Recomputes))
	result := f.finishPlanLocked(PlannerDLite, goalCell, path, &stats)
	frame, sinks := f.displayFrameLocked(), f.sinks
	f.mu.Unlock()

	notifySinks(sinks, frame)
	return result, nil
}

// AdvanceDLite - 로봇 이동과 그리드 변화를 반영해 기존 계획 갱신
func (f *FieldMap) AdvanceDLite() (PlanResult, error) {
	f.mu.Lock()
	if f.planner == nil {
		f.mu.Unlock()
		return PlanResult{}, ErrNoPlanner
	}
	if f.pose == nil {
		f.mu.Unlock()
		return PlanResult{}, ErrNoRobotPose
	}

	started := time.Now()
	before := f.planner.Stats().Recomputes
	path := f.planner.Update(f.planningGrid(), *f.robotCell)
	planDuration.WithLabelValues(PlannerDLite).Observe(time.Since(started).Seconds())

	stats := f.planner.Stats()
	dliteRecomputesTotal.Add(float64(stats.Recomputes - before))
	result := f.finishPlanLocked(PlannerDLite, f.planner.Goal(), path, &stats)
	frame, sinks := f.displayFrameLocked(), f.sinks
	f.mu.Unlock()

	notifySinks(sinks, frame)
	return result, nil
}

// HasPlanner - 증분 플래너 존재 여부
func (f *FieldMap) HasPlanner() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.planner != nil
}

// ClearPlanner - 증분 플래너와 마지막 경로 제거
func (f *FieldMap) ClearPlanner() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.planner = nil
	f.lastPath = nil
	f.lastPlanner = ""
}

// planningGrid - 로봇 셀을 ROBOT으로 표시한 그리드 사본
func (f *FieldMap) planningGrid() *algorithms.SpaceMap {
	grid := f.grid.Clone()
	if f.robotCell != nil {
		grid.Set(*f.robotCell, algorithms.Robot)
	}
	return grid
}

func (f *FieldMap) finishPlanLocked(planner string, goal algorithms.Coord, path algorithms.PathResult, stats *algorithms.DLiteStats) PlanResult {
	result := PlanResult{
		Planner: planner,
		Goal:    goal,
		Path:    path,
		Stats:   stats,
	}
	for _, c := range algorithms.Waypoints(path.Coords) {
		result.Waypoints = append(result.Waypoints, toFieldXY(f.cellCenter(c)))
	}

	f.lastPath = append([]algorithms.Coord(nil), path.Coords...)
	f.lastPlanner = planner

	planTotal.WithLabelValues(planner, planResultLabel(path.Found())).Inc()
	LogPlan(f.robotID, f.pose, result)

	if path.Found() {
		log.Printf("🧭 [%s] 경로 %d셀, 비용 %d → goal (%d,%d)", planner, len(path.Coords), path.Cost, goal.Row, goal.Col)
	} else {
		log.Printf("🚧 [%s] 경로 없음 → goal (%d,%d)", planner, goal.Row, goal.Col)
	}
	return result
}

// cellCenter - 셀 중심의 필드 좌표
func (f *FieldMap) cellCenter(c algorithms.Coord) orb.Point {
	p := f.GridToField(c)
	half := float64(f.transform.Scale) / 2
	return orb.Point{p[0] - half, p[1] - half}
}
