package services

import (
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"fieldnav-backend/algorithms"
	"fieldnav-backend/models"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// 시뮬레이터 기본값
const (
	DefaultSimInterval = 200 * time.Millisecond // 5Hz
	DefaultSimSpeedMM  = 60.0                   // 틱당 이동 거리
)

// Simulator - 가상 로봇 시뮬레이터
//
// 실제 세계의 물체를 카메라로 투영해 인식 박스를 만들고, 필드 맵을 갱신한 뒤
// D* Lite 경로를 따라 로봇을 움직인다.
type Simulator struct {
	IsRunning     bool
	field         *FieldMap
	world         *WorldGenerator
	broadcastFunc func(models.WebSocketMessage)

	pose    models.Pose
	goal    *models.FieldXY
	speedMM float64
	steps   int64
	arrived bool

	interval time.Duration
	stopChan chan struct{}
	mu       sync.RWMutex
}

// NewSimulator - 시뮬레이터 생성 (세계가 있으면 시작 자세와 목표를 가져옴)
func NewSimulator(field *FieldMap, world *WorldGenerator, broadcastFunc func(models.WebSocketMessage)) *Simulator {
	s := &Simulator{
		field:         field,
		world:         world,
		broadcastFunc: broadcastFunc,
		speedMM:       DefaultSimSpeedMM,
		interval:      DefaultSimInterval,
	}
	if w := world.Active(); w != nil {
		s.pose = w.Start
		goal := w.Goal
		s.goal = &goal
	}
	return s
}

// SetInterval - 틱 주기 변경 (실행 전에만)
func (s *Simulator) SetInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.interval = d
	}
}

// SetGoal - 새 목표 (기존 증분 플래너는 버림)
func (s *Simulator) SetGoal(goal models.FieldXY) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goal = &goal
	s.arrived = false
	s.field.ClearPlanner()
	log.Printf("📍 목표 설정: (%.0f, %.0f)", goal.X, goal.Y)
}

// Start - 시뮬레이션 시작
func (s *Simulator) Start() error {
	s.mu.Lock()
	if s.IsRunning {
		s.mu.Unlock()
		return nil
	}
	if s.world.Active() == nil {
		s.mu.Unlock()
		return errors.New("no active world")
	}
	s.IsRunning = true
	s.stopChan = make(chan struct{})
	stop, interval := s.stopChan, s.interval
	s.mu.Unlock()

	log.Println("🚀 시뮬레이터 시작")
	go s.run(stop, interval)
	return nil
}

// Stop - 시뮬레이션 중지
func (s *Simulator) Stop() {
	s.mu.Lock()
	if !s.IsRunning {
		s.mu.Unlock()
		return
	}
	s.IsRunning = false
	close(s.stopChan)
	s.mu.Unlock()

	log.Println("🛑 시뮬레이터 중지")
}

// Running - 실행 중 여부
func (s *Simulator) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.IsRunning
}

func (s *Simulator) run(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Step()
		}
	}
}

// Step - 한 틱 진행: 인식 생성 → 맵 갱신 → 경로 갱신 → 이동
func (s *Simulator) Step() TickReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.steps++
	pose := s.pose
	frames := s.synthesizeFrames(pose)
	report := s.field.Update(&pose, frames)

	for _, ev := range report.Events {
		s.broadcast(models.MessageTypeRecognition, ev)
	}

	if s.goal == nil || s.arrived {
		return report
	}

	var (
		plan PlanResult
		err  error
	)
	if s.field.HasPlanner() {
		plan, err = s.field.AdvanceDLite()
	} else {
		plan, err = s.field.PlanDLite(*s.goal)
	}
	if err != nil {
		log.Printf("⚠️ 경로 계획 실패: %v", err)
		return report
	}
	s.broadcast(models.MessageTypePathUpdate, plan.ToPathData())
	s.advance(plan.Path)
	return report
}

// advance - 경로의 다음 셀 중심으로 이동
func (s *Simulator) advance(path algorithms.PathResult) {
	if !path.Found() {
		return
	}
	if len(path.Coords) == 1 {
		s.arrived = true
		log.Printf("🏁 목표 도착 (step %d)", s.steps)
		return
	}

	current := orb.Point{s.pose.X, s.pose.Y}
	next := s.field.cellCenter(path.Coords[1])
	dist := planar.Distance(current, next)
	if dist == 0 {
		return
	}

	step := math.Min(s.speedMM, dist)
	s.pose.Yaw = math.Atan2(next[1]-current[1], next[0]-current[0])
	s.pose.X += (next[0] - current[0]) / dist * step
	s.pose.Y += (next[1] - current[1]) / dist * step
}

// synthesizeFrames - 각 카메라에 보이는 물체를 인식 박스로
func (s *Simulator) synthesizeFrames(pose models.Pose) []models.DetectionFrame {
	objects := s.world.Objects()
	robot := orb.Point{pose.X, pose.Y}

	var frames []models.DetectionFrame
	for _, cam := range s.field.Cameras() {
		width, height := cam.Geometry.Resolution()
		frame := models.DetectionFrame{Camera: cam.Name, Width: width, Height: height}

		for _, obj := range objects {
			pos := fromFieldXY(obj.Position)
			px, ok := cam.Project(pose, pos, width, height)
			if !ok {
				continue
			}
			halfW := math.Max(4, obj.Radius*float64(width)/math.Max(planar.Distance(robot, pos), 1))
			frame.Detections = append(frame.Detections, models.Detection{
				Label: obj.Label,
				Box: models.BoundingBox{
					Left:   px[0] - halfW,
					Top:    px[1] - 2*halfW,
					Right:  px[0] + halfW,
					Bottom: px[1],
				},
				Confidence: 0.9,
			})
		}
		frames = append(frames, frame)
	}
	return frames
}

// Pose - 현재 시뮬레이션 자세
func (s *Simulator) Pose() models.Pose {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pose
}

// GetStatus - 현재 상태 반환
func (s *Simulator) GetStatus() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"running": s.IsRunning,
		"pose":    s.pose,
		"goal":    s.goal,
		"arrived": s.arrived,
		"steps":   s.steps,
		"objects": len(s.world.Objects()),
	}
}

func (s *Simulator) broadcast(msgType string, data interface{}) {
	if s.broadcastFunc == nil {
		return
	}
	s.broadcastFunc(models.WebSocketMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}
