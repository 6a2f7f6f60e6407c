package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"fieldnav-backend/algorithms"
	"fieldnav-backend/config"
	"fieldnav-backend/models"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

var (
	// ErrNoRobotPose - 아직 로봇 자세를 받은 적 없음
	ErrNoRobotPose = errors.New("robot pose not available")
	// ErrNoPlanner - 증분 플래너가 시작되지 않음
	ErrNoPlanner = errors.New("incremental planner not started")
)

// 인식 변화 종류
const (
	ActionInserted   = "inserted"
	ActionMerged     = "merged"
	ActionOverridden = "overridden"
	ActionEvicted    = "evicted"
)

// DisplaySink - 업데이트가 끝날 때마다 그리드를 받아 그리는 쪽
type DisplaySink interface {
	Render(frame models.DisplayFrame)
}

// TickReport - 한 번의 Update 결과 요약
type TickReport struct {
	Tick        int64                     `json:"tick"`
	PoseKnown   bool                      `json:"pose_known"`
	Inserted    int                       `json:"inserted"`
	Merged      int                       `json:"merged"`
	Overridden  int                       `json:"overridden"`
	Evicted     int                       `json:"evicted"`
	Skipped     int                       `json:"skipped"`
	PathCleared bool                      `json:"path_cleared"` // 그리드 변화로 마지막 경로 폐기
	Events      []models.RecognitionEvent `json:"events"`
}

func (r *TickReport) record(action string, rec *MappedRecognition) {
	switch action {
	case ActionInserted:
		r.Inserted++
	case ActionMerged:
		r.Merged++
	case ActionOverridden:
		r.Overridden++
	case ActionEvicted:
		r.Evicted++
	}
	r.Events = append(r.Events, models.RecognitionEvent{Action: action, Recognition: rec.View()})
	recognitionEventsTotal.WithLabelValues(action).Inc()
}

// FieldMap - 필드 그리드와 인식 매핑, 경로 계획을 관리
//
// 공개 메서드는 모두 하나의 뮤텍스 안에서 실행된다.
// 경로 계획은 항상 그리드 사본 위에서 수행된다.
type FieldMap struct {
	mu sync.Mutex

	cfg       *config.FieldConfig
	transform FieldTransform
	grid      *algorithms.SpaceMap
	immutable map[algorithms.Coord]bool

	cameras      map[string]*Camera
	recognitions *RecognitionIndex

	robotID   string
	pose      *models.Pose
	robotCell *algorithms.Coord

	planner     *algorithms.DLite
	lastPath    []algorithms.Coord
	lastPlanner string

	sinks []DisplaySink
	tick  int64
	now   func() time.Time
}

// NewFieldMap - 필드 크기로 그리드를 만들고 벽과 정적 배치를 놓음
func NewFieldMap(cfg *config.FieldConfig) (*FieldMap, error) {
	if cfg == nil {
		cfg = config.DefaultFieldConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid field config: %w", err)
	}

	transform := NewFieldTransform(cfg.GetFieldSizeMM(), cfg.GetScale())
	f := &FieldMap{
		cfg:          cfg,
		transform:    transform,
		grid:         algorithms.NewSpaceMap(transform.Size, transform.Size),
		immutable:    make(map[algorithms.Coord]bool),
		cameras:      make(map[string]*Camera),
		recognitions: NewRecognitionIndex(),
		robotID:      "robot-001",
		now:          time.Now,
	}

	camCfgs := cfg.Cameras
	if cfg.GetCameraMounts() == config.CameraMountsStandard {
		camCfgs = StandardCameras(cfg.BaseCamera(), cfg.GetMountRadiusMM())
	}
	for _, camCfg := range camCfgs {
		f.cameras[camCfg.Name] = NewCamera(camCfg)
	}

	placements := append([]models.StaticPlacement(nil), cfg.Static...)
	if cfg.StaticLayout != "" {
		loaded, err := LoadStaticLayout(cfg.StaticLayout)
		if err != nil {
			return nil, err
		}
		placements = append(placements, loaded...)
	}
	for _, p := range placements {
		f.placeStatic(p)
	}

	log.Printf("✅ 필드 맵 초기화: %dx%d 셀 (scale %dmm), 정적 배치 %d개, 카메라 %d대 (%s)",
		transform.Size, transform.Size, transform.Scale, len(placements), len(f.cameras), cfg.GetCameraMounts())
	return f, nil
}

// placeStatic - 정적 배치 (이미지 마커는 벽 위에 있으므로 배열 범위로만 보정)
func (f *FieldMap) placeStatic(p models.StaticPlacement) {
	var cell algorithms.Coord
	if p.Frame == models.FrameGrid {
		cell = f.grid.ClampToBounds(algorithms.Coord{Row: p.Row, Col: p.Col})
	} else {
		cell = f.FieldToGrid(orb.Point{p.X, p.Y}, false)
	}
	f.grid.Set(cell, p.Space)
	if f.grid.Get(cell) == p.Space {
		f.immutable[cell] = true
	}
}

// SetRobotID - 텔레메트리에 기록할 로봇 ID
func (f *FieldMap) SetRobotID(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.robotID = id
}

// AddSink - 디스플레이 싱크 등록
func (f *FieldMap) AddSink(sink DisplaySink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, sink)
}

func (f *FieldMap) isImmutable(c algorithms.Coord) bool {
	return f.immutable[c] || f.grid.Get(c).IsStatic()
}

// Update - 한 틱: 로봇 위치 반영 → 사라진 인식 제거 → 새 인식 병합 → 디스플레이
//
// pose가 nil이면 직전 자세를 유지한다. 자세를 한 번도 받지 못했다면
// 인식 처리를 건너뛴다.
func (f *FieldMap) Update(pose *models.Pose, frames []models.DetectionFrame) TickReport {
	f.mu.Lock()
	start := time.Now()

	f.tick++
	report := TickReport{Tick: f.tick}

	moved := false
	if pose != nil {
		p := *pose
		f.pose = &p
		moved = f.moveRobot()
	}

	if f.pose != nil {
		report.PoseKnown = true
		f.inferDisappearances(frames, &report)
		f.reconcile(frames, &report)
	} else if len(frames) > 0 {
		log.Printf("⚠️ 로봇 자세 없음: 인식 %d 프레임 무시 (tick %d)", len(frames), f.tick)
	}

	// 로봇 셀이나 인식이 바뀌면 마지막 경로는 다음 계획 전까지 표시하지 않음
	if f.lastPath != nil && (moved || len(report.Events) > 0) {
		f.lastPath = nil
		f.lastPlanner = ""
		report.PathCleared = true
	}

	mappedRecognitions.Set(float64(f.recognitions.Len()))
	fieldTicksTotal.Inc()
	fieldTickDuration.Observe(time.Since(start).Seconds())

	LogTick(f.robotID, f.pose, report)
	for _, ev := range report.Events {
		LogRecognitionEvent(f.robotID, ev)
	}

	frame, sinks := f.displayFrameLocked(), f.sinks
	f.mu.Unlock()

	notifySinks(sinks, frame)
	return report
}

// moveRobot - 로봇 셀 표시 이동 (빈 셀에만 ROBOT을 씀), 셀이 바뀌면 true
func (f *FieldMap) moveRobot() bool {
	cell := f.FieldToGrid(orb.Point{f.pose.X, f.pose.Y}, true)
	moved := f.robotCell == nil || *f.robotCell != cell
	if f.robotCell != nil && moved && f.grid.Get(*f.robotCell) == algorithms.Robot {
		f.grid.Set(*f.robotCell, algorithms.Clear)
	}
	if f.grid.Get(cell) == algorithms.Clear {
		f.grid.Set(cell, algorithms.Robot)
	}
	f.robotCell = &cell
	return moved
}

// inferDisappearances - 카메라에 보여야 하는데 어떤 박스에도 없는 인식을 제거
//
// 투영이 불가능하면 판단을 보류하고, 어느 카메라에서든 박스 안에 들어오면 유지한다.
func (f *FieldMap) inferDisappearances(frames []models.DetectionFrame, report *TickReport) {
	if len(frames) == 0 || f.recognitions.Len() == 0 {
		return
	}
	tolerance := f.cfg.GetPixelTolerance()

	for _, rec := range f.recognitions.All() {
		absent, present := false, false
		for _, frame := range frames {
			cam, ok := f.cameras[frame.Camera]
			if !ok {
				continue
			}
			px, ok := cam.Project(*f.pose, rec.Position, frame.Width, frame.Height)
			if !ok {
				continue
			}
			if insideAnyDetection(px, tolerance, frame) {
				present = true
				break
			}
			absent = true
		}

		if absent && !present {
			f.evict(rec)
			report.record(ActionEvicted, rec)
		}
	}
}

// insideAnyDetection - 허용 오차만큼 넓힌 점이 어떤 인식 박스와 겹치는지
func insideAnyDetection(px orb.Point, tolerance float64, frame models.DetectionFrame) bool {
	box := orb.Bound{Min: px, Max: px}.Pad(tolerance)
	if frame.Width > 0 && frame.Height > 0 {
		box.Min = orb.Point{max(box.Min[0], 0), max(box.Min[1], 0)}
		box.Max = orb.Point{min(box.Max[0], float64(frame.Width)), min(box.Max[1], float64(frame.Height))}
	}
	for _, det := range frame.Detections {
		if det.Box.Bound().Intersects(box) {
			return true
		}
	}
	return false
}

func (f *FieldMap) evict(rec *MappedRecognition) {
	f.recognitions.Remove(rec)
	if f.grid.Get(rec.Cell) == rec.Space && !f.isImmutable(rec.Cell) {
		f.grid.Set(rec.Cell, algorithms.Clear)
	}
}

// reconcile - 새 인식을 기존 인식에 병합하거나 덮어쓰거나 추가
func (f *FieldMap) reconcile(frames []models.DetectionFrame, report *TickReport) {
	proximity := f.cfg.GetProximityMM()
	now := f.now()

	for _, frame := range frames {
		cam, ok := f.cameras[frame.Camera]
		if !ok {
			log.Printf("⚠️ 알 수 없는 카메라: %q", frame.Camera)
			report.Skipped += len(frame.Detections)
			continue
		}

		for _, det := range frame.Detections {
			hPx, vPx := det.Box.BottomCenter()
			pos, ok := cam.Unproject(*f.pose, hPx, vPx, frame.Width, frame.Height)
			if !ok {
				report.Skipped++
				continue
			}

			space := f.cfg.SpaceForLabel(det.Label)
			cell := f.FieldToGrid(pos, true)
			if f.isImmutable(cell) || (f.robotCell != nil && *f.robotCell == cell) {
				report.Skipped++
				continue
			}

			if existing := f.recognitions.AtCell(cell); existing != nil {
				if existing.Space == space {
					f.merge(existing, pos, cell, now)
					report.record(ActionMerged, existing)
				} else {
					f.override(existing, space, det.Label, pos, now)
					report.record(ActionOverridden, existing)
				}
				continue
			}

			if near := f.recognitions.Nearest(pos, proximity, space); near != nil {
				f.merge(near, pos, cell, now)
				report.record(ActionMerged, near)
				continue
			}

			rec := &MappedRecognition{
				ID:        uuid.New().String(),
				Space:     space,
				Label:     det.Label,
				Position:  pos,
				Cell:      cell,
				Hits:      1,
				FirstSeen: now,
				LastSeen:  now,
			}
			f.recognitions.Insert(rec)
			f.grid.Set(cell, space)
			report.record(ActionInserted, rec)
		}
	}
}

// merge - 같은 물체의 최신 위치로 갱신 (셀이 바뀌면 그리드도 이동)
func (f *FieldMap) merge(rec *MappedRecognition, pos orb.Point, cell algorithms.Coord, now time.Time) {
	if cell != rec.Cell {
		if f.grid.Get(rec.Cell) == rec.Space {
			f.grid.Set(rec.Cell, algorithms.Clear)
		}
		f.grid.Set(cell, rec.Space)
	}
	f.recognitions.Move(rec, pos, cell)
	rec.Hits++
	rec.LastSeen = now
}

// override - 같은 셀의 다른 종류 인식을 최신 종류로 교체
func (f *FieldMap) override(rec *MappedRecognition, space algorithms.Space, label string, pos orb.Point, now time.Time) {
	rec.Space = space
	rec.Label = label
	rec.Hits = 1
	rec.LastSeen = now
	f.recognitions.Move(rec, pos, rec.Cell)
	f.grid.Set(rec.Cell, space)
}

// Grid - 현재 그리드 사본
func (f *FieldMap) Grid() *algorithms.SpaceMap {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grid.Clone()
}

// Recognitions - 매핑된 인식 목록
func (f *FieldMap) Recognitions() []models.RecognitionView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recognitionViewsLocked()
}

func (f *FieldMap) recognitionViewsLocked() []models.RecognitionView {
	all := f.recognitions.All()
	out := make([]models.RecognitionView, len(all))
	for i, rec := range all {
		out[i] = rec.View()
	}
	return out
}

// Robot - 마지막 자세와 로봇 셀
func (f *FieldMap) Robot() (*models.Pose, *algorithms.Coord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pose == nil {
		return nil, nil
	}
	p, c := *f.pose, *f.robotCell
	return &p, &c
}

// Cameras - 이름순 카메라 목록
func (f *FieldMap) Cameras() []*Camera {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Camera, 0, len(f.cameras))
	for _, cam := range f.cameras {
		out = append(out, cam)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Transform - 좌표 변환기
func (f *FieldMap) Transform() FieldTransform { return f.transform }

// Tick - 처리한 틱 수
func (f *FieldMap) Tick() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tick
}

// Snapshot - 웹 표시용 스냅샷
func (f *FieldMap) Snapshot() models.GridSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.displayFrameLocked().Snapshot()
}

func (f *FieldMap) displayFrameLocked() models.DisplayFrame {
	var robot *algorithms.Coord
	if f.robotCell != nil {
		c := *f.robotCell
		robot = &c
	}
	return models.DisplayFrame{
		Tick:         f.tick,
		Scale:        f.transform.Scale,
		Grid:         f.grid.Clone(),
		Robot:        robot,
		Path:         append([]algorithms.Coord(nil), f.lastPath...),
		Planner:      f.lastPlanner,
		Recognitions: f.recognitionViewsLocked(),
	}
}

func notifySinks(sinks []DisplaySink, frame models.DisplayFrame) {
	for _, sink := range sinks {
		sink.Render(frame)
	}
}
