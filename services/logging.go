package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"fieldnav-backend/models"

	"gorm.io/gorm"
)

// LogBuffer - 필드 이벤트 로그 버퍼 (비동기 일괄 저장)
type LogBuffer struct {
	logs      []models.FieldLog
	mu        sync.Mutex
	flushSize int           // 일괄 저장 크기
	flushTime time.Duration // 자동 플러시 주기
	stopChan  chan struct{}
	done      chan struct{}
}

var (
	logBuffer   *LogBuffer
	logBufferMu sync.RWMutex
)

// InitLogging - 로깅 시스템 초기화
func InitLogging(flushSize int, flushInterval time.Duration) {
	lb := &LogBuffer{
		logs:      make([]models.FieldLog, 0, flushSize*2),
		flushSize: flushSize,
		flushTime: flushInterval,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}

	logBufferMu.Lock()
	logBuffer = lb
	logBufferMu.Unlock()

	go lb.autoFlush()

	log.Printf("✅ 로깅 시스템 초기화 완료 (flushSize: %d, flushInterval: %v)", flushSize, flushInterval)
}

// StopLogging - 남은 로그를 저장하고 종료
func StopLogging() {
	logBufferMu.Lock()
	lb := logBuffer
	logBuffer = nil
	logBufferMu.Unlock()

	if lb == nil {
		return
	}
	close(lb.stopChan)
	<-lb.done
	log.Println("🛑 로깅 시스템 종료")
}

func (lb *LogBuffer) autoFlush() {
	defer close(lb.done)
	ticker := time.NewTicker(lb.flushTime)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lb.Flush()
		case <-lb.stopChan:
			lb.Flush()
			return
		}
	}
}

// AddLog - 버퍼에 추가 (로깅 미초기화 시 무시)
func AddLog(entry models.FieldLog) {
	logBufferMu.RLock()
	lb := logBuffer
	logBufferMu.RUnlock()
	if lb == nil {
		return
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	lb.mu.Lock()
	lb.logs = append(lb.logs, entry)
	size := len(lb.logs)
	lb.mu.Unlock()

	// 버퍼가 차면 즉시 플러시
	if size >= lb.flushSize {
		go lb.Flush()
	}
}

// Flush - 버퍼의 로그를 DB에 저장
func (lb *LogBuffer) Flush() {
	lb.mu.Lock()
	if len(lb.logs) == 0 {
		lb.mu.Unlock()
		return
	}
	toSave := make([]models.FieldLog, len(lb.logs))
	copy(toSave, lb.logs)
	lb.logs = lb.logs[:0]
	lb.mu.Unlock()

	if db == nil {
		return
	}
	if err := db.CreateInBatches(toSave, 100).Error; err != nil {
		log.Printf("❌ 로그 저장 실패: %v", err)
		return
	}
	log.Printf("💾 로그 %d개 저장 완료", len(toSave))
}

// FlushLogs - 현재 버퍼 즉시 저장
func FlushLogs() {
	logBufferMu.RLock()
	lb := logBuffer
	logBufferMu.RUnlock()
	if lb != nil {
		lb.Flush()
	}
}

func poseFields(entry *models.FieldLog, pose *models.Pose) {
	if pose == nil {
		return
	}
	entry.PoseX = pose.X
	entry.PoseY = pose.Y
	entry.PoseYaw = pose.Yaw
}

// LogTick - 틱 요약 로그 (변화가 있을 때만)
func LogTick(robotID string, pose *models.Pose, report TickReport) {
	if len(report.Events) == 0 && report.Skipped == 0 {
		return
	}
	data, _ := json.Marshal(map[string]interface{}{
		"tick":       report.Tick,
		"inserted":   report.Inserted,
		"merged":     report.Merged,
		"overridden": report.Overridden,
		"evicted":    report.Evicted,
		"skipped":    report.Skipped,
	})
	entry := models.FieldLog{
		EventType: models.EventTick,
		RobotID:   robotID,
		DataJSON:  string(data),
	}
	poseFields(&entry, pose)
	AddLog(entry)
}

// LogRecognitionEvent - 인식 변화 로그
func LogRecognitionEvent(robotID string, ev models.RecognitionEvent) {
	rec := ev.Recognition
	AddLog(models.FieldLog{
		EventType:     recognitionEventType(ev.Action),
		RobotID:       robotID,
		RecognitionID: rec.ID,
		Space:         rec.Space.String(),
		Label:         rec.Label,
		Row:           rec.Cell.Row,
		Col:           rec.Cell.Col,
		FieldX:        rec.Position.X,
		FieldY:        rec.Position.Y,
	})
}

func recognitionEventType(action string) string {
	switch action {
	case ActionInserted:
		return models.EventRecognitionInserted
	case ActionMerged:
		return models.EventRecognitionMerged
	case ActionOverridden:
		return models.EventRecognitionOverridden
	case ActionEvicted:
		return models.EventRecognitionEvicted
	default:
		return action
	}
}

// LogPlan - 경로 계획 로그
func LogPlan(robotID string, pose *models.Pose, result PlanResult) {
	var data []byte
	if result.Stats != nil {
		data, _ = json.Marshal(result.Stats)
	}
	entry := models.FieldLog{
		EventType:  models.EventPlan,
		RobotID:    robotID,
		Row:        result.Goal.Row,
		Col:        result.Goal.Col,
		Planner:    result.Planner,
		PathFound:  result.Path.Found(),
		PathLength: len(result.Path.Coords),
		PathCost:   result.Path.Cost,
		DataJSON:   string(data),
	}
	poseFields(&entry, pose)
	AddLog(entry)
}

// LogQuery - 필드 로그 조회 조건 (빈 값은 조건에서 제외)
type LogQuery struct {
	RobotID       string    `json:"robot_id,omitempty"`
	EventType     string    `json:"event_type,omitempty"`
	Planner       string    `json:"planner,omitempty"`
	RecognitionID string    `json:"recognition_id,omitempty"`
	Start         time.Time `json:"start,omitzero"`
	End           time.Time `json:"end,omitzero"`
	Limit         int       `json:"limit"`
}

func (q LogQuery) scope(tx *gorm.DB) *gorm.DB {
	if q.RobotID != "" {
		tx = tx.Where("robot_id = ?", q.RobotID)
	}
	if q.EventType != "" {
		tx = tx.Where("event_type = ?", q.EventType)
	}
	if q.Planner != "" {
		tx = tx.Where("planner = ?", q.Planner)
	}
	if q.RecognitionID != "" {
		tx = tx.Where("recognition_id = ?", q.RecognitionID)
	}
	if !q.Start.IsZero() {
		tx = tx.Where("created_at >= ?", q.Start)
	}
	if !q.End.IsZero() {
		tx = tx.Where("created_at <= ?", q.End)
	}
	return tx
}

// QueryLogs - 조건에 맞는 로그를 최신순으로 조회
func QueryLogs(q LogQuery) ([]models.FieldLog, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}
	query := db.Model(&models.FieldLog{}).Scopes(q.scope)
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	var logs []models.FieldLog
	err := query.Order("created_at DESC").Order("id DESC").Find(&logs).Error
	return logs, err
}

// PlanLogStats - 플래너별 계획 결과
type PlanLogStats struct {
	Found    int64   `json:"found"`
	NotFound int64   `json:"not_found"`
	AvgCost  float64 `json:"avg_cost"` // 경로를 찾은 계획만
}

// LogStats - 기간 내 필드 로그 통계
type LogStats struct {
	Since        time.Time                `json:"since"`
	Total        int64                    `json:"total"`
	EventCounts  map[string]int64         `json:"event_counts"`
	Recognitions map[string]int64         `json:"recognitions"` // 인식 액션별
	Plans        map[string]*PlanLogStats `json:"plans"`        // 플래너별
}

// GetLogStats - since 이후 이벤트 통계 (robotID가 비면 전체 로봇)
func GetLogStats(robotID string, since time.Time) (*LogStats, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}
	base := LogQuery{RobotID: robotID, Start: since}

	var counts []struct {
		EventType string
		Count     int64
	}
	if err := db.Model(&models.FieldLog{}).
		Scopes(base.scope).
		Select("event_type, COUNT(*) as count").
		Group("event_type").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	stats := &LogStats{
		Since:        since,
		EventCounts:  make(map[string]int64),
		Recognitions: make(map[string]int64),
		Plans:        make(map[string]*PlanLogStats),
	}
	for _, c := range counts {
		stats.Total += c.Count
		stats.EventCounts[c.EventType] = c.Count
		if action, ok := models.RecognitionAction(c.EventType); ok {
			stats.Recognitions[action] = c.Count
		}
	}

	var plans []struct {
		Planner   string
		PathFound bool
		Count     int64
		AvgCost   float64
	}
	planQuery := base
	planQuery.EventType = models.EventPlan
	if err := db.Model(&models.FieldLog{}).
		Scopes(planQuery.scope).
		Select("planner, path_found, COUNT(*) as count, AVG(path_cost) as avg_cost").
		Group("planner, path_found").
		Scan(&plans).Error; err != nil {
		return nil, err
	}

	for _, p := range plans {
		ps, ok := stats.Plans[p.Planner]
		if !ok {
			ps = &PlanLogStats{}
			stats.Plans[p.Planner] = ps
		}
		if p.PathFound {
			ps.Found = p.Count
			ps.AvgCost = p.AvgCost
		} else {
			ps.NotFound = p.Count
		}
	}

	return stats, nil
}
