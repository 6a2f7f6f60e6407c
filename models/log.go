package models

import (
	"slices"
	"strings"
	"time"
)

// RecognitionEventPrefix - 인식 이벤트 타입 접두사 (뒤는 인식 액션)
const RecognitionEventPrefix = "recognition_"

// 필드 이벤트 타입
const (
	EventTick                  = "tick"
	EventRecognitionInserted   = RecognitionEventPrefix + "inserted"
	EventRecognitionMerged     = RecognitionEventPrefix + "merged"
	EventRecognitionOverridden = RecognitionEventPrefix + "overridden"
	EventRecognitionEvicted    = RecognitionEventPrefix + "evicted"
	EventPlan                  = "plan"
)

// FieldEventTypes - 로그에 기록되는 이벤트 타입 전체
var FieldEventTypes = []string{
	EventTick,
	EventRecognitionInserted,
	EventRecognitionMerged,
	EventRecognitionOverridden,
	EventRecognitionEvicted,
	EventPlan,
}

// IsFieldEventType - 기록되는 이벤트 타입인지 확인
func IsFieldEventType(eventType string) bool {
	return slices.Contains(FieldEventTypes, eventType)
}

// RecognitionAction - 인식 이벤트 타입에서 액션 이름 추출
func RecognitionAction(eventType string) (string, bool) {
	return strings.CutPrefix(eventType, RecognitionEventPrefix)
}

// FieldLog - 필드 맵 이벤트 로그
type FieldLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	EventType string    `gorm:"index;size:64" json:"event_type"`
	RobotID   string    `gorm:"index;size:64" json:"robot_id"`

	// 로봇 자세
	PoseX   float64 `json:"pose_x"`
	PoseY   float64 `json:"pose_y"`
	PoseYaw float64 `json:"pose_yaw"`

	// 인식 정보
	RecognitionID string  `gorm:"size:64" json:"recognition_id"`
	Space         string  `gorm:"size:32" json:"space"`
	Label         string  `gorm:"size:64" json:"label"`
	Row           int     `json:"row"`
	Col           int     `json:"col"`
	FieldX        float64 `json:"field_x"`
	FieldY        float64 `json:"field_y"`

	// 경로 정보
	Planner    string `gorm:"size:16" json:"planner"`
	PathFound  bool   `json:"path_found"`
	PathLength int    `json:"path_length"`
	PathCost   int    `json:"path_cost"`

	// 메타데이터
	DataJSON string `json:"data_json"`
}
