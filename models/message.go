package models

import "fieldnav-backend/algorithms"

// ========================================
// 메시지 타입 상수
// ========================================
const (
	// Robot → Server
	MessageTypePose       = "pose"       // 로봇 자세 업데이트
	MessageTypeDetections = "detections" // 카메라 인식 결과

	// Server → Web
	MessageTypeMapUpdate   = "map_update"  // 그리드 스냅샷
	MessageTypePathUpdate  = "path_update" // 경로 계획 결과
	MessageTypeRecognition = "recognition" // 매핑된 인식 변화 (추가/병합/제거)
	MessageTypeSystemInfo  = "system_info" // 시스템 정보

	// Web → Server → Robot
	MessageTypeGoal = "goal" // 목표 지점 지정
)

// ========================================
// 공통 WebSocket 메시지 형식
// ========================================
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"` // Unix timestamp (ms)
}

// ========================================
// 로봇 → 서버 페이로드
// ========================================

// PoseMessage - 자세 업데이트
type PoseMessage struct {
	RobotID string `json:"robot_id"`
	Pose    Pose   `json:"pose"`
}

// DetectionsMessage - 한 틱 분량의 인식 결과
type DetectionsMessage struct {
	RobotID string           `json:"robot_id"`
	Pose    *Pose            `json:"pose,omitempty"`
	Frames  []DetectionFrame `json:"frames"`
}

// GoalMessage - 목표 지점 (필드 좌표, mm)
type GoalMessage struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Planner string  `json:"planner"` // "astar" | "dlite"
}

// ========================================
// 서버 → 웹 페이로드
// ========================================

// PathData - 경로 계획 결과
type PathData struct {
	Planner   string             `json:"planner"`
	Found     bool               `json:"found"`
	Cost      int                `json:"cost"`
	Cells     []algorithms.Coord `json:"cells"`
	Waypoints []FieldXY          `json:"waypoints"` // 필드 좌표 (mm)
	Rows      []string           `json:"rows,omitempty"`
}

// RecognitionEvent - 인식 변화 알림
type RecognitionEvent struct {
	Action      string          `json:"action"` // "inserted" | "merged" | "overridden" | "evicted"
	Recognition RecognitionView `json:"recognition"`
}

// SystemInfo - 시스템 정보
type SystemInfo struct {
	ConnectedClients map[string]int `json:"connected_clients"`
	Robots           int            `json:"robots"`
	Ticks            int64          `json:"ticks"`
	ServerTime       int64          `json:"server_time"`
}
