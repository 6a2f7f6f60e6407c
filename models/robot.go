package models

import "time"

// Pose - 로봇 자세 (필드 중심 기준 mm, 라디안)
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

// RobotRegistration - 로봇 등록 정보
type RobotRegistration struct {
	RobotID   string `json:"robot_id"`
	Name      string `json:"name"`
	Pose      *Pose  `json:"pose,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// RobotStatus - 레지스트리에 보관되는 로봇 상태
type RobotStatus struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Connected  bool      `json:"connected"`
	LastUpdate time.Time `json:"last_update"`
	Pose       *Pose     `json:"pose"`
	PoseSeq    uint64    `json:"pose_seq"` // 자세가 갱신될 때마다 증가
}
