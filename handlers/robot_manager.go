package handlers

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"fieldnav-backend/models"

	"github.com/gofiber/fiber/v2"
)

// RobotManager - 로봇 상태 관리 + 자세 제공자
//
// 로봇마다 가장 최근 자세를 보관하고, 새 자세는 한 번만 넘겨준다.
// 이미 넘겨준 자세를 다시 요청하면 "새 자세 없음"이다.
type RobotManager struct {
	mu       sync.RWMutex
	robots   map[string]*models.RobotStatus // robot_id -> 상태
	consumed map[string]uint64              // robot_id -> 마지막으로 넘겨준 PoseSeq
}

// Robots - 전역 로봇 관리자
var Robots = NewRobotManager()

// NewRobotManager - RobotManager 생성
func NewRobotManager() *RobotManager {
	return &RobotManager{
		robots:   make(map[string]*models.RobotStatus),
		consumed: make(map[string]uint64),
	}
}

// RegisterRobot - 로봇 등록 (이미 있으면 연결 상태만 갱신)
func (m *RobotManager) RegisterRobot(robotID, name string) (*models.RobotStatus, error) {
	if robotID == "" {
		return nil, fmt.Errorf("robot ID가 비어있습니다")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if status, exists := m.robots[robotID]; exists {
		status.Connected = true
		status.LastUpdate = now
		if name != "" {
			status.Name = name
		}
		log.Printf("[Robots] re-registered: %s", robotID)
		return status, nil
	}

	status := &models.RobotStatus{
		ID:         robotID,
		Name:       name,
		Connected:  true,
		LastUpdate: now,
	}
	m.robots[robotID] = status
	log.Printf("[Robots] registered: %s", robotID)
	return status, nil
}

// UpdatePose - 새 자세 저장 (미등록 로봇은 자동 등록)
func (m *RobotManager) UpdatePose(robotID string, pose models.Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status, exists := m.robots[robotID]
	if !exists {
		status = &models.RobotStatus{ID: robotID, Connected: true}
		m.robots[robotID] = status
	}
	p := pose
	status.Pose = &p
	status.PoseSeq++
	status.LastUpdate = time.Now()
}

// LatestPose - 아직 넘겨주지 않은 최신 자세 (없으면 nil)
func (m *RobotManager) LatestPose(robotID string) *models.Pose {
	m.mu.Lock()
	defer m.mu.Unlock()

	status, exists := m.robots[robotID]
	if !exists || status.Pose == nil || status.PoseSeq == m.consumed[robotID] {
		return nil
	}
	m.consumed[robotID] = status.PoseSeq
	p := *status.Pose
	return &p
}

// SetConnected - 연결 상태 변경
func (m *RobotManager) SetConnected(robotID string, connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if status, exists := m.robots[robotID]; exists {
		status.Connected = connected
	}
}

// GetStatus - 로봇 상태 조회
func (m *RobotManager) GetStatus(robotID string) (models.RobotStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, exists := m.robots[robotID]
	if !exists {
		return models.RobotStatus{}, fmt.Errorf("robot not found: %s", robotID)
	}
	return *status, nil
}

// GetAllStatuses - ID순 전체 상태
func (m *RobotManager) GetAllStatuses() []models.RobotStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.RobotStatus, 0, len(m.robots))
	for _, status := range m.robots {
		result = append(result, *status)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Count - 등록된 로봇 수
func (m *RobotManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.robots)
}

// CleanupOffline - timeout 동안 갱신 없는 로봇 제거
func (m *RobotManager) CleanupOffline(timeout time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	now := time.Now()
	for id, status := range m.robots {
		if now.Sub(status.LastUpdate) > timeout {
			delete(m.robots, id)
			delete(m.consumed, id)
			log.Printf("[Robots] cleanup: %s (offline)", id)
			count++
		}
	}
	return count
}

// HandleGetRobots - 로봇 목록
func HandleGetRobots(c *fiber.Ctx) error {
	robots := Robots.GetAllStatuses()
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(robots),
		"robots":  robots,
	})
}
