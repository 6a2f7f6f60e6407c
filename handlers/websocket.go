package handlers

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"fieldnav-backend/models"

	"github.com/gofiber/websocket/v2"
)

// 클라이언트 종류
const (
	ClientTypeRobot = "robot"
	ClientTypeWeb   = "web"
)

type Client struct {
	Conn       *websocket.Conn
	ClientType string
	RobotID    string
}

// ClientManager - WebSocket 클라이언트 관리 + 필드 맵 디스플레이 싱크
type ClientManager struct {
	clients    map[*websocket.Conn]*Client
	broadcast  chan models.WebSocketMessage
	register   chan *Client
	unregister chan *websocket.Conn
	mutex      sync.RWMutex
}

// NewClientManager - 관리자 생성 (Start로 루프 시작)
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients:    make(map[*websocket.Conn]*Client),
		broadcast:  make(chan models.WebSocketMessage, 100),
		register:   make(chan *Client),
		unregister: make(chan *websocket.Conn),
	}
}

// 전역 클라이언트 관리자
var Manager = NewClientManager()

// Start - 등록/해제/브로드캐스트 처리 루프
func (manager *ClientManager) Start() {
	for {
		select {
		case client := <-manager.register:
			manager.mutex.Lock()
			manager.clients[client.Conn] = client
			manager.mutex.Unlock()
			log.Printf("클라이언트 등록: %s (%s)", client.ClientType, client.Conn.RemoteAddr())

		case conn := <-manager.unregister:
			manager.remove(conn)

		case message := <-manager.broadcast:
			for _, conn := range manager.handleBroadcast(message) {
				manager.remove(conn)
			}
		}
	}
}

func (manager *ClientManager) remove(conn *websocket.Conn) {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	if client, ok := manager.clients[conn]; ok {
		delete(manager.clients, conn)
		_ = conn.Close()
		log.Printf("클라이언트 해제: %s (%s)", client.ClientType, conn.RemoteAddr())
	}
}

// targetClientType - 메시지 타입별 수신 대상
func targetClientType(msgType string) string {
	switch msgType {
	case models.MessageTypeMapUpdate,
		models.MessageTypePathUpdate,
		models.MessageTypeRecognition,
		models.MessageTypeSystemInfo,
		models.MessageTypePose:
		return ClientTypeWeb
	case models.MessageTypeGoal:
		return ClientTypeRobot
	default:
		return ""
	}
}

// handleBroadcast - 전송 후 실패한 연결 목록 반환
func (manager *ClientManager) handleBroadcast(message models.WebSocketMessage) []*websocket.Conn {
	target := targetClientType(message.Type)
	if target == "" {
		return nil
	}

	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	var failed []*websocket.Conn
	for conn, client := range manager.clients {
		if client.ClientType != target {
			continue
		}
		if err := conn.WriteJSON(message); err != nil {
			log.Printf("전송 실패 (%s): %v", client.ClientType, err)
			failed = append(failed, conn)
		}
	}
	return failed
}

// BroadcastMessage - 큐가 가득 차면 버림
func (manager *ClientManager) BroadcastMessage(msg models.WebSocketMessage) {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	select {
	case manager.broadcast <- msg:
	default:
		log.Printf("⚠️ 브로드캐스트 큐 가득 참: %s 메시지 버림", msg.Type)
	}
}

// Render - 필드 맵 갱신마다 그리드 스냅샷 전송
func (manager *ClientManager) Render(frame models.DisplayFrame) {
	manager.BroadcastMessage(models.WebSocketMessage{
		Type: models.MessageTypeMapUpdate,
		Data: frame.Snapshot(),
	})
}

func (manager *ClientManager) GetClientCount() map[string]int {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	count := map[string]int{
		ClientTypeRobot: 0,
		ClientTypeWeb:   0,
	}
	for _, client := range manager.clients {
		count[client.ClientType]++
	}
	return count
}

// HandleRobotWebSocket - 로봇이 자세/인식 결과를 보내는 소켓
//
// robot_id 쿼리로 로봇을 구분한다.
func HandleRobotWebSocket(c *websocket.Conn) {
	robotID := c.Query("robot_id", defaultRobotID)
	client := &Client{Conn: c, ClientType: ClientTypeRobot, RobotID: robotID}

	if _, err := Robots.RegisterRobot(robotID, c.Query("name")); err != nil {
		log.Printf("❌ 로봇 등록 실패: %v", err)
		return
	}
	Manager.register <- client
	defer func() {
		Robots.SetConnected(robotID, false)
		Manager.unregister <- c
	}()

	for {
		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := c.ReadJSON(&msg); err != nil {
			log.Printf("로봇 메시지 읽기 오류: %v", err)
			break
		}

		switch msg.Type {
		case models.MessageTypePose:
			var pose models.Pose
			if err := json.Unmarshal(msg.Data, &pose); err != nil {
				log.Printf("⚠️ pose 파싱 실패: %v", err)
				continue
			}
			Robots.UpdatePose(robotID, pose)
			Manager.BroadcastMessage(models.WebSocketMessage{
				Type: models.MessageTypePose,
				Data: models.PoseMessage{RobotID: robotID, Pose: pose},
			})

		case models.MessageTypeDetections:
			var det models.DetectionsMessage
			if err := json.Unmarshal(msg.Data, &det); err != nil {
				log.Printf("⚠️ detections 파싱 실패: %v", err)
				continue
			}
			det.RobotID = robotID
			if _, err := processDetections(det); err != nil {
				log.Printf("⚠️ 인식 처리 실패: %v", err)
			}

		default:
			log.Printf("알 수 없는 로봇 메시지 타입: %s", msg.Type)
		}
	}
}

// HandleWebClientWebSocket - 웹 대시보드 소켓 (목표 지정)
func HandleWebClientWebSocket(c *websocket.Conn) {
	client := &Client{Conn: c, ClientType: ClientTypeWeb}
	Manager.register <- client
	defer func() {
		Manager.unregister <- c
	}()

	welcome := models.WebSocketMessage{
		Type:      models.MessageTypeSystemInfo,
		Data:      systemInfo(),
		Timestamp: time.Now().UnixMilli(),
	}
	_ = c.WriteJSON(welcome)

	for {
		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := c.ReadJSON(&msg); err != nil {
			log.Printf("웹 메시지 읽기 오류: %v", err)
			break
		}

		switch msg.Type {
		case models.MessageTypeGoal:
			var goal models.GoalMessage
			if err := json.Unmarshal(msg.Data, &goal); err != nil {
				log.Printf("⚠️ goal 파싱 실패: %v", err)
				continue
			}
			if _, err := planAndBroadcast(goal); err != nil {
				log.Printf("⚠️ 경로 계획 실패: %v", err)
			}

		default:
			log.Printf("알 수 없는 메시지 타입: %s", msg.Type)
		}
	}
}

// systemInfo - 현재 연결/상태 요약
func systemInfo() models.SystemInfo {
	info := models.SystemInfo{
		ConnectedClients: Manager.GetClientCount(),
		Robots:           Robots.Count(),
		ServerTime:       time.Now().UnixMilli(),
	}
	if fieldMap != nil {
		info.Ticks = fieldMap.Tick()
	}
	return info
}
