package handlers

import (
	"errors"
	"log"

	"fieldnav-backend/models"
	"fieldnav-backend/services"

	"github.com/gofiber/fiber/v2"
)

const defaultRobotID = "robot-001"

// 핸들러가 공유하는 서비스 인스턴스
var (
	fieldMap  *services.FieldMap
	simulator *services.Simulator
)

// InitField - 필드 맵과 시뮬레이터 연결 (Manager를 디스플레이 싱크로 등록)
func InitField(field *services.FieldMap, sim *services.Simulator) {
	fieldMap = field
	simulator = sim
	field.AddSink(Manager)
	log.Println("🗺️ 필드 맵 핸들러 초기화 완료")
}

// processDetections - 자세/인식 한 틱 처리 후 인식 변화 브로드캐스트
func processDetections(msg models.DetectionsMessage) (services.TickReport, error) {
	if fieldMap == nil {
		return services.TickReport{}, errFieldNotReady
	}
	if msg.RobotID == "" {
		msg.RobotID = defaultRobotID
	}
	if msg.Pose != nil {
		Robots.UpdatePose(msg.RobotID, *msg.Pose)
	}

	fieldMap.SetRobotID(msg.RobotID)
	report := fieldMap.Update(Robots.LatestPose(msg.RobotID), msg.Frames)
	for _, ev := range report.Events {
		Manager.BroadcastMessage(models.WebSocketMessage{
			Type: models.MessageTypeRecognition,
			Data: ev,
		})
	}
	return report, nil
}

var errFieldNotReady = errors.New("field map not initialized")

// HandleFieldUpdate - 자세 + 인식 결과 한 틱 반영
func HandleFieldUpdate(c *fiber.Ctx) error {
	var req models.DetectionsMessage
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "잘못된 요청 형식입니다",
		})
	}

	report, err := processDetections(req)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"report":  report,
	})
}

// HandleGetGrid - 현재 그리드 스냅샷
func HandleGetGrid(c *fiber.Ctx) error {
	if fieldMap == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": errFieldNotReady.Error(),
		})
	}
	return c.JSON(fieldMap.Snapshot())
}

// HandleGetRecognitions - 매핑된 인식 목록
func HandleGetRecognitions(c *fiber.Ctx) error {
	if fieldMap == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": errFieldNotReady.Error(),
		})
	}
	recs := fieldMap.Recognitions()
	return c.JSON(fiber.Map{
		"success":      true,
		"count":        len(recs),
		"recognitions": recs,
	})
}
