package handlers

import (
	"errors"
	"log"

	"fieldnav-backend/models"
	"fieldnav-backend/services"

	"github.com/gofiber/fiber/v2"
)

type PathfindingRequest struct {
	Goal    models.FieldXY `json:"goal"`
	Planner string         `json:"planner"` // "astar" | "dlite" (기본 dlite)
}

type PathfindingResponse struct {
	Success bool             `json:"success"`
	Path    *models.PathData `json:"path,omitempty"`
	Message string           `json:"message,omitempty"`
}

// planAndBroadcast - 경로 계획 후 웹/로봇에 전송
func planAndBroadcast(goal models.GoalMessage) (services.PlanResult, error) {
	if fieldMap == nil {
		return services.PlanResult{}, errFieldNotReady
	}
	result, err := fieldMap.Plan(models.FieldXY{X: goal.X, Y: goal.Y}, goal.Planner)
	if err != nil {
		return result, err
	}

	Manager.BroadcastMessage(models.WebSocketMessage{
		Type: models.MessageTypePathUpdate,
		Data: result.ToPathData(),
	})
	Manager.BroadcastMessage(models.WebSocketMessage{
		Type: models.MessageTypeGoal,
		Data: goal,
	})
	return result, nil
}

// planErrorStatus - 계획 오류별 HTTP 상태
func planErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrNoRobotPose), errors.Is(err, services.ErrNoPlanner):
		return fiber.StatusConflict
	case errors.Is(err, errFieldNotReady):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusBadRequest
	}
}

// HandlePathfinding - 목표 지점까지 경로 계획
func HandlePathfinding(c *fiber.Ctx) error {
	var req PathfindingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(PathfindingResponse{
			Success: false,
			Message: "잘못된 요청 형식입니다",
		})
	}

	log.Printf("📍 경로 탐색 요청: 목표 (%.0f, %.0f), 플래너 %q", req.Goal.X, req.Goal.Y, req.Planner)

	result, err := planAndBroadcast(models.GoalMessage{X: req.Goal.X, Y: req.Goal.Y, Planner: req.Planner})
	if err != nil {
		return c.Status(planErrorStatus(err)).JSON(PathfindingResponse{
			Success: false,
			Message: err.Error(),
		})
	}
	return pathResponse(c, result)
}

// HandleAdvance - 증분 플래너 갱신
func HandleAdvance(c *fiber.Ctx) error {
	if fieldMap == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(PathfindingResponse{
			Message: errFieldNotReady.Error(),
		})
	}

	result, err := fieldMap.AdvanceDLite()
	if err != nil {
		return c.Status(planErrorStatus(err)).JSON(PathfindingResponse{
			Success: false,
			Message: err.Error(),
		})
	}
	Manager.BroadcastMessage(models.WebSocketMessage{
		Type: models.MessageTypePathUpdate,
		Data: result.ToPathData(),
	})
	return pathResponse(c, result)
}

func pathResponse(c *fiber.Ctx, result services.PlanResult) error {
	data := result.ToPathData()
	if !data.Found {
		return c.JSON(PathfindingResponse{
			Success: false,
			Path:    &data,
			Message: "경로를 찾을 수 없습니다",
		})
	}
	return c.JSON(PathfindingResponse{
		Success: true,
		Path:    &data,
	})
}
