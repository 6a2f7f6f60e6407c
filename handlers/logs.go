package handlers

import (
	"errors"
	"time"

	"fieldnav-backend/models"
	"fieldnav-backend/services"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 1000
)

// logQueryError - DB 미초기화는 503, 나머지는 500
func logQueryError(c *fiber.Ctx, err error, message string) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, services.ErrNoDatabase) {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func badLogQuery(c *fiber.Ctx, message string, extra fiber.Map) error {
	body := fiber.Map{"error": message}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(fiber.StatusBadRequest).JSON(body)
}

// queryTime - RFC3339 쿼리 파라미터 (없으면 zero)
func queryTime(c *fiber.Ctx, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// HandleGetLogs - 필드 로그 조회
// GET /api/logs?robot_id=&event_type=&planner=&recognition_id=&start=&end=&limit=
func HandleGetLogs(c *fiber.Ctx) error {
	q := services.LogQuery{
		RobotID:       c.Query("robot_id"),
		EventType:     c.Query("event_type"),
		Planner:       c.Query("planner"),
		RecognitionID: c.Query("recognition_id"),
		Limit:         c.QueryInt("limit", defaultLogLimit),
	}

	if q.EventType != "" && !models.IsFieldEventType(q.EventType) {
		return badLogQuery(c, "Unknown event_type", fiber.Map{
			"event_types": models.FieldEventTypes,
		})
	}
	if q.Planner != "" && q.Planner != services.PlannerAStar && q.Planner != services.PlannerDLite {
		return badLogQuery(c, "Unknown planner", fiber.Map{
			"planners": []string{services.PlannerAStar, services.PlannerDLite},
		})
	}

	var err error
	if q.Start, err = queryTime(c, "start"); err != nil {
		return badLogQuery(c, "Invalid start time format (use RFC3339)", nil)
	}
	if q.End, err = queryTime(c, "end"); err != nil {
		return badLogQuery(c, "Invalid end time format (use RFC3339)", nil)
	}
	if !q.Start.IsZero() && !q.End.IsZero() && q.End.Before(q.Start) {
		return badLogQuery(c, "end must not be before start", nil)
	}

	if q.Limit <= 0 {
		q.Limit = defaultLogLimit
	}
	q.Limit = min(q.Limit, maxLogLimit)

	logs, err := services.QueryLogs(q)
	if err != nil {
		return logQueryError(c, err, "Failed to fetch logs")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"query":   q,
		"count":   len(logs),
		"logs":    logs,
	})
}

// HandleGetLogStats - 인식 액션별/플래너별 로그 통계
// GET /api/logs/stats?robot_id=&since=  (since 기본: 24시간 전)
func HandleGetLogStats(c *fiber.Ctx) error {
	since, err := queryTime(c, "since")
	if err != nil {
		return badLogQuery(c, "Invalid since time format (use RFC3339)", nil)
	}
	if since.IsZero() {
		since = time.Now().Add(-24 * time.Hour)
	}

	stats, err := services.GetLogStats(c.Query("robot_id"), since)
	if err != nil {
		return logQueryError(c, err, "Failed to fetch stats")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}
