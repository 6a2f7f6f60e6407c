package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes - REST/WebSocket 라우트 등록
func RegisterRoutes(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("FieldNav 서버가 실행 중입니다.")
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "OK",
			"clients": Manager.GetClientCount(),
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// 필드 맵
	fieldAPI := api.Group("/field")
	fieldAPI.Post("/update", HandleFieldUpdate)
	fieldAPI.Get("/grid", HandleGetGrid)
	fieldAPI.Get("/recognitions", HandleGetRecognitions)

	// 경로 탐색
	api.Post("/pathfinding", HandlePathfinding)
	api.Post("/pathfinding/advance", HandleAdvance)

	api.Get("/robots", HandleGetRobots)

	// 시뮬레이터
	simAPI := api.Group("/sim")
	simAPI.Get("/status", HandleSimStatus)
	simAPI.Post("/start", HandleSimStart)
	simAPI.Post("/stop", HandleSimStop)
	simAPI.Post("/step", HandleSimStep)

	// 로그 조회
	api.Get("/logs", HandleGetLogs)            // 조건별 조회
	api.Get("/logs/stats", HandleGetLogStats) // 인식/계획 통계

	// WebSocket
	app.Use("/websocket", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/websocket/robot", websocket.New(HandleRobotWebSocket))
	app.Get("/websocket/web", websocket.New(HandleWebClientWebSocket))
}
