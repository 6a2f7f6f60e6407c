package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func simulatorUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": "simulator not configured",
	})
}

// HandleSimStart - 시뮬레이터 시작
func HandleSimStart(c *fiber.Ctx) error {
	if simulator == nil {
		return simulatorUnavailable(c)
	}
	if err := simulator.Start(); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"status":  simulator.GetStatus(),
	})
}

// HandleSimStop - 시뮬레이터 중지
func HandleSimStop(c *fiber.Ctx) error {
	if simulator == nil {
		return simulatorUnavailable(c)
	}
	simulator.Stop()
	return c.JSON(fiber.Map{
		"success": true,
		"status":  simulator.GetStatus(),
	})
}

// HandleSimStep - 한 틱 수동 진행
func HandleSimStep(c *fiber.Ctx) error {
	if simulator == nil {
		return simulatorUnavailable(c)
	}
	if simulator.Running() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "simulator is running",
		})
	}
	report := simulator.Step()
	return c.JSON(fiber.Map{
		"success": true,
		"report":  report,
		"status":  simulator.GetStatus(),
	})
}

// HandleSimStatus - 시뮬레이터 상태
func HandleSimStatus(c *fiber.Ctx) error {
	if simulator == nil {
		return simulatorUnavailable(c)
	}
	return c.JSON(simulator.GetStatus())
}
