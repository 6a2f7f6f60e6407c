package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldnav-backend/config"
	"fieldnav-backend/handlers"
	"fieldnav-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
)

func main() {
	// .env 파일 로드
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env 파일을 찾을 수 없습니다.")
	}

	// 필드 설정 (FIELD_CONFIG 없으면 기본값)
	cfg := config.DefaultFieldConfig()
	if path := os.Getenv("FIELD_CONFIG"); path != "" {
		loaded, err := config.LoadFieldConfig(path)
		if err != nil {
			log.Fatalf("❌ 필드 설정 로드 실패: %v", err)
		}
		cfg = loaded
		log.Printf("📄 필드 설정 로드: %s", path)
	}

	// 텔레메트리 DB
	if err := services.InitDatabase(); err != nil {
		log.Printf("⚠️ DB 초기화 실패, 텔레메트리 없이 실행: %v", err)
	}
	defer services.CloseDatabase()

	// flushSize: 50 (로그 50개마다 일괄 저장)
	// flushInterval: 10초
	services.InitLogging(50, 10*time.Second)
	defer services.StopLogging()

	field, err := services.NewFieldMap(cfg)
	if err != nil {
		log.Fatalf("❌ 필드 맵 초기화 실패: %v", err)
	}

	world := services.NewWorldGenerator(0)
	world.Generate(cfg.GetFieldSizeMM(), 8)
	sim := services.NewSimulator(field, world, handlers.Manager.BroadcastMessage)
	handlers.InitField(field, sim)

	app := fiber.New()

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:5173, http://localhost:3000",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	go handlers.Manager.Start()

	handlers.RegisterRoutes(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 서버 시작: http://localhost:%s", port)
	log.Printf("📡 WebSocket: ws://localhost:%s/websocket/web", port)
	log.Printf("🤖 로봇 WebSocket: ws://localhost:%s/websocket/robot?robot_id=robot-001", port)
	log.Printf("📈 메트릭: http://localhost:%s/metrics", port)
	log.Printf("💾 로그 API: GET http://localhost:%s/api/logs", port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	if err := serveUntilSignal(app, ":"+port, quit); err != nil {
		log.Printf("❌ 서버 실행 실패: %v", err)
	}

	// 남은 로그 저장과 DB 종료는 defer에서
	sim.Stop()
}

const shutdownTimeout = 5 * time.Second

// serveUntilSignal - 종료 신호가 오면 서버를 멈추고 반환 (Listen 실패 시 에러)
func serveUntilSignal(app *fiber.App, addr string, quit <-chan os.Signal) error {
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		return err
	case sig := <-quit:
		log.Printf("🛑 종료 신호 수신 (%v), 서버 종료 중...", sig)
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return err
		}
		return <-listenErr
	}
}
