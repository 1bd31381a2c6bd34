package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hhafez300/thena-pagerduty-bridge/internal/config"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/handlers"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/logger"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/routes"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/service"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	if err := logger.Init(os.Getenv("LOG_LEVEL")); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	svc, err := service.New(cfg, logger.Logger)
	if err != nil {
		logger.Fatal("Failed to build service", zap.Error(err))
	}
	defer svc.Close()

	app := fiber.New(fiber.Config{
		AppName:      "Thena PagerDuty Bridge",
		ServerHeader: "Fiber",
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,HEAD,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	routes.SetupRoutes(app, svc.Health, handlers.NewEventsHandler(svc.Engine, logger.Logger), cfg.Server.WebhookToken)

	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		logger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.Error("Error during server shutdown", zap.Error(err))
	}
	logger.Info("Server stopped")
}
