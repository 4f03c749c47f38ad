package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/appiumctl/api/internal/catalog"
	"github.com/appiumctl/api/internal/config"
	"github.com/appiumctl/api/internal/engine"
	"github.com/appiumctl/api/internal/events"
	"github.com/appiumctl/api/internal/handler"
	"github.com/appiumctl/api/internal/logger"
	"github.com/appiumctl/api/internal/middleware"
	"github.com/appiumctl/api/internal/scheduler"
	"github.com/appiumctl/api/internal/service"
	ws "github.com/appiumctl/api/internal/websocket"
)

func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	mode := "development"
	if cfg.IsProduction() {
		mode = "production"
	}
	log, err := logger.New(mode, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	// Initialize WebSocket hub
	hub := ws.NewHub(log.With("component", "websocket"))
	go hub.Run()
	defer hub.Stop()

	notifiers := []engine.Option{
		engine.WithLogger(log.With("component", "engine")),
		engine.WithNotifier(hub),
	}

	// Redis backs the rate limiter and the event mirror when enabled
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis not available", "addr", cfg.Redis.Addr, "error", err)
		}
		cancel()

		publisher := events.NewRedisPublisher(redisClient, cfg.Events.Channel, log.With("component", "events"))
		defer publisher.Close()
		notifiers = append(notifiers, engine.WithNotifier(publisher))
	}

	// Initialize engine
	cat := catalog.Default()
	timers := scheduler.New(cfg.Engine.StepDelay)
	registry := engine.NewRegistry(cat)
	controller := engine.NewController(registry, timers, notifiers...)
	defer controller.Close()

	validate := validator.New()

	// Initialize services
	models := service.NewModelService()
	devices := service.NewDeviceService(service.DefaultDevices()...)
	jobService := service.NewJobService(registry, controller, models, devices)
	statsService := service.NewStatsService(registry, devices)

	rateLimiter := middleware.NewRateLimiter(redisClient, log.With("component", "ratelimit"))

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	handler.Register(app, &handler.Handlers{
		Jobs:      handler.NewJobHandler(jobService, validate),
		Devices:   handler.NewDeviceHandler(devices, validate),
		Models:    handler.NewModelHandler(models),
		Dashboard: handler.NewDashboardHandler(cat, statsService),
	}, hub, rateLimiter.JobsLimit(cfg.RateLimit.JobsPerMin))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		controller.Close()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("server shutdown error", "error", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Info("server starting", "addr", addr, "step_delay", cfg.Engine.StepDelay, "redis", cfg.Redis.Enabled)
	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
