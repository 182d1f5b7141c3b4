package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Abraxas-365/authcore/pkg/config"
	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const version = "1.0.0"

func main() {
	// 1. Configuration (LOG_LEVEL is read by logx itself)
	cfg, err := config.Load()
	if err != nil {
		logx.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Server.Debug {
		logx.SetLevel(logx.LevelDebug)
	}

	logx.Infof("🚀 Starting %s...", cfg.Server.AppName)

	// 2. Initialize Dependency Container
	container := NewContainer(context.Background(), cfg)
	defer container.Cleanup()

	// 3. Create Fiber App
	app := newApp(container)

	// 4. Start Server with Graceful Shutdown
	startServer(app, cfg)
}

func newApp(container *Container) *fiber.App {
	cfg := container.Config

	app := fiber.New(fiber.Config{
		AppName:               cfg.Server.AppName,
		DisableStartupMessage: true,
		ErrorHandler:          errx.FiberErrorHandler,
	})

	// Global Middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.Server.Debug,
	}))

	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(requestContext)

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:  "GET, POST, OPTIONS",
		ExposeHeaders: fiber.HeaderXRequestID,
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${respHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	// Health Check & Info Endpoints
	app.Get("/health", healthCheckHandler(container))
	app.Get("/", infoHandler(cfg))

	// Routes: /api/auth/*, /api/users/*
	container.IAM.RegisterRoutes(app.Group("/api"))
	logx.Info("✓ IAM routes registered")

	app.Use(notFoundHandler)

	return app
}

// requestContext makes the request id available to logx through the user
// context.
func requestContext(c *fiber.Ctx) error {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		c.SetUserContext(logx.ContextWithRequestID(c.UserContext(), id))
	}
	return c.Next()
}

// ============================================================================
// Handler Functions
// ============================================================================

func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": container.Config.Server.AppName,
			"version": version,
			"store":   container.Config.Database.Driver,
		}

		if err := container.Users.Ping(c.UserContext()); err != nil {
			logx.WithContext(c.UserContext()).WithError(err).Warn("store ping failed")
			health["status"] = "degraded"
			health["db"] = "unhealthy"
			return c.Status(fiber.StatusServiceUnavailable).JSON(health)
		}

		health["db"] = "healthy"
		return c.JSON(health)
	}
}

func infoHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": cfg.Server.AppName,
			"version": version,
			"endpoints": fiber.Map{
				"auth": []string{
					"POST /api/auth/register",
					"POST /api/auth/login",
					"POST /api/auth/refresh-token",
					"POST /api/auth/generate-magic-link",
					"GET /api/auth/verify-magic-link?token=",
					"POST /api/auth/google",
				},
				"users": []string{
					"GET /api/users/admin",
					"GET /api/users/manager",
					"GET /api/users/user",
				},
				"health": "GET /health",
			},
		})
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(errx.Response{
		Success:   false,
		Message:   "Route not found",
		Code:      "NOT_FOUND",
		RequestID: c.GetRespHeader(fiber.HeaderXRequestID),
	})
}

// ============================================================================
// Server lifecycle
// ============================================================================

func startServer(app *fiber.App, cfg *config.Config) {
	port := cfg.Server.Port

	go func() {
		logx.Info(strings.Repeat("=", 60))
		logx.Infof("🚀 Server listening on port %s", port)
		logx.Infof("💚 Health Check: http://localhost:%s/health", port)
		logx.Info(strings.Repeat("=", 60))

		if err := app.Listen(":" + port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	gracefulShutdown(app, cfg)
}

func gracefulShutdown(app *fiber.App, cfg *config.Config) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logx.Infof("🛑 Received signal: %v", sig)
	logx.Info("Shutting down gracefully...")

	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	logx.Info("✅ Server exited successfully")
}
