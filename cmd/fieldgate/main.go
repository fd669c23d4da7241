package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SafeField/FieldGate"
	"github.com/SafeField/FieldGate/pkg/config"
	infraPrometheus "github.com/SafeField/FieldGate/pkg/infra/prometheus"
	"github.com/SafeField/FieldGate/pkg/middleware"
	"github.com/SafeField/FieldGate/pkg/sanitizer"
	"github.com/SafeField/FieldGate/pkg/scanner"
)

// A small standalone sanitization service: POST a JSON body and get the
// cleaned fields and per-field verdicts back. Mostly useful for trying
// the engine out or fronting it from non-Go callers.
func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	engine, err := fieldgate.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize engine: %v", err)
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(
		infraPrometheus.Registry(), promhttp.HandlerOpts{},
	)))

	app.Post("/sanitize", func(c *fiber.Ctx) error {
		var req struct {
			Fields map[string]interface{}         `json:"fields"`
			Types  map[string]sanitizer.FieldType `json:"types"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
		}
		for _, ft := range req.Types {
			if err := ft.Validate(); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
		}
		return c.JSON(engine.SanitizeBatch(req.Fields, req.Types, scanner.Context{}))
	})

	// Example of the middleware wiring an embedding API would use.
	guarded := app.Group("/demo", middleware.NewSanitizeMiddleware(engine.Logger, engine.Sanitizer, middleware.SanitizeConfig{
		FieldTypes: map[string]sanitizer.FieldType{
			"title": sanitizer.PlainText,
			"body":  sanitizer.RichText,
		},
	}).Middleware())
	guarded.Post("/articles", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusCreated).Send(c.Body())
	})

	addr := os.Getenv("FIELDGATE_LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	go func() {
		if err := app.Listen(addr); err != nil {
			engine.Logger.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	engine.Logger.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		engine.Logger.WithError(err).Error("error shutting down server")
	}
	engine.Shutdown()
}
