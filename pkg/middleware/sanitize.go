package middleware

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/SafeField/FieldGate/pkg/sanitizer"
	"github.com/SafeField/FieldGate/pkg/scanner"
)

// SanitizeConfig declares which body fields the middleware cleans and
// which ones must come back safe for the request to proceed.
type SanitizeConfig struct {
	// FieldTypes maps JSON body field names to their field type.
	// Undeclared fields pass through untouched.
	FieldTypes map[string]sanitizer.FieldType
	// RequiredSafe lists fields whose unsafe verdict rejects the request.
	// Empty means every declared field is required.
	RequiredSafe []string
	// ErrorMessage is the client-facing rejection message.
	ErrorMessage string
}

type sanitizeMiddleware struct {
	logger *logrus.Logger
	engine *sanitizer.Sanitizer
	cfg    SanitizeConfig
}

// NewSanitizeMiddleware validates request bodies before they reach
// persistence: declared fields are sanitized, unsafe required fields
// reject the request, and safe requests continue with the cleaned values
// written back into the body.
func NewSanitizeMiddleware(logger *logrus.Logger, engine *sanitizer.Sanitizer, cfg SanitizeConfig) Middleware {
	if cfg.ErrorMessage == "" {
		cfg.ErrorMessage = "request rejected: unsafe input"
	}
	return &sanitizeMiddleware{logger: logger, engine: engine, cfg: cfg}
}

func (m *sanitizeMiddleware) Middleware() fiber.Handler {
	required := make(map[string]bool, len(m.cfg.RequiredSafe))
	for _, f := range m.cfg.RequiredSafe {
		required[f] = true
	}
	allRequired := len(required) == 0

	return func(c *fiber.Ctx) error {
		body := c.Body()
		if len(body) == 0 || len(m.cfg.FieldTypes) == 0 {
			return c.Next()
		}

		var payload map[string]interface{}
		if err := json.Unmarshal(body, &payload); err != nil {
			// Not a JSON object body; nothing for this middleware to do.
			return c.Next()
		}

		fields := make(map[string]interface{})
		for name := range m.cfg.FieldTypes {
			if v, ok := payload[name]; ok {
				fields[name] = v
			}
		}
		if len(fields) == 0 {
			return c.Next()
		}

		batch := m.engine.SanitizeBatch(fields, m.cfg.FieldTypes, scanner.Context{})

		for name, res := range batch.Fields {
			if res.Safe {
				continue
			}
			if allRequired || required[name] {
				m.logger.WithFields(logrus.Fields{
					"field":        name,
					"safety_score": res.SafetyScore,
					"warnings":     len(res.Warnings),
				}).Warn("request rejected by input sanitization")
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": m.cfg.ErrorMessage,
					"field": name,
				})
			}
		}

		for name, value := range batch.SanitizedValues {
			payload[name] = value
		}
		rewritten, err := json.Marshal(payload)
		if err != nil {
			m.logger.WithError(err).Error("failed to rewrite sanitized body")
			return c.Next()
		}
		c.Request().SetBody(rewritten)
		return c.Next()
	}
}
