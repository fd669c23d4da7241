// Package fieldgate is an input-threat-detection and sanitization engine
// for untrusted strings arriving at a content-management API. It decides
// whether a value is safe to persist or must be cleaned or rejected,
// covering SQL-injection and markup/script-injection families.
//
// All analysis is single-field, stateless and synchronous; the only
// I/O is the fire-and-forget security-event pipeline.
package fieldgate

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/SafeField/FieldGate/internal/logger"
	"github.com/SafeField/FieldGate/pkg/config"
	"github.com/SafeField/FieldGate/pkg/infra/securityevent"
	"github.com/SafeField/FieldGate/pkg/infra/securityevent/kafka"
	"github.com/SafeField/FieldGate/pkg/sanitizer"
	"github.com/SafeField/FieldGate/pkg/scanner"
	"github.com/SafeField/FieldGate/pkg/threat"
)

// Engine bundles the scanners, the sanitizer and the security-event
// worker behind one composition point. A single Engine serves arbitrarily
// many goroutines.
type Engine struct {
	Logger    *logrus.Logger
	Scanner   *scanner.Scanner
	Sanitizer *sanitizer.Sanitizer

	fieldOverrides map[string]map[string]interface{}
	worker         *securityevent.Worker
}

// New builds an engine from configuration. A nil cfg uses defaults: stock
// scoring constants and the structured-log event sink.
func New(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	log := logger.New(cfg.LogLevel)

	var recorder securityevent.Recorder = securityevent.NoopRecorder{}
	var worker *securityevent.Worker
	switch cfg.Events.Exporter {
	case "log":
		worker = securityevent.NewWorker(log, securityevent.NewLogExporter(log))
	case "kafka":
		exporter, err := kafka.NewExporter(cfg.Events.Settings)
		if err != nil {
			return nil, err
		}
		worker = securityevent.NewWorker(log, exporter)
	}
	if worker != nil {
		worker.Start(cfg.Events.Workers)
		recorder = worker
	}

	return &Engine{
		Logger:         log,
		Scanner:        scanner.New(log, cfg.Scoring),
		Sanitizer:      sanitizer.New(log, cfg.Scoring, recorder),
		fieldOverrides: cfg.Fields,
		worker:         worker,
	}, nil
}

// Shutdown stops the security-event worker. Scanning and sanitization
// have no teardown of their own.
func (e *Engine) Shutdown() {
	if e.worker != nil {
		e.worker.Shutdown()
	}
}

// ScanInjection checks text for SQL-injection shapes in the given query
// clause context.
func (e *Engine) ScanInjection(text string, ctx scanner.Context, fieldLabel string) threat.Verdict {
	return e.Scanner.ScanInjection(text, ctx, fieldLabel)
}

// ScanMarkupInjection checks text for markup/script-injection shapes in
// the given render context.
func (e *Engine) ScanMarkupInjection(text string, ctx scanner.Context, fieldLabel string, rc threat.RenderContext) threat.Verdict {
	return e.Scanner.ScanMarkup(text, ctx, fieldLabel, rc)
}

// Sanitize cleans a single value according to its field type. With nil
// overrides the configured per-field-type overrides apply.
func (e *Engine) Sanitize(input interface{}, ft sanitizer.FieldType, ctx scanner.Context, overrides map[string]interface{}) sanitizer.Result {
	if overrides == nil {
		overrides = e.configuredOverrides(ft)
	}
	return e.Sanitizer.Sanitize(input, ft, ctx, overrides)
}

// configuredOverrides resolves the config-file overrides for a field
// type. viper lowercases map keys, so the lookup is case-insensitive.
func (e *Engine) configuredOverrides(ft sanitizer.FieldType) map[string]interface{} {
	if o, ok := e.fieldOverrides[string(ft)]; ok {
		return o
	}
	return e.fieldOverrides[strings.ToLower(string(ft))]
}

// SanitizeBatch cleans a named set of fields and aggregates the verdict.
func (e *Engine) SanitizeBatch(fields map[string]interface{}, types map[string]sanitizer.FieldType, ctx scanner.Context) sanitizer.BatchResult {
	return e.Sanitizer.SanitizeBatch(fields, types, ctx)
}
