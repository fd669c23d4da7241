package securityevent

import (
	"context"

	"github.com/sirupsen/logrus"
)

const LogExporterName = "log"

// LogExporter writes events to the structured log. It is the default sink
// when nothing else is configured.
type LogExporter struct {
	logger *logrus.Logger
}

func NewLogExporter(logger *logrus.Logger) *LogExporter {
	return &LogExporter{logger: logger}
}

func (e *LogExporter) Name() string { return LogExporterName }

func (e *LogExporter) Handle(_ context.Context, evt Event) error {
	e.logger.WithFields(logrus.Fields{
		"event_id":   evt.ID,
		"kind":       evt.Kind,
		"field":      evt.Field,
		"field_type": evt.FieldType,
		"severity":   string(evt.Severity),
		"match":      evt.Match,
	}).Warn("security event")
	return nil
}

func (e *LogExporter) Close() {}
