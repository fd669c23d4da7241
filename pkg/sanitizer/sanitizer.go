// Package sanitizer orchestrates per-field-type threat scanning and
// cleanup for untrusted input. Every entry point returns a verdict; a
// malicious value is never an error and the pipeline never panics
// outward, because the input boundary must not be the thing that crashes
// the service.
package sanitizer

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"github.com/SafeField/FieldGate/pkg/infra/prometheus"
	"github.com/SafeField/FieldGate/pkg/infra/securityevent"
	"github.com/SafeField/FieldGate/pkg/scanner"
	"github.com/SafeField/FieldGate/pkg/threat"
)

// Warning kinds surfaced in sanitization results.
const (
	WarnLengthTruncated   = "LENGTH_TRUNCATED"
	WarnBelowMinLength    = "BELOW_MIN_LENGTH"
	WarnInvalidChars      = "INVALID_CHARS_REMOVED"
	WarnCharsetViolation  = "DISALLOWED_CHARACTERS"
	WarnDangerousSequence = "DANGEROUS_SEQUENCE_REMOVED"
	WarnSQLInjection      = "SQL_INJECTION_DETECTED"
	WarnMarkupInjection   = "MARKUP_INJECTION_DETECTED"
	WarnFormatInvalid     = "FORMAT_INVALID"
	WarnInternal          = "INTERNAL_ERROR"
)

// Warning is one issue found while sanitizing a field.
type Warning struct {
	Kind     string          `json:"kind"`
	Message  string          `json:"message"`
	Severity threat.Severity `json:"severity"`
}

// Result is the outcome of sanitizing a single field.
type Result struct {
	Safe            bool      `json:"safe"`
	SanitizedValue  string    `json:"sanitized_value"`
	Warnings        []Warning `json:"warnings"`
	SafetyScore     int       `json:"safety_score"`
	OriginalLength  int       `json:"original_length"`
	SanitizedLength int       `json:"sanitized_length"`
	Changed         bool      `json:"changed"`
	Error           string    `json:"error,omitempty"`
}

// Sanitizer runs the full pipeline. It carries no per-call state; one
// instance serves arbitrarily many goroutines.
type Sanitizer struct {
	logger   *logrus.Logger
	scanner  *scanner.Scanner
	params   threat.Params
	recorder securityevent.Recorder
}

func New(logger *logrus.Logger, params threat.Params, recorder securityevent.Recorder) *Sanitizer {
	if recorder == nil {
		recorder = securityevent.NoopRecorder{}
	}
	return &Sanitizer{
		logger:   logger,
		scanner:  scanner.New(logger, params),
		params:   params,
		recorder: recorder,
	}
}

// NewDefault builds a sanitizer with stock scoring constants and no
// event sink.
func NewDefault(logger *logrus.Logger) *Sanitizer {
	return New(logger, threat.DefaultParams(), nil)
}

// Sanitize cleans one value according to its field type. overrides may be
// nil; when present it is decoded into per-call config adjustments.
func (s *Sanitizer) Sanitize(input interface{}, ft FieldType, ctx scanner.Context, overrides map[string]interface{}) Result {
	return s.sanitizeField(string(ft), input, ft, ctx, overrides)
}

func (s *Sanitizer) sanitizeField(fieldLabel string, input interface{}, ft FieldType, ctx scanner.Context, overrides map[string]interface{}) (res Result) {
	original := coerce(input)
	res.OriginalLength = len(original)

	// The validator must never be the crash. Anything unexpected inside
	// the pipeline degrades to a conservative unsafe verdict.
	defer func() {
		if r := recover(); r != nil {
			if s.logger != nil {
				s.logger.WithFields(logrus.Fields{
					"field": fieldLabel,
					"panic": fmt.Sprintf("%v", r),
				}).Error("sanitization pipeline failure")
			}
			res = s.hardFail(res, original, Warning{
				Kind:     WarnInternal,
				Message:  "internal sanitization failure",
				Severity: threat.SeverityCritical,
			}, "internal error")
		}
		prometheus.SanitizationsTotal.WithLabelValues(string(ft), prometheus.Outcome(res.Safe)).Inc()
	}()

	cfg, err := ConfigFor(ft)
	if err != nil {
		return s.hardFail(res, original, Warning{
			Kind:     WarnInternal,
			Message:  err.Error(),
			Severity: threat.SeverityCritical,
		}, err.Error())
	}
	if len(overrides) > 0 {
		var o Overrides
		if err := mapstructure.Decode(overrides, &o); err != nil {
			return s.hardFail(res, original, Warning{
				Kind:     WarnInternal,
				Message:  fmt.Sprintf("invalid override options: %v", err),
				Severity: threat.SeverityCritical,
			}, "invalid override options")
		}
		cfg = o.apply(cfg)
	}

	value := original

	// Length bounds. Truncation is recoverable; a value below the minimum
	// is the only hard stop before scanning.
	if cfg.MaxLength > 0 && len(value) > cfg.MaxLength {
		value = truncate(value, cfg.MaxLength)
		res.Warnings = append(res.Warnings, Warning{
			Kind:     WarnLengthTruncated,
			Message:  fmt.Sprintf("value truncated to %d characters", cfg.MaxLength),
			Severity: threat.SeverityLow,
		})
	}
	if len(value) < cfg.MinLength {
		return s.hardFail(res, original, Warning{
			Kind:     WarnBelowMinLength,
			Message:  fmt.Sprintf("value shorter than minimum length %d", cfg.MinLength),
			Severity: threat.SeverityHigh,
		}, "value below minimum length")
	}

	// Universal stripping, regardless of field type.
	if stripped := stripDangerousSequences(value); stripped != value {
		value = stripped
		res.Warnings = append(res.Warnings, Warning{
			Kind:     WarnDangerousSequence,
			Message:  "dangerous raw sequences removed",
			Severity: threat.SeverityLow,
		})
	}

	// Character class enforcement.
	if cfg.disallowedChars != nil && cfg.disallowedChars.MatchString(value) {
		if cfg.StrictCharset {
			return s.hardFail(res, original, Warning{
				Kind:     WarnCharsetViolation,
				Message:  fmt.Sprintf("disallowed characters in %s field", string(ft)),
				Severity: threat.SeverityHigh,
			}, "disallowed characters")
		}
		value = cfg.disallowedChars.ReplaceAllString(value, "")
		res.Warnings = append(res.Warnings, Warning{
			Kind:     WarnInvalidChars,
			Message:  "characters outside the allowed class removed",
			Severity: threat.SeverityMedium,
		})
	}

	// SQL injection scan and cleanup. Cleanup order relative to markup is
	// fixed: SQL first, always.
	if cfg.CheckInjection {
		verdict := s.scanner.ScanInjection(value, ctx, fieldLabel)
		s.countThreats(verdict)
		if !verdict.Safe {
			value = cleanupSQL(value)
			res.Warnings = append(res.Warnings, Warning{
				Kind:     WarnSQLInjection,
				Message:  fmt.Sprintf("injection patterns detected and removed (risk %d)", verdict.RiskScore),
				Severity: threat.SeverityCritical,
			})
			s.emitEvent(fieldLabel, ft, WarnSQLInjection, verdict)
		}
	}

	// Markup injection scan and cleanup.
	if cfg.CheckMarkup {
		verdict := s.scanner.ScanMarkup(value, ctx, fieldLabel, cfg.RenderContext)
		s.countThreats(verdict)
		if !verdict.Safe {
			value = cleanupMarkup(value, cfg)
			res.Warnings = append(res.Warnings, Warning{
				Kind:     WarnMarkupInjection,
				Message:  fmt.Sprintf("markup patterns detected and removed (risk %d)", verdict.RiskScore),
				Severity: threat.SeverityCritical,
			})
			s.emitEvent(fieldLabel, ft, WarnMarkupInjection, verdict)
		}
	}

	value = normalize(value, ft)

	// Normalization can grow the value (e.g. a prepended URL scheme);
	// the length bound holds for every output.
	if cfg.MaxLength > 0 && len(value) > cfg.MaxLength {
		value = truncate(value, cfg.MaxLength)
	}

	if err := validateFormat(value, ft); err != nil {
		return s.hardFail(res, original, Warning{
			Kind:     WarnFormatInvalid,
			Message:  err.Error(),
			Severity: threat.SeverityHigh,
		}, err.Error())
	}

	res.SanitizedValue = value
	res.SanitizedLength = len(value)
	res.Changed = value != original
	res.SafetyScore = s.params.SafetyScore(warningSeverities(res.Warnings))
	res.Safe = res.SafetyScore >= s.params.SafeThreshold
	return res
}

// hardFail short-circuits the pipeline: empty sanitized value, zero
// score, unsafe.
func (s *Sanitizer) hardFail(res Result, original string, w Warning, errMsg string) Result {
	res.Warnings = append(res.Warnings, w)
	res.Safe = false
	res.SanitizedValue = ""
	res.SanitizedLength = 0
	res.Changed = original != ""
	res.SafetyScore = 0
	res.Error = errMsg
	return res
}

func (s *Sanitizer) countThreats(v threat.Verdict) {
	for _, t := range v.Threats {
		prometheus.ThreatsDetected.WithLabelValues(string(t.Kind), string(t.Severity)).Inc()
	}
}

// emitEvent notifies the security-event pipeline. Fire-and-forget: the
// recorder enqueues without blocking and delivery failures stay inside
// the event worker.
func (s *Sanitizer) emitEvent(fieldLabel string, ft FieldType, kind string, verdict threat.Verdict) {
	match := ""
	if len(verdict.Threats) > 0 {
		match = verdict.Threats[0].Match
	}
	evt := securityevent.NewEvent(kind, fieldLabel, string(ft), verdict.Severity,
		fmt.Sprintf("%d threats, risk score %d", len(verdict.Threats), verdict.RiskScore), match)
	s.recorder.Record(context.Background(), evt)
	prometheus.SecurityEventsEmitted.Inc()
}

func warningSeverities(warnings []Warning) []threat.Severity {
	out := make([]threat.Severity, len(warnings))
	for i, w := range warnings {
		out[i] = w.Severity
	}
	return out
}

// truncate cuts at a rune boundary so the result stays valid UTF-8 while
// never exceeding max bytes.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}

// coerce turns any input into its canonical string form; nil becomes the
// empty string.
func coerce(input interface{}) string {
	switch v := input.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
