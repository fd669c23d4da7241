package threat

// Kind categorizes the family of a signature or detected threat.
type Kind string

const (
	InjectionPattern    Kind = "injection_pattern"
	DangerousKeyword    Kind = "dangerous_keyword"
	DangerousTag        Kind = "dangerous_tag"
	DangerousAttribute  Kind = "dangerous_attribute"
	DangerousProtocol   Kind = "dangerous_protocol"
	ContextViolation    Kind = "context_violation"
	InternalScanFailure Kind = "internal_error"
)

// Detected is a single threat found in one scanned value. Instances are
// created per scan call and never persisted.
type Detected struct {
	Kind      Kind     `json:"kind"`
	Signature string   `json:"signature"`
	Message   string   `json:"message"`
	Severity  Severity `json:"severity"`
	Context   string   `json:"context,omitempty"`
	Match     string   `json:"match,omitempty"`
}

// Verdict is the outcome of scanning one value. Safe is derived from the
// threat list, never set independently.
type Verdict struct {
	Safe      bool       `json:"safe"`
	Threats   []Detected `json:"threats"`
	RiskScore int        `json:"risk_score"`
	Severity  Severity   `json:"severity"`
}

// MaxSeverity returns the highest severity among the threats, or none for
// an empty list.
func MaxSeverity(threats []Detected) Severity {
	max := SeverityNone
	for _, t := range threats {
		max = max.Max(t.Severity)
	}
	return max
}
