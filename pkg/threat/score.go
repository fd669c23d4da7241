package threat

// Params holds the scoring constants. The per-severity deltas and the
// safety threshold are heuristic values carried over from the original
// rule set; they are configurable rather than hard-coded and have not
// been calibrated against a labelled attack corpus.
type Params struct {
	CriticalWeight int `mapstructure:"critical_weight"`
	HighWeight     int `mapstructure:"high_weight"`
	MediumWeight   int `mapstructure:"medium_weight"`
	LowWeight      int `mapstructure:"low_weight"`
	SafeThreshold  int `mapstructure:"safe_threshold"`
}

// DefaultParams returns the stock scoring constants.
func DefaultParams() Params {
	return Params{
		CriticalWeight: 40,
		HighWeight:     25,
		MediumWeight:   15,
		LowWeight:      5,
		SafeThreshold:  70,
	}
}

func (p Params) weight(s Severity) int {
	switch s {
	case SeverityCritical:
		return p.CriticalWeight
	case SeverityHigh:
		return p.HighWeight
	case SeverityMedium:
		return p.MediumWeight
	case SeverityLow:
		return p.LowWeight
	default:
		return 0
	}
}

// RiskScore sums the severity weights of the threats, clamped to [0,100].
// An empty list scores 0.
func (p Params) RiskScore(threats []Detected) int {
	total := 0
	for _, t := range threats {
		total += p.weight(t.Severity)
	}
	return clampScore(total)
}

// SafetyScore is the complementary view of the same evidence: 100 minus
// the accumulated deductions, clamped to [0,100].
func (p Params) SafetyScore(deductions []Severity) int {
	total := 100
	for _, s := range deductions {
		total -= p.weight(s)
	}
	return clampScore(total)
}

// Score builds a full verdict for a scan: derived safe flag, risk score
// and the maximum contributing severity.
func (p Params) Score(threats []Detected) Verdict {
	return Verdict{
		Safe:      len(threats) == 0,
		Threats:   threats,
		RiskScore: p.RiskScore(threats),
		Severity:  MaxSeverity(threats),
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
