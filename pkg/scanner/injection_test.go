package scanner

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SafeField/FieldGate/pkg/threat"
)

func newTestScanner() *Scanner {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewDefault(logger)
}

func TestScanInjection_KnownAttacks(t *testing.T) {
	s := newTestScanner()

	tests := []struct {
		name  string
		input string
	}{
		{"stacked drop", `'; DROP TABLE users; --`},
		{"boolean tautology", `' OR '1'='1`},
		{"union select", `1 UNION SELECT username, password FROM users`},
		{"delete from", `x; DELETE FROM accounts`},
		{"timing probe", `1' OR SLEEP(5)--`},
		{"waitfor delay", `1'; WAITFOR DELAY '0:0:5'--`},
		{"comment escape", `admin'--`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := s.ScanInjection(tt.input, Context{}, "field")
			assert.False(t, verdict.Safe)
			assert.NotEmpty(t, verdict.Threats)
			assert.GreaterOrEqual(t, verdict.RiskScore, 50, "risk score too low for %q", tt.input)
			assert.Contains(t, []threat.Severity{threat.SeverityCritical, threat.SeverityHigh}, verdict.Severity)
		})
	}
}

func TestScanInjection_BenignInput(t *testing.T) {
	s := newTestScanner()

	for _, input := range []string{
		"john_doe",
		"user@example.com",
		"Normal text content",
		"O'Brien", // a lone quote is not an attack shape
		"",
	} {
		verdict := s.ScanInjection(input, Context{}, "field")
		assert.True(t, verdict.Safe, "expected %q to be safe", input)
		assert.Empty(t, verdict.Threats)
		assert.Equal(t, 0, verdict.RiskScore)
		assert.Equal(t, threat.SeverityNone, verdict.Severity)
	}
}

func TestScanInjection_WhereClauseEscalation(t *testing.T) {
	s := newTestScanner()

	verdict := s.ScanInjection(`' OR 'a'='a`, Context{QueryClause: ClauseWhere}, "filter")
	require.False(t, verdict.Safe)
	for _, th := range verdict.Threats {
		if th.Signature == "sql_tautology" || th.Signature == "sql_logic_probe" {
			assert.Equal(t, threat.SeverityCritical, th.Severity)
		}
	}
}

func TestScanInjection_OrderByContextViolation(t *testing.T) {
	s := newTestScanner()

	// Plain column list is fine.
	verdict := s.ScanInjection("created_at DESC, name", Context{QueryClause: ClauseOrderBy}, "sort")
	assert.True(t, verdict.Safe)

	// A keyword smuggled into the ordering clause is a context violation.
	verdict = s.ScanInjection("name; DROP TABLE users", Context{QueryClause: ClauseOrderBy}, "sort")
	require.False(t, verdict.Safe)
	found := false
	for _, th := range verdict.Threats {
		if th.Signature == "CONTEXT_VIOLATION_ORDER_BY" {
			found = true
			assert.Equal(t, threat.ContextViolation, th.Kind)
		}
	}
	assert.True(t, found, "expected an ORDER BY context violation")
}

func TestScanInjection_LimitContextViolation(t *testing.T) {
	s := newTestScanner()

	verdict := s.ScanInjection("10, 20", Context{QueryClause: ClauseLimit}, "limit")
	assert.True(t, verdict.Safe)

	verdict = s.ScanInjection("10; DELETE FROM t", Context{QueryClause: ClauseLimit}, "limit")
	require.False(t, verdict.Safe)
	names := make([]string, 0, len(verdict.Threats))
	for _, th := range verdict.Threats {
		names = append(names, th.Signature)
	}
	assert.Contains(t, names, "CONTEXT_VIOLATION_LIMIT")
}

func TestScanInjection_MonotonicRisk(t *testing.T) {
	s := newTestScanner()

	base := `'; DROP TABLE users`
	extended := base + ` UNION SELECT secret FROM vault`

	baseScore := s.ScanInjection(base, Context{}, "f").RiskScore
	extendedScore := s.ScanInjection(extended, Context{}, "f").RiskScore
	assert.GreaterOrEqual(t, extendedScore, baseScore)
}

func TestScanInjection_AllMatchesRecorded(t *testing.T) {
	s := newTestScanner()

	// One payload hitting several signature families: no deduplication.
	verdict := s.ScanInjection(`'; DROP TABLE users; --`, Context{}, "f")
	require.False(t, verdict.Safe)
	assert.GreaterOrEqual(t, len(verdict.Threats), 3)
}
