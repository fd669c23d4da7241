package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SafeField/FieldGate/pkg/threat"
)

func TestScanMarkup_KnownAttacks(t *testing.T) {
	s := newTestScanner()

	tests := []struct {
		name  string
		input string
	}{
		{"script tag", `<script>alert(1)</script>`},
		{"event handler", `<img src=x onerror=alert(1)>`},
		{"iframe tag", `<iframe src="https://evil.example"></iframe> onload=eval(x)`},
		{"javascript protocol", `javascript:alert(document.cookie)`},
		{"svg handler", `<svg onload=alert(1)>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := s.ScanMarkup(tt.input, Context{}, "field", threat.RenderHTML)
			assert.False(t, verdict.Safe)
			assert.GreaterOrEqual(t, verdict.RiskScore, 50, "risk score too low for %q", tt.input)
			assert.Contains(t, []threat.Severity{threat.SeverityCritical, threat.SeverityHigh}, verdict.Severity)
		})
	}
}

func TestScanMarkup_BenignInput(t *testing.T) {
	s := newTestScanner()

	for _, input := range []string{
		"john_doe",
		"Normal text content",
		"a < b and b > c",
		"",
	} {
		verdict := s.ScanMarkup(input, Context{}, "field", threat.RenderHTML)
		assert.True(t, verdict.Safe, "expected %q to be safe", input)
		assert.Empty(t, verdict.Threats)
		assert.Equal(t, 0, verdict.RiskScore)
	}
}

func TestScanMarkup_ObfuscationResistance(t *testing.T) {
	s := newTestScanner()

	tests := []struct {
		name  string
		input string
	}{
		{"percent encoded", `%3Cscript%3Ealert(1)%3C%2Fscript%3E`},
		{"entity encoded", `&lt;script&gt;alert(1)&lt;/script&gt;`},
		{"unicode escaped", `\u003cscript\u003ealert(1)\u003c/script\u003e`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := s.ScanMarkup(tt.input, Context{}, "field", threat.RenderHTML)
			require.False(t, verdict.Safe)

			// The decoded variant must surface the script tag even though
			// the raw text never contains a literal "<script".
			found := false
			for _, th := range verdict.Threats {
				if th.Signature == "script_tag" {
					found = true
				}
			}
			assert.True(t, found, "expected script_tag from a decoded variant of %q", tt.input)
		})
	}
}

func TestScanMarkup_VariantThreatsDeduplicated(t *testing.T) {
	s := newTestScanner()

	// The same signature firing in raw text and in every decoded variant
	// counts once.
	verdict := s.ScanMarkup(`<script>x</script>%3Cscript%3E`, Context{}, "field", threat.RenderHTML)
	count := 0
	for _, th := range verdict.Threats {
		if th.Signature == "script_tag" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestScanMarkup_RenderContextGating(t *testing.T) {
	s := newTestScanner()

	// CSS directives do not apply in attribute context.
	verdict := s.ScanMarkup(`behavior:url(xss.htc)`, Context{}, "field", threat.RenderAttribute)
	assert.True(t, verdict.Safe)

	verdict = s.ScanMarkup(`behavior:url(xss.htc)`, Context{}, "field", threat.RenderCSS)
	assert.False(t, verdict.Safe)
}

func TestScanMarkup_ProtocolEscalationInAttribute(t *testing.T) {
	s := newTestScanner()

	verdict := s.ScanMarkup(`javascript:void(0)`, Context{}, "href", threat.RenderAttribute)
	require.False(t, verdict.Safe)
	for _, th := range verdict.Threats {
		if th.Kind == threat.DangerousProtocol {
			assert.Equal(t, threat.SeverityHigh, th.Severity)
		}
	}
}

func TestDecodedVariants(t *testing.T) {
	variants := decodedVariants(`%3Cscript%3E`)
	assert.Contains(t, variants, `<script>`)

	variants = decodedVariants(`&lt;b&gt;`)
	assert.Contains(t, variants, `<b>`)

	// Already-literal markup yields no distinct variants.
	assert.Empty(t, decodedVariants(`<script>`))

	// Plain text produces no variants.
	assert.Empty(t, decodedVariants("hello world"))
}
