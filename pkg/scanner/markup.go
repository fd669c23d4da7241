package scanner

import (
	"github.com/SafeField/FieldGate/pkg/threat"
)

// ScanMarkup runs the markup-style signatures against text and against
// its decoded variants, unioning the findings so percent-, entity- or
// unicode-escaped payloads are still caught. renderContext gates which
// signature subset applies; protocol matches are escalated to high when
// the value lands in an executable attribute position.
func (s *Scanner) ScanMarkup(text string, ctx Context, fieldLabel string, renderContext threat.RenderContext) threat.Verdict {
	if text == "" {
		return s.params.Score(nil)
	}
	if renderContext == "" {
		renderContext = threat.RenderHTML
	}

	sigs := threat.MarkupSignatures(renderContext)
	threats := threat.MatchAll(text, fieldLabel, sigs)

	// Decoding pass: union threats found in any decoded variant with the
	// raw findings, deduplicated per signature so one obfuscated payload
	// is not counted once per variant.
	seen := make(map[string]bool, len(threats))
	for _, t := range threats {
		seen[t.Signature] = true
	}
	for _, variant := range decodedVariants(text) {
		for _, t := range threat.MatchAll(variant, fieldLabel, sigs) {
			if seen[t.Signature] {
				continue
			}
			seen[t.Signature] = true
			t.Message += " (decoded variant)"
			threats = append(threats, t)
		}
	}

	for i := range threats {
		if threats[i].Kind == threat.DangerousProtocol && renderContext == threat.RenderAttribute {
			threats[i].Severity = threats[i].Severity.Max(threat.SeverityHigh)
		}
	}

	verdict := s.params.Score(threats)
	s.logThreats(fieldLabel, "markup_injection", threats)
	return verdict
}
