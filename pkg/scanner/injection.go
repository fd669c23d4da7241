package scanner

import (
	"regexp"

	"github.com/SafeField/FieldGate/pkg/threat"
)

// Clause-specific token shapes. ORDER BY accepts column identifiers with
// optional direction and separators; LIMIT accepts only digits, commas
// and whitespace.
var (
	orderByTokenPattern = regexp.MustCompile(`(?i)^[\s,]*(?:[A-Za-z_][A-Za-z0-9_.]*|\d+)(?:\s+(?:ASC|DESC))?(?:[\s,]+(?:[A-Za-z_][A-Za-z0-9_.]*|\d+)(?:\s+(?:ASC|DESC))?)*[\s,]*$`)
	limitTokenPattern   = regexp.MustCompile(`^[\s,]*\d*(?:[\s,]+\d+)*[\s,]*$`)
)

// ScanInjection runs every injection-style signature against text and
// applies the clause-specific context rules. The empty string is trivially
// safe. The call never fails; malformed input yields a verdict, not an
// error.
func (s *Scanner) ScanInjection(text string, ctx Context, fieldLabel string) threat.Verdict {
	if text == "" {
		return s.params.Score(nil)
	}

	threats := threat.MatchAll(text, fieldLabel, threat.InjectionSignatures())
	threats = applyClauseRules(text, ctx.QueryClause, fieldLabel, threats)

	verdict := s.params.Score(threats)
	s.logThreats(fieldLabel, "sql_injection", threats)
	return verdict
}

func applyClauseRules(text string, clause QueryClause, fieldLabel string, threats []threat.Detected) []threat.Detected {
	switch clause {
	case ClauseWhere:
		// Tautology and UNION shapes inside a filter clause are an
		// automatic critical regardless of the generic tier.
		for i := range threats {
			switch threats[i].Signature {
			case "sql_tautology", "sql_union_select", "sql_logic_probe":
				threats[i].Severity = threat.SeverityCritical
			}
		}
	case ClauseOrderBy:
		if !orderByTokenPattern.MatchString(text) && hasKeywordMatch(threats) {
			threats = append(threats, contextViolation("CONTEXT_VIOLATION_ORDER_BY", fieldLabel,
				"non-identifier token in ordering clause"))
		}
	case ClauseLimit:
		if !limitTokenPattern.MatchString(text) && hasKeywordMatch(threats) {
			threats = append(threats, contextViolation("CONTEXT_VIOLATION_LIMIT", fieldLabel,
				"non-numeric token in limit clause"))
		}
	}
	return threats
}

func hasKeywordMatch(threats []threat.Detected) bool {
	for _, t := range threats {
		if t.Kind == threat.DangerousKeyword || t.Kind == threat.InjectionPattern {
			return true
		}
	}
	return false
}

func contextViolation(name, fieldLabel, msg string) threat.Detected {
	return threat.Detected{
		Kind:      threat.ContextViolation,
		Signature: name,
		Message:   msg,
		Severity:  threat.SeverityHigh,
		Context:   fieldLabel,
	}
}
