package threat

import "regexp"

// Injection-style signatures. Word-boundary matched and case-insensitive,
// mirroring the shapes real SQL injection payloads take: stacked queries,
// comment markers, boolean tautologies, UNION/DDL keyword sequences and
// timing probes.
var injectionSignatures = []Signature{
	{
		Name:     "sql_stacked_query",
		Kind:     InjectionPattern,
		Severity: SeverityHigh,
		Pattern: regexp.MustCompile(`(?i);\s*(?:SELECT|INSERT|UPDATE|DELETE|DROP|ALTER|CREATE|TRUNCATE|EXEC|GRANT|REVOKE)\b`),
	},
	{
		Name:     "sql_comment",
		Kind:     InjectionPattern,
		Severity: SeverityMedium,
		Pattern:  regexp.MustCompile(`--[^\r\n]*|/\*[^*]*\*/|['";]\s*#`),
	},
	{
		// A quote directly followed by a comment marker is the classic
		// rest-of-statement truncation shape.
		Name:     "sql_comment_escape",
		Kind:     InjectionPattern,
		Severity: SeverityCritical,
		Pattern:  regexp.MustCompile(`['"]\s*(?:--|#|/\*)`),
	},
	{
		Name:     "sql_tautology",
		Kind:     InjectionPattern,
		Severity: SeverityCritical,
		Pattern: regexp.MustCompile(`(?i)['"]\s*OR\s*['"]?\s*\d+\s*['"]?\s*=\s*['"]?\s*\d+|` +
			`['"]\s*OR\s*['"][^'"]*['"]\s*=\s*['"][^'"]*|` +
			`['"]\s*OR\s*['"][^'"]+['"]\s*LIKE\s*['"]`),
	},
	{
		Name:     "sql_logic_probe",
		Kind:     DangerousKeyword,
		Severity: SeverityHigh,
		Pattern:  regexp.MustCompile(`(?i)['"]\s*(?:OR|AND)\s+\S`),
	},
	{
		Name:     "sql_union_select",
		Kind:     InjectionPattern,
		Severity: SeverityCritical,
		Pattern:  regexp.MustCompile(`(?i)\bUNION\s+(?:ALL\s+)?SELECT\b`),
	},
	{
		Name:     "sql_destructive_keyword",
		Kind:     DangerousKeyword,
		Severity: SeverityCritical,
		Pattern:  regexp.MustCompile(`(?i)\b(?:DROP|TRUNCATE)\s+(?:TABLE|DATABASE|SCHEMA|VIEW|INDEX)\b|\bDELETE\s+FROM\b`),
	},
	{
		Name:     "sql_statement_keyword",
		Kind:     DangerousKeyword,
		Severity: SeverityHigh,
		Pattern: regexp.MustCompile(`(?i)\bINSERT\s+INTO\b|\bUPDATE\s+\w+\s+SET\b|` +
			`\bSELECT\s+[\w*,\s]+\s+FROM\b|\bEXEC(?:UTE)?\s+\w|\bALTER\s+TABLE\b`),
	},
	{
		Name:     "sql_timing_probe",
		Kind:     InjectionPattern,
		Severity: SeverityCritical,
		Pattern:  regexp.MustCompile(`(?i)\b(?:SLEEP|BENCHMARK|PG_SLEEP)\s*\(|\bWAITFOR\s+DELAY\b`),
	},
}

// Markup-style signatures: script/markup/style/protocol injection shapes.
// Context restrictions gate which subset applies for a given render
// position; protocol matches carry a medium base severity and are
// escalated by the scanner when the render context makes them executable.
var markupSignatures = []Signature{
	{
		Name:     "script_tag",
		Kind:     DangerousTag,
		Severity: SeverityCritical,
		Pattern:  regexp.MustCompile(`(?i)<\s*/?\s*script\b`),
	},
	{
		Name:     "dangerous_tag",
		Kind:     DangerousTag,
		Severity: SeverityHigh,
		Pattern:  regexp.MustCompile(`(?i)<\s*/?\s*(?:iframe|object|embed|applet|meta|base|form|svg|frameset|frame)\b`),
	},
	{
		Name:     "event_handler_attribute",
		Kind:     DangerousAttribute,
		Severity: SeverityCritical,
		Pattern:  regexp.MustCompile(`(?i)\bon\w+\s*=`),
		Contexts: []RenderContext{RenderHTML, RenderAttribute},
	},
	{
		Name:     "script_protocol",
		Kind:     DangerousProtocol,
		Severity: SeverityMedium,
		Pattern:  regexp.MustCompile(`(?i)\b(?:javascript|vbscript)\s*:`),
	},
	{
		Name:     "data_protocol",
		Kind:     DangerousProtocol,
		Severity: SeverityMedium,
		Pattern:  regexp.MustCompile(`(?i)\bdata\s*:\s*text/html|\bdata\s*:[^,]{0,60};base64`),
	},
	{
		Name:     "script_call",
		Kind:     DangerousKeyword,
		Severity: SeverityHigh,
		Pattern:  regexp.MustCompile(`(?i)\b(?:alert|eval|prompt|confirm)\s*\(`),
	},
	{
		Name:     "dom_access",
		Kind:     DangerousKeyword,
		Severity: SeverityHigh,
		Pattern:  regexp.MustCompile(`(?i)\bdocument\.(?:cookie|write|location)|\bwindow\.location`),
	},
	{
		Name:     "css_directive",
		Kind:     InjectionPattern,
		Severity: SeverityHigh,
		Pattern:  regexp.MustCompile(`(?i)\bexpression\s*\(|\bbehavior\s*:|@import\b|-moz-binding`),
		Contexts: []RenderContext{RenderHTML, RenderCSS},
	},
	{
		Name:     "template_interpolation",
		Kind:     InjectionPattern,
		Severity: SeverityMedium,
		Pattern:  regexp.MustCompile(`\{\{[^}]{0,200}\}\}|\$\{[^}]{0,200}\}|<%[^%]{0,200}%>`),
	},
}

// InjectionSignatures returns the immutable injection-style signature set.
// Callers must treat the slice as read-only.
func InjectionSignatures() []Signature { return injectionSignatures }

// MarkupSignatures returns the immutable markup-style signature set for
// the given render context.
func MarkupSignatures(rc RenderContext) []Signature {
	out := make([]Signature, 0, len(markupSignatures))
	for _, sig := range markupSignatures {
		if sig.AppliesTo(rc) {
			out = append(out, sig)
		}
	}
	return out
}
