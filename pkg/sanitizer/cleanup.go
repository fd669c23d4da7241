package sanitizer

import (
	"regexp"
	"strings"
)

// Universally dangerous raw sequences, stripped from every field type
// before any scanning. Removal loops until the value is stable so split
// payloads ("....//", "javasjavascript:cript:") cannot reassemble a
// dangerous sequence out of the removal itself.
var (
	controlCharPattern     = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
	traversalPattern       = regexp.MustCompile(`\.\./|\.\.\\`)
	foreignProtocolPattern = regexp.MustCompile(`(?i)\b(?:javascript|vbscript|file)\s*:`)
)

func stripDangerousSequences(s string) string {
	s = controlCharPattern.ReplaceAllString(s, "")
	s = replaceUntilStable(s, traversalPattern, "")
	s = replaceUntilStable(s, foreignProtocolPattern, "")
	return s
}

// replaceUntilStable applies the replacement repeatedly until the string
// stops changing. Every round removes characters, so the loop is bounded
// by the input length.
func replaceUntilStable(s string, re *regexp.Regexp, repl string) string {
	for {
		next := re.ReplaceAllString(s, repl)
		if next == s {
			return next
		}
		s = next
	}
}

// SQL cleanup. Applied only when the injection scanner flagged the value;
// the removal set must cover every token the injection signatures match
// so the cleaned value is a fixpoint of the scan-then-clean cycle.
var (
	sqlCommentCleanup = regexp.MustCompile(`--[^\r\n]*|/\*[^*]*\*/|/\*[^\r\n]*|['";]\s*#[^\r\n]*`)
	sqlKeywordCleanup = regexp.MustCompile(`(?i)\b(?:UNION|SELECT|INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE|` +
		`EXEC|EXECUTE|GRANT|REVOKE|SLEEP|BENCHMARK|PG_SLEEP|WAITFOR|DELAY|` +
		`OR|AND|FROM|INTO|SET|TABLE|DATABASE|SCHEMA|VIEW|INDEX|LIKE)\b`)
)

func cleanupSQL(s string) string {
	s = replaceUntilStable(s, sqlCommentCleanup, "")
	s = replaceUntilStable(s, sqlKeywordCleanup, "")
	s = strings.ReplaceAll(s, ";", "")
	s = strings.ReplaceAll(s, "'", "''")
	s = strings.ReplaceAll(s, `"`, `""`)
	return s
}

// Markup cleanup.
var (
	htmlTagPattern        = regexp.MustCompile(`<[^>]*>`)
	eventHandlerCleanup   = regexp.MustCompile(`(?i)\bon\w+\s*=`)
	scriptCallCleanup     = regexp.MustCompile(`(?i)\b(?:alert|eval|prompt|confirm)\s*\(|\bdocument\.(?:cookie|write|location)|\bwindow\.location`)
	cssDirectiveCleanup   = regexp.MustCompile(`(?i)\bexpression\s*\(|\bbehavior\s*:|@import\b|-moz-binding`)
	dataProtocolCleanup   = regexp.MustCompile(`(?i)\bdata\s*:\s*text/html|\bdata\s*:[^,]{0,60};base64`)
	templateInterpCleanup = regexp.MustCompile(`\{\{[^}]{0,200}\}\}|\$\{[^}]{0,200}\}|<%[^%]{0,200}%>`)
	attrPattern           = regexp.MustCompile(`([a-zA-Z-]+)(?:\s*=\s*("[^"]*"|'[^']*'|[^\s"'>]+))?`)
)

// cleanupMarkup removes everything the markup signatures match: either
// all tags or everything outside the configured allow-list, plus event
// handlers, script calls, CSS directives, templates and data protocols.
// The result must not retrigger any markup signature, otherwise repeated
// sanitization would keep rewriting the value.
func cleanupMarkup(s string, cfg FieldConfig) string {
	s = replaceUntilStable(s, templateInterpCleanup, "")
	if cfg.StripMarkup || len(cfg.AllowedTags) == 0 {
		s = replaceUntilStable(s, htmlTagPattern, "")
	} else {
		s = filterTags(s, cfg.AllowedTags, cfg.AllowedAttributes)
	}
	s = replaceUntilStable(s, eventHandlerCleanup, "")
	s = replaceUntilStable(s, scriptCallCleanup, "")
	s = replaceUntilStable(s, cssDirectiveCleanup, "")
	s = replaceUntilStable(s, dataProtocolCleanup, "")
	if cfg.EncodeEntities {
		s = encodeEntities(s)
	}
	return s
}

// filterTags keeps allow-listed tags, rebuilt with only allow-listed
// attributes; everything else is dropped.
func filterTags(s string, allowedTags, allowedAttrs map[string]bool) string {
	return htmlTagPattern.ReplaceAllStringFunc(s, func(tag string) string {
		inner := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(tag, "<"), ">"))
		closing := strings.HasPrefix(inner, "/")
		inner = strings.TrimSpace(strings.TrimPrefix(inner, "/"))
		if inner == "" {
			return ""
		}

		fields := strings.SplitN(inner, " ", 2)
		name := strings.ToLower(strings.TrimSuffix(fields[0], "/"))
		if !allowedTags[name] {
			return ""
		}
		if closing {
			return "</" + name + ">"
		}
		if len(fields) == 1 {
			return "<" + name + ">"
		}

		var b strings.Builder
		b.WriteString("<" + name)
		for _, m := range attrPattern.FindAllStringSubmatch(fields[1], -1) {
			attrName := strings.ToLower(m[1])
			if !allowedAttrs[attrName] || strings.HasPrefix(attrName, "on") {
				continue
			}
			val := strings.Trim(m[2], `"'`)
			if foreignProtocolPattern.MatchString(val) || dataProtocolCleanup.MatchString(val) {
				continue
			}
			b.WriteString(` ` + attrName + `="` + val + `"`)
		}
		b.WriteString(">")
		return b.String()
	})
}

// encodeEntities escapes markup-significant characters. An ampersand that
// already starts an entity is left alone, so encoding is idempotent on
// its own output.
func encodeEntities(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '&':
			if isEntityStart(s[i:]) {
				b.WriteByte(c)
			} else {
				b.WriteString("&amp;")
			}
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&#34;")
		case '\'':
			b.WriteString("&#39;")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

var entityStartPattern = regexp.MustCompile(`^&(?:#\d{1,7}|#x[0-9a-fA-F]{1,6}|[a-zA-Z][a-zA-Z0-9]{1,31});`)

func isEntityStart(s string) bool {
	return entityStartPattern.MatchString(s)
}
