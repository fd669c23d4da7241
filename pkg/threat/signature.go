package threat

import "regexp"

// RenderContext is the downstream syntactic position of a markup value.
type RenderContext string

const (
	RenderHTML      RenderContext = "html"
	RenderAttribute RenderContext = "attribute"
	RenderCSS       RenderContext = "css"
)

// Signature is a named, immutable match rule with a base severity. The
// signature tables are built once at init and shared by all goroutines;
// regexp matching in Go is linear in input length, so scanning stays
// bounded even on attacker-controlled inputs.
type Signature struct {
	Name     string
	Kind     Kind
	Severity Severity
	Pattern  *regexp.Regexp

	// Contexts restricts a markup signature to specific render contexts.
	// Empty means the signature applies everywhere.
	Contexts []RenderContext
}

// AppliesTo reports whether the signature is active in the given render
// context.
func (s Signature) AppliesTo(rc RenderContext) bool {
	if len(s.Contexts) == 0 {
		return true
	}
	for _, c := range s.Contexts {
		if c == rc {
			return true
		}
	}
	return false
}

const maxMatchFragment = 100

// MatchAll runs every signature against text and returns one detected
// threat per matching signature. All matches are recorded without
// deduplication so the scorer sees cumulative evidence.
func MatchAll(text, fieldLabel string, sigs []Signature) []Detected {
	var found []Detected
	for _, sig := range sigs {
		m := sig.Pattern.FindString(text)
		if m == "" {
			continue
		}
		found = append(found, Detected{
			Kind:      sig.Kind,
			Signature: sig.Name,
			Message:   "matched " + sig.Name + " signature",
			Severity:  sig.Severity,
			Context:   fieldLabel,
			Match:     truncateMatch(m),
		})
	}
	return found
}

func truncateMatch(m string) string {
	if len(m) > maxMatchFragment {
		return m[:maxMatchFragment-3] + "..."
	}
	return m
}
