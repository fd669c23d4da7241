package scanner

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	unicodeEscapePattern = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)
	hexEscapePattern     = regexp.MustCompile(`\\x([0-9a-fA-F]{2})`)
)

// decodedVariants returns the obfuscation-resistance views of text:
// percent-decoded, HTML-entity-decoded and unicode-escape-decoded, plus a
// fully decoded combination. Variants identical to the raw text are
// dropped so callers only scan what actually differs.
func decodedVariants(text string) []string {
	candidates := []string{
		decodePercent(text),
		html.UnescapeString(text),
		decodeUnicodeEscapes(text),
	}
	combined := html.UnescapeString(decodePercent(decodeUnicodeEscapes(text)))
	candidates = append(candidates, combined)

	var out []string
	seen := map[string]bool{text: true}
	for _, v := range candidates {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// decodePercent tolerates malformed sequences: a failed full unescape
// falls back to decoding only the well-formed triplets so partial
// obfuscation still surfaces.
func decodePercent(text string) string {
	if !strings.Contains(text, "%") {
		return text
	}
	if v, err := url.QueryUnescape(text); err == nil {
		return v
	}
	return percentTripletPattern.ReplaceAllStringFunc(text, func(m string) string {
		b, err := strconv.ParseUint(m[1:], 16, 8)
		if err != nil {
			return m
		}
		return string(rune(b))
	})
}

var percentTripletPattern = regexp.MustCompile(`%[0-9a-fA-F]{2}`)

func decodeUnicodeEscapes(text string) string {
	if !strings.Contains(text, `\u`) && !strings.Contains(text, `\x`) {
		return text
	}
	decoded := unicodeEscapePattern.ReplaceAllStringFunc(text, func(m string) string {
		n, err := strconv.ParseUint(m[2:], 16, 32)
		if err != nil {
			return m
		}
		return string(rune(n))
	})
	return hexEscapePattern.ReplaceAllStringFunc(decoded, func(m string) string {
		n, err := strconv.ParseUint(m[2:], 16, 8)
		if err != nil {
			return m
		}
		return string(rune(n))
	})
}
