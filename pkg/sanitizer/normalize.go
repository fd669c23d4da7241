package sanitizer

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	repeatedSeparatorPattern = regexp.MustCompile(`[_\-.]{2,}`)
	whitespaceRunPattern     = regexp.MustCompile(`\s+`)
	urlSchemePattern         = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	emailShapePattern        = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)
)

// normalize applies the type-specific rewrite rules. Every rule is a
// fixpoint on its own output so repeated sanitization leaves the value
// untouched.
func normalize(s string, ft FieldType) string {
	switch ft {
	case Email:
		s = strings.ToLower(strings.TrimSpace(s))
		return dedupeAtSign(s)
	case Username:
		return repeatedSeparatorPattern.ReplaceAllStringFunc(s, func(m string) string {
			return m[:1]
		})
	case SearchQuery:
		return strings.TrimSpace(whitespaceRunPattern.ReplaceAllString(s, " "))
	case URL:
		s = strings.TrimSpace(s)
		if s != "" && !urlSchemePattern.MatchString(s) {
			s = "https://" + s
		}
		return s
	case Numeric:
		return normalizeNumeric(s)
	case Filename:
		return strings.Trim(s, ". ")
	case PlainText:
		return strings.TrimSpace(s)
	case Password, RichText:
		return s
	}
	return s
}

// dedupeAtSign keeps the first @ and drops the rest.
func dedupeAtSign(s string) string {
	at := strings.IndexByte(s, '@')
	if at < 0 {
		return s
	}
	return s[:at+1] + strings.ReplaceAll(s[at+1:], "@", "")
}

// normalizeNumeric keeps one leading sign and a single decimal point.
func normalizeNumeric(s string) string {
	var b strings.Builder
	sawDot := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '.' && !sawDot:
			sawDot = true
			b.WriteByte(c)
		case (c == '-' || c == '+') && i == 0:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// validateFormat is the final per-type shape check. A failure here fails
// the whole sanitization.
func validateFormat(s string, ft FieldType) error {
	switch ft {
	case Email:
		if !emailShapePattern.MatchString(s) {
			return fmt.Errorf("not a well-formed email address")
		}
	case URL:
		u, err := url.Parse(s)
		if err != nil {
			return fmt.Errorf("not a parseable URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("unsupported URL scheme: %q", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("URL has no host")
		}
	case Numeric:
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return fmt.Errorf("not a parseable number")
		}
	case Filename:
		if s == "" {
			return fmt.Errorf("empty filename")
		}
	}
	return nil
}
