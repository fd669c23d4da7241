package sanitizer

import (
	"fmt"
	"regexp"

	"github.com/SafeField/FieldGate/pkg/threat"
)

// FieldType selects the per-type sanitization behavior. The set is closed;
// Validate rejects anything outside it so unknown types surface at config
// time instead of silently degrading.
type FieldType string

const (
	PlainText   FieldType = "plainText"
	Email       FieldType = "email"
	Username    FieldType = "username"
	Password    FieldType = "password"
	RichText    FieldType = "richText"
	Filename    FieldType = "filename"
	URL         FieldType = "url"
	Numeric     FieldType = "numeric"
	SearchQuery FieldType = "searchQuery"
)

// Validate reports whether ft is one of the nine supported field types.
func (ft FieldType) Validate() error {
	switch ft {
	case PlainText, Email, Username, Password, RichText, Filename, URL, Numeric, SearchQuery:
		return nil
	}
	return fmt.Errorf("unknown field type: %q", string(ft))
}

// FieldConfig is the static per-type rule set. The table is built once at
// init and never mutated; per-call overrides operate on copies.
type FieldConfig struct {
	MaxLength int `mapstructure:"max_length"`
	MinLength int `mapstructure:"min_length"`

	// disallowedChars matches characters outside the allowed class.
	// StrictCharset fails the operation on a violation instead of
	// silently dropping the characters.
	disallowedChars *regexp.Regexp
	StrictCharset   bool

	StripMarkup    bool `mapstructure:"strip_markup"`
	EncodeEntities bool `mapstructure:"encode_entities"`
	CheckInjection bool `mapstructure:"check_injection"`
	CheckMarkup    bool `mapstructure:"check_markup_injection"`

	AllowedTags       map[string]bool
	AllowedAttributes map[string]bool

	RenderContext threat.RenderContext
}

var fieldConfigs = map[FieldType]FieldConfig{
	PlainText: {
		MaxLength:      1000,
		StripMarkup:    true,
		EncodeEntities: true,
		CheckInjection: true,
		CheckMarkup:    true,
		RenderContext:  threat.RenderHTML,
	},
	Email: {
		MaxLength:       254,
		MinLength:       3,
		disallowedChars: regexp.MustCompile(`[^a-zA-Z0-9._%+@-]`),
		StrictCharset:   true,
		CheckInjection:  true,
	},
	Username: {
		MaxLength:       30,
		MinLength:       3,
		disallowedChars: regexp.MustCompile(`[^a-zA-Z0-9_-]`),
		StrictCharset:   true,
		CheckInjection:  true,
	},
	Password: {
		// Passwords are hashed downstream, never echoed or interpolated,
		// so only the universal stripping and length bounds apply.
		MaxLength: 128,
		MinLength: 8,
	},
	RichText: {
		MaxLength:      20000,
		CheckInjection: true,
		CheckMarkup:    true,
		AllowedTags: map[string]bool{
			"b": true, "i": true, "em": true, "strong": true, "u": true,
			"a": true, "p": true, "br": true, "ul": true, "ol": true,
			"li": true, "blockquote": true, "code": true, "pre": true,
			"h1": true, "h2": true, "h3": true,
		},
		AllowedAttributes: map[string]bool{
			"href": true, "title": true, "alt": true,
		},
		RenderContext: threat.RenderHTML,
	},
	Filename: {
		MaxLength:       255,
		MinLength:       1,
		disallowedChars: regexp.MustCompile(`[^a-zA-Z0-9._ -]`),
		StripMarkup:     true,
	},
	URL: {
		MaxLength:      2048,
		MinLength:      3,
		StripMarkup:    true,
		CheckInjection: true,
		CheckMarkup:    true,
		RenderContext:  threat.RenderAttribute,
	},
	Numeric: {
		MaxLength:       24,
		MinLength:       1,
		disallowedChars: regexp.MustCompile(`[^0-9.\-+]`),
	},
	SearchQuery: {
		MaxLength:      200,
		StripMarkup:    true,
		EncodeEntities: true,
		CheckInjection: true,
		CheckMarkup:    true,
		RenderContext:  threat.RenderHTML,
	},
}

// ConfigFor returns a copy of the static config for the field type.
func ConfigFor(ft FieldType) (FieldConfig, error) {
	cfg, ok := fieldConfigs[ft]
	if !ok {
		return FieldConfig{}, fmt.Errorf("unknown field type: %q", string(ft))
	}
	return cfg, nil
}

// Overrides are per-call adjustments decoded from a free-form settings
// map. Pointer fields distinguish "not set" from zero values.
type Overrides struct {
	MaxLength      *int  `mapstructure:"max_length"`
	StripMarkup    *bool `mapstructure:"strip_markup"`
	EncodeEntities *bool `mapstructure:"encode_entities"`
	CheckInjection *bool `mapstructure:"check_injection"`
	CheckMarkup    *bool `mapstructure:"check_markup_injection"`
}

func (o Overrides) apply(cfg FieldConfig) FieldConfig {
	if o.MaxLength != nil && *o.MaxLength > 0 {
		cfg.MaxLength = *o.MaxLength
	}
	if o.StripMarkup != nil {
		cfg.StripMarkup = *o.StripMarkup
	}
	if o.EncodeEntities != nil {
		cfg.EncodeEntities = *o.EncodeEntities
	}
	if o.CheckInjection != nil {
		cfg.CheckInjection = *o.CheckInjection
	}
	if o.CheckMarkup != nil {
		cfg.CheckMarkup = *o.CheckMarkup
	}
	return cfg
}
