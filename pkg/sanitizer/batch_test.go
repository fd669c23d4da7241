package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SafeField/FieldGate/pkg/scanner"
)

func TestSanitizeBatch_MixedVerdicts(t *testing.T) {
	s := newTestSanitizer()

	res := s.SanitizeBatch(map[string]interface{}{
		"comment": "perfectly normal text",
		"bio":     "<script>x</script>",
	}, map[string]FieldType{
		"comment": PlainText,
		"bio":     RichText,
	}, scanner.Context{})

	assert.False(t, res.Safe)
	require.Contains(t, res.Fields, "comment")
	require.Contains(t, res.Fields, "bio")
	assert.True(t, res.Fields["comment"].Safe)
	assert.False(t, res.Fields["bio"].Safe)
	assert.Equal(t, "perfectly normal text", res.SanitizedValues["comment"])
	assert.NotContains(t, res.SanitizedValues["bio"], "<script")
}

func TestSanitizeBatch_AllSafe(t *testing.T) {
	s := newTestSanitizer()

	res := s.SanitizeBatch(map[string]interface{}{
		"username": "alice_w",
		"email":    "Alice@Example.com",
		"age":      42,
	}, map[string]FieldType{
		"username": Username,
		"email":    Email,
		"age":      Numeric,
	}, scanner.Context{})

	assert.True(t, res.Safe)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "alice_w", res.SanitizedValues["username"])
	assert.Equal(t, "alice@example.com", res.SanitizedValues["email"])
	assert.Equal(t, "42", res.SanitizedValues["age"])
}

func TestSanitizeBatch_WarningAttribution(t *testing.T) {
	s := newTestSanitizer()

	res := s.SanitizeBatch(map[string]interface{}{
		"clean": "hello",
		"dirty": `x' OR '1'='1`,
	}, nil, scanner.Context{})

	require.NotEmpty(t, res.Warnings)
	for _, w := range res.Warnings {
		assert.Equal(t, "dirty", w.Field)
	}
}

func TestSanitizeBatch_UntypedFieldDefaultsToPlainText(t *testing.T) {
	s := newTestSanitizer()

	res := s.SanitizeBatch(map[string]interface{}{
		"note": "<script>x</script><b>hi</b>",
	}, nil, scanner.Context{})

	// Plain text strips all tags rather than applying a rich-text
	// allow-list, which would have kept <b>.
	assert.False(t, res.Safe)
	assert.NotContains(t, res.SanitizedValues["note"], "<b>")
}

func TestSanitizeBatch_Empty(t *testing.T) {
	s := newTestSanitizer()

	res := s.SanitizeBatch(nil, nil, scanner.Context{})
	assert.True(t, res.Safe)
	assert.Empty(t, res.Fields)
	assert.Empty(t, res.Warnings)
}
