package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==================== Snowflake Tests ====================

func TestValidateSnowflake_Valid(t *testing.T) {
	id, err := ValidateSnowflake("123456789012345678")
	assert.NoError(t, err)
	assert.EqualValues(t, 123456789012345678, id)
}

func TestValidateSnowflake_TrimsWhitespace(t *testing.T) {
	id, err := ValidateSnowflake("  42  ")
	assert.NoError(t, err)
	assert.EqualValues(t, 42, id)
}

func TestValidateSnowflake_Empty(t *testing.T) {
	_, err := ValidateSnowflake("")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestValidateSnowflake_Invalid(t *testing.T) {
	cases := []string{"abc", "12.5", "-1", "0", "99999999999999999999999"}
	for _, c := range cases {
		_, err := ValidateSnowflake(c)
		assert.ErrorIs(t, err, ErrInvalidSnowflake, "input: %q", c)
	}
}

// ==================== Channel Name Tests ====================

func TestValidateChannelName_Valid(t *testing.T) {
	assert.NoError(t, ValidateChannelName("general"))
	assert.NoError(t, ValidateChannelName("bot-logs_2"))
	assert.NoError(t, ValidateChannelName("General")) // lowercased before checking
}

func TestValidateChannelName_Invalid(t *testing.T) {
	assert.ErrorIs(t, ValidateChannelName(""), ErrEmptyInput)
	assert.ErrorIs(t, ValidateChannelName("has spaces"), ErrInvalidChannelName)
	assert.ErrorIs(t, ValidateChannelName("-starts-with-hyphen"), ErrInvalidChannelName)
	assert.ErrorIs(t, ValidateChannelName(strings.Repeat("a", 101)), ErrInputTooLong)
}

// ==================== Consent Level Tests ====================

func TestValidateConsentLevel(t *testing.T) {
	for level := 0; level <= 3; level++ {
		assert.NoError(t, ValidateConsentLevel(level))
	}
	assert.ErrorIs(t, ValidateConsentLevel(-1), ErrInvalidConsentLevel)
	assert.ErrorIs(t, ValidateConsentLevel(4), ErrInvalidConsentLevel)
}

// ==================== Sanitization Tests ====================

func TestSanitizeContent_StripsNulBytes(t *testing.T) {
	assert.Equal(t, "hello", SanitizeContent("he\x00llo"))
}

func TestSanitizeContent_TruncatesLongContent(t *testing.T) {
	long := strings.Repeat("a", MaxContentLength+50)
	sanitized := SanitizeContent(long)
	assert.Len(t, []rune(sanitized), MaxContentLength)
}

func TestSanitizeContent_TruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", MaxContentLength+1)
	sanitized := SanitizeContent(long)
	assert.Len(t, []rune(sanitized), MaxContentLength)
	assert.True(t, strings.HasSuffix(sanitized, "é"))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "alice", SanitizeName("  alice  "))
	assert.Equal(t, "bob", SanitizeName("b\x00ob"))
	assert.Len(t, []rune(SanitizeName(strings.Repeat("x", 150))), MaxUsernameLength)
}
