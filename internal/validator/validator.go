// Package validator provides input validation and sanitization for
// payloads crossing the API and gateway boundaries.
package validator

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrInvalidSnowflake    = errors.New("invalid snowflake identifier")
	ErrInvalidChannelName  = errors.New("invalid channel name")
	ErrInvalidConsentLevel = errors.New("invalid consent level")
	ErrInputTooLong        = errors.New("input exceeds maximum length")
	ErrEmptyInput          = errors.New("input cannot be empty")
)

// Limits mirror Discord's own
const (
	MaxContentLength     = 4000
	MaxChannelNameLength = 100
	MaxUsernameLength    = 100
)

// Channel names: lowercase alphanumeric, hyphens and underscores
var channelNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,99}$`)

// ValidateSnowflake parses a Discord snowflake from its decimal string form.
// Snowflakes are positive 64-bit integers.
func ValidateSnowflake(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyInput
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidSnowflake
	}
	return id, nil
}

// ValidateChannelName validates a channel name against Discord's conventions
func ValidateChannelName(name string) error {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return ErrEmptyInput
	}
	if utf8.RuneCountInString(name) > MaxChannelNameLength {
		return ErrInputTooLong
	}
	if !channelNameRegex.MatchString(name) {
		return ErrInvalidChannelName
	}
	return nil
}

// ValidateConsentLevel checks a consent level is within the 0-3 range
func ValidateConsentLevel(level int) error {
	if level < 0 || level > 3 {
		return ErrInvalidConsentLevel
	}
	return nil
}

// SanitizeContent strips NUL bytes and truncates over-long message content.
// Returns the sanitized string; never errors, malformed content is recorded
// truncated rather than dropped.
func SanitizeContent(content string) string {
	content = strings.ReplaceAll(content, "\x00", "")
	if utf8.RuneCountInString(content) > MaxContentLength {
		runes := []rune(content)
		content = string(runes[:MaxContentLength])
	}
	return content
}

// SanitizeName trims and truncates a display name
func SanitizeName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\x00", ""))
	if utf8.RuneCountInString(name) > MaxUsernameLength {
		runes := []rune(name)
		name = string(runes[:MaxUsernameLength])
	}
	return name
}
