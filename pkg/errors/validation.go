package errors

import (
	"strings"
	"unicode"

	"github.com/lucasb-eyer/go-colorful"
)

// ValidateColor checks that value is a CSS hex color ("#RGB" or "#RRGGBB").
func ValidateColor(value string) error {
	if value == "" {
		return New(ErrCodeInvalidColor, "color cannot be empty")
	}
	if !strings.HasPrefix(value, "#") {
		return New(ErrCodeInvalidColor, "color must start with '#': %q", value)
	}
	if len(value) != 4 && len(value) != 7 {
		return New(ErrCodeInvalidColor, "color must be #RGB or #RRGGBB: %q", value)
	}
	if _, err := colorful.Hex(value); err != nil {
		return Wrap(ErrCodeInvalidColor, err, "invalid hex color %q", value)
	}
	return nil
}

// ValidateSessionID validates an opaque session identifier taken from a URL
// or command line before it reaches a storage backend.
//
// The rules are intentionally conservative:
//   - No empty ids
//   - Maximum length of 128 characters
//   - Only letters, digits, '-' and '_'
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidSessionID, "session id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidSessionID, "session id too long (max 128 characters)")
	}

	for _, r := range id {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return New(ErrCodeInvalidSessionID, "session id contains invalid character %q", r)
		}
	}

	return nil
}
