package sanitizer

import (
	"errors"
	"html"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// MaxNameLength is the longest display name accepted, in runes.
const MaxNameLength = 255

var (
	ErrEmptyName   = errors.New("sanitizer: name is empty")
	ErrNameTooLong = errors.New("sanitizer: name is too long")
	ErrInvalidName = errors.New("sanitizer: name is not valid UTF-8")
)

var (
	strictPolicy *bluemonday.Policy
	policyOnce   sync.Once
)

func policy() *bluemonday.Policy {
	policyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// Name cleans a user-supplied file or folder name for display.
// Markup is removed, the result is NFC normalized, control characters are
// dropped and surrounding whitespace is trimmed. Sibling uniqueness is not
// checked; two nodes may share a name.
func Name(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", ErrInvalidName
	}

	// StrictPolicy escapes entities; names are stored as plain text.
	s = html.UnescapeString(policy().Sanitize(s))
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)

	switch {
	case s == "":
		return "", ErrEmptyName
	case utf8.RuneCountInString(s) > MaxNameLength:
		return "", ErrNameTooLong
	}
	return s, nil
}

// StripHTML removes all markup and returns plain text.
func StripHTML(s string) string {
	return html.UnescapeString(policy().Sanitize(s))
}
