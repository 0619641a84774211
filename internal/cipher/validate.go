package cipher

import (
	"strings"
	"unicode/utf8"

	"symenc/internal/alphabet"
)

// Validate reports whether every character of text is in the alphabet.
func Validate(text string) bool {
	return !strings.ContainsFunc(text, func(r rune) bool {
		return !alphabet.Contains(r)
	})
}

func checkText(text string) error {
	if text == "" {
		return ErrEmptyText
	}
	if !Validate(text) {
		return ErrNonAlphabetic
	}
	return nil
}

// Len returns the number of characters in text.
func Len(text string) int {
	return utf8.RuneCountInString(text)
}
