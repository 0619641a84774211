package cipher

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrNonAlphabetic = errors.New("non alphabetic character detected")
	ErrInvalidMethod = errors.New("invalid method selected")
	ErrKeyLength     = errors.New("key is not the same length as the input")
	ErrMalformedKey  = errors.New("key must be a non-negative whole number")
	ErrEmptyText     = errors.New("text to encrypt is empty")
)

// Message turns err into the sentence shown to users.
func Message(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}

	r, size := utf8.DecodeRuneInString(msg)
	msg = string(unicode.ToUpper(r)) + msg[size:]
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}
