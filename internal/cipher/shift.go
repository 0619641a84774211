package cipher

import (
	"math/big"
	"strings"

	"symenc/internal/alphabet"
)

// Shift encrypts text with key.
//
// The key must not be negative and must have at least one digit per
// character of text. Characters outside the alphabet consume their digit
// but produce no output; callers are expected to Validate first.
func Shift(text string, key *big.Int) string {
	if key.Sign() < 0 {
		panic("cipher: key must not be negative")
	}
	digits := key.String()

	out := &strings.Builder{}
	out.Grow(len(text))

	i := 0
	for _, r := range text {
		if i >= len(digits) {
			panic("cipher: key has fewer digits than text")
		}
		d := int(digits[i] - '0')
		i++

		a, ok := alphabet.IndexOf(r)
		if !ok {
			continue
		}

		a += d
		if a > alphabet.Size-1 {
			a -= alphabet.Size
		}
		out.WriteRune(alphabet.SymbolAt(a))
	}
	return out.String()
}
