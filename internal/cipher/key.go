package cipher

import (
	"math/big"
	"math/rand/v2"
	"strings"
)

// Source supplies random digits for generated keys.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultSource draws from the math/rand/v2 global generator and is safe for
// concurrent use.
var DefaultSource Source = globalSource{}

// RandomKey returns a key of n digits drawn uniformly from
// [10^(n-1), 2*10^(n-1)).
func RandomKey(n int, src Source) *big.Int {
	if n < 1 {
		panic("cipher: key length must be positive")
	}

	// 10^(n-1) plus a uniform value below it: a leading 1 and n-1 free digits.
	digits := make([]byte, n)
	digits[0] = '1'
	for i := 1; i < n; i++ {
		digits[i] = byte('0' + src.IntN(10))
	}

	key, _ := new(big.Int).SetString(string(digits), 10)
	return key
}

// ParseKey parses a key entered as decimal text.
func ParseKey(s string) (*big.Int, error) {
	key, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || key.Sign() < 0 {
		return nil, ErrMalformedKey
	}
	return key, nil
}

// Digits returns the number of decimal digits of a non-negative key.
func Digits(key *big.Int) int {
	return len(key.String())
}
