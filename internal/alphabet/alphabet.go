// Package alphabet defines the fixed 27 symbol alphabet used by the cipher.
package alphabet

// Symbols holds the alphabet in rotation order: the lowercase letters
// followed by a space at index 26.
const Symbols = "abcdefghijklmnopqrstuvwxyz "

// Size is the number of symbols in the alphabet.
const Size = len(Symbols)

// IndexOf returns the rotation position of r.
func IndexOf(r rune) (int, bool) {
	switch {
	case 'a' <= r && r <= 'z':
		return int(r - 'a'), true
	case r == ' ':
		return Size - 1, true
	}
	return -1, false
}

func Contains(r rune) bool {
	_, ok := IndexOf(r)
	return ok
}

// SymbolAt returns the symbol at position i, taken modulo Size.
func SymbolAt(i int) rune {
	i %= Size
	if i < 0 {
		i += Size
	}
	return rune(Symbols[i])
}
