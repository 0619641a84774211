package cipher

import (
	"context"
	"fmt"
	"math/big"
	"strings"
)

type Mode int

const (
	Manual Mode = iota
	Random
)

func (m Mode) String() string {
	switch m {
	case Manual:
		return "Manual"
	case Random:
		return "Random"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMethod maps the method codes of the interactive prompt to a Mode:
// "0" is Manual, "1" is Random.
func ParseMethod(s string) (Mode, error) {
	switch strings.TrimSpace(s) {
	case "0":
		return Manual, nil
	case "1":
		return Random, nil
	}
	return 0, ErrInvalidMethod
}

// Result is a completed encryption.
type Result struct {
	Mode       Mode
	Text       string
	CipherText string
	Key        *big.Int
}

func (r Result) String() string {
	return fmt.Sprintf("%s Encryption: %s with key: %s", r.Mode, r.CipherText, r.Key)
}

// Recorder is notified of every successful encryption.
type Recorder interface {
	Record(ctx context.Context, res Result) error
}

// EncryptManual encrypts text with a user supplied key. The key must have
// exactly one digit per character.
func EncryptManual(text string, key *big.Int) (Result, error) {
	if err := checkText(text); err != nil {
		return Result{}, err
	}
	if key == nil || key.Sign() < 0 {
		return Result{}, ErrMalformedKey
	}
	if Digits(key) != Len(text) {
		return Result{}, ErrKeyLength
	}

	return Result{
		Mode:       Manual,
		Text:       text,
		CipherText: Shift(text, key),
		Key:        new(big.Int).Set(key),
	}, nil
}

// EncryptRandom encrypts text with a key generated from src.
func EncryptRandom(text string, src Source) (Result, error) {
	if err := checkText(text); err != nil {
		return Result{}, err
	}

	key := RandomKey(Len(text), src)
	return Result{
		Mode:       Random,
		Text:       text,
		CipherText: Shift(text, key),
		Key:        key,
	}, nil
}

// StatusLine renders an outcome in the status line encoding:
// "1: <result>" on success and "0: <message>" on failure.
func StatusLine(res Result, err error) string {
	if err != nil {
		return "0: " + Message(err)
	}
	return "1: " + res.String()
}
