// Package session runs the interactive encryption dialogue on a line
// oriented terminal.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"symenc/internal/cipher"
	"symenc/internal/ctxlog"
	"symenc/internal/rec"
)

// ErrAttemptsExhausted is returned when the configured number of failed
// attempts has been reached.
var ErrAttemptsExhausted = errors.New("session: too many failed attempts")

var separator = strings.Repeat("=", 79)

// Prompt is the verb that opens each attempt.
type Prompt int

const (
	Enter Prompt = iota
	ReEnter
)

func (p Prompt) String() string {
	if p == ReEnter {
		return "Re-enter"
	}
	return "Enter"
}

type Config struct {
	// MaxAttempts bounds failed attempts. Zero means unbounded.
	MaxAttempts int `yaml:"maxAttempts"`
}

type Session struct {
	in          *bufio.Scanner
	out         io.Writer
	errOut      io.Writer
	src         cipher.Source
	recorder    cipher.Recorder
	maxAttempts int
}

// New creates a session reading from in. Prompts and results go to out,
// failure banners to errOut. recorder may be nil.
func New(config Config, in io.Reader, out, errOut io.Writer, src cipher.Source, recorder cipher.Recorder) *Session {
	if config.MaxAttempts < 0 {
		panic("session: maxAttempts must not be negative")
	}
	if src == nil {
		src = cipher.DefaultSource
	}

	return &Session{
		in:          bufio.NewScanner(in),
		out:         out,
		errOut:      errOut,
		src:         src,
		recorder:    recorder,
		maxAttempts: config.MaxAttempts,
	}
}

// Run repeats the dialogue until an encryption succeeds. It stops early when
// ctx is done, input ends (io.EOF) or the attempt limit is reached.
func (s *Session) Run(ctx context.Context) (cipher.Result, error) {
	logger := ctxlog.Get(ctx)

	prompt := Enter
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return cipher.Result{}, err
		}

		res, err := s.attempt(prompt)
		if err == nil {
			fmt.Fprintln(s.out, "\nEncryption process completed.")
			fmt.Fprintln(s.out, "Result: "+res.String())
			logger.Info("encryption completed", "mode", res.Mode.String(), "attempt", attempt)

			if s.recorder != nil {
				if err := s.recorder.Record(ctx, res); err != nil {
					logger.Error("failed to record encryption", "error", err)
				}
			}
			return res, nil
		}

		if !retryable(err) {
			return cipher.Result{}, err
		}

		fmt.Fprintln(s.errOut, "\nEncryption process failed.")
		fmt.Fprintln(s.out, "Error: "+cipher.Message(err))
		fmt.Fprintf(s.errOut, "\n%s\n\n", separator)
		logger.Warn("encryption failed", "error", err, "attempt", attempt)

		if s.maxAttempts > 0 && attempt >= s.maxAttempts {
			return cipher.Result{}, ErrAttemptsExhausted
		}
		prompt = ReEnter
	}
}

func (s *Session) attempt(prompt Prompt) (res cipher.Result, err error) {
	defer rec.Error(&err)

	fmt.Fprintf(s.out, "%s text to encrypt(alphabetic): ", prompt)
	text, err := s.readLine()
	if err != nil {
		return res, err
	}
	fmt.Fprintln(s.out, "Text to encrypt: "+text)

	if text == "" {
		return res, cipher.ErrEmptyText
	}
	if !cipher.Validate(text) {
		return res, cipher.ErrNonAlphabetic
	}

	fmt.Fprint(s.out, "\nEnter encryption method, manual array | randomised array(enter, 0 | 1): ")
	line, err := s.readLine()
	if err != nil {
		return res, err
	}

	mode, err := cipher.ParseMethod(line)
	if err != nil {
		return res, err
	}

	switch mode {
	case cipher.Manual:
		fmt.Fprintln(s.out, "Manual array selected.")
		fmt.Fprint(s.out, "Enter key: ")
		line, err := s.readLine()
		if err != nil {
			return res, err
		}

		key, err := cipher.ParseKey(line)
		if err != nil {
			return res, err
		}
		return cipher.EncryptManual(text, key)

	default:
		return cipher.EncryptRandom(text, s.src)
	}
}

func (s *Session) readLine() (string, error) {
	if s.in.Scan() {
		return s.in.Text(), nil
	}
	if err := s.in.Err(); err != nil {
		return "", fmt.Errorf("session: read input: %w", err)
	}
	return "", io.EOF
}

func retryable(err error) bool {
	for _, target := range []error{
		cipher.ErrNonAlphabetic,
		cipher.ErrInvalidMethod,
		cipher.ErrKeyLength,
		cipher.ErrMalformedKey,
		cipher.ErrEmptyText,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
