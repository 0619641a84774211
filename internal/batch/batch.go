// Package batch encrypts many lines at once with a bounded worker pool.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"symenc/internal/cipher"
	"symenc/internal/ctxlog"
	"symenc/internal/rec"
)

type Config struct {
	Workers int `yaml:"workers"`
}

// Line is one unit of work. An empty Key selects random mode.
type Line struct {
	Text string
	Key  string
}

type Outcome struct {
	Result cipher.Result
	Err    error
}

func (o Outcome) String() string {
	return cipher.StatusLine(o.Result, o.Err)
}

// Parse reads one Line per input line. A tab separates the text from a
// manual key.
func Parse(r io.Reader) ([]Line, error) {
	var lines []Line

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		text, key, _ := strings.Cut(sc.Text(), "\t")
		lines = append(lines, Line{Text: text, Key: key})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("batch: read lines: %w", err)
	}
	return lines, nil
}

func encrypt(line Line, src cipher.Source) Outcome {
	if line.Key == "" {
		res, err := cipher.EncryptRandom(line.Text, src)
		return Outcome{Result: res, Err: err}
	}

	key, err := cipher.ParseKey(line.Key)
	if err != nil {
		return Outcome{Err: err}
	}
	res, err := cipher.EncryptManual(line.Text, key)
	return Outcome{Result: res, Err: err}
}

// Encrypt processes lines on up to config.Workers goroutines and returns the
// outcomes in input order. src must be safe for concurrent use. Failures of
// individual lines are reported in their Outcome; the returned error is only
// set when ctx is done or a worker panics. recorder may be nil.
func Encrypt(ctx context.Context, config Config, lines []Line, src cipher.Source, recorder cipher.Recorder) ([]Outcome, error) {
	if config.Workers < 1 {
		panic("batch: workers must be positive")
	}

	logger := ctxlog.Get(ctx)

	outcomes := make([]Outcome, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)
	for i, line := range lines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return rec.Do(func() error {
				outcomes[i] = encrypt(line, src)
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			continue
		}
		if recorder != nil {
			if err := recorder.Record(ctx, o.Result); err != nil {
				logger.Error("failed to record encryption", "error", err)
			}
		}
	}

	logger.Info("batch completed", "lines", len(lines), "failed", failed)
	return outcomes, nil
}

// Write prints one status line per outcome.
func Write(w io.Writer, outcomes []Outcome) error {
	bw := bufio.NewWriter(w)
	for _, o := range outcomes {
		if _, err := fmt.Fprintln(bw, o); err != nil {
			return fmt.Errorf("batch: write: %w", err)
		}
	}
	return bw.Flush()
}
