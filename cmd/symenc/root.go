package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"symenc/internal/cipher"
	"symenc/internal/ctxlog"
	"symenc/internal/history"
	"symenc/internal/rec"
)

// errReported marks failures that have already been shown to the user.
var errReported = errors.New("reported")

var (
	configFile string
	verbose    bool
	historyDB  string

	config  Config
	logFile io.Closer
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "symenc",
		Short:         "Toy 27 symbol shift cipher",
		Long:          "symenc shifts every character of a text through the alphabet a-z plus space by one decimal digit of a numeric key.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			defer rec.Error(&err)

			c := DefaultConfig()
			if configFile != "" {
				c, err = LoadConfig(cmd.Context(), configFile)
				if err != nil {
					return fmt.Errorf("config: %w", err)
				}
			}
			if verbose {
				c.Log.Stderr = true
			}
			if historyDB != "" {
				c.History.File = historyDB
			}
			config = c

			ctx, closer := ctxlog.Setup(cmd.Context(), "symenc", config.Log)
			logFile = closer
			cmd.SetContext(ctxlog.With(ctx, "command", cmd.Name()))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), cmd)
		},
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (default: built-in defaults)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "also write logs to stderr")
	root.PersistentFlags().StringVar(&historyDB, "history", "", "record encryptions, plaintext included, in this bbolt file")

	root.AddCommand(sessionCmd(), encryptCmd(), batchCmd(), historyCmd(), serveCmd())
	return root
}

func closeLog() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func nop() {}

// openHistory opens the history db when one is configured. The returned
// recorder is nil otherwise.
func openHistory(ctx context.Context) (recorder cipher.Recorder, closeHistory func(), err error) {
	if config.History.File == "" {
		return nil, nop, nil
	}

	defer rec.Wrap(&err, "history %q: %w", config.History.File)

	ctxlog.Get(ctx).Info("opening history", "file", config.History.File)
	history.Open(config.History)
	return history.Recorder{}, func() {
		ctxlog.Close(ctx, "history", history.Closer())
	}, nil
}
