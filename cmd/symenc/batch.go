package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"symenc/internal/batch"
	"symenc/internal/cipher"
	"symenc/internal/ctxlog"
	"symenc/internal/rec"
)

func batchCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "batch [FILE]",
		Short: "Encrypt every line of FILE or stdin",
		Long: `Encrypt every input line and print one status line per input line, in order.
A line of the form "text<TAB>key" is encrypted with that key, any other line
with a random key.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open %q: %w", args[0], err)
				}
				defer ctxlog.Close(cmd.Context(), "batch input", f)
				in = f
			}

			c := config.Batch
			if workers > 0 {
				c.Workers = workers
			}
			return runBatch(cmd.Context(), c, in, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "number of parallel workers (default from config)")
	return cmd
}

func runBatch(ctx context.Context, c batch.Config, in io.Reader, out io.Writer) (err error) {
	defer rec.Error(&err)

	logger := ctxlog.Get(ctx)

	recorder, closeHistory, err := openHistory(ctx)
	if err != nil {
		return err
	}
	defer closeHistory()

	lines, err := batch.Parse(in)
	if err != nil {
		return err
	}
	logger.Info("encrypting batch", "lines", len(lines), "workers", c.Workers)

	outcomes, err := batch.Encrypt(ctx, c, lines, cipher.DefaultSource, recorder)
	if err != nil {
		return err
	}
	return batch.Write(out, outcomes)
}
