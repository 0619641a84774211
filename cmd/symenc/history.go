package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"symenc/internal/ctxlog"
	"symenc/internal/history"
	"symenc/internal/rec"
)

func historyCmd() *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or clear recorded encryptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), cmd.OutOrStdout(), clearAll)
		},
	}

	cmd.Flags().BoolVar(&clearAll, "clear", false, "delete all recorded encryptions")
	return cmd
}

func runHistory(ctx context.Context, w io.Writer, clearAll bool) (err error) {
	defer rec.Error(&err)

	logger := ctxlog.Get(ctx)

	if config.History.File == "" {
		return errors.New("history is disabled, set --history or history.file")
	}

	_, closeHistory, err := openHistory(ctx)
	if err != nil {
		return err
	}
	defer closeHistory()

	if clearAll {
		if err := history.Clear(); err != nil {
			return err
		}
		logger.Info("history cleared")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCREATED\tMODE\tTEXT\tCIPHER\tKEY")
	for seq, e := range history.All() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%q\t%q\t%s\n", seq, e.Created.Local().Format(time.DateTime), e.Mode, e.Text, e.CipherText, e.Key)
	}
	return tw.Flush()
}
