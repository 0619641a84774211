package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"symenc/internal/cipher"
	"symenc/internal/ctxlog"
	"symenc/internal/rec"
	"symenc/internal/session"
)

func sessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Encrypt text interactively (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), cmd)
		},
	}
}

func runSession(ctx context.Context, cmd *cobra.Command) (err error) {
	defer rec.Error(&err)

	logger := ctxlog.Get(ctx)

	recorder, closeHistory, err := openHistory(ctx)
	if err != nil {
		return err
	}
	defer closeHistory()

	s := session.New(config.Session, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cipher.DefaultSource, recorder)
	_, err = s.Run(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		logger.Info("input closed")
		return nil
	case errors.Is(err, context.Canceled):
		logger.Info("session interrupted")
		return nil
	}
	return err
}
