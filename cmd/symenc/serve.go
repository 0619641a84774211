package main

import (
	"context"

	"github.com/spf13/cobra"

	"symenc/internal/cipher"
	"symenc/internal/ctxlog"
	"symenc/internal/rec"
	"symenc/internal/server"
)

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cipher over a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := config.Server
			if port != 0 {
				c.Port = port
			}
			return runServe(cmd.Context(), c)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	return cmd
}

func runServe(ctx context.Context, c server.Config) (err error) {
	defer rec.Error(&err)

	logger := ctxlog.Get(ctx)

	recorder, closeHistory, err := openHistory(ctx)
	if err != nil {
		return err
	}
	defer closeHistory()

	logger.Info("starting server")
	srv := server.New(ctx, c, cipher.DefaultSource, recorder)

	err = srv.Run(ctx)
	if err != nil {
		logger.Error("server stopped unexpectedly", "error", err)
		return err
	}
	logger.Info("server gracefully stopped")
	return nil
}
