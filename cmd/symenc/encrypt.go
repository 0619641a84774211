package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"symenc/internal/cipher"
	"symenc/internal/ctxlog"
	"symenc/internal/rec"
)

func encryptCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "encrypt TEXT...",
		Short: "Encrypt text once and print the status line",
		Long: `Encrypt the arguments, joined by single spaces, and print
"1: <result>" on success or "0: <error>" on failure.

Without --key a random key is generated.`,
		Example: `  symenc encrypt cat --key 123
  symenc encrypt hello world`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncrypt(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "), key)
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "manual key with one digit per character")
	return cmd
}

func runEncrypt(ctx context.Context, w io.Writer, text, key string) (err error) {
	defer rec.Error(&err)

	logger := ctxlog.Get(ctx)

	recorder, closeHistory, err := openHistory(ctx)
	if err != nil {
		return err
	}
	defer closeHistory()

	res, err := encryptOnce(text, key)
	fmt.Fprintln(w, cipher.StatusLine(res, err))
	if err != nil {
		logger.Info("encryption failed", "error", err)
		return errReported
	}

	logger.Info("encryption completed", "mode", res.Mode.String())
	if recorder != nil {
		if err := recorder.Record(ctx, res); err != nil {
			logger.Error("failed to record encryption", "error", err)
		}
	}
	return nil
}

func encryptOnce(text, key string) (cipher.Result, error) {
	if key == "" {
		return cipher.EncryptRandom(text, cipher.DefaultSource)
	}

	k, err := cipher.ParseKey(key)
	if err != nil {
		return cipher.Result{}, err
	}
	return cipher.EncryptManual(text, k)
}
