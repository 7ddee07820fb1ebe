package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	batchFile    string
	callbackBase string
)

var rootCmd = &cobra.Command{
	Use:   "sendbatch",
	Short: "Send a batch of WhatsApp messages through the configured provider",
	Long: `Reads a JSON batch (a bare array of messages, or {"messagesToSend": [...]}) and sends it
through the provider selected by WHATSAPP_PROVIDER, honouring its rate limit.
Results are printed to stdout in input order.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runSend,
}

func init() {
	rootCmd.Flags().StringVarP(&batchFile, "file", "f", "", "batch file, or - for stdin")
	rootCmd.Flags().StringVar(&callbackBase, "callback", "", "status callback base URL (default $CALLBACK_BASE_URL)")
	_ = rootCmd.MarkFlagRequired("file")
}

func Execute() {
	// Interrupting aborts the remaining sends; they are reported as retryable.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
