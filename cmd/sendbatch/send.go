package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oggyb/whatsapp-relay/internal/app"
	"github.com/oggyb/whatsapp-relay/internal/config"
	"github.com/oggyb/whatsapp-relay/internal/domain/message"
	"github.com/oggyb/whatsapp-relay/internal/logger"
	"github.com/oggyb/whatsapp-relay/internal/metrics"
	"github.com/oggyb/whatsapp-relay/internal/request"
)

var errEmptyBatch = errors.New("batch is empty")

func runSend(cmd *cobra.Command, _ []string) error {
	msgs, err := readBatch(cmd.InOrStdin(), batchFile)
	if err != nil {
		return err
	}

	cfg := config.New()
	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	relay, err := app.NewRelay(cmd.Context(), cfg, metrics.Nop{}, log)
	if err != nil {
		return err
	}
	defer relay.Close()

	base := callbackBase
	if base == "" {
		base = cfg.Callback.BaseURL
	}

	results, err := relay.Service.SendMessages(cmd.Context(), msgs, base)
	if err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func readBatch(stdin io.Reader, path string) ([]message.Outbound, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	return decodeBatch(raw)
}

// decodeBatch accepts either a bare array of messages or a relay request
// body.
func decodeBatch(raw []byte) ([]message.Outbound, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errEmptyBatch
	}

	var msgs []message.Outbound
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &msgs); err != nil {
			return nil, fmt.Errorf("decode batch: %w", err)
		}
	} else {
		var req request.RelayRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("decode batch: %w", err)
		}
		msgs = req.MessagesToSend
	}

	if len(msgs) == 0 {
		return nil, errEmptyBatch
	}
	return msgs, nil
}
