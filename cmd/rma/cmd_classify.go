package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"unicode/utf8"

	"rmaintake/internal/claim"
	"rmaintake/internal/intake"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// runClassify classifies each argument and prints the results in argument order.
// Texts shorter than intake.MinObservationLength are never sent to the model.
func runClassify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	session := newSession()
	a, err := newAssistant(ctx, cfg, session)
	if err != nil {
		return err
	}
	if !a.Enabled() {
		logger.Warn("no API key configured; every text will have no suggestion")
	}

	results := make([]*claim.Suggestion, len(args))
	g, gctx := errgroup.WithContext(ctx)
	limit := parallel
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, text := range args {
		chars := utf8.RuneCountInString(text)
		if chars < intake.MinObservationLength {
			logger.Debug("skipping short text", zap.Int("index", i), zap.Int("chars", chars))
			continue
		}
		g.Go(func() error {
			logger.Debug("classifying", zap.Int("index", i), zap.Int("chars", chars))
			results[i] = a.Classify(gctx, text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("classify: %w", err)
	}

	out := cmd.OutOrStdout()
	for i, text := range args {
		fmt.Fprintf(out, "[%d] %s\n", i+1, text)
		s := results[i]
		if utf8.RuneCountInString(text) < intake.MinObservationLength {
			fmt.Fprintf(out, "    texto muy corto (mínimo %d caracteres)\n", intake.MinObservationLength)
			continue
		}
		if s == nil {
			fmt.Fprintln(out, "    sin sugerencia")
			continue
		}
		fmt.Fprintf(out, "    %s (%s)\n", s.Category.Label(), s.Category)
		if s.Reasoning != "" {
			fmt.Fprintf(out, "    %s\n", s.Reasoning)
		}
	}
	session.SessionEnd(false, 0)
	return nil
}
