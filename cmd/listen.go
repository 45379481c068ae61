package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/audiolibrelab/tunebuddy/internal/audio"
	"github.com/audiolibrelab/tunebuddy/internal/input"
	"github.com/audiolibrelab/tunebuddy/internal/service"

	"github.com/spf13/cobra"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Poll the buttons and play combos until interrupted",
	Long: `Poll every button, build a combo from the genre, instrument and mood
buttons, and play the matching clip when Generate is pressed. Stop halts
playback and clears the combo. Press Ctrl+C to exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := input.NewSource(cfg, os.Stdin)
		if err != nil {
			return err
		}
		defer src.Close()

		sink, err := audio.NewSink(cfg)
		if err != nil {
			return err
		}
		defer sink.Close()

		svc := newService(src, sink)
		slog.Info("TuneBuddy ready", "profile", cfg.Profile, "input", cfg.Input.Backend, "audio", cfg.Audio.Backend, "clips", cfg.Clips.Directory)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := svc.Run(ctx); err != nil {
			return fmt.Errorf("listen failed: %w", err)
		}
		return nil
	},
}

func newService(src service.Buttons, sink service.Sink) *service.TuneBuddyService {
	return service.New(src, sink, service.Options{
		ClipsDirectory: cfg.Clips.Directory,
		Debounce:       cfg.Debounce,
		PollInterval:   cfg.PollInterval,
	})
}
