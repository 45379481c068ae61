package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/audiolibrelab/tunebuddy/internal/audio"
	"github.com/audiolibrelab/tunebuddy/internal/combo"

	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [label...]",
	Short: "Play a combo without buttons",
	Long: `Select the given labels as if their buttons were pressed, fill any
missing category at random, and play the clip. Waits until the clip ends;
Ctrl+C stops it.`,
	Example: `  tunebuddy play jazz piano calm
  tunebuddy play gloomy`,
	RunE: func(cmd *cobra.Command, args []string) error {
		labels, err := parseLabels(args)
		if err != nil {
			return err
		}

		sink, err := audio.NewSink(cfg)
		if err != nil {
			return err
		}
		defer sink.Close()

		svc := newService(nil, sink)
		for _, l := range labels {
			if err := svc.Select(l); err != nil {
				return fmt.Errorf("cannot select %s: %w", l, err)
			}
		}

		d := svc.Generate()
		if d == nil {
			return fmt.Errorf("audio device is busy")
		}
		if !d.Found {
			return fmt.Errorf("clip not found: %s", d.Path)
		}
		if !d.Started {
			return fmt.Errorf("playback failed: %s", d.Error)
		}
		fmt.Printf("Playing: %s\n", d.Clip)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for svc.IsPlaying() {
			select {
			case <-ctx.Done():
				svc.Stop()
				return nil
			case <-ticker.C:
			}
		}
		fmt.Println("Playback completed")
		return nil
	},
}

func parseLabels(args []string) ([]combo.Label, error) {
	labels := make([]combo.Label, 0, len(args))
	for _, a := range args {
		l, err := combo.ParseLabel(a)
		if err != nil {
			return nil, err
		}
		if l.IsCommand() {
			return nil, fmt.Errorf("%s is a command, not a selection", l)
		}
		labels = append(labels, l)
	}
	return labels, nil
}
