package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/audiolibrelab/tunebuddy/internal/audio"
	"github.com/audiolibrelab/tunebuddy/internal/combo"
	"github.com/audiolibrelab/tunebuddy/internal/config"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the clip library is complete",
	Long: `List every clip a combo can resolve to and report the ones missing from
the clips directory, along with the audio backends usable on this machine.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkClips(cmd.OutOrStdout(), cfg, audio.GetAvailableBackends())
	},
}

func checkClips(w io.Writer, cfg *config.Config, backends []audio.BackendType) error {
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = string(b)
	}
	fmt.Fprintf(w, "Audio backends: %s (configured: %s)\n", strings.Join(names, ", "), cfg.Audio.Backend)
	fmt.Fprintf(w, "Clips directory: %s\n", cfg.Clips.Directory)

	clips := combo.AllClipNames()
	var missing []string
	for _, name := range clips {
		if _, err := os.Stat(cfg.ClipPath(name)); err != nil {
			missing = append(missing, name)
		}
	}

	for _, name := range missing {
		fmt.Fprintf(w, "  missing: %s\n", name)
	}
	fmt.Fprintf(w, "%d/%d clips present\n", len(clips)-len(missing), len(clips))

	if len(missing) > 0 {
		return fmt.Errorf("%d clips missing", len(missing))
	}
	return nil
}
