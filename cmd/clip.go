package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/audiolibrelab/tunebuddy/internal/combo"
	"github.com/audiolibrelab/tunebuddy/internal/config"

	"github.com/spf13/cobra"
)

var clipCmd = &cobra.Command{
	Use:   "clip [label...]",
	Short: "Show the clip a combo resolves to",
	Long: `Print the clip reference and file path for the given labels without
playing anything. With fewer than three labels the name of the partial
combo is shown; use --fill to complete it at random first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		labels, err := parseLabels(args)
		if err != nil {
			return err
		}
		fill, _ := cmd.Flags().GetBool("fill")
		return describeClip(cmd.OutOrStdout(), cfg, combo.New(nil), labels, fill)
	},
}

func describeClip(w io.Writer, cfg *config.Config, c *combo.Combo, labels []combo.Label, fill bool) error {
	for _, l := range labels {
		if err := c.Accept(l); err != nil {
			return fmt.Errorf("cannot select %s: %w", l, err)
		}
	}
	if fill {
		for _, l := range c.EnsureFull() {
			fmt.Fprintf(w, "random: %s\n", l)
		}
	}

	ref := c.ClipReference()
	path := cfg.ClipPath(ref)
	_, statErr := os.Stat(path)

	fmt.Fprintf(w, "combo: %s\n", c)
	fmt.Fprintf(w, "clip: %s\n", ref)
	fmt.Fprintf(w, "path: %s\n", path)
	fmt.Fprintf(w, "exists: %t\n", statErr == nil)
	return nil
}

func init() {
	clipCmd.Flags().Bool("fill", false, "fill missing categories at random")
}
