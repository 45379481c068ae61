package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/audiolibrelab/tunebuddy/internal/combo"
	"github.com/audiolibrelab/tunebuddy/internal/config"
	"github.com/audiolibrelab/tunebuddy/internal/input"
	"github.com/audiolibrelab/tunebuddy/internal/service"

	"github.com/spf13/cobra"
)

var buttonsCmd = &cobra.Command{
	Use:   "buttons",
	Short: "List the buttons and their pins",
	Long: `List every button in scan order with its label, category and GPIO pin.
With --read the input source is sampled once and the pressed state shown,
which helps when checking the wiring.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var src input.Source
		if read, _ := cmd.Flags().GetBool("read"); read {
			var err error
			src, err = input.NewSource(cfg, os.Stdin)
			if err != nil {
				return err
			}
			defer src.Close()
		}
		return listButtons(cmd.OutOrStdout(), cfg, src)
	},
}

func listButtons(w io.Writer, cfg *config.Config, src service.Buttons) error {
	fmt.Fprintf(w, "Buttons (%s backend)\n", cfg.Input.Backend)
	for i, id := range combo.Identifiers() {
		label, _ := combo.LabelFor(id)

		category := "command"
		if c, ok := label.Category(); ok {
			category = string(c)
		}

		pin := "-"
		if p, ok := cfg.Pin(id); ok && cfg.Input.Backend == config.InputGPIO {
			pin = fmt.Sprintf("GPIO%d", p)
		}

		state := ""
		if src != nil {
			state = "released"
			if src.IsPressed(id) {
				state = "PRESSED"
			}
		}
		fmt.Fprintf(w, "  %2d. %-12s %-11s %-7s %s\n", i+1, label, category, pin, state)
	}
	return nil
}

func init() {
	buttonsCmd.Flags().Bool("read", false, "sample the input source once and show pressed state")
}
