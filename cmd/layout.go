package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/inkscale/marksheet/internal/layout"
)

func newLayoutCmd() *cobra.Command {
	var questions int
	var options int
	var keySheet bool
	var output string
	var local bool

	cmd := &cobra.Command{
		Use:   "layout <template-image>",
		Short: "Discover a region catalog from a template sheet photo",
		Long: `Build a region catalog from the option boxes on a template sheet photo.

By default the photo is sent to Gemini, which handles messy layouts and
multiple columns. With --local the boxes are detected on this machine
instead; that needs no API key but expects a plain single-column grid
of separated boxes.

Pass the filled reference sheet with --key-sheet to also capture the
correct answers. Review the generated catalog (marksheet lint) before
grading with it; discovered geometry is a starting point, not ground
truth.`,
		Example: `  # Discover the layout of a 20-question, 4-option sheet
  marksheet layout blank.jpg --questions 20 --options 4 --output exam.json

  # Build the full catalog including the answer key
  marksheet layout filled-key.jpg --questions 20 --options 4 --key-sheet --output exam.json

  # Offline, without Gemini
  marksheet layout blank.jpg --questions 20 --options 4 --local --output exam.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc layout.Service
			if local {
				svc = layout.NewLocal(cfg.Thresholds)
			} else {
				if cfg.Gemini.APIKey == "" {
					return fmt.Errorf("no Gemini API key configured: set GEMINI_API_KEY or pass --local")
				}
				svc = layout.NewGemini(cfg.Gemini.APIKey, cfg.Gemini.Model)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := svc.Discover(ctx, layout.Request{
				ImagePath: args[0],
				Questions: questions,
				Options:   options,
				KeySheet:  keySheet,
			})
			if err != nil {
				return err
			}

			if output != "" {
				if err := c.Save(output); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "catalog with %d regions saved to %s\n", len(c.Regions), output)
				return nil
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(c)
		},
	}

	cmd.Flags().IntVar(&questions, "questions", 0, "Expected number of questions (required)")
	cmd.Flags().IntVar(&options, "options", 0, "Options per question (required)")
	cmd.Flags().BoolVar(&keySheet, "key-sheet", false, "Template is the filled reference sheet; capture correct answers")
	cmd.Flags().StringVar(&output, "output", "", "Write the catalog to this file instead of stdout")
	cmd.Flags().BoolVar(&local, "local", false, "Detect boxes locally instead of calling Gemini")

	_ = cmd.MarkFlagRequired("questions")
	_ = cmd.MarkFlagRequired("options")

	return cmd
}
