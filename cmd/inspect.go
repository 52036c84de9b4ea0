package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inkscale/marksheet/internal/annotate"
	"github.com/inkscale/marksheet/internal/catalog"
	"github.com/inkscale/marksheet/internal/mark"
	"github.com/inkscale/marksheet/internal/ocr"
	"github.com/inkscale/marksheet/internal/sheet"
)

func newInspectCmd() *cobra.Command {
	var catalogPath string
	var maskPath string
	var readID bool

	cmd := &cobra.Command{
		Use:   "inspect <sheet>",
		Short: "Show sheet metadata, densities and the ink mask",
		Long: `Inspect one answer sheet without grading it.

Prints the sheet's dimensions and format. With --catalog the per-region
mark densities are included, which is the fastest way to tune thresholds
against a real scan. With --mask the binarized ink view is written out
so you can see exactly which pixels count as dark.`,
		Example: `  # Just the dimensions
  marksheet inspect scan.jpg

  # Densities for every region, plus the ink mask
  marksheet inspect scan.jpg --catalog exam.json --mask ink.png

  # Also try to read the identifier strip
  marksheet inspect scan.jpg --read-id`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache := sheet.NewCache()

			info, err := sheet.LoadInfo(cache, args[0])
			if err != nil {
				return err
			}
			img, err := cache.Load(args[0])
			if err != nil {
				return err
			}

			out := inspectOutput{Sheet: info}

			if catalogPath != "" {
				c, err := catalog.Load(catalogPath)
				if err != nil {
					return err
				}
				out.Signals = cfg.Thresholds.Measure(img, c.Regions)
			}

			if maskPath != "" {
				if err := annotate.Save(annotate.InkMask(img, cfg.Thresholds), maskPath); err != nil {
					return err
				}
				out.MaskPath = maskPath
			}

			if readID {
				identity, err := ocr.ReadStudentID(img, ocr.DefaultStrip())
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "identifier read failed: %v\n", err)
				} else {
					out.Identity = identity
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Measure densities for this catalog's regions")
	cmd.Flags().StringVar(&maskPath, "mask", "", "Write the binarized ink mask to this file")
	cmd.Flags().BoolVar(&readID, "read-id", false, "Try to read the student identifier strip")

	return cmd
}

type inspectOutput struct {
	Sheet    *sheet.Info   `json:"sheet"`
	Signals  []mark.Signal `json:"signals,omitempty"`
	MaskPath string        `json:"maskPath,omitempty"`
	Identity *ocr.Identity `json:"identity,omitempty"`
}
