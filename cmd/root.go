package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inkscale/marksheet/internal/catalog"
	"github.com/inkscale/marksheet/internal/config"
	"github.com/inkscale/marksheet/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marksheet",
		Short: "Grade photographed multiple-choice answer sheets",
		Long: `Marksheet grades photographed multiple-choice answer sheets.

A region catalog maps every option box to its spot on the page in percent
coordinates, so one catalog fits any scan resolution. Filled options are
detected by dark-pixel density, resolved into per-question answers and
scored against the catalog's answer key.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return err
			}

			logging.Init(cfg.Log.Level, cfg.Log.File)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a config file (default: marksheet.yaml on the search path)")

	// Add subcommands
	cmd.AddCommand(newGradeCmd())
	cmd.AddCommand(newBatchCmd())
	cmd.AddCommand(newLayoutCmd())
	cmd.AddCommand(newLintCmd())
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newAnnotateCmd())
	cmd.AddCommand(newMCPCmd())

	return cmd
}

// loadCatalog loads a catalog for grading and warns about questions that
// will be excluded from scoring for lack of a key entry.
func loadCatalog(path string) (*catalog.Catalog, error) {
	c, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}
	if unkeyed := c.UnkeyedQuestions(); len(unkeyed) > 0 {
		logging.Log.Warn("questions without a correct-answer entry are excluded from scoring",
			zap.String("catalog", path),
			zap.Ints("questions", unkeyed))
	}
	return c, nil
}
