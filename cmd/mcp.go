package cmd

import (
	"github.com/spf13/cobra"

	"github.com/inkscale/marksheet/internal/layout"
	"github.com/inkscale/marksheet/internal/server"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Long: `Serve the grading tools over the Model Context Protocol.

The server speaks JSON-RPC 2.0 on stdin/stdout, so all logging goes to
stderr. Catalog discovery tools are only offered when a Gemini API key
is configured.`,
		Example: `  marksheet mcp

  # Claude Desktop config entry:
  # "marksheet": {"command": "marksheet", "args": ["mcp"]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.New(cfg.Thresholds)
			if cfg.Gemini.APIKey != "" {
				srv.SetLayoutService(layout.NewGemini(cfg.Gemini.APIKey, cfg.Gemini.Model))
			}
			return srv.Run()
		},
	}
}
