package main

import (
	"github.com/nappsnasarawa/levyreceipt/internal/logger"
	"github.com/nappsnasarawa/levyreceipt/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP tool server on stdio",
	Long: `Expose receipt tools to MCP clients over stdio:

  render_receipt, receipt_layout, format_amount, merge_receipts,
  stamp_receipt, and lookup_payments when PORTAL_BASE_URL is set.

Example client configuration:

  {
    "mcpServers": {
      "levyreceipt": {"command": "levyreceipt", "args": ["mcp"]}
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("mcp")
	ctx, cancel := signalContext()
	defer cancel()

	r, err := newRenderer(cmd)
	if err != nil {
		return err
	}
	deps := mcp.Deps{Renderer: r}
	if cfg.PortalBaseURL != "" {
		client, closeFn, err := newPortal(ctx)
		if err != nil {
			return err
		}
		defer closeFn()
		deps.Searcher = client
	}

	server := mcp.NewServer(version)
	server.SetLogger(log)
	mcp.RegisterTools(server, deps)
	mcp.RegisterResources(server)

	log.Info().Msg("MCP server ready on stdio")
	return server.Run(ctx)
}
