package cmd

import (
	"github.com/huangsam/trendline/internal/mcp"
	"github.com/huangsam/trendline/internal/store"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the Trendline MCP server",
	Long:    `Launch an MCP server on stdio that lets AI agents query measures, trends, issues and change logs.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withStore(func(st *store.Store) error {
			return mcp.StartMCPServer(rootCtx, st)
		})
	},
}
