package cmd

import (
	"github.com/huangsam/contriboard/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Contriboard MCP server",
	Long:  `Launch an MCP server over stdio that lets AI agents read leaderboards, rankings, contributors and stats.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Logs go to stderr so stdio stays reserved for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, newEngine())
	},
}
