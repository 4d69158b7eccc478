package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcppkg "github.com/kailas-cloud/wayfarer/internal/transport/mcp"
	"github.com/kailas-cloud/wayfarer/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (stdio mode)",
	Long: `Start the Model Context Protocol server for AI agent integration.

The server speaks over stdio and exposes the retrieve_knowledge,
assess_risk and plan_trip tools.`,
	RunE: runMCP,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wayfarerctl %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}

	server, err := mcppkg.NewServer(a.Retrieval, a.Scorer,
		mcppkg.WithPlanner(a.Planner),
		mcppkg.WithLogger(globalLogger),
	)
	if err != nil {
		return err
	}

	return server.Serve(ctx)
}
