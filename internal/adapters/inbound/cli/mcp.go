package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/reductor/reductor/internal/adapters/inbound/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the Reductor MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	var (
		dbPath      string
		projectPath string
		clusterCmd  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start Reductor MCP server (stdio)",
		Long:  "Start the Reductor MCP server using stdio transport. This allows AI coding assistants to run redundancy analyses and read run metrics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := mcpadapter.NewReductorMCPServer(mcpadapter.Options{
				DBPath:      dbPath,
				ProjectPath: projectPath,
				ClusterCmd:  clusterCmd,
			})
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", ".reductor/runs.db", "Path to the test-run store database")
	cmd.Flags().StringVar(&projectPath, "project", ".", "Project root for config, git info, and history")
	cmd.Flags().StringVar(&clusterCmd, "clusterer", "", "Clustering collaborator command")

	return cmd
}
