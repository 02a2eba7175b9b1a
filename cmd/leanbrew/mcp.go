package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/leanbrew/feedfilter"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the toggle tools over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := feedfilter.OpenStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	f := feedfilter.New(cfg, store, logger)
	defer f.Close()

	srv := mcp.NewServer(&mcp.Implementation{Name: "leanbrew", Version: "0.1.0"}, nil)
	f.RegisterToggleMCP(srv)
	logger.Info("leanbrew: mcp on stdio")
	return srv.Run(cmd.Context(), &mcp.StdioTransport{})
}
