package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/ukaji3/sheetschema-go/internal/tool"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve schema inference as an MCP tool over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			server := newServer()
			logger.Info("serving MCP over stdio", "tool", tool.MetadataInferSpreadsheetSchema.Name)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}

func newServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "sheetschema", Version: version}, nil)
	mcp.AddTool(server, tool.MetadataInferSpreadsheetSchema, tool.InferSpreadsheetSchema)
	return server
}
