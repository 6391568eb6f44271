package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpserver "github.com/sherwynjoel/hybridllm/internal/mcp"
	"github.com/sherwynjoel/hybridllm/internal/privacy"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		enabled, err := a.privacyMode(cmd)
		if err != nil {
			return err
		}
		collectOpts, err := a.collectOptions("", nil, nil)
		if err != nil {
			return err
		}

		srv := mcpserver.NewServer(a.client, privacy.NewMode(enabled), mcpserver.Options{
			Version: Version,
			Collect: collectOpts,
			Logger:  a.logger,
		})

		ctx, cancel := signalContext(cmd)
		defer cancel()

		if servePort > 0 {
			// SSE transport
			a.logger.Infow("serving MCP over SSE", "port", servePort)
			return server.NewSSEServer(srv.MCPServer(),
				server.WithBaseURL(fmt.Sprintf("http://localhost:%d", servePort)),
			).Start(fmt.Sprintf(":%d", servePort))
		}
		// Default: stdio transport
		return server.NewStdioServer(srv.MCPServer()).Listen(ctx, os.Stdin, os.Stdout)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (0 = stdio)")
	rootCmd.AddCommand(serveCmd)
}
