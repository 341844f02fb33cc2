package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ironsheep/digit-roi/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdin/stdout",
	Long: `Serve the digit tools over the Model Context Protocol.

Requests are read from stdin one JSON-RPC message per line and responses are
written to stdout. Configure it in an MCP client as a stdio server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := server.New(cfg, slog.Default())
		if err != nil {
			return err
		}
		slog.Debug("MCP server starting", "version", server.Version, "detector", cfg.Detector)
		return srv.Serve(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
