package resolve

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/supplyline/resolve/api"
	"github.com/supplyline/resolve/internal/catalog"
)

var serverPort int

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server providing name resolution and alias
management over HTTP endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		defer cat.Close() //nolint:errcheck

		// Use configured port if not overridden
		if serverPort != 0 {
			cfg.API.Port = serverPort
		}

		return api.RunServer(cfg, cat, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&serverPort, "port", 0, "Server port (overrides config)")
}
