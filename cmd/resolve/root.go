// Package resolve wires the CLI commands for the supplier resolution engine.
package resolve

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/supplyline/resolve/internal/config"
	"github.com/supplyline/resolve/internal/logging"
)

var (
	cfgFile   string
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve - supplier name resolution and ingestion",
	Long: `Resolve matches free-text counterparty names from delivery and schedule
workbooks against the canonical supplier catalog, learning new spellings
through interactive disambiguation.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	defer func() {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger, logCloser = logging.New(logging.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		FilePath:   cfg.Logging.FilePath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	slog.SetDefault(logger)
}
