// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"videoapi/internal/config"
	"videoapi/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagConfig      string
	flagBase        string
	flagJSON        bool
	flagDebug       bool
	flagNoCache     bool
	flagShowBrowser bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var (
	logger    *zap.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "videoapi",
	Short: "Resolve movie and episode titles into HLS stream URLs",
	Long: `videoapi drives a headless browser through a streaming site's search and
player pages and captures the HLS playlist the player requests.
Run "videoapi serve" for the HTTP API or resolve titles from the terminal.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: flushLogs,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default: $XDG_CONFIG_HOME/videoapi/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&flagBase, "base", "b", "", "Site host to scrape, e.g. fmovies.ps")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the result cache")
	rootCmd.PersistentFlags().BoolVar(&flagShowBrowser, "show-browser", false, "Run Chromium with a visible window")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(movieCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagBase != "" {
		cfg.Base = flagBase
	}
	if flagDebug {
		cfg.Debug = true
	}
	if flagNoCache {
		cfg.Cache.Enabled = false
	}
	if flagShowBrowser {
		cfg.Browser.Headless = false
	}
	if cmd.Flags().Changed("listen") {
		cfg.Server.Listen = flagListen
	}
	if cmd.Flags().Changed("player") {
		cfg.Player = flagPlayer
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, logCloser, err = logging.New(cfg)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	logger.Debug("config loaded", zap.String("base", cfg.Base), zap.Bool("cache", cfg.Cache.Enabled))
	return nil
}

func flushLogs(cmd *cobra.Command, args []string) {
	if logger != nil {
		_ = logger.Sync()
	}
	if logCloser != nil {
		_ = logCloser.Close()
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "videoapi %s\n", Version)
	},
}
