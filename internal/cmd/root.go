package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/petrarca/code-pattern-analyzer/internal/config"
	"github.com/spf13/cobra"
)

// Version is the tool version reported by --version and in scan metadata
var Version = "0.1.0"

// settings holds defaults and environment overrides; command flags bind to its fields
var settings = config.LoadSettings()

var rootCmd = &cobra.Command{
	Use:   "pattern-analyzer",
	Short: "Static pattern analyzer for source code",
	Long: `Pattern Analyzer inspects source code for likely bugs, security risks and
optimization opportunities by matching per-language rule catalogs against the text.

It computes lightweight quality metrics, derives project-level suggestions from the
import graph and can optionally ask a local Ollama model for a second opinion.`,
	Version:      Version,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", settings.LogLevel.String(), "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", settings.LogFormat, "Log format: text or json")
	rootCmd.PersistentFlags().String("log-file", settings.LogFile, "Log file path (default: stderr)")
}

// configureLogging sets up logging based on command flags
func configureLogging(cmd *cobra.Command) *slog.Logger {
	logLevel, _ := cmd.Flags().GetString("log-level")
	logFormat, _ := cmd.Flags().GetString("log-format")
	logFile, _ := cmd.Flags().GetString("log-file")

	if level, err := config.ParseLogLevel(logLevel); err == nil {
		settings.LogLevel = level
	}
	settings.LogFormat = logFormat
	settings.LogFile = logFile

	logger := settings.ConfigureLogger()
	slog.SetDefault(logger)
	return logger
}

// exitOnError logs err and terminates the process when err is set
func exitOnError(logger *slog.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logger.Error(msg, "error", err)
	os.Exit(1)
}
