// Package cli implements the picodb command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/picodb"
)

var version = "dev"

var (
	configPath string
	filename   string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:           "picodb",
	Short:         "Inspect and maintain SQLite databases through the picodb adapter",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML settings file")
	rootCmd.PersistentFlags().StringVarP(&filename, "filename", "f", "", "database file (overrides settings)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log every statement to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// openDatabase builds settings from the config file and flags and opens the database.
func openDatabase(cmd *cobra.Command) (*picodb.Database, error) {
	settings := picodb.Settings{}
	if configPath != "" {
		s, err := picodb.LoadSettings(configPath)
		if err != nil {
			return nil, err
		}
		settings = s
	}
	overrides := picodb.Settings{picodb.KeyFilename: filename}
	if debug {
		overrides[picodb.KeyDebug] = "true"
	}
	settings = settings.Merge(overrides)

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	return picodb.Open(commandContext(cmd), settings, picodb.WithLogger(logger))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Main runs the command line and exits with a non-zero status on failure.
func Main() {
	rootCmd.SetOut(os.Stdout)
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
