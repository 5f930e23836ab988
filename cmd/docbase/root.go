package main

import (
	"context"
	"fmt"
	"os"

	"github.com/artpar/docbase/bootstrap"
	"github.com/artpar/docbase/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile    string
	modulesDir string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docbase",
	Short: "Pluggable document storage bootstrap",
	Long: `docbase assembles the bootstrap collections of a document store.

Every module contributes settings keys; docbase composes them into the
settings schema and declares the users and collection collections.

Examples:
  docbase catalog --format yaml
  docbase validate
  docbase provision
  docbase serve`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "docbase.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&modulesDir, "modules", "", "directory of YAML module declarations (overrides config)")
}

// loadApp loads configuration and builds the application.
func loadApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, err
	}
	if modulesDir != "" {
		cfg.Modules.Dir = modulesDir
	}
	return bootstrap.New(ctx, cfg)
}
