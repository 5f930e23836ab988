package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Write the bootstrap collection descriptors to the configured store",
	RunE:  runProvision,
}

func init() {
	rootCmd.AddCommand(provisionCmd)
}

func runProvision(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Provision(cmd.Context()); err != nil {
		return fmt.Errorf("provision: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Provisioned %d collections into %s store\n",
		len(app.Catalog), app.Config.Storage.Driver)
	return nil
}
