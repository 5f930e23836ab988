package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var permissionsCmd = &cobra.Command{
	Use:   "permissions",
	Short: "List capability tokens required by the registered modules",
	RunE:  runPermissions,
}

func init() {
	rootCmd.AddCommand(permissionsCmd)
}

func runPermissions(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	for _, p := range app.Registry.Permissions() {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
