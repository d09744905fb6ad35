package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Flags
	cfgPath string

	// Root command
	rootCmd = &cobra.Command{
		Use:   "fleetcontrol",
		Short: "Fleet control service",
		Long: `Fleet control service for managing a small vehicle fleet and its trip log.

Functions:
- Keep local vehicle and trip collections reconciled with the remote fleet API
- Serve searchable, sortable, paginated views of both collections
- Validate and forward create/update/delete submissions
- Run a local development implementation of the fleet API`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "path to the configuration directory")
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}
