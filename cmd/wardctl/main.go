// Command wardctl administers a ward database: schema migration, demo data and
// quick occupancy checks.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "wardctl",
		Short:         "Veterinary ward administration",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("database-url", "", "Database DSN (defaults to DATABASE_URL)")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(roomsCmd())
	rootCmd.AddCommand(occupancyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
