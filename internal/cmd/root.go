package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront - e-commerce shop backend",
	Long: `Storefront is the JSON API behind the shop frontend: catalog browsing,
shopping baskets for anonymous and signed-in shoppers, order checkout and a
simulated payment step.

Run it as a server, or use the setup/seed commands to prepare a database.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
