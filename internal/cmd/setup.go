package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dsemenov/storefront/internal/config"
	"github.com/dsemenov/storefront/internal/database"
)

var dropFirst bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the storefront database schema",
	RunE:  runSetup,
}

func init() {
	setupCmd.Flags().BoolVar(&dropFirst, "drop", false, "drop existing tables first")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println("📝 Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println("🔌 Connecting to database...")
	db, err := database.NewConnection(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if dropFirst {
		fmt.Println("🗑️  Dropping existing tables...")
		if err := db.DropSchema(); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	fmt.Println("⚙️  Creating tables...")
	if err := db.SetupSchema(); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	fmt.Println("✅ Schema ready")
	return nil
}
