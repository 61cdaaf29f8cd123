package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dsemenov/storefront/internal/auth"
	"github.com/dsemenov/storefront/internal/basket"
	"github.com/dsemenov/storefront/internal/catalog"
	"github.com/dsemenov/storefront/internal/config"
	"github.com/dsemenov/storefront/internal/database"
	"github.com/dsemenov/storefront/internal/memstore"
	"github.com/dsemenov/storefront/internal/order"
	"github.com/dsemenov/storefront/internal/payment"
	"github.com/dsemenov/storefront/internal/profile"
	"github.com/dsemenov/storefront/internal/server"
)

var demoMode bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the storefront API server",
	Long: `Start the storefront API server which provides:
- Catalog, tag and review endpoints
- Anonymous and authenticated shopping baskets
- Order checkout, confirmation and simulated payment`,
	RunE: runServer,
}

func init() {
	runCmd.Flags().BoolVar(&demoMode, "demo", false, "run against an in-memory store with sample data")
	rootCmd.AddCommand(runCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 Storefront Starting...")

	fmt.Println("📝 Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var deps server.Deps
	if demoMode {
		fmt.Println("🧪 Demo mode: using in-memory store with sample data")
		store := memstore.New()
		seedMemstore(store)
		deps = buildDeps(store, nil)
	} else {
		fmt.Println("🔌 Connecting to database...")
		db, err := database.NewConnection(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		fmt.Println("✅ Database connected successfully")
		deps = buildDeps(database.NewStore(db), db)
	}

	fmt.Println("⚙️  Setting up server...")
	srv := server.NewServer(cfg.Server.SessionSecret, deps)

	fmt.Printf("🌐 Starting server on %s...\n", cfg.Server.Addr)
	if err := srv.Start(cfg.Server.Addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// repositories is the full repository surface both backends implement.
type repositories interface {
	basket.Repository
	basket.ProductStore
	order.Repository
	auth.UserStore
	auth.ProfileStore
	auth.BasketMerger
	auth.OrderMerger
	profile.Repository
	profile.UserStore
	catalog.Repository
}

func buildDeps(store repositories, health server.HealthChecker) server.Deps {
	profiles := profile.NewService(store, store)
	return server.Deps{
		Baskets:  basket.NewService(store, store),
		Orders:   order.NewService(store, store, store, profiles),
		Payments: payment.NewService(store),
		Auth:     auth.NewService(store, store, store, store),
		Profiles: profiles,
		Catalog:  catalog.NewService(store),
		Health:   health,
	}
}
