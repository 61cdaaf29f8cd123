package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dsemenov/storefront/internal/config"
	"github.com/dsemenov/storefront/internal/database"
	"github.com/dsemenov/storefront/internal/memstore"
	"github.com/dsemenov/storefront/internal/models"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample products and tags",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

type sampleProduct struct {
	product models.Product
	tags    []string
}

// sampleProducts is shared by the seed command and the server's demo mode.
func sampleProducts() []sampleProduct {
	weekAgo := time.Now().AddDate(0, 0, -7)
	nextWeek := time.Now().AddDate(0, 0, 7)
	return []sampleProduct{
		{
			product: models.Product{
				Title:        "Mechanical keyboard",
				Description:  "Tenkeyless board with hot-swappable switches",
				Price:        decimal.NewFromFloat(129.99),
				Count:        25,
				FreeDelivery: true,
			},
			tags: []string{"electronics", "accessories"},
		},
		{
			product: models.Product{
				Title:       "USB-C dock",
				Description: "Dual display dock with 96W passthrough",
				Price:       decimal.NewFromFloat(89.50),
				Count:       10,
				Discount:    decimal.NewFromFloat(15.0),
				DateFrom:    &weekAgo,
				DateTo:      &nextWeek,
			},
			tags: []string{"electronics"},
		},
		{
			product: models.Product{
				Title:       "Canvas tote bag",
				Description: "Heavy cotton tote, fits a 16-inch laptop",
				Price:       decimal.NewFromFloat(19.90),
				Count:       3,
			},
			tags: []string{"accessories"},
		},
		{
			product: models.Product{
				Title:       "Pour-over kettle",
				Description: "Gooseneck kettle with thermometer",
				Price:       decimal.NewFromFloat(45.00),
				Count:       0,
			},
			tags: []string{"kitchen"},
		},
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
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

	store := database.NewStore(db)
	ctx := context.Background()

	fmt.Println("🌱 Inserting sample products...")
	tagIDs := make(map[string][]int64)
	for _, sample := range sampleProducts() {
		p := sample.product
		id, err := store.InsertProduct(ctx, &p)
		if err != nil {
			return fmt.Errorf("failed to seed product %q: %w", p.Title, err)
		}
		for _, tag := range sample.tags {
			tagIDs[tag] = append(tagIDs[tag], id)
		}
	}
	for name, productIDs := range tagIDs {
		if _, err := store.AddTag(ctx, name, productIDs...); err != nil {
			return fmt.Errorf("failed to seed tag %q: %w", name, err)
		}
	}

	fmt.Println("✅ Sample data ready")
	return nil
}

func seedMemstore(store *memstore.Store) {
	tagIDs := make(map[string][]int64)
	for _, sample := range sampleProducts() {
		id := store.AddProduct(sample.product)
		for _, tag := range sample.tags {
			tagIDs[tag] = append(tagIDs[tag], id)
		}
	}
	for name, productIDs := range tagIDs {
		store.AddTag(name, productIDs...)
	}
}
