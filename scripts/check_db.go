//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"

	"jewelry-store/internal/config"

	"github.com/jackc/pgx/v5"
)

// Connects with the DB_* environment and prints row counts of the
// application tables.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.Database.ConnectionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	var dbName string
	err = conn.QueryRow(ctx, "SELECT current_database()").Scan(&dbName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully connected to database: %s\n\n", dbName)

	tables := []string{
		"items",
		"cart_items",
		"promo_codes",
		"orders",
		"order_positions",
		"deliveries",
		"acquiring_transactions",
		"ad_campaigns",
		"ad_statistics",
	}
	for _, table := range tables {
		var count int64
		if err := conn.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&count); err != nil {
			fmt.Printf("  %-24s missing (%v)\n", table, err)
			continue
		}
		fmt.Printf("  %-24s %d\n", table, count)
	}
}
