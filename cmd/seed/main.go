// Command seed inserts the stock consulting frameworks (SWOT and
// Porter’s Five Forces) into the catalog. Run once against a fresh
// store; existing names are skipped.
package main

import (
	"context"
	"log"
	"os"

	"github.com/bizformulate/insights-api/internal/catalog"
	"github.com/bizformulate/insights-api/internal/db"
)

func main() {
	dbFile := os.Getenv("DATABASE_FILE")
	if dbFile == "" {
		dbFile = "data/insights.db"
	}

	if err := db.RunMigrations(dbFile); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	database, err := db.NewSQLiteDB(dbFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	frameworkCatalog := catalog.New(database)

	ctx := context.Background()
	if err := frameworkCatalog.EnsureBuiltins(ctx); err != nil {
		log.Fatalf("Failed to ensure built-in frameworks: %v", err)
	}
	if err := frameworkCatalog.Seed(ctx); err != nil {
		log.Fatalf("Failed to seed frameworks: %v", err)
	}

	log.Println("Consulting frameworks seeded (SWOT + Porter's Five Forces).")
}
