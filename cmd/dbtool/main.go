package main

import (
	"context"
	"flag"
	"log"
	"route-scenario-service/internal/adapters/cache"
	"route-scenario-service/internal/adapters/repositories"
	"route-scenario-service/internal/config"
	"route-scenario-service/internal/platform/db"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	seedPath := flag.String("seed", cfg.SeedPath, "JSON file of scenarios to insert")
	purge := flag.Bool("purge-cache", false, "delete expired optimizer results")
	flag.Parse()

	ctx := context.Background()

	conn, dialect, err := db.Connect(cfg.DBDriver, cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if *seedPath != "" {
		log.Println("Seeding database...")
		n, err := repositories.SeedFromJSON(ctx, conn, dialect, *seedPath)
		if err != nil {
			log.Fatalf("seeding failed: %v", err)
		}
		log.Printf("Seeding complete: %d scenarios inserted.", n)
	}

	if *purge {
		n, err := cache.NewSQLResultCache(conn, dialect, cfg.ResultCacheTTL).Purge(ctx)
		if err != nil {
			log.Fatalf("purge failed: %v", err)
		}
		log.Printf("Purged %d expired cache entries.", n)
	}
}
