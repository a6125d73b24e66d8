package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/mapnav/internal/pkg/config"
)

var upFiles = []string{
	"migrations/001_init_extensions.sql",
	"migrations/002_locations.sql",
}

const downSQL = `DROP TABLE IF EXISTS locations`

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("mapnav-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		log.Printf("database.driver is %q: nothing to migrate", cfg.Database.Driver)
		return
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	switch os.Args[1] {
	case "up":
		runMigrations(ctx, pool)
	case "down":
		if _, err := pool.Exec(ctx, downSQL); err != nil {
			log.Fatalf("down: %v", err)
		}
		log.Println("locations table dropped")
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) {
	for _, f := range upFiles {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		if _, err := pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}

	log.Println("all migrations applied")
}
