package main

// Run database migrations:
//   go run ./cmd/migrate [up|down|status]

import (
	"context"
	"errors"
	"log"
	"os"

	"onlyu-media/internal/shared/config"
	"onlyu-media/internal/shared/storage/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrMissingSessionSecret) {
		log.Fatalf("load config: %v", err)
	}
	ctx := context.Background()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	tuning := db.Tuning{PingTimeout: cfg.DBPingTimeout}
	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, db.OptionsFor(db.RoleMigrate, 0, tuning))
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	switch command {
	case "up":
		err = db.RunMigrations(ctx, sqlDB)
	case "down":
		err = db.RollbackMigration(ctx, sqlDB)
	case "status":
		err = db.MigrationStatus(ctx, sqlDB)
	default:
		log.Printf("unknown command %q (want up, down or status)", command)
		os.Exit(2)
	}
	if err != nil {
		log.Printf("migrate %s failed: %v", command, err)
		os.Exit(1)
	}
}
