package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"cv-builder/internal/shared/config"
	"cv-builder/internal/shared/storage/db"
	"cv-builder/internal/shared/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	defer telemetry.Sync()

	cfg := config.Load()
	ctx := context.Background()
	if cfg.DatabaseURL == "" {
		telemetry.Error("migrate.database_url_missing", nil)
		return 1
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.Defaults(db.ProfileMigrate).FromEnv())
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		return 1
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err})
		return 1
	}
	return 0
}
