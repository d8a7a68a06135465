package main

import (
	"os"

	"cv-builder/internal/bootstrap"
	"cv-builder/internal/shared/config"
	"cv-builder/internal/shared/server"
	"cv-builder/internal/shared/telemetry"
)

func main() {
	defer telemetry.Sync()

	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("api.bootstrap_failed", map[string]any{"error": err})
		telemetry.Sync()
		os.Exit(1)
	}
	defer app.Close()

	addr := server.Addr(cfg.Port)
	telemetry.Info("api.starting", map[string]any{"addr": addr, "store": app.Config.KVStore, "env": app.Config.Env})

	if err := app.Router.Run(addr); err != nil {
		telemetry.Error("api.server_failed", map[string]any{"error": err})
		telemetry.Sync()
		os.Exit(1)
	}
}
