package main

import (
	apiConfig "audit_workpaper/pkg/api/config"
	"audit_workpaper/pkg/api/reports"
	"audit_workpaper/pkg/core/config"
	"audit_workpaper/pkg/core/store"
	"context"
	"fmt"
	"net/http"
	"os"
)

func main() {
	// Environment variables (.env) are applied by config.Load
	configPath := config.DefaultPath
	if p := os.Getenv("AUDIT_CONFIG"); p != "" {
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}

	repo := store.Open(context.Background(), cfg.Storage.DatabaseURL, cfg.Storage.ReportDir)
	defer store.Close()

	mux := http.NewServeMux()

	// Config endpoint
	configHandler := apiConfig.NewHandler(cfg)
	mux.HandleFunc("/api/config", configHandler.HandleConfig)

	// Score report endpoints
	reports.NewHandler(repo).Register(mux)

	fmt.Printf("API server starting on %s...\n", cfg.Server.Addr)
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - GET  /api/reports?id=<report id>")
	fmt.Println("  - GET  /api/reports/latest?company=<name>")

	if err := http.ListenAndServe(cfg.Server.Addr, mux); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
