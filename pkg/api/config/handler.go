package config

import (
	"encoding/json"
	"net/http"

	"audit_workpaper/pkg/core/config"
)

// Response is the effective configuration with secrets left out.
type Response struct {
	Sheets          config.SheetConfig   `json:"sheets"`
	Tolerance       float64              `json:"tolerance"`
	Anomalies       config.AnomalyConfig `json:"anomalies"`
	Scoring         config.ScoringConfig `json:"scoring"`
	RegistryEnabled bool                 `json:"registry_enabled"`
	Storage         string               `json:"storage"` // "postgres" or "file"
	AliasOverrides  bool                 `json:"alias_overrides"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	Config *config.Config
}

// NewHandler creates a new config handler
func NewHandler(cfg *config.Config) *Handler {
	return &Handler{
		Config: cfg,
	}
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers for local dev
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	storage := "file"
	if h.Config.Storage.DatabaseURL != "" {
		storage = "postgres"
	}
	resp := Response{
		Sheets:          h.Config.Sheets,
		Tolerance:       h.Config.Tolerance,
		Anomalies:       h.Config.Anomalies,
		Scoring:         h.Config.Scoring,
		RegistryEnabled: h.Config.Registry.Enabled,
		Storage:         storage,
		AliasOverrides:  h.Config.Mapping.OverridesFile != "",
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(resp)
}
