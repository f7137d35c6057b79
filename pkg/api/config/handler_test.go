package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"audit_workpaper/pkg/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleConfig_HidesSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.DatabaseURL = "postgres://user:secret@db/audit"
	cfg.Registry.AppCode = "app-secret"

	rec := httptest.NewRecorder()
	NewHandler(cfg).HandleConfig(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.NotContains(t, body, "secret")

	var got Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "postgres", got.Storage)
	assert.Equal(t, "Z3-2", got.Sheets.Mapping)
	assert.Equal(t, 49, got.Anomalies.LastRow)
}
