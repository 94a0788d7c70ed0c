package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/nosenfield/smart-scrip/config"
	"github.com/nosenfield/smart-scrip/internal/domain/dto"
	"github.com/stretchr/testify/require"
)

const seedJSON = `{
  "drugs": [
    {"canonical_id": "RX-1", "display_name": "Amoxicillin 500 MG Oral Capsule", "aliases": ["Amoxil"], "dosage_form": "capsule", "strength": "500 mg"},
    {"canonical_id": "RX-2", "display_name": "Retired Tablet", "dosage_form": "tablet"}
  ],
  "packages": [
    {"package_id": "PKG-30", "canonical_id": "RX-1", "size": "30", "unit": "capsule", "status": "ACTIVE"},
    {"package_id": "PKG-60", "canonical_id": "RX-1", "size": "60", "unit": "capsule", "status": "ACTIVE"},
    {"package_id": "PKG-OLD", "canonical_id": "RX-2", "size": "30", "unit": "tablet", "status": "INACTIVE"}
  ]
}`

// writeSeed writes the test catalog to a temporary file.
func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(seedJSON), 0o600))
	return path
}

// testConfig returns an in-memory configuration seeded with the test catalog.
func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Load()
	cfg.Log = config.LogConfig{Level: "error"}
	cfg.Database.Enabled = false
	cfg.Database.CatalogSeedFile = writeSeed(t)
	cfg.Collaborators.DoseParser.URL = ""
	cfg.Collaborators.Advisor.URL = ""
	cfg.Tracing.Enabled = false
	cfg.Auth.Enabled = false
	cfg.Server.RateLimit = 1000
	return cfg
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeCalculation(t *testing.T, w *httptest.ResponseRecorder) dto.CalculationResponse {
	t.Helper()
	var envelope struct {
		Data dto.CalculationResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	return envelope.Data
}
