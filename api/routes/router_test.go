package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/avaloza-dev/marketstall-backend/pkg/config"
	"github.com/avaloza-dev/marketstall-backend/pkg/types"
)

func testRouter() http.Handler {
	return NewRouter(Deps{
		Config: &config.Config{
			App:        config.AppConfig{Env: "dev", Port: "8080"},
			Capability: config.CapabilityConfig{Secret: "secret", Issuer: "marketstall"},
		},
	})
}

func TestHealthLive(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if env := resp.Header().Get("X-MarketStall-Env"); env != "dev" {
		t.Fatalf("expected env header, got %q", env)
	}
}

func TestMetricsRouteAbsentWithoutHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestOwnerRoutesRequireCapabilityToken(t *testing.T) {
	paths := []string{
		"/api/v1/stores/" + uuid.NewString() + "/withdrawals",
		"/api/v1/stores/" + uuid.NewString() + "/items",
		"/api/v1/stores/" + uuid.NewString() + "/items/" + uuid.NewString() + "/unlist",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		resp := httptest.NewRecorder()
		testRouter().ServeHTTP(resp, req)

		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, resp.Code)
		}
		var envelope types.ErrorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			t.Fatalf("%s: decode error envelope: %v", path, err)
		}
		if envelope.Error.Code != "UNAUTHORIZED" {
			t.Fatalf("%s: unexpected code %s", path, envelope.Error.Code)
		}
	}
}

func TestUnwiredServiceReportsInternal(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stores", nil)
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
