package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propdesk/fundedpay/pkg/config"
	"github.com/propdesk/fundedpay/pkg/types"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func TestHealthLive(t *testing.T) {
	resp := httptest.NewRecorder()
	HealthLive(testConfig())(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "test", resp.Header().Get("X-Fundedpay-Env"))
}

func TestHealthReadyAllUp(t *testing.T) {
	handler := HealthReady(testConfig(), nil,
		Dependency{Name: "database", Pinger: stubPinger{}},
		Dependency{Name: "redis", Pinger: stubPinger{}},
	)
	resp := httptest.NewRecorder()
	handler(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestHealthReadyReportsFailedDependency(t *testing.T) {
	handler := HealthReady(testConfig(), nil,
		Dependency{Name: "database", Pinger: stubPinger{}},
		Dependency{Name: "redis", Pinger: stubPinger{err: errors.New("connection refused")}},
	)
	resp := httptest.NewRecorder()
	handler(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]any{"redis": "unavailable"}, body.Error.Details)
}
