package server_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PauloCosta30/flight-alert-bot/internal/server"
	"github.com/PauloCosta30/flight-alert-bot/pkg/model"
	"github.com/PauloCosta30/flight-alert-bot/pkg/storage"
)

func newTestServer(t *testing.T) (*httptest.Server, *storage.SQLite) {
	t.Helper()
	db, err := storage.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := httptest.NewServer(server.New(db, slog.New(slog.DiscardHandler)).Handler())
	t.Cleanup(srv.Close)
	return srv, db
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestServer_Root(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_ListAlerts(t *testing.T) {
	srv, db := newTestServer(t)
	ctx := context.Background()

	alert := &model.Alert{
		OwnerID:  42,
		Origin:   "GRU",
		MaxPrice: 500,
		DateSpec: model.DateSpec{Start: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)},
		TripType: model.TripOneWay,
	}
	require.NoError(t, db.CreateAlert(ctx, alert))

	resp, err := http.Get(srv.URL + "/api/v1/alerts")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var alerts []model.Alert
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.ID, alerts[0].ID)

	resp, err = http.Get(srv.URL + "/api/v1/alerts?owner_id=42")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/v1/alerts?owner_id=nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
