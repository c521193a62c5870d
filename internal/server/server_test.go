package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/loykin/schemarun/internal/auth"
	"github.com/loykin/schemarun/internal/database"
	"github.com/loykin/schemarun/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "inspector-secret"

func newTestServer(t *testing.T, ledgerEnabled bool) (*Server, *database.Handle) {
	t.Helper()
	cfg := database.Config{Driver: "sqlite", Name: "main", SQLitePath: filepath.Join(t.TempDir(), "inspect.db")}
	h, err := database.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	_, err = h.DB.Exec(`CREATE TABLE clients (id INTEGER PRIMARY KEY, agent_id INTEGER, type TEXT NOT NULL, status TEXT, notes TEXT)`)
	require.NoError(t, err)

	s := New(h, Config{
		JWT:           auth.VerifyConfig{Secret: []byte(testSecret), ClockSkew: time.Second},
		TenantPattern: "ma%",
		LedgerEnabled: ledgerEnabled,
	})
	return s, h
}

func token(t *testing.T, claims map[string]any) string {
	t.Helper()
	tok, err := auth.TokenConfig{Secret: testSecret, Custom: claims}.Issue()
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(t *testing.T, s *Server, path, authz string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec := do(t, s, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"driver":"sqlite"`)
}

func TestAuthentication(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := do(t, s, "/api/columns/clients", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, "/api/columns/clients", "Bearer not-a-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	bad, err := auth.TokenConfig{Secret: "other", Custom: map[string]any{"id": 1}}.Issue()
	require.NoError(t, err)
	rec = do(t, s, "/api/columns/clients", "Bearer "+bad)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, s, "/api/columns/clients", token(t, map[string]any{"role": "agent"}))
	assert.Equal(t, http.StatusForbidden, rec.Code, "token without user id")
}

func TestColumns(t *testing.T) {
	s, _ := newTestServer(t, false)
	authz := token(t, map[string]any{"id": 5, "role": "agent", "agency_id": 2})

	rec := do(t, s, "/api/columns/clients?field=agent_id&field=type&field=status", authz)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cols []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cols))
	require.Len(t, cols, 3)
	assert.Equal(t, "agent_id", cols[0]["Field"])
	assert.Equal(t, "type", cols[1]["Field"])
	assert.Equal(t, "NO", cols[1]["Null"])
	assert.Equal(t, "status", cols[2]["Field"])

	rec = do(t, s, "/api/columns/missing_table", authz)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTenantsRequiresSuperAdmin(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := do(t, s, "/api/tenants", token(t, map[string]any{"id": 5, "role": "admin"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, s, "/api/tenants?count=clients", token(t, map[string]any{"id": 1, "role": "super_admin"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Databases []string `json:"databases"`
		Counts    []struct {
			Database string `json:"database"`
			Rows     int64  `json:"rows"`
		} `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"main"}, body.Databases)
	require.Len(t, body.Counts, 1)
	assert.Equal(t, int64(0), body.Counts[0].Rows)
}

func TestHistory(t *testing.T) {
	s, _ := newTestServer(t, false)
	admin := token(t, map[string]any{"id": 1, "role": "admin"})
	rec := do(t, s, "/api/history", admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	s, h := newTestServer(t, true)
	l := ledger.New(h.DB, h.Dialect, "")
	require.NoError(t, l.Ensure(context.Background()))
	require.NoError(t, l.Record(context.Background(), ledger.Run{Script: "schema.sql", Checksum: "abc", Kind: ledger.KindBootstrap, Success: true}))

	rec = do(t, s, "/api/history?limit=10", admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"script":"schema.sql"`)

	rec = do(t, s, "/api/history?limit=x", admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, "/api/history", token(t, map[string]any{"id": 2, "role": "agent"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRunShutsDownAndClosesHandle(t *testing.T) {
	s, h := newTestServer(t, false)
	s.cfg.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Error(t, h.DB.Ping(), "handle should be closed after shutdown")
}
