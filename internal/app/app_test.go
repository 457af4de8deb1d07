package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/shardmanager/clog"
	"github.com/ceyewan/shardmanager/config"
	"github.com/ceyewan/shardmanager/xerrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func loadTestConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_PATH", filepath.Join(dir, "data", "history.db"))
	t.Setenv("PORT", "5000")

	_, cfg, err := LoadConfig(config.WithConfigPaths(dir))
	require.NoError(t, err)

	cfg.Server.StaticDir = dir
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>shardmanager</h1>"), 0o644))
	return cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_PATH", "")
	t.Setenv("PORT", "")

	_, cfg, err := LoadConfig(config.WithConfigPaths(dir))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, ".", cfg.Server.StaticDir)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "/data/shardmanager.db", cfg.Storage.Path)
	assert.Equal(t, 5*time.Second, cfg.Storage.BusyTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Trace.Enabled)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadConfigLegacyEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_PATH", "/tmp/other.db")
	t.Setenv("PORT", "8088")

	_, cfg, err := LoadConfig(config.WithConfigPaths(dir))
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "/tmp/other.db", cfg.Storage.Path)
}

func TestLoadConfigInvalidPort(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_PATH", "")
	t.Setenv("PORT", "70000")

	_, _, err := LoadConfig(config.WithConfigPaths(dir))
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.ErrInvalidInput))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "zero port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "empty storage path", mutate: func(c *Config) { c.Storage.Path = "" }, wantErr: true},
		{name: "ratelimit without rate", mutate: func(c *Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.Rate = 0
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server:    ServerConfig{Port: 5000},
				RateLimit: RateLimitConfig{Rate: 1, Burst: 1},
			}
			cfg.Storage.Path = "/tmp/x.db"
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(context.Background(), nil, clog.Discard())
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.ErrInvalidInput))
}

func TestAppServesHistory(t *testing.T) {
	cfg := loadTestConfig(t)
	ctx := context.Background()

	a, err := New(ctx, cfg, clog.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })

	_, err = os.Stat(cfg.Storage.Path)
	require.NoError(t, err, "database file should be created with its parent directory")

	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/history", "application/json",
		strings.NewReader(`{"user_id":"u1","hash_code":42,"mysql_shard_count":8,"mysql_shard_index":2}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/history")
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	resp.Body.Close()
	require.Len(t, records, 1)
	assert.Equal(t, "u1", records[0]["user_id"])

	resp, err = http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAppSchemaSurvivesRestart(t *testing.T) {
	cfg := loadTestConfig(t)
	ctx := context.Background()

	first, err := New(ctx, cfg, clog.Discard())
	require.NoError(t, err)
	srv := httptest.NewServer(first.Handler())
	resp, err := http.Post(srv.URL+"/api/history", "application/json", strings.NewReader(`{"user_id":"u1","hash_code":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	srv.Close()
	require.NoError(t, first.Close(ctx))

	second, err := New(ctx, cfg, clog.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close(ctx) })

	srv = httptest.NewServer(second.Handler())
	defer srv.Close()
	resp, err = http.Get(srv.URL + "/api/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	var records []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	assert.Len(t, records, 1)
}

func TestAppWithRateLimit(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.RateLimit = RateLimitConfig{Enabled: true, Rate: 0.001, Burst: 1}
	ctx := context.Background()

	a, err := New(ctx, cfg, clog.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })

	first := httptest.NewRecorder()
	a.Handler().ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	a.Handler().ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestAppServeStopsOnCancel(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Server.ShutdownTimeout = time.Second

	a, err := New(context.Background(), cfg, clog.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/api/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestAppCloseIsIdempotent(t *testing.T) {
	cfg := loadTestConfig(t)
	ctx := context.Background()

	a, err := New(ctx, cfg, clog.Discard())
	require.NoError(t, err)
	require.NoError(t, a.Close(ctx))
	require.NoError(t, a.Close(ctx))
}

func TestWatchLogLevel(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_PATH", "")
	t.Setenv("PORT", "")

	loader, _, err := LoadConfig(config.WithConfigPaths(dir))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, WatchLogLevel(ctx, loader, clog.Discard()))
}
