package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/h2scape/engine/renderer"
	"github.com/Carmen-Shannon/h2scape/internal/config"
	"github.com/Carmen-Shannon/h2scape/internal/logging"
	"github.com/Carmen-Shannon/h2scape/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*cobra.Command, flags) {
	t.Helper()
	cmd := &cobra.Command{Use: "h2scape"}
	f := &flags{}
	bindFlags(cmd, f)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, *f
}

func TestLoadConfigDefaults(t *testing.T) {
	cmd, f := parse(t)
	cfg, err := loadConfig(cmd, f)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h2scape.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile: wind\nparams:\n  primary_unit_count: 4\n  electrolysis_unit_count: 3\n"), 0o644))

	cmd, f := parse(t, "--config", path, "--profile", "solar", "--primary", "8", "--backend", "terminal", "--metrics-addr", ":9464")
	cfg, err := loadConfig(cmd, f)
	require.NoError(t, err)

	assert.Equal(t, "solar", cfg.Profile)
	assert.Equal(t, 8, cfg.Params.PrimaryUnitCount)
	assert.Equal(t, 3, cfg.Params.ElectrolysisUnitCount)
	assert.Equal(t, "terminal", cfg.Renderer.Backend)
	assert.Equal(t, ":9464", cfg.Metrics.Addr)
}

func TestZeroCountFlagIsApplied(t *testing.T) {
	cmd, f := parse(t, "--electrolysis", "0")
	cfg, err := loadConfig(cmd, f)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Params.ElectrolysisUnitCount)
}

func TestInvalidFlagsAreRejected(t *testing.T) {
	cmd, f := parse(t, "--profile", "tidal")
	_, err := loadConfig(cmd, f)
	assert.ErrorIs(t, err, config.ErrUnknownProfile)

	cmd, f = parse(t, "--backend", "vulkan")
	_, err = loadConfig(cmd, f)
	assert.ErrorIs(t, err, config.ErrUnknownBackend)
}

func TestOutputFor(t *testing.T) {
	out, closeOut, err := outputFor(config.Default(), renderer.BackendTypeTerminal)
	require.NoError(t, err)
	assert.Equal(t, io.Discard, out)
	closeOut()

	out, closeOut, err = outputFor(config.Default(), renderer.BackendTypeWGPU)
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, out)
	closeOut()

	cfg := config.Default()
	cfg.Log.File = filepath.Join(t.TempDir(), "h2scape.log")
	out, closeOut, err = outputFor(cfg, renderer.BackendTypeTerminal)
	require.NoError(t, err)
	_, err = io.WriteString(out, "hello\n")
	require.NoError(t, err)
	closeOut()
	data, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestServeMetrics(t *testing.T) {
	collector, err := observability.NewEngineCollector(prometheus.NewRegistry())
	require.NoError(t, err)
	collector.SetInstanceCount("storage", 3)

	srv := serveMetrics("127.0.0.1:0", collector, logging.Noop())
	require.NotNil(t, srv)
	t.Cleanup(func() { _ = srv.Close() })
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `h2scape_facility_instances{kind="storage"} 3`)

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
