package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a config without a log file so tests never touch the
// home directory.
func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "api:\n  base_url: " + baseURL + "\n  max_retries: 1\nlogging:\n  file: \"\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FORECASTCONSOLE_API_URL", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestScheduleDescribe(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	now := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)

	require.NoError(t, describeSchedule(cmd, "cron(29 13 ? * MON-FRI *)", now))
	assert.Equal(t, "1:29PM UTC Monday-Friday\nnext run: 2024-03-04T13:29:00Z\n", out.String())

	out.Reset()
	require.NoError(t, describeSchedule(cmd, "cron(0 8 L * ? *)", now))
	assert.Contains(t, out.String(), "next run: unknown")
}

func TestScheduleDescribeRequiresExpression(t *testing.T) {
	_, err := execute(t, "schedule", "describe")
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	out, err := execute(t, "health", "--config", writeConfig(t, srv.URL))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+" ok\n", out)
}

func TestHealthUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := execute(t, "health", "--config", writeConfig(t, srv.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestAPIURLFlagOverridesConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	out, err := execute(t, "health", "--config", writeConfig(t, "http://127.0.0.1:1"), "--api-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, srv.URL)
}

func TestInvalidConfigIsRejected(t *testing.T) {
	_, err := execute(t, "health", "--config", writeConfig(t, "ftp://example.com"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_url")
}
