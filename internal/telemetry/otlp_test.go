package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecastconsole/internal/config"
)

func TestDisabledProviderIsNoop(t *testing.T) {
	p, err := NewProvider(context.Background(), config.TelemetryConfig{})
	require.NoError(t, err)
	assert.False(t, p.Enabled())

	_, span := p.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNilProvider(t *testing.T) {
	var p *Provider
	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Tracer("x"))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestEnabledProviderExportsOnShutdown(t *testing.T) {
	var received atomic.Int32
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		if r.URL.Path == "/v1/traces" {
			received.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	p, err := NewProvider(context.Background(), config.TelemetryConfig{
		Enabled:     true,
		Endpoint:    strings.TrimPrefix(collector.URL, "http://"),
		ServiceName: "forecastconsole-test",
	})
	require.NoError(t, err)
	require.True(t, p.Enabled())

	_, span := p.Tracer("test").Start(context.Background(), "list assets")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
	assert.GreaterOrEqual(t, received.Load(), int32(1))
}

func TestEndpointAsCollectorURL(t *testing.T) {
	tests := []struct {
		name   string
		suffix string
		want   string
	}{
		{"base url", "", "/v1/traces"},
		{"trailing slash", "/", "/v1/traces"},
		{"path prefix", "/otel", "/otel/v1/traces"},
		{"full traces url", "/v1/traces", "/v1/traces"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				if r.URL.Path == tt.want {
					hits.Add(1)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer collector.Close()

			p, err := NewProvider(context.Background(), config.TelemetryConfig{
				Enabled:  true,
				Endpoint: collector.URL + tt.suffix,
			})
			require.NoError(t, err)
			_, span := p.Tracer("test").Start(context.Background(), "health")
			span.End()
			require.NoError(t, p.Shutdown(context.Background()))
			assert.GreaterOrEqual(t, hits.Load(), int32(1))
		})
	}
}

func TestEndpointURLWithoutHost(t *testing.T) {
	_, err := NewProvider(context.Background(), config.TelemetryConfig{Enabled: true, Endpoint: "http://"})
	assert.Error(t, err)
}
