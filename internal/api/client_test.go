package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// expirable.LRU runs a janitor goroutine that has no stop method in v2.
		goleak.IgnoreAnyFunction("github.com/hashicorp/golang-lru/v2/expirable.NewLRU[...].func1"),
	)
}

type recorded struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   map[string]any
}

// fakeAPI is a scripted backend: handler decides the response, every request
// is recorded.
type fakeAPI struct {
	mu       sync.Mutex
	requests []recorded
	handler  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recorded{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Header: r.Header.Clone()}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()
	f.handler(w, r)
}

func (f *fakeAPI) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request), mutate ...func(*Options)) (*Client, *fakeAPI) {
	t.Helper()
	fake := &fakeAPI{handler: handler}
	srv := httptest.NewServer(fake)
	opts := Options{BaseURL: srv.URL, RetryInitial: time.Millisecond}
	for _, fn := range mutate {
		fn(&opts)
	}
	c, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		c.Close()
		srv.Close()
	})
	return c, fake
}

func TestNewValidatesBaseURL(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	_, err = New(Options{BaseURL: "ftp://example.com"})
	assert.Error(t, err)

	c, err := New(Options{BaseURL: "http://localhost:8080/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/", c.BaseURL())
}

func TestListSendsKwargsAndFilters(t *testing.T) {
	c, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"asset_id": 1, "symbol": "BTC"}})
	})

	records, err := c.List(context.Background(), Assets, Filters{"asset_type_id": "3"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "BTC", records[0]["symbol"])

	req := fake.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/assets", req.Path)
	assert.Equal(t, "asset_type_id=3&kwargs=%7B%7D", req.Query)
	assert.NotEmpty(t, req.Header.Get("X-Request-ID"))
}

func TestListNullBodyIsEmpty(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "null")
	})
	records, err := c.List(context.Background(), Surveys, nil)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestReadOnlyResourcesKeepTrailingSlash(t *testing.T) {
	c, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})
	_, err := c.List(context.Background(), Rules, nil)
	require.NoError(t, err)
	assert.Equal(t, "/eventbridge-rules/", fake.last().Path)
}

func TestPathOverrides(t *testing.T) {
	c, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	}, func(o *Options) {
		o.Paths = map[Resource]string{Queries: "queries"}
	})
	_, err := c.List(context.Background(), Queries, nil)
	require.NoError(t, err)
	assert.Equal(t, "/queries", fake.last().Path)
	assert.Equal(t, "crypto-forecasts", c.Path(Forecasts))
}

func TestCRUDMethods(t *testing.T) {
	c, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodPost:
			writeJSON(w, http.StatusCreated, map[string]any{"llm_id": 9, "name": "gpt"})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"llm_id": 9, "name": "gpt"})
		}
	})
	ctx := context.Background()

	rec, err := c.Create(ctx, LLMs, map[string]any{"name": "gpt"})
	require.NoError(t, err)
	assert.Equal(t, "gpt", rec["name"])
	last := fake.last()
	assert.Equal(t, http.MethodPost, last.Method)
	assert.Equal(t, "/llms", last.Path)
	assert.Equal(t, "application/json", last.Header.Get("Content-Type"))
	assert.Equal(t, map[string]any{"name": "gpt"}, last.Body)

	_, err = c.Get(ctx, LLMs, 9)
	require.NoError(t, err)
	assert.Equal(t, "/llms/9", fake.last().Path)

	_, err = c.Update(ctx, LLMs, 9, map[string]any{"model": "o1"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, fake.last().Method)
	assert.Equal(t, "/llms/9", fake.last().Path)

	require.NoError(t, c.Delete(ctx, LLMs, 9))
	assert.Equal(t, http.MethodDelete, fake.last().Method)
}

func TestErrorDetail(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/assets/404":
			writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Asset not found"})
		case "/assets/409":
			writeJSON(w, http.StatusConflict, map[string]any{"detail": "symbol already exists"})
		default:
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"detail": []map[string]any{{"loc": []any{"body", "symbol"}, "msg": "field required"}},
			})
		}
	})
	ctx := context.Background()

	_, err := c.Get(ctx, Assets, 404)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Asset not found")

	err = c.Delete(ctx, Assets, 409)
	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))

	_, err = c.Create(ctx, Assets, map[string]any{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "symbol: field required", apiErr.Detail)
}

func TestParseDetail(t *testing.T) {
	assert.Equal(t, "boom", parseDetail([]byte(`{"detail":"boom"}`)))
	assert.Equal(t, "plain text", parseDetail([]byte("plain text\n")))
	assert.Equal(t, "a: x; b", parseDetail([]byte(`{"detail":[{"loc":["body","a"],"msg":"x"},{"msg":"b"}]}`)))
	assert.Equal(t, `{"code":1}`, parseDetail([]byte(`{"detail":{"code":1}}`)))
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusBadGateway, map[string]any{"detail": "upstream"})
			return
		}
		writeJSON(w, http.StatusOK, []any{})
	}, func(o *Options) { o.MaxRetries = 3 })

	_, err := c.List(context.Background(), Schedules, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	c, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "missing"})
	}, func(o *Options) { o.MaxRetries = 5 })

	_, err := c.Get(context.Background(), Schedules, 1)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 1, fake.count())
}

func TestWritesAreNotRetried(t *testing.T) {
	c, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, func(o *Options) { o.MaxRetries = 5 })

	_, err := c.Create(context.Background(), Schedules, map[string]any{"name": "x"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, 1, fake.count())
}

func TestListCache(t *testing.T) {
	c, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{{"asset_type_id": 1}})
	}, func(o *Options) {
		o.CacheSize = 16
		o.CacheTTL = time.Minute
	})
	ctx := context.Background()

	for range 3 {
		_, err := c.List(ctx, AssetTypes, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, fake.count(), "repeat lists are served from cache")

	_, err := c.List(ctx, AssetTypes, Filters{"name": "crypto"})
	require.NoError(t, err)
	assert.Equal(t, 2, fake.count(), "different filters are cached separately")

	require.NoError(t, c.Delete(ctx, AssetTypes, 1))
	_, err = c.List(ctx, AssetTypes, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, fake.count(), "writes invalidate the resource")

	c.Purge()
	assert.Equal(t, 0, c.cache.len())
}

func TestInvalidateOnlyTouchesResource(t *testing.T) {
	cache := newListCache(8, time.Minute)
	cache.add(cacheKey(Assets, "a"), nil)
	cache.add(cacheKey(AssetTypes, "a"), nil)
	cache.invalidate(Assets)
	_, ok := cache.get(cacheKey(AssetTypes, "a"))
	assert.True(t, ok)
	_, ok = cache.get(cacheKey(Assets, "a"))
	assert.False(t, ok)

	var disabled *listCache
	disabled.add("k", nil)
	disabled.invalidate(Assets)
	_, ok = disabled.get("k")
	assert.False(t, ok)
}

func TestHealth(t *testing.T) {
	c, fake := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	got, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, true, got["ok"])
	assert.Equal(t, "/healthz", fake.last().Path)
}

func TestRequestsAreTraced(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "nope"})
	}, func(o *Options) { o.TracerProvider = tp })

	_, _ = c.Get(context.Background(), Prompts, 3)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "forecastconsole.api.get", spans[0].Name())
	var status int64
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "http.status_code" {
			status = kv.Value.AsInt64()
		}
	}
	assert.Equal(t, int64(http.StatusNotFound), status)
}

func TestRateLimitHonorsContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	}, func(o *Options) {
		o.RateLimit = 0.001
		o.Burst = 1
	})

	_, err := c.List(context.Background(), LLMs, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.List(ctx, LLMs, Filters{"x": "1"})
	assert.Error(t, err)
}
