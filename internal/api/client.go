// Package api is the HTTP client for the crypto forecasts REST backend.
//
// Every resource shares the same CRUD surface: GET /{path} (list, with
// optional equality filters), GET/PATCH/DELETE /{path}/{id} and POST /{path}.
// The scheduler and function resources are read-only lists.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"forecastconsole/internal/jsonutil"
	"forecastconsole/internal/table"
)

// Resource names an API collection.
type Resource string

const (
	AssetTypes     Resource = "asset-types"
	Assets         Resource = "assets"
	LLMs           Resource = "llms"
	Prompts        Resource = "prompts"
	QueryTypes     Resource = "query-types"
	Schedules      Resource = "schedules"
	QuerySchedules Resource = "query-schedules"
	Surveys        Resource = "surveys"
	Queries        Resource = "crypto-queries"
	Forecasts      Resource = "crypto-forecasts"
	Rules          Resource = "eventbridge-rules"
	Functions      Resource = "lambda-functions"
)

// DefaultPaths maps each resource to its URL path below the base URL.
var DefaultPaths = map[Resource]string{
	AssetTypes:     "asset-types",
	Assets:         "assets",
	LLMs:           "llms",
	Prompts:        "prompts",
	QueryTypes:     "query-types",
	Schedules:      "schedules",
	QuerySchedules: "query-schedules",
	Surveys:        "surveys",
	Queries:        "crypto-queries",
	Forecasts:      "crypto-forecasts",
	Rules:          "eventbridge-rules/",
	Functions:      "lambda-functions/",
}

const healthPath = "healthz"

// Filters are equality filters sent as query parameters, e.g.
// {"asset_type_id": "3"}. The backend ignores keys it does not allow.
type Filters map[string]string

// Options configures a Client. Zero values select the defaults noted per field.
type Options struct {
	BaseURL string
	Timeout time.Duration // default 10s

	RateLimit float64 // requests per second; <= 0 disables limiting
	Burst     int     // default 1 when RateLimit is set

	MaxRetries   int           // attempts for idempotent requests; default 1 (no retry)
	RetryInitial time.Duration // first backoff interval; default 200ms

	CacheTTL  time.Duration // 0 disables the list cache
	CacheSize int

	Paths map[Resource]string // overrides DefaultPaths

	HTTPClient     *http.Client
	Logger         *zap.Logger
	TracerProvider oteltrace.TracerProvider
}

// Client talks to the forecasts API. It is safe for concurrent use.
type Client struct {
	base         *url.URL
	http         *http.Client
	limiter      *rate.Limiter
	maxRetries   int
	retryInitial time.Duration
	cache        *listCache
	paths        map[Resource]string
	log          *zap.Logger
	tracer       oteltrace.Tracer
}

// New creates a client for opts.BaseURL.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("api: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("api: parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api: base URL %q must be http or https", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	paths := make(map[Resource]string, len(DefaultPaths))
	for r, p := range DefaultPaths {
		paths[r] = p
	}
	for r, p := range opts.Paths {
		if p != "" {
			paths[r] = p
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	retries := opts.MaxRetries
	if retries <= 0 {
		retries = 1
	}
	initial := opts.RetryInitial
	if initial <= 0 {
		initial = 200 * time.Millisecond
	}

	return &Client{
		base:         base,
		http:         httpClient,
		limiter:      limiter,
		maxRetries:   retries,
		retryInitial: initial,
		cache:        newListCache(opts.CacheSize, opts.CacheTTL),
		paths:        paths,
		log:          logger.Named("api"),
		tracer:       tp.Tracer("forecastconsole/api"),
	}, nil
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Path returns the URL path of resource r.
func (c *Client) Path(r Resource) string {
	if p, ok := c.paths[r]; ok {
		return p
	}
	return string(r)
}

// List returns every record of r matching filters. Results are served from
// the cache while fresh; callers must treat the returned records as
// read-only.
func (c *Client) List(ctx context.Context, r Resource, filters Filters) ([]table.Record, error) {
	q := url.Values{}
	q.Set("kwargs", "{}")
	for k, v := range filters {
		q.Set(k, v)
	}
	query := q.Encode()
	key := cacheKey(r, query)
	if records, ok := c.cache.get(key); ok {
		c.log.Debug("list cache hit", zap.String("resource", string(r)))
		return records, nil
	}

	body, err := c.do(ctx, http.MethodGet, c.Path(r), query, nil)
	if err != nil {
		return nil, err
	}
	records, err := jsonutil.UnmarshalArrayAllowEmpty[table.Record](body, "list "+string(r))
	if err != nil {
		return nil, err
	}
	c.cache.add(key, records)
	return records, nil
}

// Get fetches a single record by primary key.
func (c *Client) Get(ctx context.Context, r Resource, id int) (table.Record, error) {
	body, err := c.do(ctx, http.MethodGet, c.itemPath(r, id), "", nil)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body, "get "+string(r))
}

// Create POSTs payload and returns the stored record.
func (c *Client) Create(ctx context.Context, r Resource, payload map[string]any) (table.Record, error) {
	body, err := c.do(ctx, http.MethodPost, c.Path(r), "", payload)
	if err != nil {
		return nil, err
	}
	c.cache.invalidate(r)
	return decodeRecord(body, "create "+string(r))
}

// Update PATCHes the fields in payload; fields not present are left as they
// are on the server.
func (c *Client) Update(ctx context.Context, r Resource, id int, payload map[string]any) (table.Record, error) {
	body, err := c.do(ctx, http.MethodPatch, c.itemPath(r, id), "", payload)
	if err != nil {
		return nil, err
	}
	c.cache.invalidate(r)
	return decodeRecord(body, "update "+string(r))
}

// Delete removes a record. The backend answers 204 on success and 404 when
// nothing was deleted.
func (c *Client) Delete(ctx context.Context, r Resource, id int) error {
	if _, err := c.do(ctx, http.MethodDelete, c.itemPath(r, id), "", nil); err != nil {
		return err
	}
	c.cache.invalidate(r)
	return nil
}

// Health calls the health endpoint and reports the decoded body.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodGet, healthPath, "", nil)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}
	if err := jsonutil.UnmarshalWithContext(body, &out, "health"); err != nil {
		return nil, err
	}
	return out, nil
}

// Invalidate drops cached lists of r.
func (c *Client) Invalidate(r Resource) {
	c.cache.invalidate(r)
}

// Purge empties the list cache.
func (c *Client) Purge() {
	c.cache.purge()
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) itemPath(r Resource, id int) string {
	return strings.TrimRight(c.Path(r), "/") + "/" + strconv.Itoa(id)
}

func decodeRecord(body []byte, context string) (table.Record, error) {
	var rec table.Record
	if err := jsonutil.UnmarshalWithContext(body, &rec, context); err != nil {
		return nil, err
	}
	return rec, nil
}

// do performs one API call. GETs are retried with exponential backoff on
// network errors and retryable status codes; everything else is attempted
// once.
func (c *Client) do(ctx context.Context, method, path, query string, payload any) ([]byte, error) {
	var reqBody []byte
	if payload != nil {
		var err error
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
	}

	requestID := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, "forecastconsole.api."+strings.ToLower(method),
		oteltrace.WithSpanKind(oteltrace.SpanKindClient),
		oteltrace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("forecastconsole.api.path", path),
			attribute.String("forecastconsole.request_id", requestID),
		))
	defer span.End()

	tries := uint(1)
	if method == http.MethodGet {
		tries = uint(c.maxRetries)
	}
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.retryInitial

	attempts := 0
	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempts++
		return c.attempt(ctx, method, path, query, reqBody, requestID)
	},
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(tries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.log.Warn("retrying request",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("attempt", attempts),
				zap.Duration("wait", wait),
				zap.Error(err))
		}),
	)
	span.SetAttributes(attribute.Int("forecastconsole.api.attempts", attempts))
	if err != nil {
		// Retry hands back the wrapper when the last allowed try was permanent.
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Unwrap()
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			span.SetAttributes(attribute.Int("http.status_code", apiErr.StatusCode))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return body, nil
}

// attempt sends a single request. Errors that retrying cannot fix are
// wrapped with backoff.Permanent.
func (c *Client) attempt(ctx context.Context, method, path, query string, reqBody []byte, requestID string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("api: rate limit wait: %w", err))
	}

	u := c.base.JoinPath(path)
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = query

	var body io.Reader
	if reqBody != nil {
		body = bytes.NewReader(reqBody)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("api: build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(fmt.Errorf("api: %s %s: %w", method, path, err))
		}
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: read %s %s: %w", method, path, err)
	}
	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("request_id", requestID))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Method:     method,
			Path:       "/" + strings.TrimLeft(u.Path, "/"),
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(data),
		}
		if apiErr.Temporary() {
			return nil, apiErr
		}
		return nil, backoff.Permanent(apiErr)
	}
	return data, nil
}
