package telemetry

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/bsidebar/insights/pkg/bookmarks"
	"github.com/bsidebar/insights/pkg/httpclient"
	"github.com/bsidebar/insights/pkg/kvstore"
	"github.com/bsidebar/insights/pkg/settings"
)

const (
	DefaultInterval       = 30 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultRetryDelay     = 15 * time.Second
	DefaultMaxRetries     = 100
)

// telemetryLogger wraps slog.Logger to automatically prepend "[Telemetry]" to all messages
type telemetryLogger struct {
	logger *slog.Logger
}

// NewTelemetryLogger creates a new telemetry logger that automatically prepends "[Telemetry]" to all messages
func NewTelemetryLogger(logger *slog.Logger) *telemetryLogger {
	return &telemetryLogger{logger: logger}
}

func (tl *telemetryLogger) Debug(msg string, args ...any) {
	tl.logger.Debug("[Telemetry] "+msg, args...)
}

func (tl *telemetryLogger) Info(msg string, args ...any) {
	tl.logger.Info("[Telemetry] "+msg, args...)
}

func (tl *telemetryLogger) Warn(msg string, args ...any) {
	tl.logger.Warn("[Telemetry] "+msg, args...)
}

func (tl *telemetryLogger) Error(msg string, args ...any) {
	tl.logger.Error("[Telemetry] "+msg, args...)
}

// Enabled returns whether the logger is enabled for the given level
func (tl *telemetryLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return tl.logger.Enabled(ctx, level)
}

// Client owns the event stack, the flush schedule and the daily snapshot.
// Create one per process.
type Client struct {
	logger     *telemetryLogger
	enabled    bool
	devMode    bool
	httpClient HTTPClient
	endpoint   string

	interval       time.Duration
	requestTimeout time.Duration
	retryDelay     time.Duration
	maxRetries     int

	stack     *Stack
	gate      Gate
	model     Model
	env       Environment
	bookmarks bookmarks.Provider
	settings  settings.Provider
	now       func() time.Time
	tracer    trace.Tracer

	// snapshotRunning guards CheckDaily against re-entry.
	snapshotRunning atomic.Bool
	inflight        sync.WaitGroup
}

type Option func(*Client)

func WithEnabled(enabled bool) Option {
	return func(c *Client) { c.enabled = enabled }
}

// WithDevMode suppresses every event.
func WithDevMode(devMode bool) Option {
	return func(c *Client) { c.devMode = devMode }
}

func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

func WithHTTPClient(client HTTPClient) Option {
	return func(c *Client) { c.httpClient = client }
}

func WithInterval(d time.Duration) Option {
	return func(c *Client) { c.interval = d }
}

func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) { c.requestTimeout = d }
}

// WithRetryDelay sets the delay unit: retry n waits n times this long.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

func WithModel(m Model) Option {
	return func(c *Client) { c.model = m }
}

func WithEnvironment(env Environment) Option {
	return func(c *Client) { c.env = env }
}

func WithBookmarks(p bookmarks.Provider) Option {
	return func(c *Client) { c.bookmarks = p }
}

func WithSettings(p settings.Provider) Option {
	return func(c *Client) { c.settings = p }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient returns a client with 30s flushes, 30s request timeouts and
// up to 100 retries spaced 15s, 30s, 45s, ... apart.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		logger:         NewTelemetryLogger(logger),
		enabled:        true,
		interval:       DefaultInterval,
		requestTimeout: DefaultRequestTimeout,
		retryDelay:     DefaultRetryDelay,
		maxRetries:     DefaultMaxRetries,
		stack:          NewStack(),
		model:          NewStoreModel(kvstore.NewMemory()),
		env:            SystemEnvironment{},
		now:            time.Now,
		tracer:         otel.Tracer("github.com/bsidebar/insights/pkg/telemetry"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = httpclient.NewHTTPClient(c.requestTimeout)
	}

	c.gate = Gate{
		DevMode:     c.devMode,
		Permissions: c.sharePermissions,
	}

	c.logger.Debug("Client configured",
		"enabled", c.enabled,
		"dev_mode", c.devMode,
		"has_endpoint", c.endpoint != "",
		"interval", c.interval,
	)

	return c
}

// Track records an event. always=true skips the share-permission check and
// is meant for values that are not sensitive. Structs are sent as
// structured values using their JSON field names.
func (tc *Client) Track(ctx context.Context, kind string, value any, always bool) {
	if !tc.enabled {
		return
	}
	if !tc.gate.Allow(ctx, kind, always) {
		tc.logger.Debug("Event not allowed", "event_type", kind, "dev_mode", tc.devMode)
		return
	}

	if rv := reflect.Indirect(reflect.ValueOf(value)); rv.IsValid() && rv.Kind() == reflect.Struct {
		props, err := structToMap(value)
		if err != nil {
			tc.logger.Error("Failed to convert structured value to map", "error", err, "event_type", kind)
			return
		}
		value = props
	}

	tc.stack.Push(NewEvent(kind, value))
}

// Enabled reports whether the client records events at all.
func (tc *Client) Enabled() bool {
	return tc.enabled
}

// Pending returns the number of events waiting for the next flush.
func (tc *Client) Pending() int {
	return tc.stack.Len()
}

// Wait blocks until the scheduler started by Start has stopped and every
// flush it started has finished. Call it after cancelling Start's context.
func (tc *Client) Wait() {
	tc.inflight.Wait()
}

func (tc *Client) sharePermissions(ctx context.Context) SharePermissions {
	perms, _, err := tc.model.SharePermissions(ctx)
	if err != nil {
		tc.logger.Debug("Failed to read share permissions", "error", err)
		return SharePermissions{}
	}
	return perms
}
