package client

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/juju/clock"
	"go.uber.org/zap"

	"github.com/ChaseHampton/graver/internal/config"
	"github.com/ChaseHampton/graver/internal/logging"
	"github.com/ChaseHampton/graver/internal/metrics"
)

// Fetcher issues GET requests for the parsers and the search worker.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, params url.Values) (*Response, error)
}

type Response struct {
	StatusCode int
	Status     string
	Body       []byte
	Headers    http.Header
	// URL is the request URL including the encoded query string.
	URL      string
	Duration time.Duration
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// recoverable maps the status codes that are retried to their reason phrase.
var recoverable = map[int]string{
	500: "Internal Server Error",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Timeout",
	599: "Network Connect Timeout Error",
}

// IsRecoverable reports whether a response with status code should be retried.
func IsRecoverable(code int) bool {
	_, ok := recoverable[code]
	return ok
}

// Options configures a Driver. Zero values fall back to the defaults noted
// on each field.
type Options struct {
	UserAgent  string        // default "Mozilla/5.0"
	Timeout    time.Duration // default 30s
	MaxRetries int
	RetryDelay time.Duration

	MaxIdleConns    int
	MaxConnsPerHost int
	IdleConnTimeout time.Duration
	ProxyURL        string

	Clock  clock.Clock // default clock.WallClock
	Logger *zap.Logger
}

// OptionsFromConfig maps the http section of the configuration onto Options.
func OptionsFromConfig(cfg config.HTTPConfig, logger *zap.Logger) Options {
	return Options{
		UserAgent:       cfg.UserAgent,
		Timeout:         cfg.Timeout,
		MaxRetries:      cfg.MaxRetries,
		RetryDelay:      cfg.RetryDelay,
		MaxIdleConns:    cfg.MaxIdleConns,
		MaxConnsPerHost: cfg.MaxConnsPerHost,
		IdleConnTimeout: cfg.IdleConnTimeout,
		ProxyURL:        cfg.ProxyURL,
		Logger:          logger,
	}
}

// Driver is a retrying HTTP client. It keeps one session (cookies and
// keep-alive connections) for its lifetime and is meant to be used from a
// single goroutine.
type Driver struct {
	rc         *resty.Client
	maxRetries int
	retryDelay time.Duration
	clock      clock.Clock
	logger     *zap.Logger
	retries    atomic.Int64
}

func NewDriver(opts Options) *Driver {
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}

	jar, _ := cookiejar.New(nil)
	hc := &http.Client{
		Timeout: opts.Timeout,
		Jar:     jar,
		Transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			MaxIdleConns:    opts.MaxIdleConns,
			MaxConnsPerHost: opts.MaxConnsPerHost,
			IdleConnTimeout: opts.IdleConnTimeout,
		},
	}
	rc := resty.NewWithClient(hc).SetHeader("User-Agent", opts.UserAgent)
	if opts.ProxyURL != "" {
		rc.SetProxy(opts.ProxyURL)
	}

	return &Driver{
		rc:         rc,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		clock:      opts.Clock,
		logger:     logging.OrNop(opts.Logger),
	}
}

// Retries returns the number of retries performed over the driver's lifetime.
func (d *Driver) Retries() int {
	return int(d.retries.Load())
}

// Get sends a GET request, retrying up to MaxRetries times while the status
// is recoverable. Transport errors are returned as-is without retrying. Any
// other status, including the last recoverable one once the budget is spent,
// is returned to the caller.
func (d *Driver) Get(ctx context.Context, rawURL string, params url.Values) (*Response, error) {
	resp, err := d.makeRequest(ctx, rawURL, params)
	if err != nil {
		return nil, err
	}

	retries := 0
	defer func() { d.retries.Add(int64(retries)) }()

	for IsRecoverable(resp.StatusCode) && retries < d.maxRetries {
		retries++
		metrics.ObserveRetry()
		d.logger.Warn("recoverable status, retrying",
			zap.Int("status", resp.StatusCode),
			zap.String("reason", recoverable[resp.StatusCode]),
			zap.String("url", rawURL),
			zap.Int("attempt", retries),
			zap.Int("max_retries", d.maxRetries),
			zap.Duration("delay", d.retryDelay),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-d.clock.After(d.retryDelay):
		}

		resp, err = d.makeRequest(ctx, rawURL, params)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (d *Driver) makeRequest(ctx context.Context, rawURL string, params url.Values) (*Response, error) {
	req := d.rc.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParamsFromValues(params)
	}

	res, err := req.Get(rawURL)
	if err != nil {
		return nil, err
	}

	requestURL := rawURL
	if res.Request != nil && res.Request.RawRequest != nil {
		requestURL = res.Request.RawRequest.URL.String()
	}
	metrics.ObserveHTTPRequest(res.StatusCode(), res.Time())

	return &Response{
		StatusCode: res.StatusCode(),
		Status:     res.Status(),
		Body:       res.Body(),
		Headers:    res.Header(),
		URL:        requestURL,
		Duration:   res.Time(),
	}, nil
}
