package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL     = "https://neeri.sloton.app"
	defaultUserAgent   = "salon-admin-cli"
	defaultTimeout     = 12 * time.Second
	defaultMaxAttempts = 3
	defaultRetryBase   = 200 * time.Millisecond
	defaultRetryCap    = 1200 * time.Millisecond
	errorSnippetLimit  = 8 << 10
)

const (
	csrfCookiePath        = "/sanctum/csrf-cookie"
	loginPath             = "/api/login"
	logoutPath            = "/api/logout"
	servicesForBooking    = "/api/services/forbooking"
	checkAvailabilityPath = "/api/bookings/check-availability"
	storeBookingPath      = "/api/bookings/admin"
	bookingViewPath       = "/api/localdata/booking-view"
	updateStatusPath      = "/api/localdata/update-status"
	customerSearchPath    = "/api/localdata/coussearch"
	customerViewPath      = "/api/localdata/view"
	salonTimesPath        = "/api/salon-times"
)

// Client wraps HTTP access to the salon booking backend. It is safe for
// concurrent use.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	maxAttempts int
	retryBase   time.Duration
	retryCap    time.Duration
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRateLimit spaces outgoing requests to at most perSecond, with a burst of one.
// A non-positive value disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if strings.TrimSpace(userAgent) != "" {
			c.userAgent = userAgent
		}
	}
}

// APIError is returned when the backend responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e == nil {
		return "salon api error"
	}
	return fmt.Sprintf("salon api error: %s: %s", e.Status, e.Body)
}

// IsNotFound reports whether the error represents a 404 from the API.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether the backend rejected the auth token.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

func hasStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}

// NewClient creates a new API client. If httpClient is nil, a default client
// with a cookie jar is used so the CSRF cookie survives between calls.
func NewClient(httpClient *http.Client, baseURL string, opts ...Option) *Client {
	if httpClient == nil {
		jar, _ := cookiejar.New(nil)
		httpClient = &http.Client{Timeout: defaultTimeout, Jar: jar}
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		userAgent:   defaultUserAgent,
		maxAttempts: defaultMaxAttempts,
		retryBase:   defaultRetryBase,
		retryCap:    defaultRetryCap,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type apiRequest struct {
	method   string
	endpoint string
	token    string
	csrf     string
	body     any
	// idempotent requests are retried on transient failures; writes are sent once.
	idempotent bool
}

func (c *Client) getJSON(ctx context.Context, endpoint string, token string, out any) error {
	return c.doJSON(ctx, apiRequest{
		method:     http.MethodGet,
		endpoint:   endpoint,
		token:      token,
		idempotent: true,
	}, out)
}

func (c *Client) doJSON(ctx context.Context, req apiRequest, out any) error {
	maxAttempts := c.maxAttempts
	if maxAttempts < 1 || !req.idempotent {
		maxAttempts = 1
	}

	var payload []byte
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = encoded
	}

	requestID := uuid.NewString()
	log := c.logger.With(
		zap.String("method", req.method),
		zap.String("endpoint", req.endpoint),
		zap.String("request_id", requestID),
	)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.method, req.endpoint, body)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("User-Agent", c.userAgent)
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("X-Request-Id", requestID)
		if payload != nil {
			httpReq.Header.Set("Content-Type", "application/json")
		}
		if req.token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+req.token)
		}
		if req.csrf != "" {
			httpReq.Header.Set("X-XSRF-TOKEN", req.csrf)
		}

		res, err := c.httpClient.Do(httpReq)
		if err != nil {
			if c.shouldRetryNetworkError(err) && attempt < maxAttempts {
				log.Debug("retrying after network error", zap.Int("attempt", attempt), zap.Error(err))
				if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			return fmt.Errorf("request failed: %w", err)
		}

		if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
			snippet, _ := io.ReadAll(io.LimitReader(res.Body, errorSnippetLimit))
			_ = res.Body.Close()

			apiErr := &APIError{
				StatusCode: res.StatusCode,
				Status:     res.Status,
				Endpoint:   req.endpoint,
				Body:       strings.TrimSpace(string(snippet)),
			}
			if c.shouldRetryStatus(res.StatusCode) && attempt < maxAttempts {
				log.Debug("retrying after server status", zap.Int("attempt", attempt), zap.Int("status", res.StatusCode))
				if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			log.Warn("request rejected", zap.Int("status", res.StatusCode))
			return apiErr
		}

		if out == nil {
			_, _ = io.Copy(io.Discard, res.Body)
			_ = res.Body.Close()
			return nil
		}
		dec := json.NewDecoder(res.Body)
		err = dec.Decode(out)
		_ = res.Body.Close()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode response from %s: %w", req.endpoint, err)
		}
		return nil
	}

	return errors.New("request failed after retries")
}

func (c *Client) shouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (c *Client) shouldRetryNetworkError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) waitRetry(ctx context.Context, attempt int) error {
	delay := c.retryDelay(attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := c.retryBase
	if base <= 0 {
		base = defaultRetryBase
	}
	limit := c.retryCap
	if limit <= 0 {
		limit = defaultRetryCap
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay >= limit/2 {
			return limit
		}
		delay *= 2
	}
	if delay > limit {
		return limit
	}
	return delay
}
