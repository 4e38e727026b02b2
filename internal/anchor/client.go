package anchor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lexara/internal/platform/config"
	"lexara/pkg/platform/circuit"
	dErrors "lexara/pkg/domain-errors"
)

var (
	anchorSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexara_anchor_submissions_total",
		Help: "Total anchor submissions by label and outcome",
	}, []string{"label", "outcome"})

	anchorRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lexara_anchor_retries_total",
		Help: "Total anchor submission retries after transient failures",
	})

	anchorDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lexara_anchor_duration_seconds",
		Help:    "End-to-end anchor submission latency including retries",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient submits anchor payloads to an HTTP anchoring endpoint with
// bounded retries and a circuit breaker. Transient failures (network errors,
// 5xx) are retried with exponential backoff up to MaxAttempts; 4xx responses
// are treated as permanent rejections and abort immediately.
type HTTPClient struct {
	baseURL     string
	apiKey      string
	httpClient  HTTPDoer
	timeout     time.Duration
	maxAttempts int
	backoffBase time.Duration
	breaker     *circuit.Breaker
	tracer      trace.Tracer
	logger      *slog.Logger
}

// Option configures the HTTPClient.
type Option func(*HTTPClient)

// WithHTTPDoer injects a custom HTTP client, primarily for tests.
func WithHTTPDoer(doer HTTPDoer) Option {
	return func(c *HTTPClient) {
		c.httpClient = doer
	}
}

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

// WithTracer injects a pre-configured OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *HTTPClient) {
		c.tracer = tracer
	}
}

// WithBreaker replaces the default circuit breaker, primarily so tests can
// control its cooldown and clock.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *HTTPClient) {
		if b != nil {
			c.breaker = b
		}
	}
}

// NewHTTPClient creates an anchoring client from configuration.
func NewHTTPClient(cfg config.Anchor, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		timeout:     cfg.Timeout,
		maxAttempts: cfg.MaxAttempts,
		backoffBase: cfg.BackoffBase,
		breaker:     circuit.New("anchor"),
	}
	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = 3
	}
	if c.backoffBase <= 0 {
		c.backoffBase = 200 * time.Millisecond
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("lexara/anchor")
	}
	return c
}

type submitRequest struct {
	Payload   json.RawMessage   `json:"payload"`
	Algorithm string            `json:"algorithm"`
	Label     string            `json:"label"`
	Size      int               `json:"size"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type submitResponse struct {
	TxID string `json:"tx_id"`
}

// Submit anchors the payload and returns the transaction ID.
func (c *HTTPClient) Submit(ctx context.Context, sub Submission) (string, error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "anchor.submit", trace.WithAttributes(
		attribute.String("anchor.label", sub.Label),
		attribute.Int("anchor.size", sub.Size),
	))

	txID, err := c.submit(ctx, sub)

	anchorDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		anchorSubmissionsTotal.WithLabelValues(sub.Label, "failure").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		anchorSubmissionsTotal.WithLabelValues(sub.Label, "success").Inc()
		span.SetAttributes(attribute.String("anchor.tx_id", txID))
	}
	span.End()
	return txID, err
}

func (c *HTTPClient) submit(ctx context.Context, sub Submission) (string, error) {
	if !c.breaker.Allow() {
		return "", dErrors.Wrap(ErrUnavailable, dErrors.CodeAnchorUnavailable, "anchor circuit open")
	}

	body, err := json.Marshal(submitRequest{
		Payload:   sub.PayloadJSON,
		Algorithm: sub.Algorithm,
		Label:     sub.Label,
		Size:      sub.Size,
		Metadata:  sub.Metadata,
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "marshal anchor request")
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			anchorRetriesTotal.Inc()
			backoff := c.backoffBase << (attempt - 1)
			select {
			case <-ctx.Done():
				return "", dErrors.Wrap(ctx.Err(), dErrors.CodeAnchorUnavailable, "anchor submission cancelled")
			case <-time.After(backoff):
			}
		}

		txID, retryable, err := c.attempt(ctx, body)
		if err == nil {
			if _, change := c.breaker.RecordSuccess(); change.Closed && c.logger != nil {
				c.logger.Info("anchor circuit closed")
			}
			return txID, nil
		}
		lastErr = err

		if _, change := c.breaker.RecordFailure(); change.Opened && c.logger != nil {
			c.logger.Warn("anchor circuit opened", "error", err)
		}
		if !retryable {
			break
		}
		if c.logger != nil {
			c.logger.Warn("anchor submission attempt failed",
				"attempt", attempt+1,
				"max_attempts", c.maxAttempts,
				"error", err,
			)
		}
	}

	return "", dErrors.Wrap(lastErr, dErrors.CodeAnchorUnavailable, "anchor submission failed")
}

// attempt performs one HTTP round trip. The second return value reports
// whether the failure is transient.
func (c *HTTPClient) attempt(ctx context.Context, body []byte) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + "/anchors"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", true, err
	}

	switch {
	case resp.StatusCode >= 500:
		return "", true, fmt.Errorf("anchor endpoint returned %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return "", false, fmt.Errorf("anchor submission rejected with %d", resp.StatusCode)
	}

	var parsed submitResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", false, fmt.Errorf("decode anchor response: %w", err)
	}
	if parsed.TxID == "" {
		return "", false, fmt.Errorf("anchor response missing tx_id")
	}
	return parsed.TxID, false, nil
}
