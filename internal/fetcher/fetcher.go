// Package fetcher issues seeding requests against the WMS endpoint that
// sits behind the tile cache.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jaennil/guide_helper/backend/seeder/pkg/logger"
	"github.com/jaennil/guide_helper/backend/seeder/pkg/metrics"
	"github.com/jaennil/guide_helper/backend/seeder/pkg/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const defaultUserAgent = "GuideHelperSeeder/1.0 (https://github.com/jaennil/guide_helper)"

var (
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrNoEndpoint       = errors.New("no endpoint given")
)

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("endpoint returned status %s", e.Status)
}

func (e *StatusError) StatusCode() int {
	return e.Code
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

type Config struct {
	Timeout   time.Duration
	UserAgent string
}

// HTTPFetcher is shared by every run; each run passes its own endpoint.
type HTTPFetcher struct {
	userAgent  string
	httpClient *http.Client
	logger     logger.Logger
}

func NewHTTPFetcher(cfg Config, l logger.Logger) *HTTPFetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &HTTPFetcher{
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: l,
	}
}

// URL joins an endpoint and a request descriptor.
func URL(endpoint, descriptor string) string {
	endpoint = strings.TrimRight(endpoint, "?")
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + descriptor
}

// Fetch requests one tile from endpoint. The body is read and discarded:
// the point is to make the cache in front of the endpoint store it.
func (f *HTTPFetcher) Fetch(ctx context.Context, endpoint, descriptor string) error {
	if endpoint == "" {
		return ErrNoEndpoint
	}
	target := URL(endpoint, descriptor)

	ctx, span := telemetry.Tracer().Start(ctx, "seeder.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(http.MethodGet),
			semconv.URLFull(target),
		),
	)
	defer span.End()

	start := time.Now()
	status, size, err := f.do(ctx, target)
	duration := time.Since(start)

	if err != nil {
		metrics.RequestDuration.WithLabelValues(metrics.StatusFailure).Observe(duration.Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if status != 0 {
			span.SetAttributes(semconv.HTTPResponseStatusCode(status))
		}
		f.logger.Debug("fetch failed", "url", target, "duration", duration, "error", err)
		return err
	}

	metrics.RequestDuration.WithLabelValues(metrics.StatusSuccess).Observe(duration.Seconds())
	span.SetAttributes(
		semconv.HTTPResponseStatusCode(status),
		attribute.Int64("http.response.size", size),
	)
	span.SetStatus(codes.Ok, "")
	f.logger.Debug("fetched tile", "url", target, "status", status, "size", size, "duration", duration)

	return nil
}

func (f *HTTPFetcher) do(ctx context.Context, target string) (int, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch tile: %w", err)
	}
	defer resp.Body.Close()

	size, err := io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, size, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	if err != nil {
		return resp.StatusCode, size, fmt.Errorf("failed to read tile data: %w", err)
	}

	return resp.StatusCode, size, nil
}
