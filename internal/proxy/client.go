package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	apperrors "erp-bff/pkg/errors"
	"erp-bff/pkg/metrics"

	"github.com/google/uuid"
)

// Service names an upstream domain service.
type Service string

const (
	ServiceAsset    Service = "asset"
	ServiceEmployee Service = "employee"
	ServiceInvoice  Service = "invoice"
)

// Call is one outbound request. Path already includes the versioned prefix.
type Call struct {
	Service   Service
	Method    string
	Path      string
	RawQuery  string
	Body      []byte
	Token     string
	RequestID string
	Route     string
}

// Result is a completed upstream exchange, whatever its status.
type Result struct {
	Status        int
	ContentType   string
	Body          []byte
	CorrelationID string
}

func (r *Result) OK() bool {
	return r.Status >= http.StatusOK && r.Status < http.StatusMultipleChoices
}

// Client performs outbound calls under a fixed per-call time budget. It never
// retries.
type Client struct {
	http    *http.Client
	bases   map[Service]string
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
	newID   func() string
}

func NewClient(bases map[Service]string, timeout time.Duration, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		http:    &http.Client{},
		bases:   bases,
		timeout: timeout,
		metrics: m,
		logger:  logger,
		newID:   func() string { return uuid.NewString() },
	}
}

// Do sends call and buffers the response. Transport failures are returned as
// Timeout when the budget ran out and ServiceUnavailable otherwise; a non-2xx
// response is not an error.
func (c *Client) Do(ctx context.Context, call Call) (*Result, error) {
	base, ok := c.bases[call.Service]
	if !ok {
		return nil, apperrors.Internal(msgBuildRequestFailed, fmt.Errorf(msgUnknownServiceFmt, call.Service))
	}

	target := base + call.Path
	if call.RawQuery != "" {
		target += "?" + call.RawQuery
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if call.Body != nil {
		body = bytes.NewReader(call.Body)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, target, body)
	if err != nil {
		return nil, apperrors.Internal(msgBuildRequestFailed, err)
	}

	correlationID := c.newID()
	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set(headerAuthorization, bearerPrefix+call.Token)
	req.Header.Set(headerRequestID, correlationID)

	start := time.Now()
	res, err := c.http.Do(req)
	if err == nil {
		defer res.Body.Close()
		var payload []byte
		payload, err = io.ReadAll(io.LimitReader(res.Body, maxUpstreamBodyBytes))
		if err == nil {
			result := &Result{
				Status:        res.StatusCode,
				ContentType:   res.Header.Get(headerContentType),
				Body:          payload,
				CorrelationID: correlationID,
			}
			c.observe(ctx, call, req.URL, result, nil, correlationID, time.Since(start))
			return result, nil
		}
	}

	failure := classify(call.Service, err)
	c.observe(ctx, call, req.URL, nil, failure, correlationID, time.Since(start))
	return nil, failure
}

// classify maps a transport error onto the client-facing taxonomy.
func classify(service Service, err error) *apperrors.AppError {
	if isTimeout(err) {
		return apperrors.Timeout(fmt.Sprintf(msgUpstreamTimeoutFmt, service), err).WithDetails(string(service))
	}
	return apperrors.ServiceUnavailable(fmt.Sprintf(msgUpstreamUnavailableFmt, service), err).WithDetails(string(service))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) observe(ctx context.Context, call Call, u *url.URL, result *Result, failure *apperrors.AppError, correlationID string, elapsed time.Duration) {
	outcome := metrics.OutcomeOK
	level := slog.LevelInfo
	status := 0

	switch {
	case failure != nil && failure.Kind == apperrors.KindTimeout:
		outcome = metrics.OutcomeTimeout
		level = slog.LevelError
	case failure != nil:
		outcome = metrics.OutcomeUnavailable
		level = slog.LevelError
	case !result.OK():
		outcome = metrics.OutcomeBackendError
		status = result.Status
		level = slog.LevelWarn
		if result.Status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
	default:
		status = result.Status
	}

	if c.metrics != nil {
		c.metrics.ObserveUpstream(string(call.Service), call.Method, outcome, elapsed)
	}

	attrs := []slog.Attr{
		slog.String("route", call.Route),
		slog.String("service", string(call.Service)),
		slog.String("method", call.Method),
		slog.String("url", u.Scheme+"://"+u.Host+u.Path),
		slog.Int("status", status),
		slog.String("outcome", outcome),
		slog.Duration("duration", elapsed),
		slog.String("correlation_id", correlationID),
		slog.String("request_id", call.RequestID),
	}
	if failure != nil {
		attrs = append(attrs, slog.String("error", failure.Error()))
	}
	c.logger.LogAttrs(ctx, level, "upstream_call", attrs...)
}
