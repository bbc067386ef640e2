// Package shopify reads orders from the Shopify Admin GraphQL API.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"payoutrecon/internal/config"
	"payoutrecon/internal/model"
)

const maxBodyBytes = 64 << 20

// Options configures a Client.
type Options struct {
	Endpoint   string
	Token      string
	PageSize   int
	PageDelay  time.Duration
	MaxRetries int
	Timeout    time.Duration
	// Backoff is the first retry delay; it doubles on every attempt.
	Backoff    time.Duration
	HTTPClient *http.Client
}

// OptionsFromConfig maps the environment configuration to client options.
func OptionsFromConfig(c config.ShopifyConfig) Options {
	return Options{
		Endpoint:   c.Endpoint(),
		Token:      c.Token,
		PageSize:   c.PageSize,
		PageDelay:  time.Duration(c.PageDelayMS) * time.Millisecond,
		MaxRetries: c.MaxRetries,
		Timeout:    time.Duration(c.TimeoutSec) * time.Second,
	}
}

// Client fetches orders page by page.
type Client struct {
	opts Options
	http *http.Client
	log  *zap.Logger
}

// NewClient returns a client. Without an explicit HTTP client every request
// goes through an otelhttp transport.
func NewClient(opts Options, log *zap.Logger) *Client {
	if opts.PageSize <= 0 || opts.PageSize > 250 {
		opts.PageSize = 250
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{opts: opts, http: hc, log: log.With(zap.String("component", "shopify"))}
}

// QueryString is the orders search filter for a creation window.
func QueryString(start, end time.Time) string {
	return fmt.Sprintf("created_at:>=%s AND created_at:<=%s",
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
}

// FetchOrders returns every order created between start and end, each once.
func (c *Client) FetchOrders(ctx context.Context, start, end time.Time) ([]model.Order, error) {
	vars := map[string]any{
		"first":       c.opts.PageSize,
		"queryString": QueryString(start, end),
	}
	seen := make(map[string]struct{})
	var orders []model.Order

	for page := 1; ; page++ {
		resp, err := c.post(ctx, graphQLRequest{Query: ordersQuery, Variables: vars})
		if err != nil {
			return nil, fmt.Errorf("orders page %d: %w", page, err)
		}

		conn := resp.Data.Orders
		added := 0
		for _, e := range conn.Edges {
			if _, dup := seen[e.Node.ID]; dup {
				continue
			}
			seen[e.Node.ID] = struct{}{}
			o, err := e.Node.toModel()
			if err != nil {
				return nil, err
			}
			orders = append(orders, o)
			added++
		}
		c.log.Debug("orders page fetched",
			zap.String("event", "orders_page"),
			zap.Int("page", page),
			zap.Int("orders", added),
		)

		if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == "" {
			c.log.Info("orders fetched",
				zap.String("event", "orders_fetched"),
				zap.Int("pages", page),
				zap.Int("orders", len(orders)),
				zap.Time("start", start),
				zap.Time("end", end),
			)
			return orders, nil
		}
		vars["cursor"] = conn.PageInfo.EndCursor
		if err := sleep(ctx, c.opts.PageDelay); err != nil {
			return nil, err
		}
	}
}

func (c *Client) post(ctx context.Context, body graphQLRequest) (*ordersResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode graphql request: %w", err)
	}

	var lastErr error
	wait := c.opts.Backoff
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			c.log.Warn("retrying shopify request",
				zap.String("event", "request_retry"),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(lastErr),
			)
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
			wait *= 2
		}

		resp, retryAfter, err := c.once(ctx, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
		if retryAfter > 0 {
			wait = retryAfter
		}
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, payload []byte) (*ordersResponse, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.opts.Token)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("post graphql: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, retryAfter(res.Header.Get("Retry-After")), &APIError{StatusCode: res.StatusCode, Body: truncate(string(data), 512)}
	}

	out, err := decodeOrders(data)
	if err != nil {
		return nil, 0, err
	}
	if len(out.Errors) > 0 {
		return nil, 0, newGraphQLError(out.Errors)
	}
	return out, 0, nil
}

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	var gqlErr *GraphQLError
	if errors.As(err, &gqlErr) {
		return gqlErr.Throttled()
	}
	return false
}

func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
