package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payoutrecon/internal/config"
)

const pageOne = `{"data":{"orders":{"pageInfo":{"hasNextPage":true,"endCursor":"c1"},"edges":[
 {"node":{"id":"gid://shopify/Order/1","name":"#1001","sourceName":"web","createdAt":"2024-03-10T15:00:00Z",
  "processedAt":"2024-03-10T15:00:01Z","displayFinancialStatus":"PARTIALLY_REFUNDED",
  "totalPriceSet":{"presentmentMoney":{"amount":"108.00","currencyCode":"USD"}},
  "subtotalPriceSet":{"presentmentMoney":{"amount":"100.00","currencyCode":"USD"}},
  "totalTaxSet":{"presentmentMoney":{"amount":"8.00","currencyCode":"USD"}},
  "totalRefundedSet":{"presentmentMoney":{"amount":"20.00","currencyCode":"USD"}},
  "totalDiscountsSet":null,
  "transactions":[
   {"id":"t1","kind":"SALE","gateway":"shopify_payments","status":"SUCCESS","createdAt":"2024-03-10T15:00:00Z",
    "processedAt":"2024-03-10T15:00:00Z","test":false,"amountSet":{"presentmentMoney":{"amount":"108.00","currencyCode":"USD"}}},
   {"id":"t2","kind":"REFUND","gateway":"shopify_payments","status":"SUCCESS","createdAt":"2024-03-12T10:00:00Z",
    "processedAt":"2024-03-12T10:00:00Z","test":false,"amountSet":{"presentmentMoney":{"amount":"20.00","currencyCode":"USD"}}}],
  "refunds":[{"id":"r1","createdAt":"2024-03-12T10:00:00Z","note":"damaged",
   "totalRefundedSet":{"presentmentMoney":{"amount":"20.00","currencyCode":"USD"}},
   "refundLineItems":{"nodes":[{"id":"rli1","quantity":1,"subtotalSet":{"presentmentMoney":{"amount":"20.00","currencyCode":"USD"}}}]},
   "transactions":{"nodes":[{"id":"t2","kind":"REFUND","gateway":"shopify_payments","status":"SUCCESS",
    "processedAt":"2024-03-12T10:00:00Z","amountSet":{"presentmentMoney":{"amount":"20.00","currencyCode":"USD"}}}]}}]}}]}}}`

const pageTwo = `{"data":{"orders":{"pageInfo":{"hasNextPage":false,"endCursor":null},"edges":[
 {"node":{"id":"gid://shopify/Order/1","name":"#1001","createdAt":"2024-03-10T15:00:00Z"}},
 {"node":{"id":"gid://shopify/Order/2","name":"#1002","createdAt":"2024-03-10T16:00:00Z",
  "retailLocation":{"id":"gid://shopify/Location/1","name":"Main Street"},
  "totalPriceSet":{"presentmentMoney":{"amount":"15.50","currencyCode":"USD"}},"transactions":[],"refunds":[]}}]}}}`

func testClient(t *testing.T, srv *httptest.Server, retries int) *Client {
	t.Helper()
	return NewClient(Options{
		Endpoint:   srv.URL,
		Token:      "shpat_test",
		PageSize:   2,
		MaxRetries: retries,
		Backoff:    time.Millisecond,
		HTTPClient: srv.Client(),
	}, nil)
}

func TestClient_FetchOrders(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))

		var req graphQLRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "created_at:>=2024-03-09T00:00:00Z AND created_at:<=2024-03-11T23:59:59Z", req.Variables["queryString"])
		assert.EqualValues(t, 2, req.Variables["first"])

		switch n {
		case 1:
			assert.Nil(t, req.Variables["cursor"])
			w.Header().Set("Retry-After", "0.001")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"errors":"Throttled"}`)
		case 2:
			fmt.Fprint(w, pageOne)
		default:
			assert.Equal(t, "c1", req.Variables["cursor"])
			fmt.Fprint(w, pageTwo)
		}
	}))
	defer srv.Close()

	start := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 11, 23, 59, 59, 0, time.UTC)
	orders, err := testClient(t, srv, 2).FetchOrders(context.Background(), start, end)
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	require.Len(t, orders, 2, "duplicate order ids are dropped")

	o := orders[0]
	assert.Equal(t, "#1001", o.Name)
	assert.Equal(t, "web", o.SourceLocation())
	assert.Equal(t, "108", o.TotalPrice.String())
	assert.Equal(t, "100", o.Subtotal.String())
	assert.Equal(t, "20", o.TotalRefunded.String())
	assert.True(t, o.TotalDiscounts.IsZero())
	require.Len(t, o.Transactions, 2)
	assert.Equal(t, "REFUND", o.Transactions[1].Kind)
	require.Len(t, o.Refunds, 1)
	assert.Equal(t, "20", o.Refunds[0].Total.String())
	assert.Equal(t, "damaged", o.Refunds[0].Note)
	require.Len(t, o.Refunds[0].LineItems, 1)
	require.Len(t, o.Refunds[0].Transactions, 1)

	assert.Equal(t, "Main Street", orders[1].SourceLocation())
	assert.Equal(t, "15.5", orders[1].TotalPrice.String())
}

func TestOrderNode_PresentmentMoney(t *testing.T) {
	assert.NotContains(t, ordersQuery, "shopMoney")

	const node = `{"id":"gid://shopify/Order/9","name":"#9",
  "totalPriceSet":{"shopMoney":{"amount":"73.10","currencyCode":"EUR"},"presentmentMoney":{"amount":"80.00","currencyCode":"USD"}},
  "totalRefundedSet":{"shopMoney":{"amount":"9.14","currencyCode":"EUR"},"presentmentMoney":{"amount":"10.00","currencyCode":"USD"}},
  "transactions":[{"id":"t9","kind":"SALE","gateway":"shopify_payments","status":"SUCCESS",
    "amountSet":{"shopMoney":{"amount":"73.10","currencyCode":"EUR"},"presentmentMoney":{"amount":"80.00","currencyCode":"USD"}}}],
  "refunds":[{"id":"r9","totalRefundedSet":{"shopMoney":{"amount":"9.14"},"presentmentMoney":{"amount":"10.00"}},
    "refundLineItems":{"nodes":[{"id":"li9","quantity":1,"subtotalSet":{"shopMoney":{"amount":"9.14"},"presentmentMoney":{"amount":"10.00"}}}]},
    "transactions":{"nodes":[]}}]}`

	var n orderNode
	require.NoError(t, json.Unmarshal([]byte(node), &n))
	o, err := n.toModel()
	require.NoError(t, err)

	assert.Equal(t, "80", o.TotalPrice.String())
	assert.Equal(t, "10", o.TotalRefunded.String())
	require.Len(t, o.Transactions, 1)
	assert.Equal(t, "80", o.Transactions[0].Amount.String())
	require.Len(t, o.Refunds, 1)
	assert.Equal(t, "10", o.Refunds[0].Total.String())
	assert.Equal(t, "10", o.Refunds[0].LineItems[0].Subtotal.String())
}

func TestClient_FetchOrders_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		retries int
		check   func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized is not retried",
			status: http.StatusUnauthorized,
			body:   `{"errors":"Invalid API key"}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
				assert.False(t, apiErr.Retryable())
			},
		},
		{
			name:    "server error after retries",
			status:  http.StatusBadGateway,
			body:    "bad gateway",
			retries: 1,
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "orders page 1: shopify api: status 502: bad gateway")
			},
		},
		{
			name:   "graphql errors",
			status: http.StatusOK,
			body:   `{"errors":[{"message":"Field 'foo' doesn't exist"}]}`,
			check: func(t *testing.T, err error) {
				var gqlErr *GraphQLError
				require.True(t, errors.As(err, &gqlErr))
				assert.Equal(t, []string{"Field 'foo' doesn't exist"}, gqlErr.Messages)
				assert.False(t, gqlErr.Throttled())
			},
		},
		{
			name:   "bad money",
			status: http.StatusOK,
			body: `{"data":{"orders":{"pageInfo":{"hasNextPage":false},"edges":[{"node":{"id":"1","name":"#1",
				"totalPriceSet":{"presentmentMoney":{"amount":"abc"}}}}]}}}`,
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, `order #1 totalPriceSet: invalid money amount "abc"`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			orders, err := testClient(t, srv, tt.retries).FetchOrders(context.Background(), time.Now(), time.Now())
			assert.Nil(t, orders)
			require.Error(t, err)
			tt.check(t, err)
			assert.EqualValues(t, tt.retries+1, atomic.LoadInt32(&calls))
		})
	}
}

func TestClient_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Options{Endpoint: srv.URL, MaxRetries: 3, Backoff: time.Hour, HTTPClient: srv.Client()}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.FetchOrders(ctx, time.Now(), time.Now())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGraphQLError_Throttled(t *testing.T) {
	e := newGraphQLError([]graphQLErrorItem{{Message: "Throttled"}})
	e.Codes[0] = "THROTTLED"
	assert.True(t, e.Throttled())
	assert.True(t, retryable(e))
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.ShopifyConfig{
		Store:       "acme",
		Token:       "tok",
		APIVersion:  "2024-10",
		PageSize:    100,
		PageDelayMS: 250,
		MaxRetries:  4,
		TimeoutSec:  10,
	})
	assert.Equal(t, "https://acme.myshopify.com/admin/api/2024-10/graphql.json", opts.Endpoint)
	assert.Equal(t, 250*time.Millisecond, opts.PageDelay)
	assert.Equal(t, 10*time.Second, opts.Timeout)
	assert.Equal(t, 4, opts.MaxRetries)
}
