package shopify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"payoutrecon/internal/model"
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLErrorItem struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type ordersResponse struct {
	Data struct {
		Orders struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Edges []struct {
				Node orderNode `json:"node"`
			} `json:"edges"`
		} `json:"orders"`
	} `json:"data"`
	Errors []graphQLErrorItem `json:"errors"`
}

type money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// moneyBag is a MoneyBag. Amounts are always read in the presentment currency.
type moneyBag struct {
	PresentmentMoney *money `json:"presentmentMoney"`
}

func (b *moneyBag) decimal() (decimal.Decimal, error) {
	if b == nil {
		return decimal.Zero, nil
	}
	m := b.PresentmentMoney
	if m == nil || m.Amount == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid money amount %q", m.Amount)
	}
	return d, nil
}

type transactionNode struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Gateway     string    `json:"gateway"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	ProcessedAt time.Time `json:"processedAt"`
	Test        bool      `json:"test"`
	AmountSet   *moneyBag `json:"amountSet"`
}

func (t transactionNode) toModel() (model.Transaction, error) {
	amount, err := t.AmountSet.decimal()
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	return model.Transaction{
		ID:          t.ID,
		Kind:        t.Kind,
		Gateway:     t.Gateway,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		ProcessedAt: t.ProcessedAt,
		Test:        t.Test,
		Amount:      amount,
	}, nil
}

type refundNode struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"createdAt"`
	Note             string    `json:"note"`
	TotalRefundedSet *moneyBag `json:"totalRefundedSet"`
	RefundLineItems  struct {
		Nodes []struct {
			ID          string    `json:"id"`
			Quantity    int       `json:"quantity"`
			SubtotalSet *moneyBag `json:"subtotalSet"`
		} `json:"nodes"`
	} `json:"refundLineItems"`
	Transactions struct {
		Nodes []transactionNode `json:"nodes"`
	} `json:"transactions"`
}

type orderNode struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	SourceName     string `json:"sourceName"`
	RetailLocation *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"retailLocation"`
	CreatedAt                time.Time         `json:"createdAt"`
	ProcessedAt              time.Time         `json:"processedAt"`
	DisplayFinancialStatus   string            `json:"displayFinancialStatus"`
	DisplayFulfillmentStatus string            `json:"displayFulfillmentStatus"`
	CurrencyCode             string            `json:"currencyCode"`
	TotalPriceSet            *moneyBag         `json:"totalPriceSet"`
	TotalTaxSet              *moneyBag         `json:"totalTaxSet"`
	TotalShippingPriceSet    *moneyBag         `json:"totalShippingPriceSet"`
	TotalRefundedSet         *moneyBag         `json:"totalRefundedSet"`
	SubtotalPriceSet         *moneyBag         `json:"subtotalPriceSet"`
	TotalTipReceivedSet      *moneyBag         `json:"totalTipReceivedSet"`
	TotalReceivedSet         *moneyBag         `json:"totalReceivedSet"`
	TotalDiscountsSet        *moneyBag         `json:"totalDiscountsSet"`
	NetPaymentSet            *moneyBag         `json:"netPaymentSet"`
	TotalOutstandingSet      *moneyBag         `json:"totalOutstandingSet"`
	Transactions             []transactionNode `json:"transactions"`
	Refunds                  []refundNode      `json:"refunds"`
}

func (n orderNode) toModel() (model.Order, error) {
	o := model.Order{
		ID:                n.ID,
		Name:              n.Name,
		SourceName:        n.SourceName,
		CreatedAt:         n.CreatedAt,
		ProcessedAt:       n.ProcessedAt,
		FinancialStatus:   n.DisplayFinancialStatus,
		FulfillmentStatus: n.DisplayFulfillmentStatus,
		Currency:          n.CurrencyCode,
	}
	if n.RetailLocation != nil {
		o.RetailLocation = n.RetailLocation.Name
	}

	amounts := []struct {
		dst *decimal.Decimal
		src *moneyBag
		key string
	}{
		{&o.Subtotal, n.SubtotalPriceSet, "subtotalPriceSet"},
		{&o.TotalPrice, n.TotalPriceSet, "totalPriceSet"},
		{&o.TotalTax, n.TotalTaxSet, "totalTaxSet"},
		{&o.TotalShipping, n.TotalShippingPriceSet, "totalShippingPriceSet"},
		{&o.TotalTips, n.TotalTipReceivedSet, "totalTipReceivedSet"},
		{&o.TotalDiscounts, n.TotalDiscountsSet, "totalDiscountsSet"},
		{&o.TotalRefunded, n.TotalRefundedSet, "totalRefundedSet"},
		{&o.TotalReceived, n.TotalReceivedSet, "totalReceivedSet"},
		{&o.NetPayment, n.NetPaymentSet, "netPaymentSet"},
		{&o.TotalOutstanding, n.TotalOutstandingSet, "totalOutstandingSet"},
	}
	for _, a := range amounts {
		v, err := a.src.decimal()
		if err != nil {
			return o, fmt.Errorf("order %s %s: %w", n.Name, a.key, err)
		}
		*a.dst = v
	}

	for _, t := range n.Transactions {
		tx, err := t.toModel()
		if err != nil {
			return o, fmt.Errorf("order %s: %w", n.Name, err)
		}
		o.Transactions = append(o.Transactions, tx)
	}

	for _, r := range n.Refunds {
		total, err := r.TotalRefundedSet.decimal()
		if err != nil {
			return o, fmt.Errorf("order %s refund %s: %w", n.Name, r.ID, err)
		}
		ref := model.Refund{ID: r.ID, CreatedAt: r.CreatedAt, Note: r.Note, Total: total}
		for _, li := range r.RefundLineItems.Nodes {
			sub, err := li.SubtotalSet.decimal()
			if err != nil {
				return o, fmt.Errorf("order %s refund %s: %w", n.Name, r.ID, err)
			}
			ref.LineItems = append(ref.LineItems, model.RefundLineItem{ID: li.ID, Quantity: li.Quantity, Subtotal: sub})
		}
		for _, t := range r.Transactions.Nodes {
			tx, err := t.toModel()
			if err != nil {
				return o, fmt.Errorf("order %s refund %s: %w", n.Name, r.ID, err)
			}
			ref.Transactions = append(ref.Transactions, tx)
		}
		o.Refunds = append(o.Refunds, ref)
	}
	return o, nil
}

func decodeOrders(data []byte) (*ordersResponse, error) {
	var resp ordersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}
	return &resp, nil
}
