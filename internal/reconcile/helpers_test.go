package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"payoutrecon/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, dec(want).String(), got.String(), msgAndArgs...)
}

func ts(s string) time.Time {
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return v
}

func txn(kind, gateway, status, amount string) model.Transaction {
	return model.Transaction{Kind: kind, Gateway: gateway, Status: status, Amount: dec(amount)}
}

func paid(order, typ, date, amount, fee string) model.PayoutTransaction {
	d, _ := time.Parse("2006-01-02", date)
	return model.PayoutTransaction{
		Date:         d,
		DateOnly:     true,
		Type:         typ,
		Order:        order,
		PayoutStatus: model.PayoutStatusPaid,
		Amount:       dec(amount),
		Fee:          dec(fee),
	}
}

func cardOrder(name, created, total string) model.Order {
	return model.Order{
		ID:         "gid://shopify/Order/" + name,
		Name:       name,
		SourceName: "web",
		CreatedAt:  ts(created),
		Subtotal:   dec(total),
		TotalPrice: dec(total),
		Transactions: []model.Transaction{
			txn(model.KindSale, GatewayShopifyPayments, model.StatusSuccess, total),
		},
	}
}
