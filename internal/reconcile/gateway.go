package reconcile

import (
	"github.com/shopspring/decimal"

	"payoutrecon/internal/model"
)

// Gateways with their own columns.
const (
	GatewayShopifyPayments = "shopify_payments"
	GatewayCash            = "cash"
	GatewayManual          = "manual"
	GatewayGiftCard        = "gift_card"
	GatewayShopCash        = "shop_cash"
)

// bucket selects which GatewayTotals field a transaction lands in.
type bucket int

const (
	bucketNone bucket = iota
	bucketPayment
	bucketRefund
	bucketChange
)

// classify maps a successful transaction to payments, refunds or cash change.
// Only card-style gateways count authorizations as collected money.
func classify(gateway, kind string) bucket {
	switch kind {
	case model.KindRefund:
		return bucketRefund
	case model.KindSale:
		return bucketPayment
	case model.KindAuthorization:
		switch gateway {
		case GatewayShopifyPayments, GatewayShopCash:
			return bucketPayment
		case GatewayCash, GatewayManual, GatewayGiftCard:
			return bucketNone
		default:
			return bucketPayment
		}
	case model.KindChange:
		if gateway == GatewayCash {
			return bucketChange
		}
	}
	return bucketNone
}

func addToGateway(g *model.GatewayTotals, gateway string, amount decimal.Decimal) {
	switch gateway {
	case GatewayShopifyPayments:
		g.ShopifyPayments = g.ShopifyPayments.Add(amount)
	case GatewayCash:
		g.Cash = g.Cash.Add(amount)
	case GatewayManual:
		g.Manual = g.Manual.Add(amount)
	case GatewayGiftCard:
		g.GiftCard = g.GiftCard.Add(amount)
	case GatewayShopCash:
		g.ShopCash = g.ShopCash.Add(amount)
	default:
		g.Other = g.Other.Add(amount)
	}
}

// CategorizeTransactions splits the successful transactions of an order into
// payments, refunds and cash change per gateway.
func CategorizeTransactions(txns []model.Transaction) (payments, refunds model.GatewayTotals, change decimal.Decimal) {
	for _, t := range txns {
		if !t.Succeeded() {
			continue
		}
		switch classify(t.Gateway, t.Kind) {
		case bucketPayment:
			addToGateway(&payments, t.Gateway, t.Amount)
		case bucketRefund:
			addToGateway(&refunds, t.Gateway, t.Amount)
		case bucketChange:
			change = change.Add(t.Amount)
		}
	}
	return payments, refunds, change
}
