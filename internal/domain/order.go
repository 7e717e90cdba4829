package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a resting or executed order. The client never mutates an order
// locally; fills and status changes come only from the backend, and the
// authoritative list is re-fetched after any action that could change it.
type Order struct {
	ID             int64           `json:"id"`
	CustomerID     int64           `json:"customer_id"`
	CommodityID    int64           `json:"commodity_id"`
	Type           string          `json:"order_type"` // "buy", "sell"
	Status         string          `json:"status"`
	Price          decimal.Decimal `json:"price"`
	Quantity       decimal.Decimal `json:"quantity"`
	FilledQuantity decimal.Decimal `json:"filled_quantity"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

const (
	OrderTypeBuy  = "buy"
	OrderTypeSell = "sell"

	OrderStatusOpen            = "open"
	OrderStatusPartiallyFilled = "partially_filled"
	OrderStatusFilled          = "filled"
	OrderStatusCancelled       = "cancelled"
)

// ValidOrderType reports whether t is a known order type.
func ValidOrderType(t string) bool {
	return t == OrderTypeBuy || t == OrderTypeSell
}

// NormalizeOrderStatus maps backend status spellings onto the canonical set.
// Older backend versions report partial fills as "partial".
func NormalizeOrderStatus(s string) string {
	if s == "partial" {
		return OrderStatusPartiallyFilled
	}
	return s
}

// IsCancellable reports whether cancellation may be offered for this order.
func (o *Order) IsCancellable() bool {
	return o.Status == OrderStatusOpen || o.Status == OrderStatusPartiallyFilled
}

// OrderResult is the backend's response to an order submission: the created
// order plus any trades executed immediately by matching.
type OrderResult struct {
	Order  Order   `json:"order"`
	Trades []Trade `json:"trades"`
}
