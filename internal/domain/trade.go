package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an execution record. Immutable and append-only from the client's
// perspective; fetched on demand.
type Trade struct {
	ID                  int64           `json:"id"`
	OrderID             int64           `json:"order_id"`
	CounterpartyOrderID int64           `json:"counterparty_order_id"`
	Price               decimal.Decimal `json:"price"`
	Quantity            decimal.Decimal `json:"quantity"`
	ExecutedAt          time.Time       `json:"executed_at"`
}
