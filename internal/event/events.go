package event

import (
	"sync/atomic"
	"time"

	"commodity_go/internal/domain"
)

// Event is anything the core emits for the presentation layer: replaced
// snapshots, refreshed lists and user-facing notices.
type Event interface {
	EventSeq() uint64
}

// BaseEvent carries the monotonic sequence number and emission time.
type BaseEvent struct {
	Seq uint64
	At  time.Time
}

func (e BaseEvent) EventSeq() uint64 {
	return e.Seq
}

// NextSeq atomically increments and returns the shared sequence counter.
func NextSeq(seq *uint64) uint64 {
	return atomic.AddUint64(seq, 1)
}

// NewBase stamps a BaseEvent from the shared counter.
func NewBase(seq *uint64) BaseEvent {
	return BaseEvent{Seq: NextSeq(seq), At: time.Now()}
}

// BookUpdate replaces the displayed order book wholesale. A nil Book with
// CommodityID zero clears the display (instrument deselected or logout).
type BookUpdate struct {
	BaseEvent
	CommodityID int64
	Book        *domain.OrderBookSnapshot
}

// CatalogUpdate replaces the instrument list.
type CatalogUpdate struct {
	BaseEvent
	Commodities []domain.Commodity
}

// OrderRow is an order decorated with its instrument symbol for display.
type OrderRow struct {
	domain.Order
	Symbol string
}

// OrdersUpdate replaces the displayed orders table.
type OrdersUpdate struct {
	BaseEvent
	Rows []OrderRow
}

// TradesUpdate replaces the displayed trades table.
type TradesUpdate struct {
	BaseEvent
	Trades []domain.Trade
}

// SessionUpdate announces a session state transition.
type SessionUpdate struct {
	BaseEvent
	State        string
	CustomerName string
}

// Notice levels.
const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// Notice is a user-facing toast. Presentation decides how to render it.
type Notice struct {
	BaseEvent
	Level   string
	Message string
}
