package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"commodity_go/internal/domain"
	"commodity_go/internal/event"
	"commodity_go/internal/infra"

	"github.com/shopspring/decimal"
)

// Orders submits and cancels orders and keeps the displayed orders list in
// sync. It never mutates an order locally: after any action that could
// change server state it re-fetches the authoritative list plus one
// immediate book refresh, so the user sees the effect of their own action
// without waiting for the next poll tick.
type Orders struct {
	api      domain.ExchangeAPI
	catalog  *Catalog
	poller   *Poller
	bus      *event.Dispatcher
	seq      *uint64
	notifier *Notifier
	logger   *slog.Logger

	mu     sync.RWMutex
	orders []domain.Order
}

// NewOrders creates the order lifecycle controller.
func NewOrders(api domain.ExchangeAPI, catalog *Catalog, poller *Poller, bus *event.Dispatcher, seq *uint64, notifier *Notifier) *Orders {
	return &Orders{
		api:      api,
		catalog:  catalog,
		poller:   poller,
		bus:      bus,
		seq:      seq,
		notifier: notifier,
		logger:   slog.Default().With("module", "orders"),
	}
}

// Refresh re-fetches the orders list and publishes it with symbol
// decoration.
func (o *Orders) Refresh(ctx context.Context) error {
	list, err := o.api.ListOrders(ctx)
	if err != nil {
		o.notifier.Errorf("Error fetching orders: %s", err)
		return fmt.Errorf("refresh orders: %w", err)
	}

	o.mu.Lock()
	o.orders = list
	o.mu.Unlock()

	rows := make([]event.OrderRow, 0, len(list))
	for _, ord := range list {
		rows = append(rows, event.OrderRow{
			Order:  ord,
			Symbol: o.catalog.Lookup(ord.CommodityID).Symbol,
		})
	}
	o.bus.Publish(event.OrdersUpdate{BaseEvent: event.NewBase(o.seq), Rows: rows})
	return nil
}

// Orders returns a copy of the last fetched list.
func (o *Orders) Orders() []domain.Order {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]domain.Order, len(o.orders))
	copy(out, o.orders)
	return out
}

// Submit places an order against the currently selected instrument. On
// success it reports any immediate matches, then triggers the dual refresh.
// On failure no local state changes and the backend message is surfaced
// verbatim.
func (o *Orders) Submit(ctx context.Context, orderType string, price, quantity decimal.Decimal) (*domain.OrderResult, error) {
	commodityID := o.poller.Selected()
	if commodityID == 0 {
		o.notifier.Errorf("Please select a commodity first")
		return nil, &domain.ValidationError{Field: "instrument", Reason: "none selected"}
	}
	if !domain.ValidOrderType(orderType) {
		return nil, &domain.ValidationError{Field: "order_type", Reason: "must be buy or sell"}
	}
	if !price.IsPositive() {
		return nil, &domain.ValidationError{Field: "price", Reason: "must be greater than zero"}
	}
	if !quantity.IsPositive() {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}

	res, err := o.api.CreateOrder(ctx, commodityID, orderType, price, quantity)
	if err != nil {
		o.notifier.Errorf("Failed to place order: %s", err)
		return nil, err
	}

	infra.GlobalMetrics.RecordOrderSubmitted()
	o.notifier.Successf("Order placed successfully!")
	if n := len(res.Trades); n > 0 {
		o.notifier.Successf("Order matched with %d existing order(s)!", n)
	}

	o.dualRefresh(ctx)
	return res, nil
}

// Cancel cancels a resting order. The local list is untouched until the
// follow-up refresh reports the order's true status.
func (o *Orders) Cancel(ctx context.Context, orderID int64) error {
	if err := o.api.CancelOrder(ctx, orderID); err != nil {
		o.notifier.Errorf("Failed to cancel order: %s", err)
		return err
	}

	infra.GlobalMetrics.RecordOrderCancelled()
	o.notifier.Successf("Order cancelled successfully")
	o.dualRefresh(ctx)
	return nil
}

func (o *Orders) dualRefresh(ctx context.Context) {
	if err := o.Refresh(ctx); err != nil {
		o.logger.Warn("orders refresh failed", slog.Any("error", err))
	}
	o.poller.RefreshNow(ctx)
}

// RefreshTrades fetches the trade history on demand.
func (o *Orders) RefreshTrades(ctx context.Context) ([]domain.Trade, error) {
	trades, err := o.api.ListTrades(ctx)
	if err != nil {
		o.notifier.Errorf("Error fetching trades: %s", err)
		return nil, fmt.Errorf("refresh trades: %w", err)
	}
	o.bus.Publish(event.TradesUpdate{BaseEvent: event.NewBase(o.seq), Trades: trades})
	return trades, nil
}
