package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"commodity_go/internal/domain"
	"commodity_go/internal/event"
	"commodity_go/internal/infra"
)

// Poller owns the single active order book polling cycle. At most one timer
// exists system-wide: selecting an instrument cancels the previous cycle
// before arming the next one, and every fetched snapshot carries the
// generation it was issued under so replies that outlive their selection are
// discarded instead of overwriting a newer instrument's book.
type Poller struct {
	api      domain.ExchangeAPI
	bus      *event.Dispatcher
	seq      *uint64
	interval time.Duration
	logger   *slog.Logger

	mu         sync.Mutex
	generation uint64 // bumped on every select/deselect/teardown
	selected   int64  // 0 = idle
	cancel     context.CancelFunc
	book       *domain.OrderBookSnapshot
	wg         sync.WaitGroup
}

// NewPoller creates an idle poller.
func NewPoller(api domain.ExchangeAPI, bus *event.Dispatcher, seq *uint64, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		api:      api,
		bus:      bus,
		seq:      seq,
		interval: interval,
		logger:   slog.Default().With("module", "poller"),
	}
}

// Select retargets the polling cycle to commodityID. The previous cycle's
// timer is cancelled before the new one is armed, an immediate refresh is
// issued, and the recurring timer follows.
func (p *Poller) Select(ctx context.Context, commodityID int64) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.generation++
	gen := p.generation
	p.selected = commodityID

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	infra.GlobalMetrics.SetPolling(true)
	go p.run(runCtx, gen, commodityID)
}

// Deselect cancels any active cycle and clears the rendered book.
func (p *Poller) Deselect() {
	p.clear()
	p.bus.Publish(event.BookUpdate{BaseEvent: event.NewBase(p.seq)})
}

// Teardown unconditionally stops polling and waits for the poll goroutine
// to exit, so no further request is issued once it returns. Called on
// logout before the credential is cleared.
func (p *Poller) Teardown() {
	p.clear()
	p.wg.Wait()
}

func (p *Poller) clear() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.generation++
	p.selected = 0
	p.book = nil
	p.mu.Unlock()
	infra.GlobalMetrics.SetPolling(false)
}

// Selected returns the currently polled instrument id, 0 when idle.
func (p *Poller) Selected() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// Snapshot returns the latest applied book, nil when idle or not yet fetched.
func (p *Poller) Snapshot() *domain.OrderBookSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.book
}

// RefreshNow issues one immediate fetch outside the recurring timer, so a
// user action's effect is visible without waiting for the next tick.
func (p *Poller) RefreshNow(ctx context.Context) {
	p.mu.Lock()
	gen, id := p.generation, p.selected
	p.mu.Unlock()
	if id == 0 {
		return
	}
	p.fetch(ctx, gen, id)
}

// run is the polling cycle: one immediate fetch, then a fixed-interval
// ticker until the cycle's context is cancelled. Fetches are issued
// serially from this goroutine, so snapshot application within one
// generation follows fetch-completion order by construction.
func (p *Poller) run(ctx context.Context, gen uint64, commodityID int64) {
	defer p.wg.Done()

	p.fetch(ctx, gen, commodityID)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.current(gen) {
				// Timer fired after deselection, before cancellation
				// was observed.
				return
			}
			infra.GlobalMetrics.RecordPollTick()
			p.fetch(ctx, gen, commodityID)
		}
	}
}

func (p *Poller) current(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return gen == p.generation
}

// fetch retrieves one snapshot and applies it under the generation guard.
// A failed fetch is logged and the previous snapshot stays displayed; the
// recurring timer keeps running.
func (p *Poller) fetch(ctx context.Context, gen uint64, commodityID int64) {
	snap, err := p.api.GetOrderBook(ctx, commodityID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("order book fetch failed",
			slog.Int64("commodity_id", commodityID),
			slog.Any("error", err),
		)
		return
	}
	p.apply(gen, snap)
}

// apply replaces the book wholesale, unless the snapshot belongs to a
// superseded generation, in which case it is discarded.
func (p *Poller) apply(gen uint64, snap *domain.OrderBookSnapshot) {
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		infra.GlobalMetrics.RecordStaleDiscarded()
		p.logger.Debug("stale snapshot discarded", slog.Int64("commodity_id", snap.CommodityID))
		return
	}
	p.book = snap
	p.mu.Unlock()

	p.bus.Publish(event.BookUpdate{
		BaseEvent:   event.NewBase(p.seq),
		CommodityID: snap.CommodityID,
		Book:        snap,
	})
}
