package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"commodity_go/internal/domain"
	"commodity_go/internal/event"

	"github.com/shopspring/decimal"
)

func testBook(id int64, bid string) *domain.OrderBookSnapshot {
	return &domain.OrderBookSnapshot{
		CommodityID: id,
		Bids:        []domain.PriceLevel{{Price: decimal.RequireFromString(bid), Quantity: decimal.NewFromInt(1)}},
	}
}

func newTestPoller(t *testing.T, api *fakeAPI, interval time.Duration) (*Poller, *eventLog) {
	t.Helper()
	var seq uint64
	bus := event.NewDispatcher(256)
	log := &eventLog{}
	bus.Subscribe(log.sink)
	bus.Start(context.Background())
	t.Cleanup(bus.Stop)

	p := NewPoller(api, bus, &seq, interval)
	t.Cleanup(p.Teardown)
	return p, log
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSelectPollsImmediately(t *testing.T) {
	api := newFakeAPI()
	api.books[2] = testBook(2, "99.5")
	p, _ := newTestPoller(t, api, time.Hour)

	p.Select(context.Background(), 2)

	waitFor(t, time.Second, func() bool {
		snap := p.Snapshot()
		return snap != nil && snap.CommodityID == 2
	})
	if got := api.callCount("GetOrderBook"); got != 1 {
		t.Errorf("GetOrderBook calls = %d, want 1 (immediate refresh, timer not yet due)", got)
	}
	if p.Selected() != 2 {
		t.Errorf("Selected() = %d, want 2", p.Selected())
	}
}

func TestRapidReselectLeavesOneTimer(t *testing.T) {
	api := newFakeAPI()
	api.books[1] = testBook(1, "10")
	api.books[2] = testBook(2, "20")
	p, _ := newTestPoller(t, api, 50*time.Millisecond)

	ctx := context.Background()
	p.Select(ctx, 1)
	p.Select(ctx, 2)
	p.Select(ctx, 1)

	waitFor(t, time.Second, func() bool {
		snap := p.Snapshot()
		return snap != nil && snap.CommodityID == 1
	})

	// Let several intervals elapse, then measure the tick rate: a leaked
	// second timer would roughly double it.
	api.resetCalls()
	time.Sleep(275 * time.Millisecond)
	got := api.callCount("GetOrderBook")
	if got == 0 || got > 6 {
		t.Errorf("GetOrderBook calls in 275ms at 50ms interval = %d, want ~5 (single timer)", got)
	}
	if p.Selected() != 1 {
		t.Errorf("Selected() = %d, want last-selected 1", p.Selected())
	}
}

func TestStaleReplyDiscardedAfterReselect(t *testing.T) {
	api := newFakeAPI()
	api.books[1] = testBook(1, "10")
	api.books[2] = testBook(2, "20")
	api.bookDelay = 80 * time.Millisecond // replies stay in flight across the reselect
	p, log := newTestPoller(t, api, time.Hour)

	ctx := context.Background()
	p.Select(ctx, 1)
	p.Select(ctx, 2) // issued before instrument 1's reply lands

	waitFor(t, time.Second, func() bool {
		snap := p.Snapshot()
		return snap != nil && snap.CommodityID == 2
	})
	time.Sleep(120 * time.Millisecond) // give the stale reply time to arrive

	if snap := p.Snapshot(); snap.CommodityID != 2 {
		t.Fatalf("Snapshot().CommodityID = %d, stale reply overwrote the book", snap.CommodityID)
	}
	for _, b := range log.bookUpdates() {
		if b.CommodityID == 1 {
			t.Error("a BookUpdate for the superseded instrument was published")
		}
	}
}

func TestDeselectClearsBookAndStopsTimer(t *testing.T) {
	api := newFakeAPI()
	api.books[3] = testBook(3, "5")
	p, log := newTestPoller(t, api, 30*time.Millisecond)

	p.Select(context.Background(), 3)
	waitFor(t, time.Second, func() bool { return p.Snapshot() != nil })

	p.Deselect()

	if p.Selected() != 0 {
		t.Errorf("Selected() = %d after Deselect, want 0", p.Selected())
	}
	if p.Snapshot() != nil {
		t.Error("Snapshot() should be nil after Deselect")
	}

	// A cleared-book event is published for the presentation layer.
	waitFor(t, time.Second, func() bool {
		ups := log.bookUpdates()
		return len(ups) > 0 && ups[len(ups)-1].Book == nil
	})

	calls := api.callCount("GetOrderBook")
	time.Sleep(100 * time.Millisecond)
	if after := api.callCount("GetOrderBook"); after != calls {
		t.Errorf("GetOrderBook kept firing after Deselect: %d -> %d", calls, after)
	}
}

func TestTeardownStopsAllRequests(t *testing.T) {
	api := newFakeAPI()
	api.books[1] = testBook(1, "1")
	p, _ := newTestPoller(t, api, 20*time.Millisecond)

	p.Select(context.Background(), 1)
	waitFor(t, time.Second, func() bool { return p.Snapshot() != nil })

	p.Teardown()
	calls := api.callCount("GetOrderBook")

	time.Sleep(100 * time.Millisecond)
	if after := api.callCount("GetOrderBook"); after != calls {
		t.Errorf("request issued after Teardown returned: %d -> %d", calls, after)
	}
	if p.Selected() != 0 || p.Snapshot() != nil {
		t.Error("Teardown should leave the poller idle")
	}
}

func TestFailedTickKeepsPreviousSnapshotAndTimer(t *testing.T) {
	api := newFakeAPI()
	api.books[1] = testBook(1, "42")
	p, _ := newTestPoller(t, api, 25*time.Millisecond)

	p.Select(context.Background(), 1)
	waitFor(t, time.Second, func() bool { return p.Snapshot() != nil })

	api.setBookErr(&domain.NetworkError{Op: "fetch order book", Err: errors.New("down")})
	time.Sleep(80 * time.Millisecond)

	// Stale-but-consistent: the last good snapshot stays displayed.
	snap := p.Snapshot()
	if snap == nil || !snap.Bids[0].Price.Equal(decimal.RequireFromString("42")) {
		t.Fatalf("previous snapshot lost during fetch failures: %+v", snap)
	}

	// Timer must still be running: recovery shows up without reselecting.
	api.mu.Lock()
	api.bookErr = nil
	api.books[1] = testBook(1, "43")
	api.mu.Unlock()

	waitFor(t, time.Second, func() bool {
		s := p.Snapshot()
		return s != nil && s.Bids[0].Price.Equal(decimal.RequireFromString("43"))
	})
}
