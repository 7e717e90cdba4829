package service

import (
	"context"
	"testing"

	"commodity_go/internal/domain"
	"commodity_go/internal/event"
)

func newTestCatalog(t *testing.T, api *fakeAPI, cache CatalogCache) *Catalog {
	t.Helper()
	var seq uint64
	bus := event.NewDispatcher(64)
	bus.Start(context.Background())
	t.Cleanup(bus.Stop)
	return NewCatalog(api, cache, bus, &seq, NewNotifier(bus, &seq))
}

func TestCatalogRefreshReplacesWholesale(t *testing.T) {
	api := newFakeAPI()
	api.commodities = []domain.Commodity{
		{ID: 1, Name: "Gold", Symbol: "GLD"},
		{ID: 2, Name: "Silver", Symbol: "SLV"},
	}
	c := newTestCatalog(t, api, nil)

	if _, err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := c.Lookup(1).Symbol; got != "GLD" {
		t.Errorf("Lookup(1).Symbol = %q", got)
	}

	// Second refresh with a disjoint set: old entries must be gone.
	api.mu.Lock()
	api.commodities = []domain.Commodity{{ID: 3, Name: "Copper", Symbol: "COP"}}
	api.mu.Unlock()

	if _, err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := c.Lookup(1).Symbol; got != domain.UnknownSymbol {
		t.Errorf("Lookup(1) after replace = %q, want Unknown placeholder", got)
	}
	if all := c.All(); len(all) != 1 || all[0].ID != 3 {
		t.Errorf("All() = %+v, want only Copper", all)
	}
}

func TestCatalogLookupNeverFails(t *testing.T) {
	c := newTestCatalog(t, newFakeAPI(), nil)

	cm := c.Lookup(42)
	if cm.Symbol != domain.UnknownSymbol || cm.ID != 42 {
		t.Errorf("Lookup on empty catalog = %+v", cm)
	}
}

func TestCreateCommodityRoundTrip(t *testing.T) {
	api := newFakeAPI()
	c := newTestCatalog(t, api, nil)

	cm, err := c.Create(context.Background(), "Wheat", "WHT", "soft commodity")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The refresh after create must include the new entry exactly once.
	count := 0
	for _, got := range c.All() {
		if got.Symbol == "WHT" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("WHT appears %d times after create+refresh, want exactly 1", count)
	}
	if cm.ID == 0 {
		t.Error("created commodity should carry the server-assigned id")
	}
}

func TestCreateCommodityValidation(t *testing.T) {
	api := newFakeAPI()
	c := newTestCatalog(t, api, nil)

	tests := []struct {
		name   string
		cName  string
		symbol string
	}{
		{"missing name", "", "WHT"},
		{"missing symbol", "Wheat", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Create(context.Background(), tt.cName, tt.symbol, ""); !domain.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
	if n := api.totalCalls(); n != 0 {
		t.Errorf("network calls = %d, want 0 for rejected input", n)
	}
}

// memCache backs the catalog with an in-memory CatalogCache.
type memCache struct {
	saved []domain.Commodity
}

func (m *memCache) SaveCatalog(list []domain.Commodity) error {
	m.saved = list
	return nil
}

func (m *memCache) LoadCatalog() ([]domain.Commodity, error) {
	return m.saved, nil
}

func TestCatalogCacheFallback(t *testing.T) {
	cache := &memCache{saved: []domain.Commodity{{ID: 9, Name: "Oil", Symbol: "OIL"}}}
	c := newTestCatalog(t, newFakeAPI(), cache)

	if err := c.LoadCached(); err != nil {
		t.Fatalf("LoadCached: %v", err)
	}
	if got := c.Lookup(9).Symbol; got != "OIL" {
		t.Errorf("Lookup after LoadCached = %q, want OIL", got)
	}
}

func TestCatalogRefreshWritesCache(t *testing.T) {
	api := newFakeAPI()
	api.commodities = []domain.Commodity{{ID: 1, Symbol: "GLD"}}
	cache := &memCache{}
	c := newTestCatalog(t, api, cache)

	if _, err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(cache.saved) != 1 || cache.saved[0].Symbol != "GLD" {
		t.Errorf("cache not updated on refresh: %+v", cache.saved)
	}
}
