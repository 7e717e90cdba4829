package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"commodity_go/internal/domain"
	"commodity_go/internal/event"
)

// CatalogCache persists the last synced catalog so a restart can show
// instruments before the first live refresh.
type CatalogCache interface {
	SaveCatalog([]domain.Commodity) error
	LoadCatalog() ([]domain.Commodity, error)
}

// Catalog caches the tradable instruments and decorates order rows with
// display symbols. Every refresh replaces the catalog wholesale.
type Catalog struct {
	api      domain.ExchangeAPI
	cache    CatalogCache // optional
	bus      *event.Dispatcher
	seq      *uint64
	notifier *Notifier
	logger   *slog.Logger

	mu   sync.RWMutex
	byID map[int64]domain.Commodity
	list []domain.Commodity
}

// NewCatalog creates an empty catalog. cache may be nil.
func NewCatalog(api domain.ExchangeAPI, cache CatalogCache, bus *event.Dispatcher, seq *uint64, notifier *Notifier) *Catalog {
	return &Catalog{
		api:      api,
		cache:    cache,
		bus:      bus,
		seq:      seq,
		notifier: notifier,
		logger:   slog.Default().With("module", "catalog"),
		byID:     make(map[int64]domain.Commodity),
	}
}

// Refresh fetches the full catalog and replaces the cached one. Returns the
// new list for the caller (e.g. to select a default instrument).
func (c *Catalog) Refresh(ctx context.Context) ([]domain.Commodity, error) {
	list, err := c.api.ListCommodities(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh catalog: %w", err)
	}

	c.replace(list)

	if c.cache != nil {
		if err := c.cache.SaveCatalog(list); err != nil {
			c.logger.Warn("catalog cache write failed", slog.Any("error", err))
		}
	}

	c.bus.Publish(event.CatalogUpdate{BaseEvent: event.NewBase(c.seq), Commodities: list})
	return list, nil
}

// LoadCached populates the catalog from local storage. Used at startup as a
// display fallback; the live refresh replaces it.
func (c *Catalog) LoadCached() error {
	if c.cache == nil {
		return nil
	}
	list, err := c.cache.LoadCatalog()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return nil
	}
	c.replace(list)
	c.bus.Publish(event.CatalogUpdate{BaseEvent: event.NewBase(c.seq), Commodities: list})
	return nil
}

func (c *Catalog) replace(list []domain.Commodity) {
	byID := make(map[int64]domain.Commodity, len(list))
	for _, cm := range list {
		byID[cm.ID] = cm
	}
	c.mu.Lock()
	c.byID = byID
	c.list = list
	c.mu.Unlock()
}

// Lookup returns the commodity for id, or the Unknown placeholder. It never
// fails: catalog and order data can be transiently inconsistent.
func (c *Catalog) Lookup(id int64) domain.Commodity {
	c.mu.RLock()
	cm, ok := c.byID[id]
	c.mu.RUnlock()
	if !ok {
		return domain.UnknownCommodity(id)
	}
	return cm
}

// All returns a copy of the current catalog.
func (c *Catalog) All() []domain.Commodity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Commodity, len(c.list))
	copy(out, c.list)
	return out
}

// Create registers a new instrument, then re-fetches the full catalog so the
// new entry appears exactly once.
func (c *Catalog) Create(ctx context.Context, name, symbol, description string) (*domain.Commodity, error) {
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "required"}
	}
	if symbol == "" {
		return nil, &domain.ValidationError{Field: "symbol", Reason: "required"}
	}

	cm, err := c.api.CreateCommodity(ctx, name, symbol, description)
	if err != nil {
		c.notifier.Errorf("Failed to create commodity: %s", err)
		return nil, err
	}

	c.notifier.Successf("Commodity %s created successfully!", cm.Name)

	if _, err := c.Refresh(ctx); err != nil {
		c.logger.Warn("catalog refresh after create failed", slog.Any("error", err))
	}
	return cm, nil
}
