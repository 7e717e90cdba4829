package app

import (
	"log/slog"

	"github.com/joho/godotenv"

	"commodity_go/internal/event"
	"commodity_go/internal/infra"
	"commodity_go/internal/infra/exchange"
	"commodity_go/internal/infra/storage"
	"commodity_go/internal/service"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
	Client  *exchange.Client

	Bus      *event.Dispatcher
	Notifier *service.Notifier
	Catalog  *service.Catalog
	Poller   *service.Poller
	Orders   *service.Orders
	Session  *service.Session

	seq uint64
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB, API client)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping Commodity Go...")

	// 1. Load .env (optional) then config; defaults apply when no file exists
	_ = godotenv.Load()

	cfg, err := infra.LoadOrDefault("configs/config.yaml")
	if err != nil {
		return err
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	// 4. API client. The credential is read from storage on every request,
	// so login/logout take effect without rebuilding the client.
	b.Client = exchange.NewClient(cfg, func() (string, bool) {
		key, ok, err := store.GetCredential()
		if err != nil {
			slog.Warn("credential read failed", slog.Any("error", err))
			return "", false
		}
		return key, ok
	})
	slog.Info("✅ Exchange client ready", slog.String("base_url", cfg.API.BaseURL))

	// 5. Event bus and services
	b.Bus = event.NewDispatcher(256)
	b.Notifier = service.NewNotifier(b.Bus, &b.seq)
	b.Catalog = service.NewCatalog(b.Client, store, b.Bus, &b.seq, b.Notifier)
	b.Poller = service.NewPoller(b.Client, b.Bus, &b.seq, cfg.PollInterval())
	b.Orders = service.NewOrders(b.Client, b.Catalog, b.Poller, b.Bus, &b.seq, b.Notifier)
	b.Session = service.NewSession(b.Client, store, b.Catalog, b.Poller, b.Orders, b.Bus, &b.seq, b.Notifier)

	return nil
}

// Shutdown stops polling and releases resources in reverse order.
func (b *Bootstrap) Shutdown() {
	if b.Poller != nil {
		b.Poller.Teardown()
	}
	if b.Bus != nil {
		b.Bus.Stop()
	}
	if b.Storage != nil {
		if err := b.Storage.Close(); err != nil {
			slog.Warn("storage close failed", slog.Any("error", err))
		}
	}
}
