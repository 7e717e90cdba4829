package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// LoginResult is what the backend returns on successful login/registration.
type LoginResult struct {
	APIKey   string
	Customer Customer
}

// ExchangeAPI is the typed request layer over the trading backend.
// Authenticated calls attach the current credential; none retry
// automatically.
type ExchangeAPI interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, name, email, password string) (*LoginResult, error)
	GetCustomer(ctx context.Context) (*Customer, error)

	ListCommodities(ctx context.Context) ([]Commodity, error)
	CreateCommodity(ctx context.Context, name, symbol, description string) (*Commodity, error)
	GetCommodity(ctx context.Context, id int64) (*Commodity, error)

	GetOrderBook(ctx context.Context, commodityID int64) (*OrderBookSnapshot, error)

	ListOrders(ctx context.Context) ([]Order, error)
	GetOrder(ctx context.Context, id int64) (*Order, error)
	CreateOrder(ctx context.Context, commodityID int64, orderType string, price, quantity decimal.Decimal) (*OrderResult, error)
	CancelOrder(ctx context.Context, id int64) error

	ListTrades(ctx context.Context) ([]Trade, error)
}

// CredentialStore owns the persisted credential slot. Absence of a
// credential means the unauthenticated state; validity is only ever proven
// by a subsequent API call succeeding.
type CredentialStore interface {
	GetCredential() (string, bool, error)
	SetCredential(key string) error
	ClearCredential() error
}
