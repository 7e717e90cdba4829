package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"commodity_go/internal/domain"
	"commodity_go/internal/infra"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CredentialFunc returns the current credential, read fresh for every
// request. The credential is a single-writer slot shared between login,
// register, logout and invalid-session handling, so it must never be cached
// inside the client.
type CredentialFunc func() (string, bool)

// Client is the typed REST client for the trading backend. It attaches the
// credential to every authenticated call and maps failures onto the domain
// error taxonomy. No call retries automatically; retry policy belongs to
// callers.
type Client struct {
	http   *resty.Client
	creds  CredentialFunc
	logger *slog.Logger
}

var _ domain.ExchangeAPI = (*Client)(nil)

// NewClient creates a new backend API client.
func NewClient(cfg *infra.Config, creds CredentialFunc) *Client {
	hc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.API.BaseURL, "/")).
		SetTimeout(cfg.Timeout()).
		SetHeader("Accept", "application/json")

	return &Client{
		http:   hc,
		creds:  creds,
		logger: slog.Default().With("module", "exchange_client"),
	}
}

// do issues one request. out, when non-nil, receives the decoded 2xx body.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	op := method + " " + path

	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())

	if authed {
		key, ok := c.creds()
		if !ok {
			return &domain.AuthError{Op: op, Err: domain.ErrNoCredential}
		}
		req.SetHeader(headerAPIKey, key)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	var failure errorEnvelope
	req.SetError(&failure)

	infra.GlobalMetrics.RecordRequest()
	resp, err := req.Execute(method, path)
	if err != nil {
		infra.GlobalMetrics.RecordRequestError()
		return &domain.NetworkError{Op: op, Err: err}
	}
	if resp.IsSuccess() {
		return nil
	}

	infra.GlobalMetrics.RecordRequestError()
	msg := failure.Message
	if msg == "" {
		msg = resp.Status()
	}
	c.logger.Warn("request rejected",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode()),
		slog.String("error", msg),
	)

	if resp.StatusCode() == http.StatusUnauthorized {
		infra.GlobalMetrics.RecordAuthFailure()
		return &domain.AuthError{Op: op, Err: errors.New(msg)}
	}
	return &domain.BackendError{Status: resp.StatusCode(), Message: msg}
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	var resp loginResponse
	body := loginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/login", body, &resp, false); err != nil {
		return nil, err
	}
	return &domain.LoginResult{APIKey: resp.APIKey, Customer: resp.Customer.toDomain()}, nil
}

// Register creates a new customer account and returns its credential.
func (c *Client) Register(ctx context.Context, name, email, password string) (*domain.LoginResult, error) {
	var resp registerResponse
	body := registerRequest{Name: name, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/customers", body, &resp, false); err != nil {
		return nil, err
	}
	return &domain.LoginResult{APIKey: resp.APIKey, Customer: resp.customerDTO.toDomain()}, nil
}

// GetCustomer fetches the profile for the current credential. An AuthError
// here signals the caller to clear the stored session.
func (c *Client) GetCustomer(ctx context.Context) (*domain.Customer, error) {
	var resp customerDTO
	if err := c.do(ctx, http.MethodGet, "/api/customers", nil, &resp, true); err != nil {
		return nil, err
	}
	cust := resp.toDomain()
	return &cust, nil
}

// ListCommodities fetches the full tradable catalog.
func (c *Client) ListCommodities(ctx context.Context) ([]domain.Commodity, error) {
	var resp []commodityDTO
	if err := c.do(ctx, http.MethodGet, "/api/commodities", nil, &resp, true); err != nil {
		return nil, err
	}
	out := make([]domain.Commodity, 0, len(resp))
	for _, d := range resp {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// CreateCommodity registers a new tradable instrument.
func (c *Client) CreateCommodity(ctx context.Context, name, symbol, description string) (*domain.Commodity, error) {
	var resp commodityDTO
	body := createCommodityRequest{Name: name, Symbol: symbol, Description: description}
	if err := c.do(ctx, http.MethodPost, "/api/commodities", body, &resp, true); err != nil {
		return nil, err
	}
	cm := resp.toDomain()
	return &cm, nil
}

// GetCommodity fetches a single commodity by id.
func (c *Client) GetCommodity(ctx context.Context, id int64) (*domain.Commodity, error) {
	var resp commodityDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/commodities/%d", id), nil, &resp, true); err != nil {
		return nil, err
	}
	cm := resp.toDomain()
	return &cm, nil
}

// GetOrderBook fetches the current bid/ask depth for one instrument.
func (c *Client) GetOrderBook(ctx context.Context, commodityID int64) (*domain.OrderBookSnapshot, error) {
	var resp orderBookResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/orderbook/%d", commodityID), nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.toDomain(commodityID), nil
}

// ListOrders fetches all of the customer's orders.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var resp []orderDTO
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &resp, true); err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(resp))
	for _, d := range resp {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// GetOrder fetches a single order by id.
func (c *Client) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var resp orderDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", id), nil, &resp, true); err != nil {
		return nil, err
	}
	o := resp.toDomain()
	return &o, nil
}

// CreateOrder submits a new order. The response includes any trades matched
// immediately.
func (c *Client) CreateOrder(ctx context.Context, commodityID int64, orderType string, price, quantity decimal.Decimal) (*domain.OrderResult, error) {
	body := createOrderRequest{
		CommodityID: commodityID,
		OrderType:   orderType,
		Price:       price.InexactFloat64(),
		Quantity:    quantity.InexactFloat64(),
	}
	var resp createOrderResponse
	if err := c.do(ctx, http.MethodPost, "/api/orders", body, &resp, true); err != nil {
		return nil, err
	}
	result := &domain.OrderResult{Order: resp.Order.toDomain()}
	for _, tr := range resp.Trades {
		result.Trades = append(result.Trades, tr.toDomain())
	}
	return result, nil
}

// CancelOrder cancels a resting order.
func (c *Client) CancelOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/orders/%d", id), nil, nil, true)
}

// ListTrades fetches all trades involving the customer's orders.
func (c *Client) ListTrades(ctx context.Context) ([]domain.Trade, error) {
	var resp []tradeDTO
	if err := c.do(ctx, http.MethodGet, "/api/trades", nil, &resp, true); err != nil {
		return nil, err
	}
	out := make([]domain.Trade, 0, len(resp))
	for _, d := range resp {
		out = append(out, d.toDomain())
	}
	return out, nil
}
