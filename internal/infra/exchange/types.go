package exchange

import (
	"fmt"
	"strings"
	"time"

	"commodity_go/internal/domain"

	"github.com/shopspring/decimal"
)

// Header carrying the credential on every authenticated request.
const headerAPIKey = "X-API-Key"

// errorEnvelope is the backend's failure body: {"error": "..."}.
type errorEnvelope struct {
	Message string `json:"error"`
}

// apiTime tolerates the backend's timestamp spellings. The backend emits
// bare ISO-8601 without a zone designator, which the stdlib RFC3339 parser
// rejects.
type apiTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func (t *apiTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp: %q", s)
}

// ---- request bodies ----

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createCommodityRequest struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
}

// createOrderRequest converts decimals to plain JSON numbers at the wire
// boundary; the backend validates them as floats.
type createOrderRequest struct {
	CommodityID int64   `json:"commodity_id"`
	OrderType   string  `json:"order_type"`
	Price       float64 `json:"price"`
	Quantity    float64 `json:"quantity"`
}

// ---- response bodies ----

type customerDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (d customerDTO) toDomain() domain.Customer {
	return domain.Customer{ID: d.ID, Name: d.Name, Email: d.Email}
}

type loginResponse struct {
	APIKey   string      `json:"api_key"`
	Customer customerDTO `json:"customer"`
}

// registerResponse is a flat customer profile with the api_key inlined.
type registerResponse struct {
	customerDTO
	APIKey string `json:"api_key"`
}

type commodityDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Description string  `json:"description"`
	CreatedAt   apiTime `json:"created_at"`
	UpdatedAt   apiTime `json:"updated_at"`
}

func (d commodityDTO) toDomain() domain.Commodity {
	return domain.Commodity{
		ID:          d.ID,
		Name:        d.Name,
		Symbol:      d.Symbol,
		Description: d.Description,
		CreatedAt:   d.CreatedAt.Time,
		UpdatedAt:   d.UpdatedAt.Time,
	}
}

type levelDTO struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

type orderBookResponse struct {
	Bids []levelDTO `json:"bids"`
	Asks []levelDTO `json:"asks"`
}

func (r orderBookResponse) toDomain(commodityID int64) *domain.OrderBookSnapshot {
	snap := &domain.OrderBookSnapshot{
		CommodityID: commodityID,
		Bids:        make([]domain.PriceLevel, 0, len(r.Bids)),
		Asks:        make([]domain.PriceLevel, 0, len(r.Asks)),
	}
	for _, l := range r.Bids {
		snap.Bids = append(snap.Bids, domain.PriceLevel{Price: l.Price, Quantity: l.Quantity})
	}
	for _, l := range r.Asks {
		snap.Asks = append(snap.Asks, domain.PriceLevel{Price: l.Price, Quantity: l.Quantity})
	}
	return snap
}

type orderDTO struct {
	ID             int64           `json:"id"`
	CustomerID     int64           `json:"customer_id"`
	CommodityID    int64           `json:"commodity_id"`
	OrderType      string          `json:"order_type"`
	Status         string          `json:"status"`
	Price          decimal.Decimal `json:"price"`
	Quantity       decimal.Decimal `json:"quantity"`
	FilledQuantity decimal.Decimal `json:"filled_quantity"`
	CreatedAt      apiTime         `json:"created_at"`
	UpdatedAt      apiTime         `json:"updated_at"`
}

func (d orderDTO) toDomain() domain.Order {
	return domain.Order{
		ID:             d.ID,
		CustomerID:     d.CustomerID,
		CommodityID:    d.CommodityID,
		Type:           d.OrderType,
		Status:         domain.NormalizeOrderStatus(d.Status),
		Price:          d.Price,
		Quantity:       d.Quantity,
		FilledQuantity: d.FilledQuantity,
		CreatedAt:      d.CreatedAt.Time,
		UpdatedAt:      d.UpdatedAt.Time,
	}
}

type tradeDTO struct {
	ID                  int64           `json:"id"`
	OrderID             int64           `json:"order_id"`
	CounterpartyOrderID int64           `json:"counterparty_order_id"`
	Price               decimal.Decimal `json:"price"`
	Quantity            decimal.Decimal `json:"quantity"`
	ExecutedAt          apiTime         `json:"executed_at"`
}

func (d tradeDTO) toDomain() domain.Trade {
	return domain.Trade{
		ID:                  d.ID,
		OrderID:             d.OrderID,
		CounterpartyOrderID: d.CounterpartyOrderID,
		Price:               d.Price,
		Quantity:            d.Quantity,
		ExecutedAt:          d.ExecutedAt.Time,
	}
}

type createOrderResponse struct {
	Order  orderDTO   `json:"order"`
	Trades []tradeDTO `json:"trades"`
}
