package domain

import "github.com/shopspring/decimal"

// PriceLevel is one aggregated (price, quantity) entry of the book.
type PriceLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// OrderBookSnapshot is the full bid/ask depth for one instrument. Each
// refresh replaces the previous snapshot wholesale; there is no diffing.
type OrderBookSnapshot struct {
	CommodityID int64        `json:"commodity_id"`
	Bids        []PriceLevel `json:"bids"`
	Asks        []PriceLevel `json:"asks"`
}

// BestBid returns the top bid level, if any.
func (s *OrderBookSnapshot) BestBid() (PriceLevel, bool) {
	if s == nil || len(s.Bids) == 0 {
		return PriceLevel{}, false
	}
	return s.Bids[0], true
}

// BestAsk returns the top ask level, if any.
func (s *OrderBookSnapshot) BestAsk() (PriceLevel, bool) {
	if s == nil || len(s.Asks) == 0 {
		return PriceLevel{}, false
	}
	return s.Asks[0], true
}

// Spread returns ask minus bid at the top of the book. Nil when either side
// is empty.
func (s *OrderBookSnapshot) Spread() *decimal.Decimal {
	bid, okB := s.BestBid()
	ask, okA := s.BestAsk()
	if !okB || !okA {
		return nil
	}
	d := ask.Price.Sub(bid.Price)
	return &d
}
