package domain

import "time"

// Commodity is a tradable instrument. Server-assigned id; read-only on the
// client, replaced wholesale on every catalog refresh.
type Commodity struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UnknownSymbol is the display sentinel for instruments missing from the
// current catalog. Order and catalog data can be transiently inconsistent,
// so lookups must never fail.
const UnknownSymbol = "Unknown"

// UnknownCommodity returns the placeholder used when an order references an
// instrument the catalog does not (yet) contain.
func UnknownCommodity(id int64) Commodity {
	return Commodity{ID: id, Symbol: UnknownSymbol, Name: UnknownSymbol}
}

// Customer is the authenticated user's profile as returned by the backend.
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
