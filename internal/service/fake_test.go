package service

import (
	"context"
	"sync"
	"time"

	"commodity_go/internal/domain"
	"commodity_go/internal/event"

	"github.com/shopspring/decimal"
)

// fakeAPI records every call and serves programmable responses.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	loginResult *domain.LoginResult
	loginErr    error

	customer    *domain.Customer
	customerErr error

	commodities []domain.Commodity
	listCommErr error

	books     map[int64]*domain.OrderBookSnapshot
	bookDelay time.Duration // served even if the caller's ctx is cancelled,
	// simulating a reply already in flight
	bookErr error

	orders    []domain.Order
	createRes *domain.OrderResult
	createErr error
	cancelErr error

	trades []domain.Trade
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{books: make(map[int64]*domain.OrderBookSnapshot)}
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAPI) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) resetCalls() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	f.record("Login")
	return f.loginResult, f.loginErr
}

func (f *fakeAPI) Register(ctx context.Context, name, email, password string) (*domain.LoginResult, error) {
	f.record("Register")
	return f.loginResult, f.loginErr
}

func (f *fakeAPI) GetCustomer(ctx context.Context) (*domain.Customer, error) {
	f.record("GetCustomer")
	return f.customer, f.customerErr
}

func (f *fakeAPI) ListCommodities(ctx context.Context) ([]domain.Commodity, error) {
	f.record("ListCommodities")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commodities, f.listCommErr
}

func (f *fakeAPI) CreateCommodity(ctx context.Context, name, symbol, description string) (*domain.Commodity, error) {
	f.record("CreateCommodity")
	f.mu.Lock()
	defer f.mu.Unlock()
	cm := domain.Commodity{ID: int64(len(f.commodities) + 1), Name: name, Symbol: symbol, Description: description}
	f.commodities = append(f.commodities, cm)
	return &cm, nil
}

func (f *fakeAPI) GetCommodity(ctx context.Context, id int64) (*domain.Commodity, error) {
	f.record("GetCommodity")
	for _, cm := range f.commodities {
		if cm.ID == id {
			return &cm, nil
		}
	}
	return nil, &domain.BackendError{Status: 404, Message: "not found"}
}

func (f *fakeAPI) GetOrderBook(ctx context.Context, commodityID int64) (*domain.OrderBookSnapshot, error) {
	f.record("GetOrderBook")
	f.mu.Lock()
	delay := f.bookDelay
	err := f.bookErr
	snap := f.books[commodityID]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = &domain.OrderBookSnapshot{CommodityID: commodityID}
	}
	return snap, nil
}

func (f *fakeAPI) setBookErr(err error) {
	f.mu.Lock()
	f.bookErr = err
	f.mu.Unlock()
}

func (f *fakeAPI) ListOrders(ctx context.Context) ([]domain.Order, error) {
	f.record("ListOrders")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders, nil
}

func (f *fakeAPI) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	f.record("GetOrder")
	for _, o := range f.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, &domain.BackendError{Status: 404, Message: "not found"}
}

func (f *fakeAPI) CreateOrder(ctx context.Context, commodityID int64, orderType string, price, quantity decimal.Decimal) (*domain.OrderResult, error) {
	f.record("CreateOrder")
	return f.createRes, f.createErr
}

func (f *fakeAPI) CancelOrder(ctx context.Context, id int64) error {
	f.record("CancelOrder")
	return f.cancelErr
}

func (f *fakeAPI) ListTrades(ctx context.Context) ([]domain.Trade, error) {
	f.record("ListTrades")
	return f.trades, nil
}

// fakeStore is an in-memory credential slot.
type fakeStore struct {
	mu  sync.Mutex
	key string
}

func (s *fakeStore) GetCredential() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key, s.key != "", nil
}

func (s *fakeStore) SetCredential(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
	return nil
}

func (s *fakeStore) ClearCredential() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = ""
	return nil
}

// eventLog collects dispatched events for assertions.
type eventLog struct {
	mu     sync.Mutex
	events []event.Event
}

func (l *eventLog) sink(ev event.Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) notices(level string) []event.Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []event.Notice
	for _, ev := range l.events {
		if n, ok := ev.(event.Notice); ok && n.Level == level {
			out = append(out, n)
		}
	}
	return out
}

func (l *eventLog) bookUpdates() []event.BookUpdate {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []event.BookUpdate
	for _, ev := range l.events {
		if b, ok := ev.(event.BookUpdate); ok {
			out = append(out, b)
		}
	}
	return out
}
