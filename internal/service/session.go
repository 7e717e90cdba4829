package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"commodity_go/internal/domain"
	"commodity_go/internal/event"
)

// Session states.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

// Session is the top-level orchestrator: login/register/logout, bootstrap
// from the persisted credential, and the priming sequence on entering the
// authenticated state (catalog, default instrument selection, open orders).
type Session struct {
	api      domain.ExchangeAPI
	store    domain.CredentialStore
	catalog  *Catalog
	poller   *Poller
	orders   *Orders
	bus      *event.Dispatcher
	seq      *uint64
	notifier *Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	state    State
	customer *domain.Customer
}

// NewSession wires the orchestrator.
func NewSession(api domain.ExchangeAPI, store domain.CredentialStore, catalog *Catalog, poller *Poller, orders *Orders, bus *event.Dispatcher, seq *uint64, notifier *Notifier) *Session {
	return &Session{
		api:      api,
		store:    store,
		catalog:  catalog,
		poller:   poller,
		orders:   orders,
		bus:      bus,
		seq:      seq,
		notifier: notifier,
		logger:   slog.Default().With("module", "session"),
		state:    StateUnauthenticated,
	}
}

// Bootstrap restores the session from the persisted credential, if any. A
// rejected credential is cleared; other failures keep it so the user can
// retry.
func (s *Session) Bootstrap(ctx context.Context) error {
	key, ok, err := s.store.GetCredential()
	if err != nil {
		return fmt.Errorf("read credential: %w", err)
	}
	if !ok || key == "" {
		s.setState(StateUnauthenticated)
		return nil
	}

	s.setState(StateAuthenticating)

	cust, err := s.api.GetCustomer(ctx)
	if err != nil {
		if domain.IsAuth(err) {
			s.logger.Info("stored credential rejected, clearing")
			if cerr := s.store.ClearCredential(); cerr != nil {
				s.logger.Warn("clear credential failed", slog.Any("error", cerr))
			}
		} else {
			s.notifier.Errorf("Error fetching customer info: %s", err)
		}
		s.setState(StateUnauthenticated)
		return err
	}

	s.setCustomer(cust)
	s.prime(ctx)
	s.setState(StateAuthenticated)
	return nil
}

// Login authenticates and enters the authenticated state.
func (s *Session) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return &domain.ValidationError{Field: "credentials", Reason: "email and password required"}
	}

	s.setState(StateAuthenticating)

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.notifier.Errorf("%s", err)
		s.setState(StateUnauthenticated)
		return err
	}

	if err := s.store.SetCredential(res.APIKey); err != nil {
		s.logger.Error("persist credential failed", slog.Any("error", err))
	}
	s.setCustomer(&res.Customer)
	s.prime(ctx)
	s.setState(StateAuthenticated)
	s.notifier.Successf("Login successful! Welcome to the Order Book System.")
	return nil
}

// Register creates an account and logs straight in. The password
// confirmation is checked locally; a mismatch never reaches the wire.
func (s *Session) Register(ctx context.Context, name, email, password, confirm string) error {
	if name == "" || email == "" || password == "" {
		return &domain.ValidationError{Field: "registration", Reason: "name, email and password required"}
	}
	if password != confirm {
		s.notifier.Errorf("Passwords do not match")
		return &domain.ValidationError{Field: "password", Reason: "passwords do not match"}
	}

	s.setState(StateAuthenticating)

	res, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		s.notifier.Errorf("%s", err)
		s.setState(StateUnauthenticated)
		return err
	}

	if err := s.store.SetCredential(res.APIKey); err != nil {
		s.logger.Error("persist credential failed", slog.Any("error", err))
	}
	s.setCustomer(&res.Customer)
	s.prime(ctx)
	s.setState(StateAuthenticated)
	s.notifier.Successf("Registration successful! You are now logged in.")
	return nil
}

// Logout tears down the polling cycle first, then clears the credential.
// This ordering guarantees no authenticated request is issued by a stale
// timer after logout.
func (s *Session) Logout() {
	s.poller.Teardown()

	if err := s.store.ClearCredential(); err != nil {
		s.logger.Warn("clear credential failed", slog.Any("error", err))
	}

	s.mu.Lock()
	s.customer = nil
	s.mu.Unlock()
	s.setState(StateUnauthenticated)
}

// prime runs the post-authentication sequence: refresh the catalog, start
// polling the first instrument as the default selection, then load open
// orders.
func (s *Session) prime(ctx context.Context) {
	list, err := s.catalog.Refresh(ctx)
	if err != nil {
		s.notifier.Errorf("Error fetching commodities: %s", err)
	} else if len(list) > 0 {
		s.poller.Select(ctx, list[0].ID)
	}

	if err := s.orders.Refresh(ctx); err != nil {
		s.logger.Warn("initial orders refresh failed", slog.Any("error", err))
	}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Customer returns the authenticated profile, nil when logged out.
func (s *Session) Customer() *domain.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.customer == nil {
		return nil
	}
	c := *s.customer
	return &c
}

func (s *Session) setCustomer(c *domain.Customer) {
	s.mu.Lock()
	s.customer = c
	s.mu.Unlock()
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	name := ""
	if s.customer != nil {
		name = s.customer.Name
	}
	s.mu.Unlock()

	s.bus.Publish(event.SessionUpdate{
		BaseEvent:    event.NewBase(s.seq),
		State:        string(st),
		CustomerName: name,
	})
}
