package checkout

import (
	"sync"

	"github.com/gebeyalink/storefront/internal/marketplace"
	"github.com/gebeyalink/storefront/pkg/enums"
	"github.com/shopspring/decimal"
)

// Session is one shopper's in-flight checkout wizard. It lives in memory
// only; a restart loses the step position while the cart itself survives in
// the snapshot store.
type Session struct {
	mu sync.Mutex

	ID        string
	ShopperID string

	Step          enums.CheckoutStep
	Address       marketplace.ShippingAddress
	Notes         string
	PaymentMethod enums.PaymentMethod

	Promotion *marketplace.Promotion
	Discount  decimal.Decimal

	// Populated on successful order placement and carried into the payment
	// step, never re-derived from a later read.
	Order        *marketplace.Order
	ContactPhone string

	// Telebirr initiation details held for display.
	PaymentReference string
	PaymentDeepLink  string
	PaymentMessage   string

	// Busy markers keyed by payment method. Best-effort double-submit
	// protection, not a mutex across methods.
	processing map[enums.PaymentMethod]bool
}

func newSession(sessionID, shopperID string) *Session {
	return &Session{
		ID:         sessionID,
		ShopperID:  shopperID,
		Step:       enums.CheckoutStepAddress,
		Discount:   decimal.Zero,
		processing: map[enums.PaymentMethod]bool{},
	}
}

// WithLock runs fn while holding the session mutex.
func (s *Session) WithLock(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// BeginProcessing marks the method busy. Returns false when an initiation
// for the same method is already in flight.
func (s *Session) BeginProcessing(method enums.PaymentMethod) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing[method] {
		return false
	}
	s.processing[method] = true
	return true
}

// EndProcessing clears the busy marker. Safe on every exit path.
func (s *Session) EndProcessing(method enums.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.processing, method)
}

// Processing reports whether the method is currently busy.
func (s *Session) Processing(method enums.PaymentMethod) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing[method]
}

// Manager owns the live checkout sessions, one per storefront session key.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: map[string]*Session{}}
}

// Get returns the existing session for the key, or nil.
func (m *Manager) Get(sessionID string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[sessionID]
}

// GetOrCreate returns the session for the key, creating a fresh one at the
// address step when none exists.
func (m *Manager) GetOrCreate(sessionID, shopperID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[sessionID]; ok {
		return session
	}
	session := newSession(sessionID, shopperID)
	m.sessions[sessionID] = session
	return session
}

// Drop discards the session, typically after the shopper reached the
// success view.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}
