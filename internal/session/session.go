package session

import (
	"context"
	"strings"
	"sync"

	"craftmart/internal/cart"
	"craftmart/internal/money"
)

// AuthContext is the opaque identity handed over by the external auth
// collaborator. Nothing here validates it; it is passthrough state.
type AuthContext struct {
	Token string
	Role  string
}

// FromHeaders builds an AuthContext from the bearer header and role hint.
func FromHeaders(authorization, role string) AuthContext {
	token := strings.TrimSpace(authorization)
	if rest, ok := strings.CutPrefix(token, "Bearer "); ok {
		token = strings.TrimSpace(rest)
	}
	return AuthContext{Token: token, Role: role}
}

// CurrencyContext is the explicit, passed-in currency state: a display
// currency and a conversion primitive. Replaces ambient globals.
type CurrencyContext struct {
	Display string
	Convert money.ConvertFunc
}

func NewCurrencyContext(display string, convert money.ConvertFunc) CurrencyContext {
	if convert == nil {
		convert = money.Identity
	}
	return CurrencyContext{Display: display, Convert: convert}
}

// State is everything scoped to one session: its cart aggregate and the
// at-most-one applied coupon code. Applying a new code replaces the old
// one; eligibility is re-derived on every computation, never stored.
type State struct {
	Cart       *cart.Aggregate
	CouponCode string

	load sync.Once
}

// Manager hands out session state keyed by sid. Each session gets its own
// store via the factory so degradation stays per-session and one-way. The
// mutex guards only the map; the initial store fetch runs outside it so a
// slow remote on one session's first contact never stalls the others.
// Cart mutations themselves are serialized by the HTTP layer, one event
// at a time per session.
type Manager struct {
	mu       sync.Mutex
	newStore func() cart.Store
	sessions map[string]*State
}

func NewManager(newStore func() cart.Store) *Manager {
	return &Manager{newStore: newStore, sessions: make(map[string]*State)}
}

// Get returns the session's state, creating and loading it on first use.
// The load latch keeps concurrent first contacts for the same sid from
// fetching twice.
func (m *Manager) Get(ctx context.Context, sid string) *State {
	m.mu.Lock()
	st, ok := m.sessions[sid]
	if !ok {
		st = &State{}
		m.sessions[sid] = st
	}
	m.mu.Unlock()

	st.load.Do(func() {
		st.Cart = cart.NewAggregate(ctx, sid, m.newStore())
	})
	return st
}
