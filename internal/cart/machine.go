// Package cart holds the client-side cart state machine: optimistic
// quantity/remove/clear mutations against the gateway, with derived
// totals that are never left stale.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/amberfield/storefront-client/internal/gateway"
	"github.com/amberfield/storefront-client/internal/session"
	pkgerrors "github.com/amberfield/storefront-client/pkg/errors"
	"github.com/amberfield/storefront-client/pkg/logger"
	"github.com/amberfield/storefront-client/pkg/money"
)

// CartRoute is the return destination remembered when an unauthenticated
// viewer is sent to login.
const CartRoute = "/cart"

const clearPrompt = "Are you sure you want to clear your cart?"

// State is the cart machine's lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateMutating
	StateError
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateMutating:
		return "mutating"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// SessionGate answers whether a viewer is signed in.
type SessionGate interface {
	Authenticated() bool
}

// Confirmer asks the user a yes/no question before a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Gateway is the slice of the API client the cart machine consumes.
type Gateway interface {
	FetchCart(ctx context.Context) (*gateway.CartPayload, error)
	AddItem(ctx context.Context, productID int64, quantity int) error
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error
	RemoveItem(ctx context.Context, itemID int64) error
	ClearCart(ctx context.Context) error
}

// Machine owns the authoritative client-side cart view.
//
// Mutations apply optimistically before the gateway confirms. Each line
// item carries a monotonic mutation sequence; a confirmation only takes
// effect while it is still the newest mutation for its item, so a slow
// response can never overwrite a later local change. Whole-cart
// operations (load, clear) bump a generation counter with the same rule.
type Machine struct {
	mu      sync.Mutex
	state   State
	snap    Snapshot
	lastErr error
	itemSeq map[int64]uint64
	gen     uint64

	session  SessionGate
	nav      session.Navigator
	gw       Gateway
	confirm  Confirmer
	logg     *logger.Logger
	defaults Defaults
}

// MachineParams bundles the cart machine's dependencies.
type MachineParams struct {
	Session        SessionGate
	Navigator      session.Navigator
	Gateway        Gateway
	Confirm        Confirmer
	Logger         *logger.Logger
	DefaultTaxRate decimal.Decimal
}

func NewMachine(params MachineParams) (*Machine, error) {
	if params.Session == nil {
		return nil, fmt.Errorf("session gate is required")
	}
	if params.Navigator == nil {
		return nil, fmt.Errorf("navigator is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if params.Confirm == nil {
		return nil, fmt.Errorf("confirmer is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	defaults := DefaultsWithTaxRate(params.DefaultTaxRate)
	return &Machine{
		state:    StateUninitialized,
		snap:     emptySnapshot(defaults.TaxRate),
		itemSeq:  map[int64]uint64{},
		session:  params.Session,
		nav:      params.Navigator,
		gw:       params.Gateway,
		confirm:  params.Confirm,
		logg:     params.Logger,
		defaults: defaults,
	}, nil
}

// State returns the machine's current lifecycle state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns a copy of the current cart view.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.clone()
}

// LastError returns the most recent operation error, nil after any
// successful operation.
func (m *Machine) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Machine) gate() error {
	if m.session.Authenticated() {
		return nil
	}
	m.nav.RedirectToLogin(CartRoute)
	return pkgerrors.New(pkgerrors.CodeAuthRequired, "sign in to manage your cart")
}

// Load replaces the snapshot with the gateway's cart. On failure the
// last good snapshot is retained and the machine enters the error state
// with a retryable reason.
func (m *Machine) Load(ctx context.Context) error {
	if err := m.gate(); err != nil {
		return err
	}

	m.mu.Lock()
	m.state = StateLoading
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	payload, err := m.gw.FetchCart(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return nil
	}
	if err != nil {
		m.state = StateError
		m.lastErr = err
		m.logg.Error(ctx, "cart load failed", err)
		return err
	}
	m.snap = Normalize(payload, m.defaults)
	m.itemSeq = map[int64]uint64{}
	m.state = StateReady
	m.lastErr = nil
	return nil
}

// SetQuantity optimistically sets an item's quantity, then confirms with
// the gateway. Quantities below 1 and unknown items are silent no-ops.
// A failed confirmation is surfaced retryable but the optimistic change
// stays; the next Load reconciles.
func (m *Machine) SetQuantity(ctx context.Context, itemID int64, quantity int) error {
	if quantity < 1 {
		return nil
	}
	if err := m.gate(); err != nil {
		return err
	}

	m.mu.Lock()
	idx := m.snap.indexOf(itemID)
	if idx < 0 {
		m.mu.Unlock()
		return nil
	}
	item := &m.snap.Items[idx]
	item.Quantity = quantity
	item.Subtotal = money.LineSubtotal(item.UnitPrice, quantity)
	m.snap.recompute()
	m.itemSeq[itemID]++
	seq := m.itemSeq[itemID]
	m.state = StateMutating
	m.mu.Unlock()

	err := m.gw.UpdateItemQuantity(ctx, itemID, quantity)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.itemSeq[itemID] != seq {
		// Superseded by a newer mutation; that one's confirmation governs.
		return nil
	}
	if err != nil {
		m.state = StateError
		m.lastErr = err
		m.logg.Error(m.logg.WithItemID(ctx, itemID), "quantity update failed", err)
		return err
	}
	if m.state == StateMutating {
		m.state = StateReady
	}
	m.lastErr = nil
	return nil
}

// RemoveItem optimistically drops a line item, then confirms with the
// gateway. Unknown items are a no-op.
func (m *Machine) RemoveItem(ctx context.Context, itemID int64) error {
	if err := m.gate(); err != nil {
		return err
	}

	m.mu.Lock()
	idx := m.snap.indexOf(itemID)
	if idx < 0 {
		m.mu.Unlock()
		return nil
	}
	m.snap.Items = append(m.snap.Items[:idx], m.snap.Items[idx+1:]...)
	m.snap.recompute()
	m.itemSeq[itemID]++
	seq := m.itemSeq[itemID]
	m.state = StateMutating
	m.mu.Unlock()

	err := m.gw.RemoveItem(ctx, itemID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.itemSeq[itemID] != seq {
		return nil
	}
	if err != nil {
		m.state = StateError
		m.lastErr = err
		m.logg.Error(m.logg.WithItemID(ctx, itemID), "item removal failed", err)
		return err
	}
	delete(m.itemSeq, itemID)
	if m.state == StateMutating {
		m.state = StateReady
	}
	m.lastErr = nil
	return nil
}

// Clear empties the cart after the user confirms. A declined
// confirmation aborts with no state change and no gateway call; callers
// treat the returned CONFIRMATION_DECLINED code as a silent abort.
func (m *Machine) Clear(ctx context.Context) error {
	if err := m.gate(); err != nil {
		return err
	}
	if !m.confirm.Confirm(clearPrompt) {
		return pkgerrors.New(pkgerrors.CodeConfirmationDenied, "clear cart declined")
	}
	return m.clear(ctx)
}

// ClearAfterOrder empties the cart without a confirmation prompt; the
// placed order already consumed it.
func (m *Machine) ClearAfterOrder(ctx context.Context) error {
	if err := m.gate(); err != nil {
		return err
	}
	return m.clear(ctx)
}

func (m *Machine) clear(ctx context.Context) error {
	m.mu.Lock()
	taxRate := m.snap.TaxRate
	if taxRate.IsZero() {
		taxRate = m.defaults.TaxRate
	}
	m.snap = emptySnapshot(taxRate)
	m.itemSeq = map[int64]uint64{}
	m.gen++
	gen := m.gen
	m.state = StateMutating
	m.mu.Unlock()

	err := m.gw.ClearCart(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return nil
	}
	if err != nil {
		m.state = StateError
		m.lastErr = err
		m.logg.Error(ctx, "cart clear failed", err)
		return err
	}
	m.state = StateReady
	m.lastErr = nil
	return nil
}

// AddItem puts a product in the cart and reloads, since item ids are
// server-assigned.
func (m *Machine) AddItem(ctx context.Context, productID int64, quantity int) error {
	if err := m.gate(); err != nil {
		return err
	}
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if err := m.gw.AddItem(ctx, productID, quantity); err != nil {
		m.mu.Lock()
		m.lastErr = err
		m.mu.Unlock()
		return err
	}
	return m.Load(ctx)
}
