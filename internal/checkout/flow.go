// Package checkout drives the order submission flow: open a form over a
// non-empty cart, validate, submit, and clear the cart on success.
package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/amberfield/storefront-client/internal/cart"
	"github.com/amberfield/storefront-client/internal/gateway"
	"github.com/amberfield/storefront-client/internal/session"
	pkgerrors "github.com/amberfield/storefront-client/pkg/errors"
	"github.com/amberfield/storefront-client/pkg/logger"
)

// CheckoutRoute is the return destination remembered when an
// unauthenticated viewer is sent to login.
const CheckoutRoute = "/checkout"

// FlowState is the checkout flow's lifecycle position.
type FlowState int

const (
	FlowClosed FlowState = iota
	FlowOpen
	FlowSubmitting
)

func (s FlowState) String() string {
	switch s {
	case FlowClosed:
		return "closed"
	case FlowOpen:
		return "open"
	case FlowSubmitting:
		return "submitting"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// SessionGate answers whether a viewer is signed in.
type SessionGate interface {
	Authenticated() bool
}

// CartController is the slice of the cart machine checkout needs.
type CartController interface {
	State() cart.State
	Snapshot() cart.Snapshot
	ClearAfterOrder(ctx context.Context) error
}

// OrdersGateway places orders.
type OrdersGateway interface {
	CreateOrder(ctx context.Context, input gateway.CreateOrderInput, idempotencyKey string) (*gateway.OrderPayload, error)
}

// Flow is the checkout state machine.
type Flow struct {
	mu          sync.Mutex
	state       FlowState
	form        *Form
	lastOrderID int64

	session SessionGate
	nav     session.Navigator
	cart    CartController
	gw      OrdersGateway
	logg    *logger.Logger
}

// FlowParams bundles the checkout flow's dependencies.
type FlowParams struct {
	Session   SessionGate
	Navigator session.Navigator
	Cart      CartController
	Gateway   OrdersGateway
	Logger    *logger.Logger
}

func NewFlow(params FlowParams) (*Flow, error) {
	if params.Session == nil {
		return nil, fmt.Errorf("session gate is required")
	}
	if params.Navigator == nil {
		return nil, fmt.Errorf("navigator is required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart controller is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("orders gateway is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Flow{
		state:   FlowClosed,
		session: params.Session,
		nav:     params.Navigator,
		cart:    params.Cart,
		gw:      params.Gateway,
		logg:    params.Logger,
	}, nil
}

// State returns the flow's current state.
func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Form returns the live form while the flow is open, nil otherwise.
func (f *Flow) Form() *Form {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// LastOrderID returns the id of the most recently placed order, 0 when
// none has been placed.
func (f *Flow) LastOrderID() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOrderID
}

// Open starts a checkout over the current cart. The cart must be loaded
// and non-empty.
func (f *Flow) Open() error {
	if !f.session.Authenticated() {
		f.nav.RedirectToLogin(CheckoutRoute)
		return pkgerrors.New(pkgerrors.CodeAuthRequired, "sign in to check out")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != FlowClosed {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already in progress")
	}
	if f.cart.State() != cart.StateReady || f.cart.Snapshot().IsEmpty() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}
	f.form = NewForm()
	f.state = FlowOpen
	return nil
}

// UpdateField applies one field edit to the open form.
func (f *Flow) UpdateField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != FlowOpen {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not open")
	}
	return f.form.SetField(name, value)
}

// Submit validates the form and places the order. On success the cart is
// cleared server-side (no re-confirmation: the order consumed it) and
// the flow closes; on failure the flow returns to open with the entered
// values preserved.
func (f *Flow) Submit(ctx context.Context) (int64, error) {
	if !f.session.Authenticated() {
		f.nav.RedirectToLogin(CheckoutRoute)
		return 0, pkgerrors.New(pkgerrors.CodeAuthRequired, "sign in to check out")
	}

	f.mu.Lock()
	if f.state != FlowOpen {
		f.mu.Unlock()
		return 0, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not open")
	}
	if err := f.form.Validate(); err != nil {
		f.mu.Unlock()
		return 0, err
	}
	input := f.form.orderInput()
	f.state = FlowSubmitting
	f.mu.Unlock()

	idempotencyKey := uuid.NewString()
	order, err := f.gw.CreateOrder(ctx, input, idempotencyKey)

	f.mu.Lock()
	if err != nil {
		f.state = FlowOpen
		f.mu.Unlock()
		f.logg.Error(ctx, "order submission failed", err)
		return 0, err
	}
	f.lastOrderID = order.ID
	f.state = FlowClosed
	f.form = nil
	f.mu.Unlock()

	lctx := f.logg.WithOrderID(ctx, order.ID)
	f.logg.Info(lctx, "order placed")
	if err := f.cart.ClearAfterOrder(ctx); err != nil {
		// The order went through; a failed clear only leaves a stale
		// cart that the next load reconciles.
		f.logg.Warn(lctx, "cart clear after order failed")
	}
	return order.ID, nil
}

// Cancel discards the form and closes the flow. Not permitted while a
// submission is in flight.
func (f *Flow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FlowSubmitting {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "submission in progress")
	}
	f.form = nil
	f.state = FlowClosed
	return nil
}
