// Package session owns the authenticated identity for the client
// instance. The store is injected wherever authentication gates an
// operation; there is no ambient current-user global.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/amberfield/storefront-client/internal/gateway"
	pkgerrors "github.com/amberfield/storefront-client/pkg/errors"
	"github.com/amberfield/storefront-client/pkg/logger"
)

// Identity is the resolved authenticated user.
type Identity struct {
	ID    int64
	Name  string
	Email string
	Phone string
}

// Navigator models the routing collaborator. returnTo is the route the
// user should land on after a successful login.
type Navigator interface {
	RedirectToLogin(returnTo string)
}

type authGateway interface {
	Login(ctx context.Context, login, password string) (*gateway.LoginPayload, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*gateway.UserPayload, error)
}

type state int

const (
	stateResolving state = iota
	stateAnonymous
	stateAuthenticated
)

// Store holds exactly one of: not-yet-resolved, resolved-anonymous, or
// resolved-authenticated.
type Store struct {
	mu       sync.Mutex
	state    state
	identity *Identity
	token    string

	tokens TokenStore
	gw     authGateway
	logg   *logger.Logger
	now    func() time.Time
}

// StoreParams bundles the dependencies for a session store.
type StoreParams struct {
	Tokens  TokenStore
	Gateway authGateway
	Logger  *logger.Logger
}

func NewStore(params StoreParams) (*Store, error) {
	if params.Tokens == nil {
		return nil, fmt.Errorf("token store is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("auth gateway is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Store{
		state:  stateResolving,
		tokens: params.Tokens,
		gw:     params.Gateway,
		logg:   params.Logger,
		now:    time.Now,
	}, nil
}

// Token implements gateway.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Current returns the authenticated identity, or nil.
func (s *Store) Current() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// Authenticated reports whether a resolved identity is present.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateAuthenticated
}

// IsResolving reports whether the initial resolution is still pending.
func (s *Store) IsResolving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateResolving
}

// Resolve settles the session from the persisted token. A missing,
// expired, or rejected token resolves to anonymous; only a confirmed
// /user response resolves to authenticated.
func (s *Store) Resolve(ctx context.Context) error {
	token, err := s.tokens.Load()
	if err != nil {
		s.settleAnonymous()
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load persisted token")
	}
	if token == "" {
		s.settleAnonymous()
		return nil
	}
	if tokenExpired(token, s.now()) {
		s.logg.Info(ctx, "persisted token expired, discarding")
		_ = s.tokens.Clear()
		s.settleAnonymous()
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	user, err := s.gw.CurrentUser(ctx)
	if err != nil {
		s.logg.Warn(ctx, "persisted token rejected, discarding")
		_ = s.tokens.Clear()
		s.settleAnonymous()
		if pkgerrors.HasCode(err, pkgerrors.CodeAuthRequired) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.state = stateAuthenticated
	s.identity = identityFromPayload(user)
	s.mu.Unlock()
	return nil
}

// Login authenticates and persists the returned token. identifier
// accepts an email or a phone number.
func (s *Store) Login(ctx context.Context, identifier, password string) (*Identity, error) {
	payload, err := s.gw.Login(ctx, identifier, password)
	if err != nil {
		return nil, err
	}
	if err := s.adopt(payload.Token, identityFromPayload(&payload.User)); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithUserID(ctx, payload.User.ID), "logged in")
	return s.Current(), nil
}

// Adopt installs a session obtained outside Login, e.g. from
// registration.
func (s *Store) Adopt(token string, id Identity) error {
	return s.adopt(token, &id)
}

func (s *Store) adopt(token string, id *Identity) error {
	s.mu.Lock()
	s.state = stateAuthenticated
	s.identity = id
	s.token = token
	s.mu.Unlock()
	return s.tokens.Save(token)
}

// Logout invalidates the token remotely on a best-effort basis, then
// unconditionally clears the local session.
func (s *Store) Logout(ctx context.Context) error {
	var errs error
	if err := s.gw.Logout(ctx); err != nil {
		s.logg.Warn(ctx, "remote logout failed, clearing local session anyway")
		errs = multierr.Append(errs, err)
	}

	s.mu.Lock()
	s.state = stateAnonymous
	s.identity = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.tokens.Clear(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// Invalidate drops the local session without a remote call. Wired as the
// gateway's unauthorized hook so a 401 anywhere logs the user out
// locally.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.state = stateAnonymous
	s.identity = nil
	s.token = ""
	s.mu.Unlock()
	_ = s.tokens.Clear()
}

func (s *Store) settleAnonymous() {
	s.mu.Lock()
	s.state = stateAnonymous
	s.identity = nil
	s.token = ""
	s.mu.Unlock()
}

func identityFromPayload(user *gateway.UserPayload) *Identity {
	if user == nil {
		return nil
	}
	return &Identity{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Phone: user.PhoneNumber,
	}
}
