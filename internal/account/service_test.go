package account

import (
	"context"
	"io"
	"testing"

	"github.com/amberfield/storefront-client/internal/gateway"
	"github.com/amberfield/storefront-client/internal/session"
	pkgerrors "github.com/amberfield/storefront-client/pkg/errors"
	"github.com/amberfield/storefront-client/pkg/logger"
)

type stubAccountGateway struct {
	registerCalls int
	updateCalls   int
	lastRegister  gateway.RegisterInput
	lastUpdate    gateway.UpdateProfileInput
	loginPayload  *gateway.LoginPayload
	userPayload   *gateway.UserPayload
	err           error
}

func (s *stubAccountGateway) Register(ctx context.Context, input gateway.RegisterInput) (*gateway.LoginPayload, error) {
	s.registerCalls++
	s.lastRegister = input
	if s.err != nil {
		return nil, s.err
	}
	return s.loginPayload, nil
}

func (s *stubAccountGateway) UpdateProfile(ctx context.Context, input gateway.UpdateProfileInput) (*gateway.UserPayload, error) {
	s.updateCalls++
	s.lastUpdate = input
	if s.err != nil {
		return nil, s.err
	}
	return s.userPayload, nil
}

type stubSessionSink struct {
	authenticated bool
	adoptedToken  string
	adoptedID     session.Identity
	adoptErr      error
}

func (s *stubSessionSink) Authenticated() bool { return s.authenticated }

func (s *stubSessionSink) Adopt(token string, id session.Identity) error {
	if s.adoptErr != nil {
		return s.adoptErr
	}
	s.adoptedToken = token
	s.adoptedID = id
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "account-test", Output: io.Discard})
}

func newTestService(t *testing.T, gw *stubAccountGateway, sink *stubSessionSink) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Gateway: gw, Session: sink, Logger: testLogger()})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Name:                 "Ada Vendor",
		Email:                "ada@example.com",
		Password:             "hunter2hunter2",
		PasswordConfirmation: "hunter2hunter2",
	}
}

func TestRegisterAdoptsSession(t *testing.T) {
	gw := &stubAccountGateway{loginPayload: &gateway.LoginPayload{
		Token: "fresh-token",
		User:  gateway.UserPayload{ID: 42, Name: "Ada Vendor", Email: "ada@example.com"},
	}}
	sink := &stubSessionSink{}
	svc := newTestService(t, gw, sink)

	id, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.ID != 42 {
		t.Fatalf("unexpected identity %+v", id)
	}
	if sink.adoptedToken != "fresh-token" || sink.adoptedID.ID != 42 {
		t.Fatalf("session not adopted: token=%q id=%+v", sink.adoptedToken, sink.adoptedID)
	}
	if gw.lastRegister.Email != "ada@example.com" {
		t.Fatalf("unexpected register payload %+v", gw.lastRegister)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	gw := &stubAccountGateway{}
	svc := newTestService(t, gw, &stubSessionSink{})

	input := validRegisterInput()
	input.Password = "short"
	input.PasswordConfirmation = "short"
	_, err := svc.Register(context.Background(), input)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	coded := pkgerrors.As(err)
	if coded == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	details, ok := coded.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %#v", coded.Details())
	}
	if details["password"] == "" {
		t.Fatalf("expected a password detail, got %v", details)
	}
	if gw.registerCalls != 0 {
		t.Fatalf("gateway must not be called on validation failure")
	}
}

func TestRegisterRejectsMismatchedConfirmation(t *testing.T) {
	gw := &stubAccountGateway{}
	svc := newTestService(t, gw, &stubSessionSink{})

	input := validRegisterInput()
	input.PasswordConfirmation = "different-password"
	_, err := svc.Register(context.Background(), input)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if gw.registerCalls != 0 {
		t.Fatalf("gateway must not be called on validation failure")
	}
}

func TestRegisterRejectsBadEmail(t *testing.T) {
	svc := newTestService(t, &stubAccountGateway{}, &stubSessionSink{})

	input := validRegisterInput()
	input.Email = "not-an-email"
	if _, err := svc.Register(context.Background(), input); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestRegisterSurfacesAdoptFailure(t *testing.T) {
	gw := &stubAccountGateway{loginPayload: &gateway.LoginPayload{Token: "tok", User: gateway.UserPayload{ID: 1}}}
	sink := &stubSessionSink{adoptErr: pkgerrors.New(pkgerrors.CodeInternal, "disk full")}
	svc := newTestService(t, gw, sink)

	if _, err := svc.Register(context.Background(), validRegisterInput()); !pkgerrors.HasCode(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected INTERNAL_ERROR, got %v", err)
	}
}

func TestUpdateProfileRequiresSession(t *testing.T) {
	gw := &stubAccountGateway{}
	svc := newTestService(t, gw, &stubSessionSink{authenticated: false})

	_, err := svc.UpdateProfile(context.Background(), ProfileInput{Name: "Ada", Email: "ada@example.com"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeAuthRequired) {
		t.Fatalf("expected AUTH_REQUIRED, got %v", err)
	}
	if gw.updateCalls != 0 {
		t.Fatalf("gateway must not be called without a session")
	}
}

func TestUpdateProfileReturnsServerIdentity(t *testing.T) {
	gw := &stubAccountGateway{userPayload: &gateway.UserPayload{
		ID: 7, Name: "Ada V.", Email: "ada@example.com", PhoneNumber: "+15550100",
	}}
	svc := newTestService(t, gw, &stubSessionSink{authenticated: true})

	id, err := svc.UpdateProfile(context.Background(), ProfileInput{
		Name:  "  Ada V.  ",
		Email: "ada@example.com",
		Phone: "+15550100",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Name != "Ada V." || id.Phone != "+15550100" {
		t.Fatalf("unexpected identity %+v", id)
	}
	if gw.lastUpdate.Name != "Ada V." {
		t.Fatalf("input must be trimmed before sending, got %q", gw.lastUpdate.Name)
	}
}
