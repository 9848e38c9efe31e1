// Package account handles registration and profile edits. Credentials
// are validated locally before the gateway sees them so the user gets
// field-level feedback without a round trip.
package account

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/amberfield/storefront-client/internal/gateway"
	"github.com/amberfield/storefront-client/internal/session"
	pkgerrors "github.com/amberfield/storefront-client/pkg/errors"
	"github.com/amberfield/storefront-client/pkg/logger"
)

type accountGateway interface {
	Register(ctx context.Context, input gateway.RegisterInput) (*gateway.LoginPayload, error)
	UpdateProfile(ctx context.Context, input gateway.UpdateProfileInput) (*gateway.UserPayload, error)
}

// SessionSink is the slice of the session store the account service
// writes through.
type SessionSink interface {
	Authenticated() bool
	Adopt(token string, id session.Identity) error
}

// Service registers accounts and edits profiles.
type Service struct {
	gw      accountGateway
	session SessionSink
	logg    *logger.Logger
}

// ServiceParams bundles the account service's dependencies.
type ServiceParams struct {
	Gateway accountGateway
	Session SessionSink
	Logger  *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if params.Session == nil {
		return nil, fmt.Errorf("session sink is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{gw: params.Gateway, session: params.Session, logg: params.Logger}, nil
}

// RegisterInput carries the signup form fields.
type RegisterInput struct {
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Register validates the signup form, creates the account, and adopts
// the returned session so the new user is signed in immediately.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*session.Identity, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := validate.Struct(&input); err != nil {
		return nil, formatValidationErrors(err)
	}

	payload, err := s.gw.Register(ctx, gateway.RegisterInput{
		Name:                 input.Name,
		Email:                input.Email,
		Password:             input.Password,
		PasswordConfirmation: input.PasswordConfirmation,
	})
	if err != nil {
		return nil, err
	}

	id := session.Identity{
		ID:    payload.User.ID,
		Name:  payload.User.Name,
		Email: payload.User.Email,
		Phone: payload.User.PhoneNumber,
	}
	if err := s.session.Adopt(payload.Token, id); err != nil {
		// The account exists server-side; only the local session is
		// missing, so surface the persistence failure.
		return nil, err
	}
	lctx := s.logg.WithUserID(ctx, id.ID)
	s.logg.Info(lctx, "account registered")
	return &id, nil
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone_number"`
}

// UpdateProfile edits the signed-in user's profile.
func (s *Service) UpdateProfile(ctx context.Context, input ProfileInput) (*session.Identity, error) {
	if !s.session.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeAuthRequired, "sign in to edit your profile")
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := validate.Struct(&input); err != nil {
		return nil, formatValidationErrors(err)
	}

	payload, err := s.gw.UpdateProfile(ctx, gateway.UpdateProfileInput{
		Name:        input.Name,
		Email:       input.Email,
		PhoneNumber: input.Phone,
	})
	if err != nil {
		return nil, err
	}
	return &session.Identity{
		ID:    payload.ID,
		Name:  payload.Name,
		Email: payload.Email,
		Phone: payload.PhoneNumber,
	}, nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "account form is invalid").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "account form is invalid")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "eqfield":
		return "must match the password"
	}
	return "is invalid"
}
