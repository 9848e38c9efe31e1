package gateway

import (
	"context"
	"net/http"
)

// UserPayload is the authenticated user as returned by GET /user and the
// login/register endpoints.
type UserPayload struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginPayload is the response to POST /login and POST /register.
type LoginPayload struct {
	Token string      `json:"token"`
	User  UserPayload `json:"user"`
}

// Login exchanges credentials for a bearer token. The login field accepts
// an email or a phone number.
func (c *Client) Login(ctx context.Context, login, password string) (*LoginPayload, error) {
	var payload LoginPayload
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/login",
		body:   loginRequest{Login: login, Password: password},
	}, &payload)
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

// Logout invalidates the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/logout"}, nil)
}

// CurrentUser resolves the identity behind the current token.
func (c *Client) CurrentUser(ctx context.Context) (*UserPayload, error) {
	var payload UserPayload
	if err := c.do(ctx, request{method: http.MethodGet, path: "/user"}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// RegisterInput is the payload for POST /register.
type RegisterInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Register creates an account and returns a session like Login does.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*LoginPayload, error) {
	var payload LoginPayload
	if err := c.do(ctx, request{method: http.MethodPost, path: "/register", body: input}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// UpdateProfileInput carries the editable profile fields for PUT /user.
type UpdateProfileInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// UpdateProfile updates the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*UserPayload, error) {
	var payload UserPayload
	if err := c.do(ctx, request{method: http.MethodPut, path: "/user", body: input}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
