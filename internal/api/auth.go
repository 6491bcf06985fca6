package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the bearer token and its lifetime in seconds.
type LoginResult struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// Registration is the new-account payload.
type Registration struct {
	Username string `json:"username" validate:"required,min=3,max=40"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Profile is the account data behind the profile endpoints.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ProfileUpdate patches the account. An empty password leaves the
// current one in place.
type ProfileUpdate struct {
	Username string `json:"username" validate:"required,min=3,max=40"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// Validate checks the payload locally before it goes on the wire,
// returning field errors in the same shape the backend uses.
func (r Registration) Validate() []FieldError {
	return validateStruct(r)
}

// Validate checks the update payload locally.
func (u ProfileUpdate) Validate() []FieldError {
	return validateStruct(u)
}

func validateStruct(s interface{}) []FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var out []FieldError
	for _, ve := range err.(validator.ValidationErrors) {
		field := strings.ToLower(ve.Field())
		var msg string
		switch ve.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", field)
		case "email":
			msg = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			msg = fmt.Sprintf("%s must be at least %s characters", field, ve.Param())
		case "max":
			msg = fmt.Sprintf("%s must be at most %s characters", field, ve.Param())
		default:
			msg = fmt.Sprintf("%s is invalid", field)
		}
		out = append(out, FieldError{Path: field, Message: msg})
	}
	return out
}

// Login exchanges credentials for a bearer token. The caller is
// responsible for persisting it in the session store.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	var res LoginResult
	if err := c.doJSON(ctx, http.MethodPost, "/login", nil, creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	return c.doJSON(ctx, http.MethodPost, "/register", nil, reg, nil)
}

// GetProfile fetches the authenticated user's account data.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.doJSON(ctx, http.MethodGet, "/profile", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile patches the authenticated user's account data.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	return c.doJSON(ctx, http.MethodPatch, "/profile", nil, update, nil)
}

// DeleteProfile removes the account entirely.
func (c *Client) DeleteProfile(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/profile", nil, nil, nil)
}
