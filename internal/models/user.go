package models

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Store-level sentinels shared by every UserStore backend.
var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// MaxPasswordBytes is the longest password bcrypt reads in full.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is reported for passwords over MaxPasswordBytes.
var ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

// User is an account record. ID is backend-specific (ObjectID hex or UUID).
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // bcrypt hash, never serialize
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest is the JSON body for POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the payload
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.By(notBlank)),
		validation.Field(&r.Email, validation.Required, validation.By(notBlank)),
		validation.Field(&r.Password, validation.Required, validation.By(notBlank), validation.By(maxPasswordBytes)),
	)
}

// LoginRequest is the JSON body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the payload
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.By(notBlank)),
		validation.Field(&r.Password, validation.Required, validation.By(notBlank)),
	)
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

// ForgotPasswordRequest is the JSON body for POST /api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// Validate checks the payload
func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.By(notBlank)),
	)
}

// ResetPasswordRequest is the JSON body for POST /api/auth/reset-password/{token}.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// Validate checks the payload
func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.By(notBlank), validation.By(maxPasswordBytes)),
	)
}

// MessageResponse is the body of every non-login response.
type MessageResponse struct {
	Message string `json:"message"`
}

// notBlank rejects whitespace-only values.
func notBlank(value interface{}) error {
	if s, _ := value.(string); strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

func maxPasswordBytes(value interface{}) error {
	if s, _ := value.(string); len(s) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
