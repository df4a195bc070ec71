package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/ayush/account-service/internal/models"
)

type ctxKey struct{}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFromContext returns the id stored by WithUserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.MessageResponse{Message: msg})
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	if _, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		h.fail(w, r, err)
		return
	}

	writeMessage(w, http.StatusCreated, "User registered successfully")
}

// Login authenticates a user and returns a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{Token: res.Token, Name: res.Name})
}

// ForgotPassword emails a reset link.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		h.fail(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Password reset link sent to your email")
}

// ResetPassword sets a new password using the token from the URL.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.Password); err != nil {
		h.fail(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Password reset successful")
}

// DeleteAccount removes the authenticated user's account.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.svc.DeleteAccount(r.Context(), userID); err != nil {
		h.fail(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Account deleted successfully")
}

const (
	maxBodyBytes = 1 << 20

	msgRequired        = "All fields are required"
	msgPasswordTooLong = "Password must be at most 72 bytes"
)

type validatable interface {
	Validate() error
}

// decode reads and validates a JSON body, answering 400 itself on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req validatable) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := req.Validate(); err != nil {
		h.logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
		msg := msgRequired
		if passwordTooLong(err) {
			msg = msgPasswordTooLong
		}
		writeMessage(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

func passwordTooLong(err error) bool {
	var fields validation.Errors
	if errors.As(err, &fields) {
		return errors.Is(fields["password"], models.ErrPasswordTooLong)
	}
	return errors.Is(err, models.ErrPasswordTooLong)
}

// fail maps a service error to a status and message. Unclassified errors are
// logged in full and answered with a generic 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	writeMessage(w, status, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrPasswordTooLong):
		return http.StatusBadRequest, msgPasswordTooLong
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, msgRequired
	case errors.Is(err, ErrDuplicateAccount):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid credentials"
	case errors.Is(err, ErrInvalidOrExpiredToken):
		return http.StatusBadRequest, "Invalid or expired token"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, ErrEmailDelivery):
		return http.StatusInternalServerError, "Email could not be sent"
	default:
		return http.StatusInternalServerError, "Server error"
	}
}
