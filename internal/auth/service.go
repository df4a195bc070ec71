package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayush/account-service/internal/models"
)

// UserStore defines the interface for user persistence. Implementations
// return models.ErrNotFound and models.ErrDuplicateEmail.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, id, hashedPassword string) error
	DeleteByID(ctx context.Context, id string) error
}

// Notifier delivers the password reset link.
type Notifier interface {
	SendResetEmail(ctx context.Context, to, name, link string) error
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token string
	Name  string
}

// Service implements register, login, password reset and account deletion.
type Service struct {
	users     UserStore
	hasher    PasswordHasher
	tokens    *TokenService
	notifier  Notifier
	clientURL string
	logger    *zap.Logger

	// compared against when the email is unknown so both login failures cost one bcrypt check
	dummyHash string
}

// NewService wires the service. clientURL is the base of the emailed reset link.
func NewService(users UserStore, hasher PasswordHasher, tokens *TokenService, notifier Notifier, clientURL string, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &Service{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		notifier:  notifier,
		clientURL: strings.TrimRight(clientURL, "/"),
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

// Register creates an account. No token is issued.
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if blank(name) || blank(email) || blank(password) {
		return nil, ErrValidation
	}

	// best-effort; the store's unique constraint is authoritative
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrDuplicateAccount
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &models.User{Name: name, Email: email, Password: hashed})
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login checks credentials and issues a session token. Unknown email and wrong
// password are reported identically.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if blank(email) || blank(password) {
		return nil, ErrValidation
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if !s.hasher.Verify(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(Payload{UserID: user.ID, Name: user.Name, Purpose: PurposeSession}, SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	return &LoginResult{Token: token, Name: user.Name}, nil
}

// ForgotPassword emails a reset link carrying a 15 minute reset token.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if blank(email) {
		return ErrValidation
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("lookup email: %w", err)
	}

	token, err := s.tokens.Issue(Payload{UserID: user.ID, Purpose: PurposeReset}, ResetTTL)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	if err := s.notifier.SendResetEmail(ctx, user.Email, user.Name, s.ResetLink(token)); err != nil {
		return fmt.Errorf("%w: %w", ErrEmailDelivery, err)
	}

	s.logger.Info("password reset email sent", zap.String("user_id", user.ID))
	return nil
}

// ResetLink builds the client URL a reset token is delivered in.
func (s *Service) ResetLink(token string) string {
	return s.clientURL + "/reset-password/" + url.PathEscape(token)
}

// ResetPassword replaces the password of the account named by token.
// The token is not consumed and can be replayed until it expires.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if blank(newPassword) {
		return ErrValidation
	}

	claims, err := s.tokens.Verify(token, PurposeReset)
	if err != nil {
		if errors.Is(err, ErrInvalidOrExpiredToken) {
			s.logger.Info("reset token rejected", zap.Error(err))
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("verify reset token: %w", err)
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, claims.UserID, hashed); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("password reset", zap.String("user_id", claims.UserID))
	return nil
}

// DeleteAccount removes the account of an already authenticated caller.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if err := s.users.DeleteByID(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("account deleted", zap.String("user_id", userID))
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
