package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"shellnote/internal/auth"
	apperrors "shellnote/internal/errors"
	"shellnote/internal/mail"
	"shellnote/internal/model"
	"shellnote/internal/repository"
)

const (
	bcryptCost        = 12
	minPasswordLength = 6
	resetTokenBytes   = 32
)

// RegisterInput carries everything a new account needs.
type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	AgreePrivacy   bool
	AgreeTerms     bool
	AgreeMarketing bool
}

// ResetRequestResult reports the outcome of a forgot-password request.
type ResetRequestResult struct {
	// ResetURL is only set when no mail transport is configured; it lets
	// development setups complete the flow without SMTP.
	ResetURL string
}

// AuthService handles registration, login, and the password-reset flow.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	CurrentUser(ctx context.Context, userID uint) (*model.User, error)
	RequestPasswordReset(ctx context.Context, email string) (*ResetRequestResult, error)
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
}

type authService struct {
	users      repository.UserRepository
	resets     repository.ResetTokenRepository
	jwtService *auth.JWTService
	mailer     mail.Mailer // nil means no transport configured
	throttle   *auth.Throttle
	appBaseURL string
	resetTTL   time.Duration
}

// NewAuthService creates a new authentication service. mailer may be nil;
// reset links are then returned in the response instead of emailed.
func NewAuthService(
	users repository.UserRepository,
	resets repository.ResetTokenRepository,
	jwtService *auth.JWTService,
	mailer mail.Mailer,
	throttle *auth.Throttle,
	appBaseURL string,
	resetTTL time.Duration,
) AuthService {
	return &authService{
		users:      users,
		resets:     resets,
		jwtService: jwtService,
		mailer:     mailer,
		throttle:   throttle,
		appBaseURL: appBaseURL,
		resetTTL:   resetTTL,
	}
}

// Register creates a new user with a hashed password and returns the public
// user plus a session token.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, string, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" || len(input.Password) < minPasswordLength {
		return nil, "", apperrors.ErrInvalidRegistration
	}

	// Friendly pre-check; the unique index remains the authority under races.
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, "", apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("check email existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:           name,
		Email:          email,
		PasswordHash:   string(hashedPassword),
		AgreePrivacy:   input.AgreePrivacy,
		AgreeTerms:     input.AgreeTerms,
		AgreeMarketing: input.AgreeMarketing,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateKey) {
			return nil, "", apperrors.ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtService.GenerateSessionToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("generate session token: %w", err)
	}
	return user, token, nil
}

// Login authenticates a user and returns the public user plus a session
// token. Unknown email and wrong password fail identically.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if !s.throttle.Allow(ctx, "login", email) {
		return nil, "", apperrors.ErrTooManyRequests
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateSessionToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("generate session token: %w", err)
	}
	return user, token, nil
}

// CurrentUser resolves the account behind a session. A token can outlive its
// account, so a missing row is a session problem, not a server error.
func (s *authService) CurrentUser(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// RequestPasswordReset issues a reset token for the account, if it exists.
// The result is indistinguishable for unknown emails so the endpoint cannot
// be used to enumerate accounts; only a broken mail transport surfaces as an
// error, since the operator must know delivery is failing.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) (*ResetRequestResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.ErrEmailRequired
	}
	if !s.throttle.Allow(ctx, "reset", email) {
		return nil, apperrors.ErrTooManyRequests
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Generic success; no token row is created.
			return &ResetRequestResult{}, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	rawToken, err := generateResetToken()
	if err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}

	token := &model.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashResetToken(rawToken),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("store reset token: %w", err)
	}

	resetURL := s.appBaseURL + "/reset-password?token=" + rawToken

	if s.mailer == nil {
		logrus.WithField("email", user.Email).Info("mail transport not configured, returning reset link in response")
		return &ResetRequestResult{ResetURL: resetURL}, nil
	}

	msg := mail.BuildResetEmail(resetURL, s.resetTTL)
	if err := s.mailer.Send(user.Email, msg.Subject, msg.Text, msg.HTML); err != nil {
		logrus.WithError(err).Error("password reset email delivery failed")
		return nil, apperrors.ErrMailDelivery
	}
	return &ResetRequestResult{}, nil
}

// ResetPassword consumes a reset token and replaces the user's password.
// A token that is unknown, expired, or already used fails; so does the loser
// of a concurrent double-submission of the same token.
func (s *authService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" || len(newPassword) < minPasswordLength {
		return apperrors.ErrInvalidResetRequest
	}

	token, err := s.resets.FindLatestByHash(ctx, hashResetToken(rawToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidResetToken
		}
		return fmt.Errorf("find reset token: %w", err)
	}
	if !token.Usable(time.Now()) {
		return apperrors.ErrInvalidResetToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.resets.Consume(ctx, token.ID, token.UserID, string(hashedPassword))
}

func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
