package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"shellnote/internal/auth"
	apperrors "shellnote/internal/errors"
	"shellnote/internal/mail"
	"shellnote/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

// MockResetTokenRepository is a mock implementation of ResetTokenRepository.
type MockResetTokenRepository struct {
	mock.Mock
}

func (m *MockResetTokenRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockResetTokenRepository) FindLatestByHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PasswordResetToken), args.Error(1)
}

func (m *MockResetTokenRepository) Consume(ctx context.Context, tokenID, userID uint, passwordHash string) error {
	args := m.Called(ctx, tokenID, userID, passwordHash)
	return args.Error(0)
}

// MockMailer is a mock implementation of mail.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(to, subject, textBody, htmlBody string) error {
	args := m.Called(to, subject, textBody, htmlBody)
	return args.Error(0)
}

func newTestAuthService(users *MockUserRepository, resets *MockResetTokenRepository, mailer *MockMailer) AuthService {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	throttle := auth.NewThrottle(nil, 10, time.Minute)
	// A typed nil mock would not compare equal to nil through the interface.
	var m mail.Mailer
	if mailer != nil {
		m = mailer
	}
	return NewAuthService(users, resets, jwtService, m, throttle, "http://127.0.0.1:5177", 30*time.Minute)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name: "successful registration",
			input: RegisterInput{
				Name:         "Test User",
				Email:        "test@example.com",
				Password:     "password123",
				AgreePrivacy: true,
				AgreeTerms:   true,
			},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "email already exists",
			input: RegisterInput{
				Name:     "Existing User",
				Email:    "existing@example.com",
				Password: "password123",
			},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name: "concurrent registration loses the insert race",
			input: RegisterInput{
				Name:     "Racer",
				Email:    "race@example.com",
				Password: "password123",
			},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(apperrors.ErrDuplicateKey)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name: "password too short",
			input: RegisterInput{
				Name:     "Test User",
				Email:    "test@example.com",
				Password: "short",
			},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrInvalidRegistration,
		},
		{
			name: "missing name",
			input: RegisterInput{
				Email:    "test@example.com",
				Password: "password123",
			},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrInvalidRegistration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			mockResets := new(MockResetTokenRepository)
			tt.setupMock(mockUsers)

			svc := newTestAuthService(mockUsers, mockResets, nil)
			user, token, err := svc.Register(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.NotEmpty(t, token)
				assert.Equal(t, tt.input.Email, user.Email)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, tt.input.Password, user.PasswordHash)
			}

			mockUsers.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           1,
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
				}, nil)
			},
			expectedError: nil,
		},
		{
			name:     "unknown email",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "not-the-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           1,
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			mockResets := new(MockResetTokenRepository)
			tt.setupMock(mockUsers)

			svc := newTestAuthService(mockUsers, mockResets, nil)
			user, token, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.NotEmpty(t, token)
			}

			mockUsers.AssertExpectations(t)
		})
	}
}

func TestAuthService_CurrentUser(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name: "existing account",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(42)).Return(&model.User{
					ID:    42,
					Email: "test@example.com",
				}, nil)
			},
		},
		{
			name: "account deleted after the token was issued",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			mockResets := new(MockResetTokenRepository)
			tt.setupMock(mockUsers)

			svc := newTestAuthService(mockUsers, mockResets, nil)
			user, err := svc.CurrentUser(context.Background(), 42)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, uint(42), user.ID)
			}

			mockUsers.AssertExpectations(t)
		})
	}
}

func TestAuthService_RequestPasswordReset_UnknownEmail(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockResets := new(MockResetTokenRepository)
	mockUsers.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

	svc := newTestAuthService(mockUsers, mockResets, nil)
	result, err := svc.RequestPasswordReset(context.Background(), "ghost@example.com")

	// Indistinguishable success, and no token row is ever written.
	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result.ResetURL)
	mockResets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockUsers.AssertExpectations(t)
}

func TestAuthService_RequestPasswordReset_NoMailTransport(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockResets := new(MockResetTokenRepository)
	mockUsers.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
		ID:    1,
		Email: "test@example.com",
	}, nil)

	var stored *model.PasswordResetToken
	mockResets.On("Create", mock.Anything, mock.AnythingOfType("*model.PasswordResetToken")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*model.PasswordResetToken)
		}).Return(nil)

	svc := newTestAuthService(mockUsers, mockResets, nil)
	result, err := svc.RequestPasswordReset(context.Background(), "test@example.com")

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Contains(t, result.ResetURL, "http://127.0.0.1:5177/reset-password?token=")
	assert.NotNil(t, stored)
	assert.Equal(t, uint(1), stored.UserID)
	// Only the hash is stored, never the raw token from the URL.
	rawToken := strings.TrimPrefix(result.ResetURL, "http://127.0.0.1:5177/reset-password?token=")
	assert.Len(t, rawToken, 64)
	assert.NotEqual(t, rawToken, stored.TokenHash)
	assert.Len(t, stored.TokenHash, 64)
	assert.True(t, stored.ExpiresAt.After(time.Now()))
}

func TestAuthService_RequestPasswordReset_MailSent(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockResets := new(MockResetTokenRepository)
	mockMailer := new(MockMailer)
	mockUsers.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
		ID:    1,
		Email: "test@example.com",
	}, nil)
	mockResets.On("Create", mock.Anything, mock.AnythingOfType("*model.PasswordResetToken")).Return(nil)
	mockMailer.On("Send", "test@example.com", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newTestAuthService(mockUsers, mockResets, mockMailer)
	result, err := svc.RequestPasswordReset(context.Background(), "test@example.com")

	assert.NoError(t, err)
	assert.NotNil(t, result)
	// The link travels by mail, never in the response.
	assert.Empty(t, result.ResetURL)
	mockMailer.AssertExpectations(t)
}

func TestAuthService_RequestPasswordReset_MailFailure(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockResets := new(MockResetTokenRepository)
	mockMailer := new(MockMailer)
	mockUsers.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
		ID:    1,
		Email: "test@example.com",
	}, nil)
	mockResets.On("Create", mock.Anything, mock.AnythingOfType("*model.PasswordResetToken")).Return(nil)
	mockMailer.On("Send", "test@example.com", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp: connection refused"))

	svc := newTestAuthService(mockUsers, mockResets, mockMailer)
	result, err := svc.RequestPasswordReset(context.Background(), "test@example.com")

	assert.ErrorIs(t, err, apperrors.ErrMailDelivery)
	assert.Nil(t, result)
}

func TestAuthService_ResetPassword(t *testing.T) {
	now := time.Now()
	used := now.Add(-time.Minute)

	tests := []struct {
		name          string
		rawToken      string
		password      string
		setupMock     func(*MockResetTokenRepository)
		expectedError error
	}{
		{
			name:     "successful reset",
			rawToken: "raw-token",
			password: "newpassword",
			setupMock: func(m *MockResetTokenRepository) {
				m.On("FindLatestByHash", mock.Anything, mock.AnythingOfType("string")).Return(&model.PasswordResetToken{
					ID:        7,
					UserID:    1,
					ExpiresAt: now.Add(10 * time.Minute),
				}, nil)
				m.On("Consume", mock.Anything, uint(7), uint(1), mock.AnythingOfType("string")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:          "missing token",
			rawToken:      "",
			password:      "newpassword",
			setupMock:     func(m *MockResetTokenRepository) {},
			expectedError: apperrors.ErrInvalidResetRequest,
		},
		{
			name:          "password too short",
			rawToken:      "raw-token",
			password:      "short",
			setupMock:     func(m *MockResetTokenRepository) {},
			expectedError: apperrors.ErrInvalidResetRequest,
		},
		{
			name:     "unknown token",
			rawToken: "raw-token",
			password: "newpassword",
			setupMock: func(m *MockResetTokenRepository) {
				m.On("FindLatestByHash", mock.Anything, mock.AnythingOfType("string")).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidResetToken,
		},
		{
			name:     "expired token",
			rawToken: "raw-token",
			password: "newpassword",
			setupMock: func(m *MockResetTokenRepository) {
				m.On("FindLatestByHash", mock.Anything, mock.AnythingOfType("string")).Return(&model.PasswordResetToken{
					ID:        7,
					UserID:    1,
					ExpiresAt: now.Add(-time.Minute),
				}, nil)
			},
			expectedError: apperrors.ErrInvalidResetToken,
		},
		{
			name:     "already used token",
			rawToken: "raw-token",
			password: "newpassword",
			setupMock: func(m *MockResetTokenRepository) {
				m.On("FindLatestByHash", mock.Anything, mock.AnythingOfType("string")).Return(&model.PasswordResetToken{
					ID:        7,
					UserID:    1,
					ExpiresAt: now.Add(10 * time.Minute),
					UsedAt:    &used,
				}, nil)
			},
			expectedError: apperrors.ErrInvalidResetToken,
		},
		{
			name:     "concurrent consume loses the race",
			rawToken: "raw-token",
			password: "newpassword",
			setupMock: func(m *MockResetTokenRepository) {
				m.On("FindLatestByHash", mock.Anything, mock.AnythingOfType("string")).Return(&model.PasswordResetToken{
					ID:        7,
					UserID:    1,
					ExpiresAt: now.Add(10 * time.Minute),
				}, nil)
				m.On("Consume", mock.Anything, uint(7), uint(1), mock.AnythingOfType("string")).
					Return(apperrors.ErrInvalidResetToken)
			},
			expectedError: apperrors.ErrInvalidResetToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			mockResets := new(MockResetTokenRepository)
			tt.setupMock(mockResets)

			svc := newTestAuthService(mockUsers, mockResets, nil)
			err := svc.ResetPassword(context.Background(), tt.rawToken, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}

			mockResets.AssertExpectations(t)
		})
	}
}
