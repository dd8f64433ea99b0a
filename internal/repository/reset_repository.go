package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	apperrors "shellnote/internal/errors"
	"shellnote/internal/model"
)

// ResetTokenRepository defines password-reset token persistence.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *model.PasswordResetToken) error
	// FindLatestByHash returns the most recent row for a token hash;
	// multiple live rows per user are allowed and the most recent wins.
	FindLatestByHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error)
	// Consume marks the token used and updates the user's password hash in
	// one transaction. The conditional update on used_at makes a concurrent
	// second consume of the same token fail with ErrInvalidResetToken.
	Consume(ctx context.Context, tokenID, userID uint, passwordHash string) error
}

type resetTokenRepository struct {
	db *gorm.DB
}

// NewResetTokenRepository builds a GORM-backed repository.
func NewResetTokenRepository(db *gorm.DB) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

func (r *resetTokenRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *resetTokenRepository) FindLatestByHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	var token model.PasswordResetToken
	if err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		Order("id DESC").
		First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *resetTokenRepository) Consume(ctx context.Context, tokenID, userID uint, passwordHash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.PasswordResetToken{}).
			Where("id = ? AND used_at IS NULL", tokenID).
			Update("used_at", time.Now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race against another consume of the same token.
			return apperrors.ErrInvalidResetToken
		}

		return tx.Model(&model.User{}).
			Where("id = ?", userID).
			Update("password_hash", passwordHash).Error
	})
}
