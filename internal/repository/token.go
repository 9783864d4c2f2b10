package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// TokenRepository defines persistence operations for opaque auth tokens.
type TokenRepository interface {
	GetOrCreate(ctx context.Context, userID uint) (*models.AuthToken, error)
	GetByKey(ctx context.Context, key string) (*models.AuthToken, error)
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository returns a new TokenRepository implementation.
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

// GetOrCreate returns the user's opaque token, minting one on first use.
// The key is stable across logins.
func (r *tokenRepository) GetOrCreate(ctx context.Context, userID uint) (*models.AuthToken, error) {
	var token models.AuthToken
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&token).Error
	if err == nil {
		return &token, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}

	key, err := generateTokenKey()
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	token = models.AuthToken{Key: key, UserID: userID}
	if err := r.db.WithContext(ctx).Create(&token).Error; err != nil {
		if isUniqueConstraintError(err) {
			// Lost a race with a concurrent login; re-read the winner's row.
			if rerr := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&token).Error; rerr == nil {
				return &token, nil
			}
		}
		return nil, models.NewInternalError(err)
	}
	return &token, nil
}

func (r *tokenRepository) GetByKey(ctx context.Context, key string) (*models.AuthToken, error) {
	var token models.AuthToken
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &token, nil
}

// generateTokenKey returns a 40-hex-character random key.
func generateTokenKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
