package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// ChatRepository defines persistence operations for Telegram identities.
type ChatRepository interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.TelegramUser, error)
	Create(ctx context.Context, tu *models.TelegramUser) error
	Link(ctx context.Context, tu *models.TelegramUser, userID uint) error
	Count(ctx context.Context) (int64, error)
	CountLinked(ctx context.Context) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository returns a new ChatRepository implementation.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.TelegramUser, error) {
	var tu models.TelegramUser
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&tu).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &tu, nil
}

func (r *chatRepository) Create(ctx context.Context, tu *models.TelegramUser) error {
	if err := r.db.WithContext(ctx).Create(tu).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Telegram identity already registered")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Link sets the account back-reference. The reference is written once and
// never cleared; callers must only invoke this on an unlinked identity.
func (r *chatRepository) Link(ctx context.Context, tu *models.TelegramUser, userID uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.TelegramUser{}).
		Where("id = ? AND user_id IS NULL", tu.ID).
		Update("user_id", userID)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewValidationError("Telegram identity already linked")
	}
	tu.UserID = &userID
	return nil
}

func (r *chatRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.TelegramUser{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *chatRepository) CountLinked(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TelegramUser{}).
		Where("user_id IS NOT NULL").
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
