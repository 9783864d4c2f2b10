// Package models contains data structures for the application's domain models.
package models

import "time"

// TelegramUser represents one user of the Telegram platform, keyed by the
// platform-assigned numeric ID. UserID is an optional back-reference to a
// registered account: it is set at most once, opportunistically, when the
// Telegram handle matches an existing username, and is never cleared.
type TelegramUser struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TelegramID int64     `gorm:"unique;not null" json:"telegram_id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	UserID     *uint     `gorm:"index" json:"user_id,omitempty"`
	User       *User     `gorm:"foreignKey:UserID" json:"-"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}
