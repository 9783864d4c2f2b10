// Package models contains data structures for the application's domain models.
package models

import "time"

// AuthToken is a persistent, non-expiring opaque credential tied 1:1 to a
// user. The same key is re-used across logins; a user never holds more than
// one.
type AuthToken struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Key       string    `gorm:"unique;not null;size:40" json:"key"`
	UserID    uint      `gorm:"unique;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
