package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// SessionToken is one entry of the visitor-scoped key-value token storage.
// Exactly two keys exist per visitor (user_token, admin_token) and each row
// is independently owned by its role: writes are last-writer-wins and need
// no transactional coordination.
type SessionToken struct {
	BaseModel
	SID       string    `json:"sid" gorm:"column:sid;not null;uniqueIndex:idx_session_tokens_sid_key,priority:1"`
	Key       string    `json:"key" gorm:"not null;uniqueIndex:idx_session_tokens_sid_key,priority:2"`
	Value     string    `json:"-" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&SessionToken{})
}
