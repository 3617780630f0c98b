package session

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/halosani-dev/halosani/internal/models"
)

// GormStore persists tokens in the session_tokens table. This is the default
// backend of the web gate.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by the given database.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Set(ctx context.Context, sid string, role Role, value string) error {
	token := models.SessionToken{
		SID:   sid,
		Key:   role.StorageKey(),
		Value: value,
	}

	// Upsert on (sid, key) so repeated logins overwrite the previous token
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sid"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&token).Error
}

func (s *GormStore) Get(ctx context.Context, sid string, role Role) (string, bool, error) {
	var token models.SessionToken
	err := s.db.WithContext(ctx).
		Where("sid = ? AND key = ?", sid, role.StorageKey()).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return token.Value, true, nil
}

func (s *GormStore) Clear(ctx context.Context, sid string, role Role) error {
	return s.db.WithContext(ctx).
		Where("sid = ? AND key = ?", sid, role.StorageKey()).
		Delete(&models.SessionToken{}).Error
}
