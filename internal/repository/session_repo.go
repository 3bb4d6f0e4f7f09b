package repository

import (
	"context"
	"time"

	"vidtube/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository provides DB access for refresh-session slots.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Put writes the refresh-token hash for a (user, device) slot. The upsert is
// a single atomic statement, which is what makes rotation a compare-free
// overwrite: whatever hash was there before is gone once Put returns.
func (r *SessionRepository) Put(ctx context.Context, userID int64, deviceID, tokenHash string) error {
	now := time.Now().UTC()
	session := domain.RefreshSession{
		UserID:    userID,
		DeviceID:  deviceID,
		TokenHash: tokenHash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token_hash", "updated_at"}),
	}).Create(&session).Error
}

func (r *SessionRepository) Get(ctx context.Context, userID int64, deviceID string) (*domain.RefreshSession, error) {
	var s domain.RefreshSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND device_id = ?", userID, deviceID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Clear deletes every slot for the user, which permanently invalidates all
// previously issued refresh tokens. Deleting nothing is not an error.
func (r *SessionRepository) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.RefreshSession{}).Error
}
