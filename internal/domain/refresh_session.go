package domain

import "time"

// RefreshSession holds the single currently valid refresh token for a
// (user, device) pair. Issuing a new token overwrites the slot, which is
// what revokes the previous one.
//
// Security notes:
// - Only the SHA-256 hash of the token is stored, never the raw value.
// - A presented token is valid only while its hash matches the slot.
type RefreshSession struct {
	ID int64 `json:"id" gorm:"primaryKey"`

	UserID int64 `json:"user_id" gorm:"uniqueIndex:idx_user_device;not null"`
	User   User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	DeviceID string `json:"device_id" gorm:"size:64;uniqueIndex:idx_user_device;not null"`

	TokenHash string `json:"-" gorm:"size:64;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *RefreshSession) Matches(tokenHash string) bool {
	return s.TokenHash == tokenHash
}
