package domain

import "time"

type User struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	Username      string    `json:"username" gorm:"uniqueIndex;not null" validate:"required,lowercase"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null" validate:"required,email"`
	FullName      string    `json:"full_name"`
	PasswordHash  string    `json:"-" gorm:"column:password_hash;not null"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"cover_image,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
