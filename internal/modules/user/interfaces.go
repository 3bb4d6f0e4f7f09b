package user

import (
	"context"

	"vidtube/internal/domain"
	"vidtube/internal/pkg/token"
)

// UserRepositoryInterface — only the methods the user service needs.
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateAccount(ctx context.Context, id int64, fullName, email string) error
	UpdateAvatar(ctx context.Context, id int64, url string) error
	UpdateCoverImage(ctx context.Context, id int64, url string) error
}

// SessionRepositoryInterface — refresh-session slot storage.
type SessionRepositoryInterface interface {
	Put(ctx context.Context, userID int64, deviceID, tokenHash string) error
	Get(ctx context.Context, userID int64, deviceID string) (*domain.RefreshSession, error)
	Clear(ctx context.Context, userID int64) error
}

// TokenIssuer — signing and verification of access/refresh tokens.
type TokenIssuer interface {
	Generate(kind token.Kind, userID int64) (string, error)
	Validate(kind token.Kind, tokenStr string) (*token.Claims, error)
}

// Uploader — media storage for avatars and cover images.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}
