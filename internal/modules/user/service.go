package user

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"vidtube/internal/domain"
	"vidtube/internal/pkg/token"
	"vidtube/internal/pkg/validator"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultDeviceID is the session slot used when the client does not
// identify itself with an X-Device-ID header.
const DefaultDeviceID = "default"

// Service contains all business logic for accounts and sessions.
type Service struct {
	users    UserRepositoryInterface
	sessions SessionRepositoryInterface
	issuer   TokenIssuer
	uploader Uploader
}

type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

func NewService(
	users UserRepositoryInterface,
	sessions SessionRepositoryInterface,
	issuer TokenIssuer,
	uploader Uploader,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		issuer:   issuer,
		uploader: uploader,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest, avatarPath, coverPath string) (*domain.User, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)
	if fullName == "" || email == "" || username == "" || strings.TrimSpace(req.Password) == "" {
		return nil, ErrFieldsRequired
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	if avatarPath == "" {
		return nil, ErrAvatarRequired
	}

	avatarURL, err := s.uploader.Upload(ctx, avatarPath)
	if err != nil {
		return nil, ErrAvatarRequired
	}

	var coverURL string
	if coverPath != "" {
		// Cover image is optional; a failed upload does not block registration.
		coverURL, _ = s.uploader.Upload(ctx, coverPath)
	}

	hashedPassword, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Username:      strings.ToLower(username),
		Email:         strings.ToLower(email),
		FullName:      fullName,
		PasswordHash:  hashedPassword,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	}

	if violations := validator.Validate(u); violations != nil {
		return nil, ErrFieldsRequired
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	return redact(u), nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest, deviceID string) (*LoginResult, error) {
	if strings.TrimSpace(req.Username) == "" && strings.TrimSpace(req.Email) == "" {
		return nil, ErrFieldsRequired
	}

	u, err := s.users.GetByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.rotateSession(ctx, u.ID, deviceID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:         redact(u),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a still-valid refresh token for a new pair. The
// presented token must both verify cryptographically and match the stored
// slot hash: a token rotated away remains well-signed until its natural
// expiry but can never be replayed.
func (s *Service) Refresh(ctx context.Context, presented, deviceID string) (*RefreshResult, error) {
	if presented == "" {
		return nil, ErrUnauthorized
	}
	if deviceID == "" {
		deviceID = DefaultDeviceID
	}

	claims, err := s.issuer.Validate(token.KindRefresh, presented)
	if err != nil {
		return nil, ErrUnauthorized
	}

	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	session, err := s.sessions.Get(ctx, claims.UserID, deviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshReused
		}
		return nil, err
	}
	if !session.Matches(hashToken(presented)) {
		return nil, ErrRefreshReused
	}

	accessToken, refreshToken, err := s.rotateSession(ctx, claims.UserID, deviceID)
	if err != nil {
		return nil, err
	}

	return &RefreshResult{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout drops every session slot for the user. Idempotent.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.sessions.Clear(ctx, userID)
}

// ChangePassword replaces the password hash and revokes all sessions, so a
// stolen refresh token dies with the old password.
func (s *Service) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashedPassword, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return err
	}

	return s.sessions.Clear(ctx, userID)
}

func (s *Service) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return redact(u), nil
}

func (s *Service) UpdateAccount(ctx context.Context, userID int64, req UpdateAccountRequest) (*domain.User, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(req.Email)
	if fullName == "" && email == "" {
		return nil, ErrFieldsRequired
	}

	if email != "" {
		current, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(current.Email, email) {
			exists, err := s.users.ExistsByUsernameOrEmail(ctx, "", email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrUserExists
			}
		}
	}

	if err := s.users.UpdateAccount(ctx, userID, fullName, email); err != nil {
		return nil, err
	}

	return s.CurrentUser(ctx, userID)
}

func (s *Service) UpdateAvatar(ctx context.Context, userID int64, localPath string) (*domain.User, error) {
	if localPath == "" {
		return nil, ErrAvatarRequired
	}

	url, err := s.uploader.Upload(ctx, localPath)
	if err != nil {
		return nil, ErrAvatarRequired
	}

	if err := s.users.UpdateAvatar(ctx, userID, url); err != nil {
		return nil, err
	}

	return s.CurrentUser(ctx, userID)
}

func (s *Service) UpdateCoverImage(ctx context.Context, userID int64, localPath string) (*domain.User, error) {
	if localPath == "" {
		return nil, ErrFieldsRequired
	}

	url, err := s.uploader.Upload(ctx, localPath)
	if err != nil {
		return nil, ErrFieldsRequired
	}

	if err := s.users.UpdateCoverImage(ctx, userID, url); err != nil {
		return nil, err
	}

	return s.CurrentUser(ctx, userID)
}

// rotateSession mints a fresh token pair and overwrites the session slot
// with the new refresh hash. This is the single rotation point shared by
// login and refresh.
func (s *Service) rotateSession(ctx context.Context, userID int64, deviceID string) (string, string, error) {
	if deviceID == "" {
		deviceID = DefaultDeviceID
	}

	accessToken, err := s.issuer.Generate(token.KindAccess, userID)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.issuer.Generate(token.KindRefresh, userID)
	if err != nil {
		return "", "", err
	}

	if err := s.sessions.Put(ctx, userID, deviceID, hashToken(refreshToken)); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func redact(u *domain.User) *domain.User {
	u.PasswordHash = ""
	return u
}
