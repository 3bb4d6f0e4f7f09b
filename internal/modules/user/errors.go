package user

import "errors"

var (
	ErrFieldsRequired     = errors.New("all fields are required")
	ErrAvatarRequired     = errors.New("avatar file is required")
	ErrUserExists         = errors.New("user with email or username already exists")
	ErrUserNotFound       = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("invalid user credentials")
	ErrUnauthorized       = errors.New("unauthorized request")
	ErrRefreshReused      = errors.New("refresh token is expired or already used")
)
