package auth

import "errors"

var (
	ErrUserNotFound              = errors.New("user not found")
	ErrUserAlreadyExists         = errors.New("email already registered")
	ErrInvalidCredentials        = errors.New("email or password incorrect")
	ErrVerificationTokenNotFound = errors.New("invalid or expired verification token")
	ErrVerificationTokenExpired  = errors.New("verification token has expired")
	ErrTokenExpired              = errors.New("token expired")
	ErrTokenInvalid              = errors.New("invalid token")
)
