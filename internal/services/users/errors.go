package users

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("email already registered")
	ErrForbidden         = errors.New("you can only modify your own account")
)
