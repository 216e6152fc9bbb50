package users

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrSessionExpired     = errors.New("session expired")
	ErrNotAdmin           = errors.New("admin role required")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrAlreadyCreator     = errors.New("user is already a creator")
	ErrNoCreatorRequest   = errors.New("user has not requested the creator role")
	ErrInvalidOTP         = errors.New("invalid otp")
	ErrOTPExpired         = errors.New("otp expired")
	ErrOTPUnavailable     = errors.New("otp delivery is not configured")
)
