package service

import (
	"errors"
	"fmt"
)

var (
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoPassword         = errors.New("user has no password set")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("account not verified")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrOTPInvalid         = errors.New("otp invalid")
	ErrOTPExpired         = errors.New("otp expired")
	ErrSamePassword       = errors.New("new password must differ from the current one")
	ErrRefreshInvalid     = errors.New("refresh token invalid")
	ErrRateLimited        = errors.New("rate limited")
	ErrEmailSendFailure   = errors.New("email send failed")
	ErrJWTInvalid         = errors.New("jwt invalid")
)

// CooldownError indica que el cooldown de emisión de OTP aún no transcurre.
type CooldownError struct {
	RemainingSeconds int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please retry in %d seconds", e.RemainingSeconds)
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrRateLimited
}
