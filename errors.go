package cmapi

import (
	"errors"

	"github.com/ranswife/cmapi/internal/rate"
)

var (
	// ErrEngineNotReady is returned when an Engine method is called on a
	// nil or incompletely built engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrValidation is returned when request input violates the account
	// constraints (username shape, password length, nickname length).
	ErrValidation = errors.New("invalid request")
	// ErrAuthFailed is returned for both unknown usernames and wrong
	// passwords. The two cases are deliberately indistinguishable.
	ErrAuthFailed = errors.New("invalid username or password")
	// ErrInviteCode is returned when signup requires an invite code and
	// the supplied one does not match.
	ErrInviteCode = errors.New("invalid invite code")
	// ErrDuplicateUsername is returned when the requested username is
	// already taken. UserStore implementations return it from CreateUser.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrUserNotFound is returned by UserStore implementations when no
	// record matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrRateLimited is returned when an attempt counter is at its limit
	// or the limiter backend is unreachable. Alias of the internal
	// limiter sentinel so errors.Is matches across the boundary.
	ErrRateLimited = rate.ErrRateLimited
	// ErrStoreUnavailable is returned when the ephemeral store cannot be
	// reached during a token operation.
	ErrStoreUnavailable = errors.New("ephemeral store unavailable")
	// ErrInvalidRefreshToken is returned when a refresh token is unknown,
	// expired, or revoked.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrInvalidToken is returned when an access token is unknown or
	// expired.
	ErrInvalidToken = errors.New("invalid access token")
	// ErrTOTPRequired is returned by Login when the account has an active
	// TOTP secret and no code was supplied.
	ErrTOTPRequired = errors.New("totp code required")
	// ErrTOTPInvalid is returned when a supplied TOTP code does not match
	// any counter in the verification window.
	ErrTOTPInvalid = errors.New("invalid totp code")
	// ErrTOTPAlreadyEnabled is returned by SetupTOTP when the account
	// already has an active secret.
	ErrTOTPAlreadyEnabled = errors.New("totp already enabled")
	// ErrTOTPNotEnabled is returned by DisableTOTP when the account has
	// no active secret.
	ErrTOTPNotEnabled = errors.New("totp not enabled")
	// ErrTOTPSetupNotFound is returned by EnableTOTP when no pending
	// secret exists, typically because the 300 second setup window
	// elapsed.
	ErrTOTPSetupNotFound = errors.New("totp setup not found or expired")
)
