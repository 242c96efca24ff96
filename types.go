package cmapi

import (
	"context"
	"time"
)

// UserRecord is the engine's view of a stored account. The backing store
// owns the schema; only these fields participate in authentication.
type UserRecord struct {
	ID           string
	Username     string
	Nickname     string
	PasswordHash string
	TOTPSecret   string
	CreatedAt    time.Time
}

// TOTPEnabled reports whether the record carries an active TOTP secret.
func (u UserRecord) TOTPEnabled() bool {
	return u.TOTPSecret != ""
}

// CreateUserInput carries the fields the engine persists for a new account.
type CreateUserInput struct {
	Username     string
	Nickname     string
	PasswordHash string
}

// UserStore is the collaborator contract for the durable user database.
// Implementations must return ErrUserNotFound for absent records and
// ErrDuplicateUsername from CreateUser on a username conflict; wrapping
// either sentinel is fine.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (UserRecord, error)
	GetUserByID(ctx context.Context, id string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
	// SetTOTPSecret persists the account's TOTP secret. An empty secret
	// clears it.
	SetTOTPSecret(ctx context.Context, userID, secret string) error
}

// CreateAccountRequest is the input to Engine.CreateAccount.
type CreateAccountRequest struct {
	Username   string
	Password   string
	Nickname   string
	InviteCode string
}

// CreateAccountResult is returned by Engine.CreateAccount on success.
type CreateAccountResult struct {
	UserID   string
	Username string
	Nickname string
}

// LoginRequest is the input to Engine.Login. TOTPCode may be empty; when
// the account has an active secret an empty code yields ErrTOTPRequired
// alongside a result with MFARequired set.
type LoginRequest struct {
	Username string
	Password string
	TOTPCode string
}

// LoginResult is returned by Engine.Login. When MFARequired is set the
// token fields are empty and the caller must retry with a TOTP code.
type LoginResult struct {
	UserID       string
	Nickname     string
	RefreshToken string
	MFARequired  bool
}

// RefreshResult is returned by Engine.Refresh.
type RefreshResult struct {
	AccessToken string
}

// AuthResult is returned by Engine.Validate for a live access token.
type AuthResult struct {
	UserID string
}

// TOTPSetup is returned by Engine.SetupTOTP. Secret is the Base32-encoded
// pending secret; URI is the otpauth:// provisioning string the caller
// renders as a QR code.
type TOTPSetup struct {
	Secret string
	URI    string
}
