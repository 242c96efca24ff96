package cmapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ranswife/cmapi/internal/rate"
	"github.com/ranswife/cmapi/password"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 32
	passwordMinLen = 8
	passwordMaxLen = 64
	nicknameMaxLen = 16

	// reserved in any casing: collides with the "current user" route segment
	reservedUsername = "me"
)

// CreateAccount registers a new account. Input constraints are enforced
// before any hashing work: username 3-32 characters of [A-Za-z0-9_] and
// not the reserved "me" in any casing, password 8-64 bytes, nickname
// 1-16 characters.
// When Config.Account.InviteCodes is non-empty the request must carry one
// of the listed codes. The attempt is charged against the signup rate
// budget for the caller's identity.
func (e *Engine) CreateAccount(ctx context.Context, req CreateAccountRequest) (CreateAccountResult, error) {
	if e == nil || e.users == nil || e.limiter == nil {
		return CreateAccountResult{}, ErrEngineNotReady
	}

	rule := e.config.RateLimit.Signup
	if err := e.limiter.Check(ctx, rate.DefaultScope, e.rateIdentity(ctx), PathSignup, rule.Limit, rule.Window); err != nil {
		e.metricInc(MetricSignupRateLimited)
		e.metricInc(MetricRateLimitHit)
		e.emitAudit(ctx, auditEventSignupRateLimited, false, "", err, func() map[string]string {
			return map[string]string{
				"username": req.Username,
			}
		})
		return CreateAccountResult{}, err
	}

	if err := validateSignup(req); err != nil {
		e.emitAudit(ctx, auditEventSignupFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"username": req.Username,
				"reason":   "validation",
			}
		})
		return CreateAccountResult{}, err
	}

	if len(e.config.Account.InviteCodes) > 0 && !inviteCodeAllowed(e.config.Account.InviteCodes, req.InviteCode) {
		e.emitAudit(ctx, auditEventSignupFailure, false, "", ErrInviteCode, func() map[string]string {
			return map[string]string{
				"username": req.Username,
				"reason":   "invite_code",
			}
		})
		return CreateAccountResult{}, ErrInviteCode
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		e.emitAudit(ctx, auditEventSignupFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"username": req.Username,
				"reason":   "hash_failed",
			}
		})
		return CreateAccountResult{}, err
	}

	created, err := e.users.CreateUser(ctx, CreateUserInput{
		Username:     req.Username,
		Nickname:     req.Nickname,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			e.metricInc(MetricSignupDuplicate)
			e.emitAudit(ctx, auditEventSignupDuplicate, false, "", ErrDuplicateUsername, func() map[string]string {
				return map[string]string{
					"username": req.Username,
				}
			})
			return CreateAccountResult{}, ErrDuplicateUsername
		}
		e.emitAudit(ctx, auditEventSignupFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"username": req.Username,
				"reason":   "store_create_failed",
			}
		})
		return CreateAccountResult{}, err
	}

	e.metricInc(MetricSignupSuccess)
	e.emitAudit(ctx, auditEventSignupSuccess, true, created.ID, nil, func() map[string]string {
		return map[string]string{
			"username": created.Username,
		}
	})

	return CreateAccountResult{
		UserID:   created.ID,
		Username: created.Username,
		Nickname: created.Nickname,
	}, nil
}

func validateSignup(req CreateAccountRequest) error {
	if l := len(req.Username); l < usernameMinLen || l > usernameMaxLen {
		return fmt.Errorf("%w: username must be %d-%d characters", ErrValidation, usernameMinLen, usernameMaxLen)
	}
	for i := 0; i < len(req.Username); i++ {
		if !isUsernameByte(req.Username[i]) {
			return fmt.Errorf("%w: username may only contain letters, digits, and underscores", ErrValidation)
		}
	}
	if strings.EqualFold(req.Username, reservedUsername) {
		return fmt.Errorf("%w: username %q is reserved", ErrValidation, reservedUsername)
	}
	if l := len(req.Password); l < passwordMinLen || l > passwordMaxLen {
		return fmt.Errorf("%w: password must be %d-%d bytes", ErrValidation, passwordMinLen, passwordMaxLen)
	}
	if l := utf8.RuneCountInString(req.Nickname); l < 1 || l > nicknameMaxLen {
		return fmt.Errorf("%w: nickname must be 1-%d characters", ErrValidation, nicknameMaxLen)
	}
	return nil
}

func isUsernameByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '_':
		return true
	}
	return false
}

func inviteCodeAllowed(codes []string, code string) bool {
	if code == "" {
		return false
	}
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
