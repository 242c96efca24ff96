package cmapi

import (
	"context"
	"errors"
	"time"

	"github.com/ranswife/cmapi/internal/rate"
	"github.com/ranswife/cmapi/otp"
	"github.com/ranswife/cmapi/password"
)

// Login authenticates a username/password pair and issues a refresh token.
// An unknown username and a wrong password are both reported as
// ErrAuthFailed; nothing observable distinguishes them. Accounts with an
// active TOTP secret additionally require a current code: with an empty
// TOTPCode the call returns ErrTOTPRequired together with a result whose
// MFARequired flag is set, with a wrong code it returns ErrTOTPInvalid.
// The attempt is charged against the login rate budget.
func (e *Engine) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	if e == nil || e.users == nil || e.tokens == nil || e.limiter == nil {
		return LoginResult{}, ErrEngineNotReady
	}

	rule := e.config.RateLimit.Login
	if err := e.limiter.Check(ctx, rate.DefaultScope, e.rateIdentity(ctx), PathLogin, rule.Limit, rule.Window); err != nil {
		e.metricInc(MetricLoginRateLimited)
		e.metricInc(MetricRateLimitHit)
		e.emitAudit(ctx, auditEventLoginRateLimited, false, "", err, func() map[string]string {
			return map[string]string{
				"username": req.Username,
			}
		})
		return LoginResult{}, err
	}

	user, err := e.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrAuthFailed, func() map[string]string {
				return map[string]string{
					"username": req.Username,
					"reason":   "unknown_user",
				}
			})
			return LoginResult{}, ErrAuthFailed
		}
		return LoginResult{}, err
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, ErrAuthFailed, func() map[string]string {
			return map[string]string{
				"username": req.Username,
				"reason":   "bad_password",
			}
		})
		return LoginResult{}, ErrAuthFailed
	}

	if user.TOTPEnabled() {
		if req.TOTPCode == "" {
			e.metricInc(MetricTOTPRequired)
			e.emitAudit(ctx, auditEventMFARequired, false, user.ID, ErrTOTPRequired, nil)
			return LoginResult{
				UserID:      user.ID,
				MFARequired: true,
			}, ErrTOTPRequired
		}
		if !otp.Verify(user.TOTPSecret, req.TOTPCode, time.Now(), e.config.TOTP.Skew) {
			e.metricInc(MetricTOTPFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, ErrTOTPInvalid, func() map[string]string {
				return map[string]string{
					"reason": "totp_invalid",
				}
			})
			return LoginResult{}, ErrTOTPInvalid
		}
		e.metricInc(MetricTOTPSuccess)
	}

	refreshToken, err := e.tokens.IssueRefresh(ctx, user.ID)
	if err != nil {
		mapped := mapStoreErr(err)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, mapped, func() map[string]string {
			return map[string]string{
				"reason": "refresh_issue_failed",
			}
		})
		return LoginResult{}, mapped
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, nil, nil)

	return LoginResult{
		UserID:       user.ID,
		Nickname:     user.Nickname,
		RefreshToken: refreshToken,
	}, nil
}
