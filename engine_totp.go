package cmapi

import (
	"context"
	"errors"
	"time"

	"github.com/ranswife/cmapi/internal/kv"
	"github.com/ranswife/cmapi/otp"
)

// SetupTOTP starts two-factor enrollment: it generates a fresh secret,
// stores it pending for Config.Token.PendingSecretTTL, and returns the
// secret with its provisioning URI. Accounts that already have an active
// secret get ErrTOTPAlreadyEnabled. The secret has no effect on login
// until EnableTOTP confirms it.
func (e *Engine) SetupTOTP(ctx context.Context, userID string) (TOTPSetup, error) {
	if e == nil || e.users == nil || e.tokens == nil {
		return TOTPSetup{}, ErrEngineNotReady
	}

	user, err := e.users.GetUserByID(ctx, userID)
	if err != nil {
		return TOTPSetup{}, err
	}
	if user.TOTPEnabled() {
		e.emitAudit(ctx, auditEventTOTPFailure, false, userID, ErrTOTPAlreadyEnabled, nil)
		return TOTPSetup{}, ErrTOTPAlreadyEnabled
	}

	secret, err := otp.GenerateSecret()
	if err != nil {
		return TOTPSetup{}, err
	}

	if err := e.tokens.SavePendingSecret(ctx, userID, secret); err != nil {
		return TOTPSetup{}, mapStoreErr(err)
	}

	e.emitAudit(ctx, auditEventTOTPSetupRequested, true, userID, nil, nil)

	return TOTPSetup{
		Secret: secret,
		URI:    otp.ProvisioningURI(secret, e.config.TOTP.Issuer, user.Username),
	}, nil
}

// EnableTOTP completes enrollment by checking a current code against the
// pending secret. On success the secret is persisted on the user record
// and the pending entry is deleted; from then on Login requires a code.
// A missing or expired pending entry maps to ErrTOTPSetupNotFound.
func (e *Engine) EnableTOTP(ctx context.Context, userID, code string) error {
	if e == nil || e.users == nil || e.tokens == nil {
		return ErrEngineNotReady
	}

	secret, err := e.tokens.PendingSecret(ctx, userID)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			e.emitAudit(ctx, auditEventTOTPFailure, false, userID, ErrTOTPSetupNotFound, nil)
			return ErrTOTPSetupNotFound
		}
		return mapStoreErr(err)
	}

	if !otp.Verify(secret, code, time.Now(), e.config.TOTP.Skew) {
		e.metricInc(MetricTOTPFailure)
		e.emitAudit(ctx, auditEventTOTPFailure, false, userID, ErrTOTPInvalid, nil)
		return ErrTOTPInvalid
	}

	if err := e.users.SetTOTPSecret(ctx, userID, secret); err != nil {
		return err
	}
	if err := e.tokens.DeletePendingSecret(ctx, userID); err != nil {
		return mapStoreErr(err)
	}

	e.metricInc(MetricTOTPSuccess)
	e.metricInc(MetricTOTPEnabled)
	e.emitAudit(ctx, auditEventTOTPEnabled, true, userID, nil, nil)

	return nil
}

// DisableTOTP removes two-factor from an account. It requires an active
// secret and proof of possession through a valid current code.
func (e *Engine) DisableTOTP(ctx context.Context, userID, code string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}

	user, err := e.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TOTPEnabled() {
		e.emitAudit(ctx, auditEventTOTPFailure, false, userID, ErrTOTPNotEnabled, nil)
		return ErrTOTPNotEnabled
	}

	if !otp.Verify(user.TOTPSecret, code, time.Now(), e.config.TOTP.Skew) {
		e.metricInc(MetricTOTPFailure)
		e.emitAudit(ctx, auditEventTOTPFailure, false, userID, ErrTOTPInvalid, nil)
		return ErrTOTPInvalid
	}

	if err := e.users.SetTOTPSecret(ctx, userID, ""); err != nil {
		return err
	}

	e.metricInc(MetricTOTPSuccess)
	e.metricInc(MetricTOTPDisabled)
	e.emitAudit(ctx, auditEventTOTPDisabled, true, userID, nil, nil)

	return nil
}

// TOTPStatus reports whether the account has an active TOTP secret.
func (e *Engine) TOTPStatus(ctx context.Context, userID string) (bool, error) {
	if e == nil || e.users == nil {
		return false, ErrEngineNotReady
	}

	user, err := e.users.GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.TOTPEnabled(), nil
}
