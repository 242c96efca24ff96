package cmapi

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventLoginSuccess       = "login_success"
	auditEventLoginFailure       = "login_failure"
	auditEventLoginRateLimited   = "login_rate_limited"
	auditEventMFARequired        = "mfa_required"
	auditEventRefreshSuccess     = "refresh_success"
	auditEventRefreshInvalid     = "refresh_invalid"
	auditEventLogout             = "logout"
	auditEventSignupSuccess      = "signup_success"
	auditEventSignupFailure      = "signup_failure"
	auditEventSignupDuplicate    = "signup_duplicate"
	auditEventSignupRateLimited  = "signup_rate_limited"
	auditEventTOTPSetupRequested = "totp_setup_requested"
	auditEventTOTPEnabled        = "totp_enabled"
	auditEventTOTPDisabled       = "totp_disabled"
	auditEventTOTPFailure        = "totp_failure"
	auditEventRateLimitTriggered = "rate_limit_triggered"
)

// AuditErrorCode is the stable short form of an engine error recorded on
// audit events.
type AuditErrorCode string

const (
	auditErrValidation     AuditErrorCode = "validation"
	auditErrAuthFailed     AuditErrorCode = "auth_failed"
	auditErrInviteCode     AuditErrorCode = "invite_code"
	auditErrDuplicate      AuditErrorCode = "duplicate"
	auditErrRateLimited    AuditErrorCode = "rate_limited"
	auditErrInvalidToken   AuditErrorCode = "invalid_token"
	auditErrInvalidRefresh AuditErrorCode = "invalid_refresh"
	auditErrTOTPRequired   AuditErrorCode = "totp_required"
	auditErrTOTPInvalid    AuditErrorCode = "totp_invalid"
	auditErrTOTPState      AuditErrorCode = "totp_state"
	auditErrUnavailable    AuditErrorCode = "backend_unavailable"
	auditErrInternal       AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

// emitRateLimit records a denial at a boundary path checked through
// CheckRate. The signup and login flows record their own denial events
// instead; only MetricRateLimitHit is shared, counting every denial
// regardless of where it was charged.
func (e *Engine) emitRateLimit(ctx context.Context, path string) {
	e.metricInc(MetricRateLimitHit)
	if e == nil || e.audit == nil {
		return
	}
	e.audit.Emit(ctx, AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: auditEventRateLimitTriggered,
		IP:        clientIPFromContext(ctx),
		Path:      path,
		Error:     string(auditErrRateLimited),
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrValidation):
		return auditErrValidation
	case errors.Is(err, ErrAuthFailed), errors.Is(err, ErrUserNotFound):
		return auditErrAuthFailed
	case errors.Is(err, ErrInviteCode):
		return auditErrInviteCode
	case errors.Is(err, ErrDuplicateUsername):
		return auditErrDuplicate
	case errors.Is(err, ErrRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrInvalidToken):
		return auditErrInvalidToken
	case errors.Is(err, ErrInvalidRefreshToken):
		return auditErrInvalidRefresh
	case errors.Is(err, ErrTOTPRequired):
		return auditErrTOTPRequired
	case errors.Is(err, ErrTOTPInvalid):
		return auditErrTOTPInvalid
	case errors.Is(err, ErrTOTPAlreadyEnabled),
		errors.Is(err, ErrTOTPNotEnabled),
		errors.Is(err, ErrTOTPSetupNotFound):
		return auditErrTOTPState
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
