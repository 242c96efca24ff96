package cmapi

import (
	"context"
	"errors"
	"time"

	"github.com/ranswife/cmapi/internal/kv"
)

// Refresh mints a new access token from a live refresh token. The refresh
// token is multi-use and is not rotated; unknown or expired tokens map to
// ErrInvalidRefreshToken.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (RefreshResult, error) {
	if e == nil || e.tokens == nil {
		return RefreshResult{}, ErrEngineNotReady
	}

	userID, err := e.tokens.ResolveRefresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			e.metricInc(MetricRefreshFailure)
			e.emitAudit(ctx, auditEventRefreshInvalid, false, "", ErrInvalidRefreshToken, nil)
			return RefreshResult{}, ErrInvalidRefreshToken
		}
		return RefreshResult{}, mapStoreErr(err)
	}

	accessToken, err := e.tokens.IssueAccess(ctx, userID)
	if err != nil {
		return RefreshResult{}, mapStoreErr(err)
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, userID, nil, nil)

	return RefreshResult{AccessToken: accessToken}, nil
}

// Validate resolves an access token to its user. Unknown or expired
// tokens map to ErrInvalidToken. This is the hot path; its latency feeds
// the MetricValidateLatency histogram when enabled.
func (e *Engine) Validate(ctx context.Context, accessToken string) (AuthResult, error) {
	if e == nil || e.tokens == nil {
		return AuthResult{}, ErrEngineNotReady
	}

	start := time.Now()

	userID, err := e.tokens.ValidateAccess(ctx, accessToken)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			e.metricInc(MetricValidateFailure)
			e.metricObserve(MetricValidateLatency, time.Since(start))
			return AuthResult{}, ErrInvalidToken
		}
		return AuthResult{}, mapStoreErr(err)
	}

	e.metricInc(MetricValidateSuccess)
	e.metricObserve(MetricValidateLatency, time.Since(start))

	return AuthResult{UserID: userID}, nil
}

// Logout revokes a refresh token. Revoking an unknown or already revoked
// token succeeds; outstanding access tokens run out their own TTL.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if e == nil || e.tokens == nil {
		return ErrEngineNotReady
	}

	if err := e.tokens.RevokeRefresh(ctx, refreshToken); err != nil {
		return mapStoreErr(err)
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, "", nil, nil)

	return nil
}
