package tokens

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ranswife/cmapi/internal/kv"
)

const (
	accessPrefix  = "at:"
	refreshPrefix = "rt:"
	pendingPrefix = "totp_pending:"
)

// Config carries the TTL for each token kind.
type Config struct {
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	PendingSecretTTL time.Duration
}

// Manager issues, resolves, and revokes tokens against a kv.Store.
type Manager struct {
	store  kv.Store
	config Config
}

// New creates a token Manager backed by store.
func New(store kv.Store, cfg Config) *Manager {
	return &Manager{store: store, config: cfg}
}

// IssueRefresh mints a fresh refresh token for userID. The identifier is
// a random UUID, never derived from the user, so two users can never
// share one.
func (m *Manager) IssueRefresh(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := m.store.Put(ctx, refreshPrefix+token, userID, m.config.RefreshTTL); err != nil {
		return "", err
	}
	return token, nil
}

// ResolveRefresh returns the userID a refresh token maps to.
// kv.ErrNotFound means the token is absent, expired, or revoked.
func (m *Manager) ResolveRefresh(ctx context.Context, token string) (string, error) {
	return m.store.Get(ctx, refreshPrefix+token)
}

// IssueAccess mints an access token for userID.
func (m *Manager) IssueAccess(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := m.store.Put(ctx, accessPrefix+token, userID, m.config.AccessTTL); err != nil {
		return "", err
	}
	return token, nil
}

// ValidateAccess returns the userID an access token maps to. Validation
// does not consume the token; it stays usable until its TTL elapses.
func (m *Manager) ValidateAccess(ctx context.Context, token string) (string, error) {
	return m.store.Get(ctx, accessPrefix+token)
}

// RevokeRefresh deletes a refresh token. Deleting a token that never
// existed is not an error.
func (m *Manager) RevokeRefresh(ctx context.Context, token string) error {
	return m.store.Delete(ctx, refreshPrefix+token)
}

// SavePendingSecret stores a not-yet-confirmed TOTP secret for userID.
// Unconfirmed secrets evaporate with the pending TTL.
func (m *Manager) SavePendingSecret(ctx context.Context, userID, secret string) error {
	return m.store.Put(ctx, pendingPrefix+userID, secret, m.config.PendingSecretTTL)
}

// PendingSecret returns the pending TOTP secret for userID, if any.
func (m *Manager) PendingSecret(ctx context.Context, userID string) (string, error) {
	return m.store.Get(ctx, pendingPrefix+userID)
}

// DeletePendingSecret removes the pending entry after a confirmed (or
// abandoned) enrollment.
func (m *Manager) DeletePendingSecret(ctx context.Context, userID string) error {
	return m.store.Delete(ctx, pendingPrefix+userID)
}
