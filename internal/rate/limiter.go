package rate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ranswife/cmapi/internal/kv"
)

// ErrRateLimited is returned when a check denies the request, whether
// because the budget is spent or because the store is unreachable.
var ErrRateLimited = errors.New("rate limited")

// DefaultScope is the key namespace used when callers pass an empty scope.
const DefaultScope = "rl"

// Limiter bounds request volume per (scope, identity, path) using the
// ephemeral store as a shared counter.
type Limiter struct {
	store kv.Store
}

// New creates a Limiter backed by store.
func New(store kv.Store) *Limiter {
	return &Limiter{store: store}
}

// Check admits or denies one attempt for the given key. Denials do not
// mutate the counter; admissions rewrite it with a fresh window TTL.
func (l *Limiter) Check(ctx context.Context, scope, identity, path string, limit int, window time.Duration) error {
	if scope == "" {
		scope = DefaultScope
	}
	key := scope + ":" + identity + ":" + path

	count, err := l.currentCount(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	if count >= limit {
		return ErrRateLimited
	}

	if err := l.store.Put(ctx, key, strconv.Itoa(count+1), window); err != nil {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	return nil
}

func (l *Limiter) currentCount(ctx context.Context, key string) (int, error) {
	raw, err := l.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	count, err := strconv.Atoi(raw)
	if err != nil {
		// A mangled counter counts as zero; the next write repairs it.
		return 0, nil
	}
	return count, nil
}
