package cmapi

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ranswife/cmapi/internal/kv"
	"github.com/ranswife/cmapi/internal/rate"
	"github.com/ranswife/cmapi/internal/tokens"
)

// Request paths with built-in rate budgets. These are the limiter keys the
// engine uses for its own signup and login checks; boundary middleware
// should pass the same values to CheckRate.
const (
	PathSignup = "/v1/signup"
	PathLogin  = "/v1/login"
)

// Engine is the authentication core. Build one through [Builder]; all
// methods are safe for concurrent use afterwards.
type Engine struct {
	config  Config
	users   UserStore
	tokens  *tokens.Manager
	limiter *rate.Limiter
	audit   *auditDispatcher
	metrics *Metrics
}

// Close stops the audit dispatcher after draining buffered events. Safe to
// call more than once and on a nil engine.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// CheckRate runs the limiter for one attempt at path on behalf of
// identity. Paths without a configured rule are allowed. Boundary
// middleware calls this before dispatching a request.
func (e *Engine) CheckRate(ctx context.Context, identity, path string) error {
	if e == nil || e.limiter == nil {
		return ErrEngineNotReady
	}
	rule, ok := e.ruleForPath(path)
	if !ok {
		return nil
	}
	if err := e.limiter.Check(ctx, rate.DefaultScope, identity, path, rule.Limit, rule.Window); err != nil {
		e.emitRateLimit(ctx, path)
		return err
	}
	return nil
}

func (e *Engine) ruleForPath(path string) (RateRule, bool) {
	if rule, ok := e.config.RateLimit.Paths[path]; ok {
		return rule, true
	}
	switch path {
	case PathSignup:
		return e.config.RateLimit.Signup, true
	case PathLogin:
		return e.config.RateLimit.Login, true
	}
	return RateRule{}, false
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

// rateIdentity resolves the limiter identity from the context. Without a
// client IP each call gets a random identity, so unidentifiable clients
// are only ever limited against themselves.
func (e *Engine) rateIdentity(ctx context.Context) string {
	if ip := clientIPFromContext(ctx); ip != "" {
		return ip
	}
	return uuid.NewString()
}

func mapStoreErr(err error) error {
	if errors.Is(err, kv.ErrUnavailable) {
		return ErrStoreUnavailable
	}
	return err
}
