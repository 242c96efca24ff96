package cmapi

import (
	"errors"

	"github.com/ranswife/cmapi/internal/kv"
	"github.com/ranswife/cmapi/internal/rate"
	"github.com/ranswife/cmapi/internal/tokens"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Engine. Configure it with the With* methods and
// call Build once; a Builder is not reusable.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	userStore UserStore
	auditSink AuditSink

	built bool
}

// New returns a Builder preloaded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client backing the ephemeral store. Required.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the durable user database collaborator. Required.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.userStore = store
	return b
}

// WithAuditSink sets the audit event receiver. Optional; without one the
// dispatcher discards events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the Validate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires the internal stores, and
// returns the ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.userStore == nil {
		return nil, errors.New("user store required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := kv.NewRedisStore(b.redis)

	engine := &Engine{
		config: cfg,
		users:  b.userStore,
		tokens: tokens.New(store, tokens.Config{
			AccessTTL:        cfg.Token.AccessTTL,
			RefreshTTL:       cfg.Token.RefreshTTL,
			PendingSecretTTL: cfg.Token.PendingSecretTTL,
		}),
		limiter: rate.New(store),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
	}

	b.built = true

	return engine, nil
}
