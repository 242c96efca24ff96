package cmapi

import (
	"errors"
	"time"
)

// Config carries every tunable of the engine, grouped by concern. Zero
// values are not usable; start from DefaultConfig and override.
type Config struct {
	Token     TokenConfig
	TOTP      TOTPConfig
	Account   AccountConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls the lifetimes of the opaque tokens held in the
// ephemeral store.
type TokenConfig struct {
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	PendingSecretTTL time.Duration
}

/*
====================================
TOTP CONFIG
====================================
*/

// TOTPConfig controls two-factor enrollment. Issuer names this service in
// the provisioning URI shown by authenticator apps. Skew is the number of
// 30 second steps accepted on either side of the current one.
type TOTPConfig struct {
	Issuer string
	Skew   int
}

/*
====================================
ACCOUNT CONFIG
====================================
*/

// AccountConfig controls signup. When InviteCodes is non-empty,
// CreateAccount requires the request to carry one of the listed codes.
type AccountConfig struct {
	InviteCodes []string
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateRule is one attempt budget: Limit attempts per Window.
type RateRule struct {
	Limit  int
	Window time.Duration
}

// RateLimitConfig holds the per-path attempt budgets enforced by the
// shared-counter limiter.
type RateLimitConfig struct {
	Signup RateRule
	Login  RateRule
	// Paths maps additional request paths to rules for CheckRate.
	Paths map[string]RateRule
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher. With DropIfFull set,
// events are discarded rather than blocking the caller when the buffer is
// saturated; Engine.AuditDropped reports the count.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process counters. Latency histograms cover
// Validate only and carry a small extra cost per call.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the engine defaults: 1 hour access tokens, 7 day
// refresh tokens, 300 second TOTP setup windows, signup at 5 attempts per
// hour and login at 10 per 10 minutes, audit and metrics enabled.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:        time.Hour,
			RefreshTTL:       7 * 24 * time.Hour,
			PendingSecretTTL: 5 * time.Minute,
		},
		TOTP: TOTPConfig{
			Issuer: "cmapi",
			Skew:   1,
		},
		RateLimit: RateLimitConfig{
			Signup: RateRule{Limit: 5, Window: time.Hour},
			Login:  RateRule{Limit: 10, Window: 10 * time.Minute},
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate rejects configurations that would make the engine unsafe or
// inert. Called by Builder.Build.
func (c Config) Validate() error {
	if c.Token.AccessTTL <= 0 {
		return errors.New("Token.AccessTTL must be positive")
	}
	if c.Token.RefreshTTL <= 0 {
		return errors.New("Token.RefreshTTL must be positive")
	}
	if c.Token.RefreshTTL < c.Token.AccessTTL {
		return errors.New("Token.RefreshTTL must not be shorter than Token.AccessTTL")
	}
	if c.Token.PendingSecretTTL <= 0 {
		return errors.New("Token.PendingSecretTTL must be positive")
	}
	if c.TOTP.Issuer == "" {
		return errors.New("TOTP.Issuer must be set")
	}
	if c.TOTP.Skew < 0 {
		return errors.New("TOTP.Skew must not be negative")
	}
	if err := validateRule("RateLimit.Signup", c.RateLimit.Signup); err != nil {
		return err
	}
	if err := validateRule("RateLimit.Login", c.RateLimit.Login); err != nil {
		return err
	}
	for path, rule := range c.RateLimit.Paths {
		if path == "" {
			return errors.New("RateLimit.Paths key must not be empty")
		}
		if err := validateRule("RateLimit.Paths["+path+"]", rule); err != nil {
			return err
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must not be negative")
	}
	return nil
}

func validateRule(name string, r RateRule) error {
	if r.Limit <= 0 {
		return errors.New(name + ".Limit must be positive")
	}
	if r.Window <= 0 {
		return errors.New(name + ".Window must be positive")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Account.InviteCodes != nil {
		out.Account.InviteCodes = append([]string(nil), cfg.Account.InviteCodes...)
	}
	if cfg.RateLimit.Paths != nil {
		out.RateLimit.Paths = make(map[string]RateRule, len(cfg.RateLimit.Paths))
		for k, v := range cfg.RateLimit.Paths {
			out.RateLimit.Paths[k] = v
		}
	}
	return out
}
