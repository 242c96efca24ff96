package internaldefs

import (
	cmapi "github.com/ranswife/cmapi"
)

// CounterDef binds one engine counter to its exported name.
type CounterDef struct {
	ID   cmapi.MetricID
	Name string
	Help string
}

// HistogramDef binds one engine histogram to its exported name.
type HistogramDef struct {
	ID   cmapi.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: cmapi.MetricLoginSuccess, Name: "cmapi_login_success_total", Help: "Successful login attempts."},
	{ID: cmapi.MetricLoginFailure, Name: "cmapi_login_failure_total", Help: "Failed login attempts."},
	{ID: cmapi.MetricLoginRateLimited, Name: "cmapi_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: cmapi.MetricTOTPRequired, Name: "cmapi_totp_required_total", Help: "Logins answered with an MFA-required result."},
	{ID: cmapi.MetricTOTPSuccess, Name: "cmapi_totp_success_total", Help: "Successful TOTP verifications."},
	{ID: cmapi.MetricTOTPFailure, Name: "cmapi_totp_failure_total", Help: "Failed TOTP verifications."},
	{ID: cmapi.MetricTOTPEnabled, Name: "cmapi_totp_enabled_total", Help: "Completed TOTP enrollments."},
	{ID: cmapi.MetricTOTPDisabled, Name: "cmapi_totp_disabled_total", Help: "TOTP removals."},
	{ID: cmapi.MetricRefreshSuccess, Name: "cmapi_refresh_success_total", Help: "Successful refresh operations."},
	{ID: cmapi.MetricRefreshFailure, Name: "cmapi_refresh_failure_total", Help: "Failed refresh operations."},
	{ID: cmapi.MetricValidateSuccess, Name: "cmapi_validate_success_total", Help: "Successful access token validations."},
	{ID: cmapi.MetricValidateFailure, Name: "cmapi_validate_failure_total", Help: "Failed access token validations."},
	{ID: cmapi.MetricLogout, Name: "cmapi_logout_total", Help: "Logout operations."},
	{ID: cmapi.MetricSignupSuccess, Name: "cmapi_signup_success_total", Help: "Successful account creations."},
	{ID: cmapi.MetricSignupDuplicate, Name: "cmapi_signup_duplicate_total", Help: "Account creation attempts rejected as duplicate."},
	{ID: cmapi.MetricSignupRateLimited, Name: "cmapi_signup_rate_limited_total", Help: "Rate-limited account creation attempts."},
	{ID: cmapi.MetricRateLimitHit, Name: "cmapi_rate_limit_hit_total", Help: "Rate-limit checks that denied requests."},
}

var HistogramDefs = []HistogramDef{
	{ID: cmapi.MetricValidateLatency, Name: "cmapi_validate_latency_seconds", Help: "Validate latency histogram."},
}

var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// eight-bucket shape.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// both exporters publish.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
