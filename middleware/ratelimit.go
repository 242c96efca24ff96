package middleware

import (
	"errors"
	"net/http"

	cmapi "github.com/ranswife/cmapi"
)

// RateLimit charges each request against the engine's budget for
// r.URL.Path before dispatching it. Denied requests get a 429; paths
// without a configured rule pass through untouched. Run ClientIdentity
// first so the charge lands on the real client rather than a random
// per-request identity.
//
// The signup and login paths are never charged here: CreateAccount and
// Login charge them internally, and a second charge per request would
// halve their budgets.
func RateLimit(engine *cmapi.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			switch r.URL.Path {
			case cmapi.PathSignup, cmapi.PathLogin:
				next.ServeHTTP(w, r)
				return
			}

			identity := cmapi.ClientIPFromContext(r.Context())
			if identity == "" {
				identity = ResolveClientIP(r)
			}
			if err := engine.CheckRate(r.Context(), identity, r.URL.Path); err != nil {
				if errors.Is(err, cmapi.ErrRateLimited) {
					http.Error(w, "too many requests", http.StatusTooManyRequests)
					return
				}
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
