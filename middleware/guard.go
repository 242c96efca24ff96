package middleware

import (
	"context"
	"net/http"
	"strings"

	cmapi "github.com/ranswife/cmapi"
)

type authResultContextKey struct{}

// AuthResultFromContext returns the AuthResult injected by [Guard], if any.
func AuthResultFromContext(ctx context.Context) (*cmapi.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*cmapi.AuthResult)
	return res, ok
}

// Guard rejects requests without a live access token. On success the
// resolved AuthResult is available to handlers through
// [AuthResultFromContext].
func Guard(engine *cmapi.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res, err := engine.Validate(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, &res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
