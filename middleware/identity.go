package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	cmapi "github.com/ranswife/cmapi"
)

// ClientIdentity resolves the client IP from proxy headers and attaches it
// to the request context with [cmapi.WithClientIP]. Header precedence:
// CF-Connecting-IP, then the first valid entry of X-Forwarded-For, then
// X-Real-IP. When none yields a usable address the request gets a random
// identity, so clients that cannot be identified are only ever limited
// against themselves.
func ClientIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := cmapi.WithClientIP(r.Context(), ResolveClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ResolveClientIP extracts the client IP for r per the ClientIdentity
// header precedence, falling back to a random identifier.
func ResolveClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); validIP(ip) {
		return ip
	}
	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := strings.TrimSpace(part); validIP(ip) {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); validIP(ip) {
		return ip
	}
	return uuid.NewString()
}

func validIP(s string) bool {
	return s != "" && net.ParseIP(s) != nil
}
