package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

const bearerPrefix = "Bearer "

// BearerAuthMiddleware returns a middleware that guards the rule and augment
// endpoints with Bearer tokens. If apiKeys is empty, authentication is disabled.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			msg := checkBearer(r.Header.Get("Authorization"), keys)
			if msg != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="queryrules"`)
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// checkBearer returns an empty string when header carries one of keys,
// otherwise the reason for rejecting it.
func checkBearer(header string, keys [][]byte) string {
	if header == "" {
		return "missing authorization header"
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "authorization header must use Bearer scheme"
	}

	token := []byte(header[len(bearerPrefix):])
	for _, k := range keys {
		if subtle.ConstantTimeCompare(token, k) == 1 {
			return ""
		}
	}
	return "invalid api key"
}
