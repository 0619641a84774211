package server

import (
	"crypto/subtle"
	"net/http"

	"symenc/internal/ctxlog"
)

const adminKeyHeader = "X-Admin-Key"

// admin guards handlers that expose recorded plaintext. Requests must carry
// the configured key in the X-Admin-Key header or cookie. With no key
// configured every request is refused.
type admin struct {
	key []byte
}

func newAdmin(key string) *admin {
	return &admin{
		key: []byte(key),
	}
}

func (a *admin) allowed(r *http.Request) bool {
	if len(a.key) == 0 {
		return false
	}

	given := r.Header.Get(adminKeyHeader)
	if given == "" {
		if cookie, _ := r.Cookie(adminKeyHeader); cookie != nil {
			given = cookie.Value
		}
	}
	return subtle.ConstantTimeCompare([]byte(given), a.key) == 1
}

func (a *admin) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.allowed(r) {
			next.ServeHTTP(w, r)
			return
		}

		ctxlog.Get(r.Context()).Warn("admin request refused")
		writeJSON(w, r, http.StatusForbidden, response{Error: "Admin key required."})
	})
}
