package server

import (
	"net/http"

	"symenc/internal/ctxlog"
)

type rech struct {
	next http.Handler
}

func newRecover(next http.Handler) *rech {
	return &rech{
		next: next,
	}
}

func (rec *rech) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := recover(); err != nil {
			log := ctxlog.Get(r.Context())
			log.Error("recovered panic", "error", err)

			clear(w.Header())
			writeJSON(w, r, http.StatusInternalServerError, response{Error: "Internal server error."})
		}
	}()

	rec.next.ServeHTTP(w, r)
}
