package server

import (
	"log/slog"
	"net/http"
	"time"

	"symenc/internal/ctxlog"
)

// responseRecorder remembers the status and size of a response for the
// request log.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *responseRecorder) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := ctxlog.Get(r.Context())
		l = l.With("method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
		r = r.WithContext(ctxlog.Store(r.Context(), l))

		start := time.Now()
		rw := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(rw, r)

		level := slog.LevelInfo
		if rw.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		l.Log(r.Context(), level, "request completed", "status", rw.status, "bytes", rw.bytes, "duration", time.Since(start).String())
	})
}
