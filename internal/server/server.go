// Package server exposes the cipher over a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"symenc/internal/cipher"
	"symenc/internal/ctxlog"
)

type Server struct {
	addr            string
	handler         http.Handler
	anti            *antidos
	shutdownTimeout time.Duration
}

// New builds the server. src defaults to cipher.DefaultSource and must be
// safe for concurrent use; recorder may be nil.
func New(ctx context.Context, config Config, src cipher.Source, recorder cipher.Recorder) *Server {
	if config.Port == 0 {
		panic("server: port is required")
	}
	if config.AntidosBuckets == 0 {
		panic("server: antidosBuckets is required")
	}
	if config.AntidosPeriod == 0 {
		panic("server: antidosPeriod is required")
	}
	if config.MaxBodyBytes == 0 {
		panic("server: maxBodyBytes is required")
	}
	if config.ShutdownTimeout == 0 {
		panic("server: shutdownTimeout is required")
	}
	if src == nil {
		src = cipher.DefaultSource
	}

	logger := ctxlog.Get(ctx)

	a := &api{
		src:          src,
		recorder:     recorder,
		maxBodyBytes: config.MaxBodyBytes,
	}

	adm := newAdmin(config.AdminKey)
	if config.AdminKey == "" {
		logger.Warn("no admin key configured, history endpoints are disabled")
	}

	mux := http.NewServeMux()
	for pattern, h := range map[string]http.Handler{
		"/":               http.HandlerFunc(notFoundHandler),
		"POST /encrypt":   http.HandlerFunc(a.encrypt),
		"GET /alphabet":   http.HandlerFunc(alphabetHandler),
		"GET /history":    adm.middleware(http.HandlerFunc(historyHandler)),
		"DELETE /history": adm.middleware(http.HandlerFunc(clearHistoryHandler)),
	} {
		logger.Debug("registering handler", "pattern", pattern)
		mux.Handle(pattern, h)
	}

	anti := newAntidos(config.AntidosBuckets, config.AntidosPeriod)

	handler := anti.middleware(mux)
	handler = newRecover(handler)
	handler = logMiddleware(handler)

	return &Server{
		addr:            net.JoinHostPort(config.Host, fmt.Sprint(config.Port)),
		handler:         handler,
		anti:            anti,
		shutdownTimeout: config.ShutdownTimeout,
	}
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger := ctxlog.Get(ctx)
	defer s.anti.stop()

	srv := &http.Server{
		Handler:     s.handler,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErrCh := make(chan error, 1)
	go func() {
		defer cancel()
		logger.Info("server is running", "addr", ln.Addr().String())
		serveErrCh <- srv.Serve(ln)
	}()

	<-ctx.Done()

	logger.Info("server is shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer stopCancel()
	shutdownErr := srv.Shutdown(stopCtx)

	if errors.Is(shutdownErr, context.DeadlineExceeded) {
		logger.Error("server shutdown timeout exceeded")
	} else if shutdownErr == nil {
		logger.Info("all clients closed successfully")
	}

	serveErr := <-serveErrCh
	if errors.Is(serveErr, http.ErrServerClosed) {
		serveErr = nil
	}

	return errors.Join(serveErr, shutdownErr)
}
