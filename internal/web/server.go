// Package web serves decoded model assets over HTTP for inspection.
package web

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/tlj-engine/internal/assets"
)

// Options configures a Server.
type Options struct {
	// RequestLog receives one access log line per request. Nil disables
	// access logging.
	RequestLog    io.Writer
	DefaultFacing float32
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

// Server exposes an asset manager over HTTP.
type Server struct {
	assets *assets.Manager
	log    *zap.Logger
	opts   Options
}

// NewServer creates a server over mgr. A nil logger discards output.
func NewServer(mgr *assets.Manager, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{assets: mgr, log: log, opts: opts}
}

// Handler returns the routed and wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.UseEncodedPath()

	r.HandleFunc("/json/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/json/models", s.handleModels).Methods(http.MethodGet)
	r.HandleFunc("/json/models/{name}", s.handleModel).Methods(http.MethodGet)
	r.HandleFunc("/json/models/{name}/pick", s.handlePick).Methods(http.MethodPost)
	r.HandleFunc("/dump/models/{name}", s.handleDump).Methods(http.MethodGet)
	r.HandleFunc("/export/models/{name}.glb", s.handleExport).Methods(http.MethodGet)

	var h http.Handler = r
	if s.opts.RequestLog != nil {
		h = handlers.LoggingHandler(s.opts.RequestLog, h)
	}
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(s.log)),
		handlers.PrintRecoveryStack(true),
	)(h)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("shutdown", zap.Error(err))
		}
	}()

	s.log.Info("starting server", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	stop()
	<-done
	return errors.Wrap(err, "serving")
}
