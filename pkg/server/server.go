// Package server is the HTTP boundary: it extracts hostname, path and
// query from each inbound request, asks the resolver for a decision
// and emits the redirect or a 404.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/hostbounce/hostbounce/pkg/config"
	"github.com/hostbounce/hostbounce/pkg/hitlog"
	"github.com/hostbounce/hostbounce/pkg/models"
	"github.com/hostbounce/hostbounce/pkg/resolver"
)

// Server is the hostbounce redirect server.
type Server struct {
	cfg      *config.Config
	resolver *resolver.Resolver
	hits     *hitlog.Logger
	mux      *http.ServeMux
}

// New creates a Server wired with its dependencies. hits may be nil
// when the hit log is disabled.
func New(cfg *config.Config, r *resolver.Resolver, hits *hitlog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		resolver: r,
		hits:     hits,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/readyz", s.handleReadyz)
	s.mux.HandleFunc("/", s.handleRedirect)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("hostbounce listening on %s", s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

// redirectMethods are the methods a redirect answers; everything else
// is rejected.
var redirectMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPatch:  true,
	http.MethodHead:   true,
}

func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	if !redirectMethods[r.Method] {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	d := s.resolver.Resolve(r.Context(), r.Host, r.URL.Path, r.URL.RawQuery)

	if !d.Matched {
		s.record(r, d)
		http.NotFound(w, r)
		return
	}

	log.Printf("redirecting %s %s%s -> %s (UA: %s)", r.Method, r.Host, r.URL.RequestURI(), d.Location, r.UserAgent())
	s.record(r, d)

	w.Header().Set("Location", d.Location)
	w.WriteHeader(s.cfg.Redirect.Status)
}

// record writes the decision to the hit log off the request path.
func (s *Server) record(r *http.Request, d models.Decision) {
	if s.hits == nil {
		return
	}

	hit := models.Hit{
		Hostname:  r.Host,
		Method:    r.Method,
		Path:      r.URL.Path,
		Target:    d.Location,
		Matched:   d.Matched,
		UserAgent: r.UserAgent(),
		CreatedAt: time.Now().UTC(),
	}
	go func() {
		if err := s.hits.Record(context.Background(), hit); err != nil {
			log.Printf("hit log error: %v", err)
		}
	}()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
