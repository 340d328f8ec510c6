// Package server exposes a record source over HTTP as the record API, with
// Prometheus metrics and request rate limiting.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/oakwood-commons/qbar/internal/query"
	"github.com/oakwood-commons/qbar/internal/store"
)

// Required query parameters of the record API. "search" is optional.
var requiredParams = []string{"filterType", "filterKey", "filterOperator", "filterValue"}

// Options configures a Server.
type Options struct {
	Addr      string
	RateLimit float64 // requests per second; 0 disables limiting
	Burst     int
}

// Server serves the record API.
type Server struct {
	src     store.Source
	opts    Options
	log     logr.Logger
	metrics *metrics
	limiter *rate.Limiter
	handler http.Handler
}

// New builds a server over src.
func New(src store.Source, opts Options, log logr.Logger) *Server {
	s := &Server{src: src, opts: opts, log: log, metrics: newMetrics()}
	if opts.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(opts.Burst, 1))
	}

	mux := http.NewServeMux()
	mux.Handle(store.APIPath, s.instrument(store.APIPath, s.rateLimit(http.HandlerFunc(s.handleAPI))))
	mux.Handle("/healthz", s.instrument("/healthz", http.HandlerFunc(handleHealth)))
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	s.handler = mux
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Run listens on opts.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("record api listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("record api shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	values := r.URL.Query()
	for _, name := range requiredParams {
		if !values.Has(name) {
			writeError(w, http.StatusBadRequest, "missing parameter "+name)
			return
		}
	}
	op, err := query.ParseOperator(values.Get("filterOperator"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := query.Params{
		FilterType:     values.Get("filterType"),
		FilterKey:      values.Get("filterKey"),
		FilterOperator: op,
		FilterValue:    values.Get("filterValue"),
		Search:         values.Get("search"),
	}

	items, err := s.src.Search(r.Context(), p)
	if err != nil {
		if r.Context().Err() != nil {
			s.log.V(1).Info("client went away", "filterType", p.FilterType)
			return
		}
		s.log.Error(err, "search failed", "filterType", p.FilterType, "filterKey", p.FilterKey)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if items == nil {
		items = []query.Record{}
	}
	s.metrics.items.WithLabelValues(p.FilterType).Observe(float64(len(items)))

	writeJSON(w, http.StatusOK, store.Response{
		FilterType:     p.FilterType,
		FilterKey:      p.FilterKey,
		FilterOperator: op.String(),
		FilterValue:    p.FilterValue,
		Items:          items,
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// rateLimit rejects requests beyond the configured rate with 429.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.metrics.rateLimited.Inc()
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument records count and latency per route and logs each request at V(1).
func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		s.metrics.duration.WithLabelValues(route).Observe(elapsed.Seconds())
		s.log.V(1).Info("request", "method", r.Method, "path", r.URL.Path,
			"query", r.URL.RawQuery, "code", rec.code, "duration", elapsed.String())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
