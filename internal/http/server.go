package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"stokvel/internal/cache"
	"stokvel/internal/ledger"
	applog "stokvel/internal/log"
	"stokvel/internal/metrics"
	"stokvel/internal/middleware/ratelimit"
	"stokvel/internal/middleware/trace"
	"stokvel/internal/services"
)

type Server struct {
	http.Server

	source        ledger.GoalSource
	contributions *services.ContributionService
	rateLimiter   *ratelimit.Limiter
	structLog     *applog.StructuredLogger

	// Cross-goal aggregation is the expensive read path; cached entries
	// carry a generation so writes invalidate them immediately.
	historyCache *cache.LRUCache[historyView]
	generation   atomic.Int64

	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, source ledger.GoalSource, contributions *services.ContributionService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		source:        source,
		contributions: contributions,
		rateLimiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		structLog:     applog.NewStructuredLogger(applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)),
		historyCache:  cache.NewLRUCache[historyView](100, 5*time.Minute),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.historyCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /goals", s.handleListGoals)
	mux.HandleFunc("GET /goals/{id}", s.handleGoalDetail)
	mux.HandleFunc("GET /goals/{id}/suggestions", s.handleSuggestions)
	mux.HandleFunc("GET /goals/{id}/timeline", s.handleTimeline)
	mux.HandleFunc("POST /goals/{id}/contributions", s.handleCreateContribution)
	mux.HandleFunc("POST /goals/{id}/complete", s.handleCompleteGoal)

	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /export.csv", s.handleExportCSV)

	traced := trace.NewMiddleware(clientIP, s.structLog).Middleware(s.withWriteRateLimit(mux))

	s.Server = http.Server{
		Addr:    addr,
		Handler: traced,
	}

	return s
}

// withWriteRateLimit applies the per-client limiter to write requests
// only; reads stay unthrottled.
func (s *Server) withWriteRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !s.rateLimiter.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// invalidateReadCaches bumps the generation after a successful write so
// subsequent history reads recompute.
func (s *Server) invalidateReadCaches() {
	s.generation.Add(1)
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
