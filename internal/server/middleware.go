package server

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/vanshika/creditguardian/internal/session"
)

// RequestObserver records per-route request metrics.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
	RateLimited()
}

type noopRequestObserver struct{}

func (noopRequestObserver) ObserveRequest(string, string, int, time.Duration) {}
func (noopRequestObserver) RateLimited()                                      {}

// RateLimitConfig bounds requests per client IP. A zero RPS disables limiting.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Enabled reports whether limiting is configured.
func (c RateLimitConfig) Enabled() bool {
	return c.RPS > 0
}

func instrument(observer RequestObserver, route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		observer.ObserveRequest(r.Method, route, rec.status, time.Since(start))
	})
}

// limiterIdleTTL is how long a client IP may go unseen before its limiter is dropped.
const limiterIdleTTL = 10 * time.Minute

type ipRateLimiter struct {
	limit     rate.Limit
	burst     int
	observer  RequestObserver
	idleTTL   time.Duration
	nowFn     func() time.Time
	limiters  sync.Map // map[string]*limiterEntry
	lastSweep atomic.Int64
	sweepMu   sync.Mutex
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

func newIPRateLimiter(cfg RateLimitConfig, observer RequestObserver) *ipRateLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = max(1, int(cfg.RPS))
	}
	l := &ipRateLimiter{
		limit:    rate.Limit(cfg.RPS),
		burst:    burst,
		observer: observer,
		idleTTL:  limiterIdleTTL,
		nowFn:    time.Now,
	}
	l.lastSweep.Store(l.nowFn().UnixNano())
	return l
}

func (l *ipRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := l.nowFn()
		limiter := l.limiterFor(clientIP(r), now)
		l.maybeSweep(now)
		if !limiter.AllowN(now, 1) {
			l.observer.RateLimited()
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *ipRateLimiter) limiterFor(ip string, now time.Time) *rate.Limiter {
	val, ok := l.limiters.Load(ip)
	if !ok {
		val, _ = l.limiters.LoadOrStore(ip, &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)})
	}
	entry := val.(*limiterEntry)
	entry.lastSeen.Store(now.UnixNano())
	return entry.limiter
}

// maybeSweep evicts idle limiters at most once per idleTTL.
func (l *ipRateLimiter) maybeSweep(now time.Time) {
	if now.UnixNano()-l.lastSweep.Load() < int64(l.idleTTL) {
		return
	}
	if !l.sweepMu.TryLock() {
		return
	}
	defer l.sweepMu.Unlock()
	l.lastSweep.Store(now.UnixNano())
	l.sweep(now)
}

func (l *ipRateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-l.idleTTL).UnixNano()
	l.limiters.Range(func(key, val any) bool {
		if val.(*limiterEntry).lastSeen.Load() < cutoff {
			l.limiters.CompareAndDelete(key, val)
		}
		return true
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// requireSession resolves the bearer token and stores the session on the request context.
func requireSession(manager *session.Manager) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			sess, err := manager.Resolve(r.Context(), token)
			if errors.Is(err, session.ErrSessionNotFound) {
				writeError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "session lookup failed")
				return
			}
			next(w, r.WithContext(session.NewContext(r.Context(), sess)))
		}
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
