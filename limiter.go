package folio

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter rate-limits failed login attempts per IP address with a
// token bucket per client: max attempts burst, refilled evenly over window.
type LoginLimiter struct {
	mu      sync.Mutex
	clients map[string]*loginClient
	limit   rate.Limit
	burst   int
	window  time.Duration
	now     func() time.Time
}

type loginClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginLimiter creates a LoginLimiter that allows max attempts per window.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	if max < 1 {
		max = 1
	}
	return &LoginLimiter{
		clients: make(map[string]*loginClient),
		limit:   rate.Every(window / time.Duration(max)),
		burst:   max,
		window:  window,
		now:     time.Now,
	}
}

func (l *LoginLimiter) client(ip string) *loginClient {
	cl, ok := l.clients[ip]
	if !ok {
		cl = &loginClient{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = cl
	}
	cl.lastSeen = l.now()
	return cl
}

// Check reports whether the IP still has an attempt left. It does not
// consume one; call Record on a failed login.
func (l *LoginLimiter) Check(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.client(ip).limiter.TokensAt(l.now()) >= 1
}

// Record consumes one attempt for the IP.
func (l *LoginLimiter) Record(ip string) {
	l.mu.Lock()
	l.client(ip).limiter.AllowN(l.now(), 1)
	l.mu.Unlock()
}

// Allow consumes an attempt and reports whether it was within the limit.
func (l *LoginLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.client(ip).limiter.AllowN(l.now(), 1)
}

// Sweep forgets clients idle for longer than the window; their buckets are
// full again by then.
func (l *LoginLimiter) Sweep() int {
	cutoff := l.now().Add(-l.window)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, cl := range l.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
			n++
		}
	}
	return n
}

// StartSweeper runs Sweep every window until ctx is done.
func (l *LoginLimiter) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(l.window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}
