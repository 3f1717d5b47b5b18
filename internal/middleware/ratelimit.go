// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the limiter table.
const maxTrackedClients = 10000

// RateLimiter limits requests per client IP with a token bucket that
// refills limit tokens per window. Idle clients are forgotten after two
// windows. Forwarding headers are only honoured from trusted proxies.
type RateLimiter struct {
	mu      sync.Mutex
	clients *expirable.LRU[string, *rate.Limiter]
	every   rate.Limit
	burst   int
	proxies []netip.Prefix
}

// NewRateLimiter creates a rate limiter that allows limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	return &RateLimiter{
		clients: expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, 2*window),
		every:   rate.Every(window / time.Duration(limit)),
		burst:   limit,
	}
}

// TrustProxies makes the limiter read the client address from
// X-Forwarded-For and X-Real-IP when the peer is in one of prefixes.
func (rl *RateLimiter) TrustProxies(prefixes []netip.Prefix) *RateLimiter {
	rl.proxies = prefixes
	return rl
}

// allow checks whether the given key is within the rate limit.
func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	lim, ok := rl.clients.Get(key)
	if !ok {
		lim = rate.NewLimiter(rl.every, rl.burst)
		rl.clients.Add(key, lim)
	}
	rl.mu.Unlock()

	return lim.Allow()
}

// Middleware returns an HTTP middleware that rate-limits by client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(rl.clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the address the request is limited by. The peer
// address is used unless it is a trusted proxy; then X-Forwarded-For is
// walked from the right, skipping trusted hops, and X-Real-IP is the
// fallback.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if !rl.trusted(peer) {
		return peer
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !rl.trusted(hop) || i == 0 {
				return hop
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

func (rl *RateLimiter) trusted(host string) bool {
	if len(rl.proxies) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range rl.proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
