package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the client IP from r.RemoteAddr only, ignoring proxy
// headers. Use for the in-process limiters, where a spoofed X-Forwarded-For
// must not let a caller dodge its bucket.
func RealClientIP(r *http.Request) string {
	return hostOnly(r.RemoteAddr)
}

// FromProxyHeaders returns the client IP, preferring X-Forwarded-For and
// X-Real-IP over RemoteAddr. Use for the Redis limiter and ban bookkeeping,
// where traffic arrives through the frontend proxy and RemoteAddr is the
// proxy's address.
func FromProxyHeaders(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// First hop is the original client
		if first, _, ok := strings.Cut(forwarded, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwarded)
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return hostOnly(r.RemoteAddr)
}

func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return strings.TrimSpace(addr)
	}
	return strings.TrimSpace(host)
}
