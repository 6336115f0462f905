package captcha

import (
	"net"
	"net/http"
)

// LocalFunc reports whether a request originates from a trusted local
// context and may therefore use development credentials.
type LocalFunc func(r *http.Request) bool

// IsLocalRequest reports whether the peer is a loopback address or the
// server's own address. Forwarding headers are ignored: a proxied request is
// never local.
func IsLocalRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	if len(r.Header.Values("X-Forwarded-For")) > 0 || r.Header.Get("Forwarded") != "" {
		return false
	}
	ip := parseHost(r.RemoteAddr)
	if ip == nil {
		return false
	}
	if ip.IsLoopback() {
		return true
	}
	if la, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		if local := parseHost(la.String()); local != nil && local.Equal(ip) {
			return true
		}
	}
	return false
}

// RemoteIP returns the peer IP of r as a string, or "" if it cannot be parsed.
func RemoteIP(r *http.Request) string {
	if ip := parseHost(r.RemoteAddr); ip != nil {
		return ip.String()
	}
	return ""
}

func parseHost(addr string) net.IP {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	return net.ParseIP(host)
}
