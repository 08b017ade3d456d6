// Package outbound guards HTTP calls whose URL is influenced by caller input.
package outbound

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/commhub/backend/internal/domain/communication"
)

// Guard decides whether the service may call a URL
type Guard struct {
	allowedHosts []string
}

// NewGuard creates a guard. An empty allow-list admits any public host.
func NewGuard(allowedHosts ...string) *Guard {
	hosts := make([]string, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	return &Guard{allowedHosts: hosts}
}

// AllowedHosts returns the configured allow-list
func (g *Guard) AllowedHosts() []string {
	out := make([]string, len(g.allowedHosts))
	copy(out, g.allowedHosts)
	return out
}

// Check returns nil if rawURL may be called, otherwise an SSRF_BLOCKED error
// whose cause describes the reason.
func (g *Guard) Check(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return communication.Failure(communication.ErrSsrfBlocked, fmt.Errorf("unparseable url: %w", err))
	}
	return g.CheckURL(u)
}

// CheckURL is Check for an already parsed URL
func (g *Guard) CheckURL(u *url.URL) error {
	if u == nil {
		return communication.Failure(communication.ErrSsrfBlocked, fmt.Errorf("nil url"))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return blocked("scheme %q not allowed", u.Scheme)
	}
	host := normalizeHost(u.Hostname())
	if host == "" {
		return blocked("missing host")
	}
	if IsPrivateHost(host) {
		return blocked("private or loopback host %q", host)
	}
	if len(g.allowedHosts) > 0 && !g.hostAllowed(host) {
		return blocked("host %q not in allow-list", host)
	}
	return nil
}

func (g *Guard) hostAllowed(host string) bool {
	for _, allowed := range g.allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

func blocked(format string, args ...any) error {
	return communication.Failure(communication.ErrSsrfBlocked, fmt.Errorf(format, args...))
}

// IsPrivateHost reports whether host is a literal loopback, unspecified,
// link-local or private address, in any textual form net.ParseIP accepts
// (IPv4-mapped IPv6 included). Hostnames are not resolved, so a public name
// pointing at a private address is not detected.
func IsPrivateHost(host string) bool {
	host = normalizeHost(host)
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
			ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
	}
	// prefixes of literals net.ParseIP does not take, like 127.1
	if strings.HasPrefix(host, "127.") || strings.HasPrefix(host, "10.") || strings.HasPrefix(host, "192.168.") {
		return true
	}
	if rest, ok := strings.CutPrefix(host, "172."); ok {
		octet, _, _ := strings.Cut(rest, ".")
		if n, err := strconv.Atoi(octet); err == nil && n >= 16 && n <= 31 {
			return true
		}
	}
	return false
}

// normalizeHost lowercases host and drops IPv6 brackets and the trailing
// dot of a fully qualified name
func normalizeHost(host string) string {
	host = strings.ToLower(strings.Trim(host, "[]"))
	return strings.TrimSuffix(host, ".")
}
