package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// parsePrefixes parses CIDRs, logging and skipping the malformed ones.
func parsePrefixes(cidrs []string, what string, logger *slog.Logger) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(cidrs))
	for _, c := range cidrs {
		p, err := netip.ParsePrefix(strings.TrimSpace(c))
		if err != nil {
			logger.Warn("invalid "+what+" CIDR, skipping", slog.String("cidr", c), slog.String("error", err.Error()))
			continue
		}
		out = append(out, p.Masked())
	}
	return out
}

func contains(prefixes []netip.Prefix, addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// peerAddr is the address of the TCP peer. ok is false when RemoteAddr is
// not an IP (unix sockets, tests).
func peerAddr(r *http.Request) (host string, addr netip.Addr, ok bool) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	addr, err = netip.ParseAddr(host)
	return host, addr.Unmap(), err == nil
}

// clientIPs resolves the client address of a request. Forwarding headers
// are believed only when the peer is one of the trusted proxies; the client
// is then the rightmost X-Forwarded-For entry that is not itself a trusted
// proxy.
type clientIPs struct {
	trusted []netip.Prefix
}

func (c clientIPs) of(r *http.Request) string {
	host, peer, ok := peerAddr(r)
	if !ok || !contains(c.trusted, peer) {
		return host
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			if !contains(c.trusted, addr) {
				return addr.Unmap().String()
			}
		}
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.Unmap().String()
	}
	return host
}
