package clientip

import (
	"net"
	"net/netip"
	"strings"
)

// IsIP reports whether s is a syntactically valid IPv4 or IPv6 address.
//
// The check is purely syntactic: reachability, scope, and whether the address
// is private or reserved are not considered. Zoned IPv6 addresses
// ("fe80::1%eth0") are rejected because a zone is meaningless outside the
// host that produced it.
func IsIP(s string) bool {
	_, ok := parseIP(s)
	return ok
}

// parseIP parses s without any normalization of the input. Callers decide
// what trimming or port stripping applies before validation.
func parseIP(s string) (netip.Addr, bool) {
	if s == "" {
		return netip.Addr{}, false
	}

	ip, err := netip.ParseAddr(s)
	if err != nil || ip.Zone() != "" {
		return netip.Addr{}, false
	}

	return ip, true
}

// stripPort removes a trailing ":port" from tokens that contain exactly one
// colon. Tokens with no colon or with several (bare IPv6) are returned as-is.
//
// Azure App Service appends the client port to X-Forwarded-For entries
// ("203.0.113.5:4321"), which is the case this targets.
func stripPort(token string) string {
	if strings.Count(token, ":") != 1 {
		return token
	}

	host, _, _ := strings.Cut(token, ":")
	return host
}

// parseRemoteAddr accepts "host:port", "[v6]:port", or a bare host.
func parseRemoteAddr(remoteAddr string) (string, netip.Addr, bool) {
	remoteAddr = strings.TrimSpace(remoteAddr)
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		remoteAddr = host
	}

	remoteAddr = trimMatchedPair(remoteAddr, '[', ']')
	ip, ok := parseIP(remoteAddr)
	return remoteAddr, ip, ok
}

func normalizeIP(ip netip.Addr) netip.Addr {
	if ip.Is4In6() {
		return ip.Unmap()
	}
	return ip
}

// trimMatchedPair removes one leading and trailing delimiter when both match.
func trimMatchedPair(s string, start, end byte) string {
	if len(s) < 2 {
		return s
	}

	if s[0] != start || s[len(s)-1] != end {
		return s
	}

	return s[1 : len(s)-1]
}
