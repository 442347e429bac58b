package p2p

import (
	"fmt"
	"net/netip"
	"strings"
	"time"
)

type PeerInfo struct {
	ID        string
	Addrs     []string
	Connected bool
	LastSeen  time.Time
}

// IsPublic reports whether at least one address of the peer is globally
// routable.
func (p PeerInfo) IsPublic() bool {
	for _, addr := range p.Addrs {
		ip, ok := parseIP(addr)
		if !ok {
			continue
		}
		if ip.IsGlobalUnicast() && !ip.IsPrivate() {
			return true
		}
	}
	return false
}

// parseIP accepts "ip", "ip:port" and "[ipv6]:port".
func parseIP(addr string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(addr); err == nil {
		return ap.Addr().Unmap(), true
	}
	if ip, err := netip.ParseAddr(strings.Trim(addr, "[]")); err == nil {
		return ip.Unmap(), true
	}
	return netip.Addr{}, false
}

// ParseBootstrapPeer parses "<id>@<addr>".
func ParseBootstrapPeer(raw string) (PeerInfo, error) {
	id, addr, ok := strings.Cut(strings.TrimSpace(raw), "@")
	if !ok || id == "" || addr == "" {
		return PeerInfo{}, fmt.Errorf("invalid bootstrap peer %q, expected <id>@<addr>", raw)
	}
	if _, valid := parseIP(addr); !valid {
		return PeerInfo{}, fmt.Errorf("invalid bootstrap peer address %q", addr)
	}
	return PeerInfo{ID: id, Addrs: []string{addr}}, nil
}
