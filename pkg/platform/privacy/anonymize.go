// Package privacy trims network identifiers before they reach logs.
package privacy

import (
	"fmt"
	"net/netip"
	"strings"
)

// AnonymizeIP masks an address to its network prefix: /24 for IPv4 and /48
// for IPv6. "host:port" input is accepted. Empty input yields "unknown" and
// unparseable input yields "invalid".
func AnonymizeIP(raw string) string {
	if raw == "" || raw == "unknown" {
		return "unknown"
	}
	if ap, err := netip.ParseAddrPort(raw); err == nil {
		raw = ap.Addr().String()
	}
	addr, err := netip.ParseAddr(strings.Trim(raw, "[]"))
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()
	if addr.Is4() {
		b := addr.As4()
		return fmt.Sprintf("%d.%d.%d.0", b[0], b[1], b[2])
	}
	b := addr.As16()
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::", b[0], b[1], b[2], b[3], b[4], b[5])
}
