//go:build linux

// Package diag's Linux gateway discovery, adapted from
// internal/cmd/cmd.go's getGatewayIPs in the teacher — a feature present in
// the reference binary but never surfaced in spec.md's distillation. See
// SPEC_FULL.md §10.
package diag

import (
	"net"
	"os/exec"
	"strings"
)

// GatewayIPs probes the default IPv4 and IPv6 gateways via `ip route get`,
// returning empty strings where the probe fails or the platform has none.
func GatewayIPs() (ipv4, ipv6 string) {
	if out, err := exec.Command("/bin/ip", "route", "get", "1.1.1.1").Output(); err == nil {
		parts := strings.Fields(string(out))
		if len(parts) > 6 {
			if ip := net.ParseIP(strings.Trim(parts[2], " \n")); ip != nil {
				ipv4 = ip.String()
			}
		}
	}

	if out, err := exec.Command("/bin/ip", "route", "get", "2620:fe::fe").Output(); err == nil {
		parts := strings.Fields(string(out))
		if len(parts) > 6 {
			ip := net.ParseIP(strings.Trim(parts[4], " \n"))
			iface := strings.Trim(parts[6], " \n")
			if ip != nil {
				ipv6 = ip.String() + "%" + iface
			}
		}
	}

	return ipv4, ipv6
}
