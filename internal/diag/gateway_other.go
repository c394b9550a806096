//go:build !linux

package diag

// GatewayIPs is a no-op on non-Linux platforms: `ip route get` has no
// portable equivalent here, and this diagnostic is best-effort only.
func GatewayIPs() (ipv4, ipv6 string) {
	return "", ""
}
