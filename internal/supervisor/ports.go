package supervisor

import "github.com/AdguardTeam/golibs/log"

// KillPorts best-effort terminates whatever process holds each of ports.
// Used as EADDRINUSE recovery (see onPortConflict in Start) and by the
// orchestrator's Cleanup on exit; nothing calls it at startup or before a
// connection starts.
func KillPorts(ports ...int) {
	for _, port := range ports {
		if err := killPort(port); err != nil {
			log.Debug("kill_ports: port %d: %s", port, err)
		}
	}
}
