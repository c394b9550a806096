package diag

import (
	"os"

	"github.com/AdguardTeam/golibs/log"

	"github.com/streamgate/corebridge/utils"
)

// maxLogFileBytes caps the backend's own log file, adapted from the
// teacher's MonitorLogFile (proxy/blocked_domains_manager.go), which
// guarded against unbounded growth from its own verbose DNS logging. This
// spec's DNS Probe Engine produces a comparable volume of per-query logs.
const maxLogFileBytes = 128 * 1024 * 1024

// MonitorLogFile truncates logPath by deleting it once it exceeds
// maxLogFileBytes. Intended to run as a periodic job.
func MonitorLogFile(logPath string) {
	if logPath == "" {
		return
	}
	size, _, err := utils.GetFileInfo(logPath)
	if err != nil {
		return
	}
	if size > maxLogFileBytes {
		if err := os.Remove(logPath); err != nil {
			log.Error("removing oversized log file %s: %s", logPath, err)
		}
	}
}
