//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// killProcess sends SIGKILL to the child, matching Child::start_kill's
// immediate, non-graceful semantics in process_manager.rs.
func killProcess(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}

// killPort best-effort kills whatever process is listening on port by
// shelling out to lsof, matching the `lsof -ti:<port> | xargs kill -9`
// recovery line in process_manager.rs.
func killPort(port int) error {
	pids, err := listeningPIDs(port)
	if err != nil {
		return err
	}
	for _, pid := range pids {
		_ = unix.Kill(pid, syscall.SIGKILL)
	}
	return nil
}
