//go:build windows

package supervisor

import (
	"bufio"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/sys/windows"
)

// killProcess terminates the child via the OS handle directly, matching
// Child::start_kill's immediate, non-graceful semantics.
func killProcess(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}

// killPort walks `netstat -ano` output for the port and terminates every
// owning PID via OpenProcess+TerminateProcess, the Windows analogue of the
// POSIX lsof|kill pipeline in process_manager.rs.
func killPort(port int) error {
	out, err := exec.Command("netstat", "-ano").Output()
	if err != nil {
		return err
	}

	needle := ":" + strconv.Itoa(port)
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, needle) || !strings.Contains(line, "LISTENING") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		pidStr := fields[len(fields)-1]
		pid, convErr := strconv.ParseUint(pidStr, 10, 32)
		if convErr != nil {
			continue
		}
		terminateByPID(uint32(pid))
	}
	return nil
}

func terminateByPID(pid uint32) {
	handle, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, pid)
	if err != nil {
		return
	}
	defer windows.CloseHandle(handle)
	_ = windows.TerminateProcess(handle, 1)
}
