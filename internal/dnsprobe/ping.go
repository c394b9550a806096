package dnsprobe

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	rate "github.com/beefsack/go-rate"
)

// pingLimiter paces outbound `ping` subprocess launches independently of
// the scan's 50-permit concurrency semaphore: the semaphore bounds how many
// probes run at once, this bounds how fast new ones are allowed to spawn,
// keeping a large scan from forking hundreds of ping processes in a burst.
var pingLimiter = rate.New(200, time.Second)

// pingHost runs the platform-appropriate ping command against ip and
// reports the elapsed time on success, matching dns_service.rs's
// ping_host argument matrix exactly (Windows -n/-w in ms, macOS -c/-W in
// ms, Linux -c/-W in whole seconds rounded up).
func pingHost(ctx context.Context, ip string, timeout time.Duration) (time.Duration, error) {
	pingLimiter.Wait()

	timeoutMs := timeout.Milliseconds()

	var args []string
	switch runtime.GOOS {
	case "windows":
		args = []string{"-n", "1", "-w", strconv.FormatInt(timeoutMs, 10), ip}
	case "darwin":
		args = []string{"-c", "1", "-W", strconv.FormatInt(timeoutMs, 10), ip}
	default:
		seconds := int64(math.Ceil(float64(timeoutMs) / 1000.0))
		args = []string{"-c", "1", "-W", strconv.FormatInt(seconds, 10), ip}
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, "ping", args...)
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ping failed: %w", err)
	}
	return time.Since(start), nil
}
