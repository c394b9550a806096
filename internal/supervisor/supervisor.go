// Package supervisor manages the lifecycle of the external tunnel client
// binary: locating it, spawning it, demuxing its stdout/stderr, and
// terminating it and anything else squatting on its ports.
package supervisor

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/AdguardTeam/golibs/log"

	"github.com/streamgate/corebridge/internal/sgerrors"
	"github.com/streamgate/corebridge/utils"
)

// maxOutputLineLen caps a single demuxed line before it's queued as a
// stream-log/stream-error event, guarding against a runaway child process
// writing an unbounded line.
const maxOutputLineLen = 4096

// readinessWait is the fixed sleep the supervisor uses to decide the child
// is ready, in the absence of any handshake from the binary. See spec.md
// §4.A and the open question in §9.
const readinessWait = 2 * time.Second

// OutputStream identifies which pipe a line of process output came from.
type OutputStream string

// Streams matching the stream-log/stream-error IPC events.
const (
	StreamStdout OutputStream = "stdout"
	StreamStderr OutputStream = "stderr"
)

// OutputLine is one line of demuxed child output.
type OutputLine struct {
	Stream OutputStream
	Data   string
}

// Supervisor owns the single child process handle, matching spec.md §3's
// ChildProcess: created on Start, destroyed on Stop, rollback, or exit.
type Supervisor struct {
	mu      sync.Mutex
	cmd     *exec.Cmd
	output  chan OutputLine
	onPortConflict func(port int)
}

// New returns a Supervisor. onPortConflict, if non-nil, is invoked when the
// child's stderr reports the upstream port already being in use, so the
// caller can trigger KillPorts.
func New(onPortConflict func(port int)) *Supervisor {
	return &Supervisor{
		output:         make(chan OutputLine, 256),
		onPortConflict: onPortConflict,
	}
}

// Output returns the channel of demuxed stdout/stderr lines.
func (s *Supervisor) Output() <-chan OutputLine {
	return s.output
}

// IsRunning reports whether a child handle is held, per spec.md §4.A.
func (s *Supervisor) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil
}

// Start resolves the tunnel binary, spawns it with args, waits the fixed
// readiness window, and returns an error if the child is not alive or is
// already running.
func (s *Supervisor) Start(_ context.Context, binaryOverride string, args []string, upstreamPort int) error {
	s.mu.Lock()
	if s.cmd != nil {
		s.mu.Unlock()
		return sgerrors.New(sgerrors.KindStartup, "tunnel client already running")
	}
	s.mu.Unlock()

	path, err := ResolveBinaryPath(binaryOverride)
	if err != nil {
		return sgerrors.Wrap(sgerrors.KindEnvironment, err, "locating tunnel client binary")
	}
	ensureExecutable(path)

	log.Info("starting tunnel client: %s %v", path, args)

	cmd := exec.Command(path, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return sgerrors.Wrap(sgerrors.KindStartup, err, "capturing stdout")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return sgerrors.Wrap(sgerrors.KindStartup, err, "capturing stderr")
	}

	if err := cmd.Start(); err != nil {
		return sgerrors.Wrap(sgerrors.KindStartup, err, "spawning tunnel client")
	}

	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()

	exited := make(chan struct{})
	var pumps sync.WaitGroup
	pumps.Add(2)
	go func() { defer pumps.Done(); s.pumpStdout(stdout) }()
	go func() { defer pumps.Done(); s.pumpStderr(stderr, upstreamPort) }()
	go func() {
		// Wait closes the pipes, so it runs only after both are drained.
		pumps.Wait()
		_ = cmd.Wait()
		close(exited)
	}()

	time.Sleep(readinessWait)

	exitedEarly := false
	select {
	case <-exited:
		exitedEarly = true
	default:
	}

	if !s.IsRunning() || exitedEarly {
		s.mu.Lock()
		s.cmd = nil
		s.mu.Unlock()
		return sgerrors.New(sgerrors.KindStartup, "Stream Gate client failed to start")
	}

	return nil
}

// Shutdown implements the exit half of [service.Interface]. Supervisor does
// not implement the full interface: unlike proxy.Proxy, whose configuration
// is fixed at construction, the supervised binary's argument list depends
// on the per-connection domain and resolvers and is only known at Start
// call time, so Start keeps its richer signature instead.
func (s *Supervisor) Shutdown(_ context.Context) error {
	s.Stop()
	return nil
}

// Stop issues a best-effort kill and immediately forgets the child handle.
// Idempotent, and does not wait for exit, matching spec.md §4.A.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	cmd := s.cmd
	s.cmd = nil
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return
	}
	log.Info("stopping tunnel client")
	if err := killProcess(cmd); err != nil {
		log.Debug("stopping tunnel client: %s", err)
	}
}

func (s *Supervisor) pumpStdout(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := utils.ShortText(stripDisplayNoise(scanner.Text()), maxOutputLineLen)
		select {
		case s.output <- OutputLine{Stream: StreamStdout, Data: line}:
		default:
		}
	}
}

func (s *Supervisor) pumpStderr(r io.Reader, upstreamPort int) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		log.Error("tunnel client: %s", line)

		if containsPortConflict(line) && s.onPortConflict != nil {
			s.onPortConflict(upstreamPort)
		}

		line = utils.ShortText(line, maxOutputLineLen)
		select {
		case s.output <- OutputLine{Stream: StreamStderr, Data: line}:
		default:
		}
	}
}

func containsPortConflict(line string) bool {
	return strings.Contains(line, "Address already in use") || strings.Contains(line, "EADDRINUSE")
}

// ansiCSI matches ANSI CSI escape sequences (ESC '[' ... final byte).
var ansiCSI = regexp.MustCompile("\x1b\\[[0-9;]*[a-zA-Z]")

// stripDisplayNoise removes ANSI control sequences and common emoji blocks
// from a stdout line before it's emitted as a stream-log event, matching
// spec.md §4.A's output-handling rule.
func stripDisplayNoise(line string) string {
	line = ansiCSI.ReplaceAllString(line, "")

	out := make([]rune, 0, len(line))
	for _, r := range line {
		if isStrippedEmoji(r) {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

func isStrippedEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F9FF:
		return true
	case r >= 0x2600 && r <= 0x26FF:
		return true
	case r >= 0x2700 && r <= 0x27BF:
		return true
	case r >= 0x1F1E0 && r <= 0x1F1FF:
		return true
	case unicode.Is(unicode.Variation_Selector, r):
		return true
	default:
		return false
	}
}

// ensureExecutable sets the executable bit on POSIX if it's missing; a
// no-op on Windows, matching process_manager.rs's ensure_executable.
func ensureExecutable(path string) {
	if runtime.GOOS == "windows" {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Mode()&0o111 == 0 {
		if err := os.Chmod(path, 0o755); err != nil {
			log.Error("setting execute bit on %s: %s", path, err)
		}
	}
}
