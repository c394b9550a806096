package dnsprobe

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AdguardTeam/golibs/log"
	"github.com/AdguardTeam/golibs/syncutil"

	"github.com/streamgate/corebridge/internal/sgerrors"
)

const (
	maxConcurrentProbes = 50
	pingTimeout         = 2000 * time.Millisecond
	singleCheckTimeout  = 2500 * time.Millisecond
	defaultScanTimeout  = 3 * time.Second
)

// Engine runs single-server checks and cancellable multi-server scans. The
// generational scan_id in spec.md §3/§9 is the sole cancellation source of
// truth: every emission is guarded on it. The running flag behind
// IsScanning is set by StartScan and cleared by StopScan or when the
// workers of the still-current generation finish; a superseded generation
// never clears it.
type Engine struct {
	sema    syncutil.Semaphore
	scanID  atomic.Uint64
	running atomic.Bool
}

// NewEngine returns a ready Engine with the fixed 50-permit probe pool.
func NewEngine() *Engine {
	return &Engine{sema: syncutil.NewChanSemaphore(maxConcurrentProbes)}
}

// IsScanning reports whether a scan is currently in flight.
func (e *Engine) IsScanning() bool {
	return e.running.Load()
}

// CheckSingle runs the ping+resolve diagnostic used by the UI's
// single-server check, matching dns_service.rs's check_single_server.
func (e *Engine) CheckSingle(ctx context.Context, server, domain string) (CheckResult, error) {
	parsed, ok := ParseServer(server)
	if !ok {
		return CheckResult{}, sgerrors.New(sgerrors.KindConfig, "invalid DNS server format").WithCode(server)
	}
	ip, port := parsed.V1, parsed.V2

	result := CheckResult{
		Server: server,
		IP:     ip,
		Port:   port,
		Domain: domain,
		Status: "Unreachable",
	}

	pingElapsed, pingErr := pingHost(ctx, ip, pingTimeout)
	if pingErr != nil {
		result.Error = "Ping failed"
		return result, nil
	}

	result.PingTimeMs = uint64(pingElapsed.Milliseconds())
	result.Status = "Ping Only"

	start := time.Now()
	answers, err := resolveA(ip, port, domain, singleCheckTimeout)
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}

	result.DNSTimeMs = uint64(time.Since(start).Milliseconds())
	result.Answers = answers
	result.Status = "OK"
	result.OK = true
	return result, nil
}

// StartScan launches a fire-and-forget scan over servers, streaming results
// through sink. Returns immediately; the scan runs on background
// goroutines bounded by the 50-permit semaphore.
func (e *Engine) StartScan(servers []string, domain string, mode Mode, timeout time.Duration, sink EventSink) {
	if timeout <= 0 {
		timeout = defaultScanTimeout
	}
	if sink == nil {
		sink = NoopSink{}
	}

	scanID := e.scanID.Add(1)
	e.running.Store(true)

	total := len(servers)
	if total == 0 {
		e.running.Store(false)
		sink.ScanComplete()
		return
	}

	tracker := newDispatchTracker()
	var completed atomic.Int64
	var wg sync.WaitGroup

	for _, server := range servers {
		if e.scanID.Load() != scanID {
			break
		}
		if !tracker.markIfNew(server, mode) {
			continue
		}

		wg.Add(1)
		go func(server string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), timeout+pingTimeout)
			defer cancel()

			if err := e.sema.Acquire(ctx); err != nil {
				return
			}
			defer e.sema.Release()

			if e.scanID.Load() != scanID {
				return
			}

			sink.ScanItemStart(server)
			result := e.runScanProbe(server, domain, mode, timeout)

			n := completed.Add(1)
			if e.scanID.Load() == scanID {
				sink.ScanResult(result)
				sink.ScanProgress(Progress{Completed: int(n), Total: total})
			}
		}(server)
	}

	go func() {
		wg.Wait()
		if e.scanID.Load() == scanID {
			e.running.Store(false)
			sink.ScanComplete()
		}
	}()
}

// runScanProbe dispatches to the DNSTT or Slipstream scorer for one server.
func (e *Engine) runScanProbe(server, domain string, mode Mode, timeout time.Duration) CheckResult {
	parsed, ok := ParseServer(server)
	if !ok {
		return CheckResult{
			Server: server, Domain: domain,
			Status: "Invalid Server", Error: "Invalid format", Details: "Invalid",
		}
	}
	ip, port := parsed.V1, parsed.V2

	if mode == ModeDNSTT {
		compatible, score, details := testDNSTT(ip, port, domain, timeout)
		return CheckResult{
			OK: compatible, Server: server, IP: ip, Port: port, Domain: domain,
			Status:       statusFor(compatible),
			IsCompatible: compatible, Score: score, MaxScore: dnsttMaxScore, Details: details,
		}
	}

	compatible, score, details, stats := testSlipstream(ip, port, domain, timeout)
	var dnsTime uint64
	if stats != nil {
		dnsTime = uint64(stats.AvgTime)
	}
	return CheckResult{
		OK: compatible, Server: server, IP: ip, Port: port, Domain: domain,
		DNSTimeMs:    dnsTime,
		Status:       statusFor(compatible),
		IsCompatible: compatible, Score: score, MaxScore: slipstreamMaxScore, Details: details, Stats: stats,
	}
}

func statusFor(compatible bool) string {
	if compatible {
		return "OK"
	}
	return "Incompatible"
}

// StopScan invalidates the current scan generation; in-flight workers check
// scanID after acquiring their permit and after completing their probe, and
// drop all emissions once it no longer matches.
func (e *Engine) StopScan() {
	e.scanID.Add(1)
	e.running.Store(false)
	log.Debug("dns scan stopped")
}
