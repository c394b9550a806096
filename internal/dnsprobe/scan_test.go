package dnsprobe

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServerBoundaries(t *testing.T) {
	parsed, ok := ParseServer("8.8.8.8:53")
	require.True(t, ok)
	assert.Equal(t, "8.8.8.8", parsed.V1)
	assert.EqualValues(t, 53, parsed.V2)

	parsed, ok = ParseServer("8.8.8.8")
	require.True(t, ok)
	assert.EqualValues(t, 53, parsed.V2)

	_, ok = ParseServer("not-an-ip")
	assert.False(t, ok)
}

func TestDNSTTScoreRequiresAllFourSubtests(t *testing.T) {
	// Cannot reach a real resolver in this environment; verify the scoring
	// function treats an unreachable IP as four failures rather than
	// panicking, and that score==4 is the only compatible outcome.
	compatible, score, details := testDNSTT("203.0.113.1", 53, "example.invalid", 50*time.Millisecond)
	assert.False(t, compatible)
	assert.Less(t, score, uint32(4))
	assert.NotEmpty(t, details)
}

func TestSlipstreamFailsClosedWithNoReachableServer(t *testing.T) {
	passes, score, details, stats := testSlipstream("203.0.113.1", 53, "example.invalid", 20*time.Millisecond)
	assert.False(t, passes)
	assert.Zero(t, score)
	assert.Contains(t, details, "FAIL")
	assert.Nil(t, stats)
}

func TestStartScanWithZeroServersCompletesImmediately(t *testing.T) {
	e := NewEngine()
	sink := &recordingSink{done: make(chan struct{})}
	e.StartScan(nil, "example.com", ModeSlipstream, time.Second, sink)

	select {
	case <-sink.done:
	case <-time.After(time.Second):
		t.Fatal("expected dns-scan-complete for an empty server list")
	}
	assert.False(t, e.IsScanning())
}

func TestStopScanSuppressesStaleEmissions(t *testing.T) {
	e := NewEngine()
	sink := &recordingSink{done: make(chan struct{})}

	e.StartScan([]string{"203.0.113.1:53", "203.0.113.2:53"}, "example.com", ModeDNSTT, 2*time.Second, sink)
	e.StopScan()

	select {
	case <-sink.done:
		t.Fatal("dns-scan-complete emitted for a stopped scan")
	case <-time.After(3 * time.Second):
	}
	assert.False(t, e.IsScanning())
	assert.Zero(t, sink.results.Load())
}

type recordingSink struct {
	done    chan struct{}
	results atomic.Int32
}

func (r *recordingSink) ScanItemStart(string) {}
func (r *recordingSink) ScanResult(CheckResult) {
	r.results.Add(1)
}
func (r *recordingSink) ScanProgress(Progress)  {}
func (r *recordingSink) ScanComplete() {
	close(r.done)
}
