// Package dnsprobe implements the DNS diagnostics engine: single-server
// checks and concurrent multi-server scans scoring resolvers for the dnstt
// and slipstream covert-channel modes.
package dnsprobe

// Mode selects the scan scoring algorithm.
type Mode string

// Scan modes, see spec.md §4.B.
const (
	ModeDNSTT      Mode = "dnstt"
	ModeSlipstream Mode = "slipstream"
)

// Stats holds the Slipstream latency distribution over successful queries.
type Stats struct {
	AvgTime float64 `json:"avgTime"`
	MaxTime float64 `json:"maxTime"`
	StdDev  float64 `json:"stdDev"`
}

// CheckResult is the outcome of probing a single resolver, either from
// CheckSingle or from one task of a scan.
type CheckResult struct {
	OK          bool     `json:"ok"`
	Server      string   `json:"server"`
	IP          string   `json:"ip"`
	Port        uint16   `json:"port"`
	Domain      string   `json:"domain"`
	PingTimeMs  uint64   `json:"pingTimeMs"`
	DNSTimeMs   uint64   `json:"dnsTimeMs"`
	Answers     []string `json:"answers"`
	Status      string   `json:"status"`
	Error       string   `json:"error,omitempty"`
	IsCompatible bool    `json:"isCompatible"`
	Score       uint32   `json:"score"`
	MaxScore    uint32   `json:"maxScore"`
	Details     string   `json:"details"`
	Stats       *Stats   `json:"stats,omitempty"`
}

// Progress reports how many of a scan's servers have completed.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// EventSink receives the four streaming scan events, see spec.md §6. An
// implementation backed by Server-Sent Events lives in internal/api.
type EventSink interface {
	ScanItemStart(server string)
	ScanResult(result CheckResult)
	ScanProgress(progress Progress)
	ScanComplete()
}

// NoopSink discards every event; useful for CheckSingle-only callers and
// tests that don't care about the streaming surface.
type NoopSink struct{}

func (NoopSink) ScanItemStart(string)        {}
func (NoopSink) ScanResult(CheckResult)      {}
func (NoopSink) ScanProgress(Progress)       {}
func (NoopSink) ScanComplete()               {}
