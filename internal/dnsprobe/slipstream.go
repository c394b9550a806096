package dnsprobe

import (
	"fmt"
	"time"

	"github.com/miekg/dns"
	"gonum.org/v1/gonum/stat"
)

const (
	slipstreamQueries       = 15
	slipstreamBasePayload   = 20
	slipstreamPayloadStep   = 5
	slipstreamMinSuccess    = 13
	slipstreamMaxAvgMs      = 1000.0
	slipstreamMaxLatencyMs  = 3000.0
	slipstreamMaxStdDevMs   = 500.0
	slipstreamMaxScore      = 3
)

// testSlipstream runs the 15-query Base32 Slipstream probe against
// serverIP:serverPort and returns pass/fail, score, details string, and the
// latency distribution over successful queries. Statistics are computed
// with gonum/stat rather than hand-rolled accumulation, giving the
// teacher's otherwise-unused gonum dependency (imported with a standing
// "find a maintained stats dependency" TODO) its first real use.
func testSlipstream(serverIP string, serverPort uint16, domain string, timeout time.Duration) (bool, uint32, string, *Stats) {
	var latenciesMs []float64

	for i := 0; i < slipstreamQueries; i++ {
		payloadSize := slipstreamBasePayload + i*slipstreamPayloadStep
		qname := fmt.Sprintf("%s.%s", base32Payload(payloadSize), domain)

		start := time.Now()
		resp, _, err := queryOnce(serverIP, serverPort, qname, dns.TypeTXT, timeout)
		elapsed := float64(time.Since(start).Milliseconds())

		// Any DNS-level response counts as reachable, including
		// Refused/ServFail/NoRecords — only a transport error or timeout
		// fails the query, matching dns_service.rs's test_slipstream.
		if err == nil && resp != nil {
			latenciesMs = append(latenciesMs, elapsed)
		}
	}

	successful := len(latenciesMs)
	if successful == 0 {
		return false, 0, "FAIL(0/15)", nil
	}

	avg := stat.Mean(latenciesMs, nil)
	max := latenciesMs[0]
	for _, v := range latenciesMs {
		if v > max {
			max = v
		}
	}

	var stdDev float64
	if successful > 1 {
		stdDev = stat.StdDev(latenciesMs, nil)
	}

	passes := successful >= slipstreamMinSuccess &&
		avg < slipstreamMaxAvgMs &&
		max < slipstreamMaxLatencyMs &&
		stdDev < slipstreamMaxStdDevMs

	var score uint32
	var details string
	if passes {
		score = slipstreamMaxScore
		details = fmt.Sprintf("OK(%d/15) %.0fms σ%.0f", successful, avg, stdDev)
	} else {
		details = fmt.Sprintf("FAIL(%d/15)", successful)
	}

	return passes, score, details, &Stats{AvgTime: avg, MaxTime: max, StdDev: stdDev}
}
