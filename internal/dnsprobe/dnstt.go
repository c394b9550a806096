package dnsprobe

import (
	"fmt"
	"strings"
	"time"

	"github.com/barweiss/go-tuple"
	"github.com/miekg/dns"
)

// dnsttMaxScore is the maximum achievable score of the 4-sub-test DNSTT
// mode (spec.md §4.B); each passing sub-test contributes one point.
const dnsttMaxScore = 4

// testDNSTT runs the four DNSTT sub-tests against serverIP:serverPort and
// returns compatibility, score, and the space-joined details string.
func testDNSTT(serverIP string, serverPort uint16, domain string, timeout time.Duration) (bool, uint32, string) {
	subtests := []tuple.T2[string, bool]{
		{V1: "NS", V2: reachable(serverIP, serverPort, fmt.Sprintf("%s.%s", randomSubdomain(), domain), dns.TypeNS, timeout)},
		{V1: "TXT", V2: reachable(serverIP, serverPort, fmt.Sprintf("%s.%s", randomSubdomain(), domain), dns.TypeTXT, timeout)},
		{V1: "RND1", V2: reachable(serverIP, serverPort, fmt.Sprintf("%s.%s.%s", randomSubdomain(), randomSubdomain(), domain), dns.TypeA, timeout)},
		{V1: "RND2", V2: reachable(serverIP, serverPort, fmt.Sprintf("%s.%s.%s", randomSubdomain(), randomSubdomain(), domain), dns.TypeA, timeout)},
	}

	var score uint32
	details := make([]string, 0, len(subtests))
	for _, t := range subtests {
		mark := "✗"
		if t.V2 {
			score++
			mark = "✓"
		}
		details = append(details, t.V1+mark)
	}

	return score == dnsttMaxScore, score, strings.Join(details, " ")
}
