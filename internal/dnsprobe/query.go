package dnsprobe

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/barweiss/go-tuple"
	"github.com/miekg/dns"
)

// ParseServer parses "ipv4[:port]" into an (ip, port) pair, defaulting the
// port to 53, matching dns_service.rs's parse_server.
func ParseServer(server string) (tuple.T2[string, uint16], bool) {
	host, portStr, hasPort := splitHostPort(server)

	if net.ParseIP(host) == nil || net.ParseIP(host).To4() == nil {
		return tuple.T2[string, uint16]{}, false
	}

	port := uint16(53)
	if hasPort {
		p, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return tuple.T2[string, uint16]{}, false
		}
		port = uint16(p)
	}

	return tuple.New2(host, port), true
}

func splitHostPort(server string) (host, port string, hasPort bool) {
	for i := len(server) - 1; i >= 0; i-- {
		if server[i] == ':' {
			return server[:i], server[i+1:], true
		}
	}
	return server, "", false
}

// queryOnce sends a single UDP DNS query of qtype for qname to server:port
// and returns the response message and round-trip time. A transport error or
// timeout is returned as an error; any DNS response, whatever its rcode, is
// returned as-is for the caller to classify.
func queryOnce(
	serverIP string,
	serverPort uint16,
	qname string,
	qtype uint16,
	timeout time.Duration,
) (*dns.Msg, time.Duration, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(qname), qtype)
	m.RecursionDesired = true

	c := &dns.Client{
		Net:     "udp",
		Timeout: timeout,
	}

	addr := net.JoinHostPort(serverIP, strconv.Itoa(int(serverPort)))
	resp, rtt, err := c.Exchange(m, addr)
	if err != nil {
		return nil, rtt, err
	}
	return resp, rtt, nil
}

// resolveA performs an A-record lookup against server:port with the given
// timeout, used by CheckSingle. It returns the string-formatted answers.
func resolveA(serverIP string, serverPort uint16, domain string, timeout time.Duration) ([]string, error) {
	resp, _, err := queryOnce(serverIP, serverPort, domain, dns.TypeA, timeout)
	if err != nil {
		return nil, err
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("dns resolve error: rcode %s", dns.RcodeToString[resp.Rcode])
	}

	answers := make([]string, 0, len(resp.Answer))
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			answers = append(answers, a.A.String())
		}
	}
	return answers, nil
}

// reachable reports whether server responded at all — including
// NXDOMAIN/NoData/Refused/ServFail — as opposed to a transport error or a
// timeout, which is the "any valid DNS response" pass criterion shared by
// both DNSTT sub-tests and Slipstream queries (spec.md §4.B).
func reachable(serverIP string, serverPort uint16, qname string, qtype uint16, timeout time.Duration) bool {
	resp, _, err := queryOnce(serverIP, serverPort, qname, qtype, timeout)
	if err != nil {
		// A timeout or a transport-level failure (connection refused,
		// network unreachable) is the only thing that counts as "down";
		// miekg/dns surfaces both as a plain error from Exchange.
		return false
	}
	return resp != nil
}
