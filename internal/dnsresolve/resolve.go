// Package dnsresolve implements the Connection Orchestrator's pre-connect
// custom-DNS resolution step: given a list of resolver endpoints, resolve a
// domain to an IPv4 address before handing it to the Process Supervisor.
package dnsresolve

import (
	"fmt"
	"net"
	"time"

	"github.com/bluele/gcache"
	"github.com/miekg/dns"

	"github.com/streamgate/corebridge/internal/dnsprobe"
	"github.com/streamgate/corebridge/internal/sgerrors"
)

const (
	queryTimeout = 3 * time.Second
	cacheSize    = 256
	cacheTTL     = 30 * time.Second
)

// Resolver resolves domains against caller-supplied resolver sets, caching
// short-lived results so rapid start/stop cycles don't repeat the same
// lookup. Grounded on original_source's dns_resolution_service.rs.
type Resolver struct {
	cache gcache.Cache
}

// New builds a Resolver with a TTL-bounded LRU cache.
func New() *Resolver {
	return &Resolver{
		cache: gcache.New(cacheSize).LRU().Build(),
	}
}

// Resolve returns domain unchanged if it already parses as an IPv4
// literal (the passthrough short-circuit in dns_resolution_service.rs),
// otherwise queries each resolver in order until one answers with an A
// record and returns the first IPv4 answer.
func (r *Resolver) Resolve(resolvers []string, domain string) (string, error) {
	if ip := net.ParseIP(domain); ip != nil && ip.To4() != nil {
		return domain, nil
	}

	if len(resolvers) == 0 {
		return "", sgerrors.New(sgerrors.KindConfig, "custom DNS enabled with no resolvers configured")
	}

	cacheKey := cacheKeyFor(resolvers, domain)
	if cached, err := r.cache.Get(cacheKey); err == nil {
		return cached.(string), nil
	}

	var lastErr error
	for _, resolver := range resolvers {
		parsed, ok := dnsprobe.ParseServer(resolver)
		if !ok {
			lastErr = fmt.Errorf("invalid resolver %q", resolver)
			continue
		}

		m := new(dns.Msg)
		m.SetQuestion(dns.Fqdn(domain), dns.TypeA)
		m.RecursionDesired = true

		c := &dns.Client{Net: "udp", Timeout: queryTimeout}
		addr := net.JoinHostPort(parsed.V1, fmt.Sprintf("%d", parsed.V2))

		resp, _, err := c.Exchange(m, addr)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.Rcode != dns.RcodeSuccess {
			lastErr = fmt.Errorf("resolver %s returned %s", resolver, dns.RcodeToString[resp.Rcode])
			continue
		}

		for _, rr := range resp.Answer {
			if a, ok := rr.(*dns.A); ok {
				ip := a.A.String()
				_ = r.cache.SetWithExpire(cacheKey, ip, cacheTTL)
				return ip, nil
			}
		}
		lastErr = fmt.Errorf("resolver %s returned no A records", resolver)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no resolver answered for %s", domain)
	}
	return "", sgerrors.Wrap(sgerrors.KindNetwork, lastErr, "DNS Resolve failed")
}

func cacheKeyFor(resolvers []string, domain string) string {
	key := domain
	for _, r := range resolvers {
		key += "|" + r
	}
	return key
}
