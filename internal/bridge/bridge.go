// Package bridge implements the Proxy Bridge: an HTTP CONNECT proxy and a
// SOCKS5 front-end that re-expresses its traffic as HTTP CONNECT against
// that same proxy, both ultimately tunneling through the SOCKS5 upstream
// exposed by the tunnel client. Grounded on proxy_service.rs.
package bridge

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/AdguardTeam/golibs/log"
	"github.com/AdguardTeam/golibs/service"
	gocache "github.com/patrickmn/go-cache"

	"github.com/streamgate/corebridge/internal/sgerrors"
)

// type check
var _ service.Interface = (*Bridge)(nil)

// Default ports from spec.md §4.C / §6.
const (
	DefaultHTTPPort     = 8080
	DefaultSOCKSPort    = 10809
	DefaultUpstreamPort = 5201
)

const (
	rateBucketWindow = time.Minute
	rateBucketSweep  = 2 * time.Minute
	maxConnsPerIP    = 240
)

// AuthFunc resolves the SOCKS5 credentials to present to the upstream,
// matching the socks5_auth_enabled / username fallback rule in spec.md
// §4.C: empty username means use the literal anonymous/anonymous pair.
type AuthFunc func() (username, password string)

// Bridge owns both listeners and the shared traffic counters, each
// independently startable/stoppable as required by the Connection
// Orchestrator's rollback sequencing in spec.md §4.E.
type Bridge struct {
	HTTPPort     int
	SOCKSPort    int
	UpstreamPort int
	Auth         AuthFunc

	counters Counters
	buckets  *gocache.Cache

	mu         sync.Mutex
	httpCancel context.CancelFunc
	socksCancel context.CancelFunc
	httpDone   chan struct{}
	socksDone  chan struct{}
}

// New returns a Bridge bound to the given ports. A nil auth yields the
// anonymous/anonymous fallback on every connection.
func New(httpPort, socksPort, upstreamPort int, auth AuthFunc) *Bridge {
	if auth == nil {
		auth = func() (string, string) { return "", "" }
	}
	return &Bridge{
		HTTPPort:     httpPort,
		SOCKSPort:    socksPort,
		UpstreamPort: upstreamPort,
		Auth:         auth,
		buckets:      gocache.New(rateBucketWindow, rateBucketSweep),
	}
}

// Traffic returns the shared counters the HTTP and SOCKS listeners both
// write into, for the periodic traffic-update tick.
func (b *Bridge) Traffic() *Counters { return &b.counters }

// IsHTTPProxyRunning reports whether the HTTP proxy accept loop is active.
func (b *Bridge) IsHTTPProxyRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.httpCancel != nil
}

// IsSOCKSFrontRunning reports whether the SOCKS5 front accept loop is active.
func (b *Bridge) IsSOCKSFrontRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.socksCancel != nil
}

// StartHTTPProxy binds P_H and begins accepting. Restarting while already
// running is a no-op returning nil, matching spec.md §4.C's lifecycle rule.
func (b *Bridge) StartHTTPProxy() error {
	b.mu.Lock()
	if b.httpCancel != nil {
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	addr := net.JoinHostPort("0.0.0.0", strconv.Itoa(b.HTTPPort))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return sgerrors.Wrap(sgerrors.KindNetwork, err, "binding HTTP proxy")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	b.mu.Lock()
	b.httpCancel = cancel
	b.httpDone = done
	b.mu.Unlock()

	log.Info("HTTP proxy listening on %s", addr)
	go b.acceptLoop(ctx, ln, done, b.serveHTTPConn)
	return nil
}

// StartSOCKSFront binds P_S and begins accepting SOCKS5 clients.
func (b *Bridge) StartSOCKSFront() error {
	b.mu.Lock()
	if b.socksCancel != nil {
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	addr := net.JoinHostPort("0.0.0.0", strconv.Itoa(b.SOCKSPort))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return sgerrors.Wrap(sgerrors.KindNetwork, err, "binding SOCKS5 front")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	b.mu.Lock()
	b.socksCancel = cancel
	b.socksDone = done
	b.mu.Unlock()

	log.Info("SOCKS5 front listening on %s", addr)
	go b.acceptLoop(ctx, ln, done, b.serveSOCKSConn)
	return nil
}

// Start implements [service.Interface] for *Bridge, bringing up both
// listeners against the ports it was constructed with.
func (b *Bridge) Start(_ context.Context) error {
	if err := b.StartHTTPProxy(); err != nil {
		return err
	}
	if err := b.StartSOCKSFront(); err != nil {
		b.StopHTTPProxy()
		return err
	}
	return nil
}

// Shutdown implements [service.Interface] for *Bridge.
func (b *Bridge) Shutdown(_ context.Context) error {
	b.StopAll()
	return nil
}

// StopHTTPProxy signals the one-shot cancel and forgets the handle.
func (b *Bridge) StopHTTPProxy() {
	b.mu.Lock()
	cancel := b.httpCancel
	b.httpCancel = nil
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// StopSOCKSFront signals the one-shot cancel and forgets the handle.
func (b *Bridge) StopSOCKSFront() {
	b.mu.Lock()
	cancel := b.socksCancel
	b.socksCancel = nil
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// StopAll stops both listeners, matching proxy_service.rs's stop_all.
func (b *Bridge) StopAll() {
	b.StopHTTPProxy()
	b.StopSOCKSFront()
}

func (b *Bridge) acceptLoop(ctx context.Context, ln net.Listener, done chan struct{}, handle func(context.Context, net.Conn)) {
	defer close(done)
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.Error("accept: %s", err)
				return
			}
		}
		if !b.allow(conn.RemoteAddr()) {
			conn.Close()
			continue
		}
		go handle(ctx, conn)
	}
}

// allow enforces a coarse per-IP connection-rate ceiling using go-cache
// buckets, a defensive supplement with no original_source analogue: nothing
// stops a misbehaving SOCKS/HTTP client from opening connections in a tight
// loop, and the bucket keeps that bounded without touching TrafficCounters.
func (b *Bridge) allow(addr net.Addr) bool {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		host = addr.String()
	}

	// Add only succeeds for a fresh bucket, so the window starts at the
	// first connection; IncrementInt keeps the bucket's original expiry.
	if err := b.buckets.Add(host, 1, gocache.DefaultExpiration); err == nil {
		return true
	}
	count, err := b.buckets.IncrementInt(host, 1)
	if err != nil {
		return true
	}
	return count <= maxConnsPerIP
}
