// Package orchestrator drives the Connection Orchestrator state machine,
// sequencing the Process Supervisor, Proxy Bridge, System Proxy
// Configurator, and DNS Resolution Service into one start/stop lifecycle.
// Grounded on connection.rs.
package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/AdguardTeam/golibs/log"

	"github.com/streamgate/corebridge/internal/bridge"
	"github.com/streamgate/corebridge/internal/dnsresolve"
	"github.com/streamgate/corebridge/internal/settings"
	"github.com/streamgate/corebridge/internal/supervisor"
	"github.com/streamgate/corebridge/internal/sysproxy"
)

// Status is one of the five states in spec.md §4.E.
type Status string

const (
	StatusDisconnected  Status = "disconnected"
	StatusConnecting    Status = "connecting"
	StatusConnected     Status = "connected"
	StatusDisconnecting Status = "disconnecting"
	StatusError         Status = "error"
)

// Config is the per-connection request, matching connection.rs's
// ConnectionConfig.
type Config struct {
	Resolvers          []string
	Domain             string
	Authoritative      bool
	TunMode            bool
	KeepAliveInterval  *uint32
	CongestionControl  string
	CustomDNSEnabled   bool
}

// State is the externally-observable snapshot, matching ConnectionState.
type State struct {
	Status              Status   `json:"status"`
	Message             string   `json:"message,omitempty"`
	Resolvers           []string `json:"resolvers"`
	Domain              string   `json:"domain,omitempty"`
	ProxyPort           int      `json:"proxyPort,omitempty"`
	SocksPort           int      `json:"socksPort,omitempty"`
	SystemProxyEnabled  bool     `json:"systemProxyEnabled"`
}

// Event is the status-update payload from spec.md §6.
type Event struct {
	IsRunning bool  `json:"isRunning"`
	Details   State `json:"details"`
}

// Listener receives status-update events as the orchestrator transitions.
type Listener func(Event)

// Orchestrator holds the live state and the components it sequences. Its
// Start takes a per-connection Config, so — like the Supervisor it
// drives — it implements only the Shutdown half of
// [github.com/AdguardTeam/golibs/service.Interface] rather than the full
// contract.
type Orchestrator struct {
	mu    sync.Mutex
	state State

	settings       *settings.Store
	supervisor     *supervisor.Supervisor
	bridge         *bridge.Bridge
	resolver       *dnsresolve.Resolver
	binaryOverride string

	listeners []Listener
}

// SetBinaryOverride fixes the tunnel client binary path the Supervisor
// resolves against, bypassing the built-in candidate search. Empty string
// restores the default search.
func (o *Orchestrator) SetBinaryOverride(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.binaryOverride = path
}

// New wires an Orchestrator around its already-constructed collaborators.
func New(store *settings.Store, sup *supervisor.Supervisor, br *bridge.Bridge, resolver *dnsresolve.Resolver) *Orchestrator {
	return &Orchestrator{
		state:      State{Status: StatusDisconnected},
		settings:   store,
		supervisor: sup,
		bridge:     br,
		resolver:   resolver,
	}
}

// OnStatusUpdate registers a listener invoked on every transition.
func (o *Orchestrator) OnStatusUpdate(l Listener) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, l)
}

// Output returns the Process Supervisor's demuxed stdout/stderr line
// channel, so a caller can republish it as stream-log/stream-error events
// without reaching into the Supervisor directly.
func (o *Orchestrator) Output() <-chan supervisor.OutputLine {
	return o.supervisor.Output()
}

// Status returns a copy of the current state.
func (o *Orchestrator) Status() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// IsRunning reports whether status is Connecting or Connected, matching
// connection.rs's is_running.
func (o *Orchestrator) IsRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Status == StatusConnecting || o.state.Status == StatusConnected
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	listeners := append([]Listener(nil), o.listeners...)
	running := s.Status == StatusConnecting || s.Status == StatusConnected
	o.mu.Unlock()

	event := Event{IsRunning: running, Details: s}
	for _, l := range listeners {
		l(event)
	}
}

// Start runs the full connect sequence from spec.md §4.E, rolling back
// whatever was already brought up on the first failure.
func (o *Orchestrator) Start(ctx context.Context, cfg Config) error {
	log.Info("starting connection: domain=%s resolvers=%v", cfg.Domain, cfg.Resolvers)

	o.setState(State{
		Status:    StatusConnecting,
		Resolvers: cfg.Resolvers,
		Domain:    cfg.Domain,
		Message:   "Connecting...",
	})

	targetDomain := cfg.Domain
	if cfg.CustomDNSEnabled && len(cfg.Resolvers) > 0 {
		ip, err := o.resolver.Resolve(cfg.Resolvers, cfg.Domain)
		if err != nil {
			return o.fail(fmt.Sprintf("DNS Resolve failed: %s", err))
		}
		targetDomain = ip
	}

	args := buildSupervisorArgs(cfg, targetDomain)

	o.mu.Lock()
	binaryOverride := o.binaryOverride
	o.mu.Unlock()

	if err := o.supervisor.Start(ctx, binaryOverride, args, o.bridge.UpstreamPort); err != nil {
		return o.fail(fmt.Sprintf("Process failed: %s", err))
	}

	if err := o.bridge.StartHTTPProxy(); err != nil {
		o.supervisor.Stop()
		return o.fail(fmt.Sprintf("HTTP Proxy failed: %s", err))
	}

	if err := o.bridge.StartSOCKSFront(); err != nil {
		o.supervisor.Stop()
		o.bridge.StopAll()
		return o.fail(fmt.Sprintf("SOCKS Bridge failed: %s", err))
	}

	if cfg.TunMode {
		result := sysproxy.Configure(o.bridge.HTTPPort)
		if o.settings != nil {
			_ = o.settings.RecordSystemProxy(result.Success, result.ServiceName)
		}
	}

	o.setState(State{
		Status:             StatusConnected,
		Resolvers:          cfg.Resolvers,
		Domain:             cfg.Domain,
		ProxyPort:          o.bridge.HTTPPort,
		SocksPort:          o.bridge.SOCKSPort,
		Message:            "Connected",
		SystemProxyEnabled: cfg.TunMode,
	})
	return nil
}

// Shutdown implements the exit half of [service.Interface] for *Orchestrator.
func (o *Orchestrator) Shutdown(_ context.Context) error {
	o.Stop()
	return nil
}

func (o *Orchestrator) fail(message string) error {
	log.Error("connection failed: %s", message)
	o.setState(State{Status: StatusError, Message: message})
	return fmt.Errorf("%s", message)
}

// Stop runs the disconnect sequence, best-effort on the system proxy,
// unconditional on the proxy listeners and the supervised process.
func (o *Orchestrator) Stop() {
	log.Info("stopping connection")
	o.setState(State{Status: StatusDisconnecting, Message: "Disconnecting..."})

	if o.settings != nil {
		if doc := o.settings.Get(); doc.SystemProxyEnabledByApp {
			sysproxy.Unconfigure(string(doc.SystemProxyServiceName))
			_ = o.settings.RecordSystemProxy(false, "")
		}
	}

	o.bridge.StopAll()
	o.supervisor.Stop()

	o.setState(State{Status: StatusDisconnected})
}

// Cleanup runs Stop if a connection is live and then forcibly reclaims all
// three ports, matching connection.rs's cleanup plus spec.md §4.E's extra
// kill_ports certainty step.
func (o *Orchestrator) Cleanup() {
	if o.IsRunning() {
		o.Stop()
	}
	supervisor.KillPorts(o.bridge.UpstreamPort, o.bridge.HTTPPort, o.bridge.SOCKSPort)
}

func buildSupervisorArgs(cfg Config, targetDomain string) []string {
	var args []string
	flag := "--resolver"
	if cfg.Authoritative {
		flag = "--authoritative"
	}
	for _, r := range cfg.Resolvers {
		args = append(args, flag, r)
	}
	args = append(args, "--domain", targetDomain)

	if cfg.KeepAliveInterval != nil {
		args = append(args, "--keep-alive-interval", strconv.FormatUint(uint64(*cfg.KeepAliveInterval), 10))
	}
	if cfg.CongestionControl != "" && cfg.CongestionControl != "auto" {
		args = append(args, "--congestion-control", cfg.CongestionControl)
	}
	return args
}
