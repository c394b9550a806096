package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamgate/corebridge/internal/bridge"
	"github.com/streamgate/corebridge/internal/dnsresolve"
	"github.com/streamgate/corebridge/internal/supervisor"
)

func newTestOrchestrator() *Orchestrator {
	sup := supervisor.New(nil)
	br := bridge.New(0, 0, 0, nil)
	resolver := dnsresolve.New()
	return New(nil, sup, br, resolver)
}

func TestInitialStateIsDisconnected(t *testing.T) {
	o := newTestOrchestrator()
	assert.Equal(t, StatusDisconnected, o.Status().Status)
	assert.False(t, o.IsRunning())
}

func TestStartFailsIntoErrorWhenBinaryMissing(t *testing.T) {
	o := newTestOrchestrator()

	err := o.Start(context.Background(), Config{Domain: "example.com"})
	require.Error(t, err)
	assert.Equal(t, StatusError, o.Status().Status)
	assert.False(t, o.IsRunning())
}

func TestStartFailsWithDNSErrorWhenCustomDNSHasNoReachableResolver(t *testing.T) {
	o := newTestOrchestrator()

	err := o.Start(context.Background(), Config{
		Domain:           "example.invalid",
		CustomDNSEnabled: true,
		Resolvers:        []string{"203.0.113.1:53"},
	})
	require.Error(t, err)
	assert.Contains(t, o.Status().Message, "DNS Resolve failed")
}

func TestStatusUpdateListenerReceivesTransitions(t *testing.T) {
	o := newTestOrchestrator()

	var events []Event
	o.OnStatusUpdate(func(e Event) { events = append(events, e) })

	_ = o.Start(context.Background(), Config{Domain: "example.com"})

	require.NotEmpty(t, events)
	assert.Equal(t, StatusConnecting, events[0].Details.Status)
	assert.True(t, events[0].IsRunning)
}

func TestBuildSupervisorArgsUsesAuthoritativeFlag(t *testing.T) {
	args := buildSupervisorArgs(Config{Resolvers: []string{"1.1.1.1:53"}, Authoritative: true}, "1.2.3.4")
	assert.Contains(t, args, "--authoritative")
	assert.NotContains(t, args, "--resolver")
}

func TestBuildSupervisorArgsOmitsAutoCongestionControl(t *testing.T) {
	args := buildSupervisorArgs(Config{CongestionControl: "auto"}, "example.com")
	assert.NotContains(t, args, "--congestion-control")
}

func TestCleanupIsSafeWhenNeverStarted(t *testing.T) {
	o := newTestOrchestrator()
	assert.NotPanics(t, func() { o.Cleanup() })
}
