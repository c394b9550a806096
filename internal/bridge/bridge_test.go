package bridge

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersTickReturnsNonNegativeDeltas(t *testing.T) {
	var c Counters
	c.addUp(100)
	c.addDown(50)

	up, down := c.Tick()
	assert.EqualValues(t, 100, up)
	assert.EqualValues(t, 50, down)

	up, down = c.Tick()
	assert.Zero(t, up)
	assert.Zero(t, down)
}

func TestSaturatingSubNeverGoesNegative(t *testing.T) {
	assert.EqualValues(t, 0, saturatingSub(5, 10))
	assert.EqualValues(t, 5, saturatingSub(10, 5))
}

func TestRestartingRunningListenerIsNoOp(t *testing.T) {
	b := New(freePort(t), freePort(t), freePort(t), nil)
	require.NoError(t, b.StartHTTPProxy())
	defer b.StopAll()

	assert.NoError(t, b.StartHTTPProxy())
	assert.True(t, b.IsHTTPProxyRunning())
}

func TestStopHTTPProxyStopsAcceptLoop(t *testing.T) {
	b := New(freePort(t), freePort(t), freePort(t), nil)
	require.NoError(t, b.StartHTTPProxy())
	b.StopHTTPProxy()

	assert.Eventually(t, func() bool { return !b.IsHTTPProxyRunning() }, time.Second, 10*time.Millisecond)
}

func TestPerIPRateBucketCapsConnections(t *testing.T) {
	b := New(0, 0, 0, nil)
	addr := &net.TCPAddr{IP: net.ParseIP("10.0.0.1"), Port: 1}

	allowed := 0
	for i := 0; i < maxConnsPerIP+5; i++ {
		if b.allow(addr) {
			allowed++
		}
	}
	assert.Equal(t, maxConnsPerIP, allowed)
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}
