package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripDisplayNoiseRemovesAnsiAndEmoji(t *testing.T) {
	in := "\x1b[32mConnected\x1b[0m \U0001F680 ready"
	assert.Equal(t, "Connected  ready", stripDisplayNoise(in))
}

func TestStripDisplayNoisePassesPlainTextThrough(t *testing.T) {
	in := "listening on 127.0.0.1:8080"
	assert.Equal(t, in, stripDisplayNoise(in))
}

func TestContainsPortConflict(t *testing.T) {
	assert.True(t, containsPortConflict("Error: Address already in use (os error 98)"))
	assert.True(t, containsPortConflict("bind: EADDRINUSE"))
	assert.False(t, containsPortConflict("Connected to server"))
}

func TestResolveBinaryPathFailsWhenNothingMatches(t *testing.T) {
	_, err := ResolveBinaryPath("/nonexistent/resource/dir")
	assert.Error(t, err)
}

func TestSupervisorIsRunningFalseBeforeStart(t *testing.T) {
	s := New(nil)
	assert.False(t, s.IsRunning())
}

func TestSupervisorStopIsIdempotentWhenNeverStarted(t *testing.T) {
	s := New(nil)
	assert.NotPanics(t, func() {
		s.Stop()
		s.Stop()
	})
}
