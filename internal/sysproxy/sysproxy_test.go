package sysproxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigureDoesNotPanicWithoutPrivileges(t *testing.T) {
	assert.NotPanics(t, func() {
		Configure(8080)
	})
}

func TestUnconfigureWithEmptyServiceNameDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Unconfigure("")
	})
}
