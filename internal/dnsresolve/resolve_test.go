package dnsresolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamgate/corebridge/internal/sgerrors"
)

func TestResolvePassesThroughIPv4Literal(t *testing.T) {
	r := New()
	ip, err := r.Resolve(nil, "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", ip)
}

func TestResolveRequiresAtLeastOneResolver(t *testing.T) {
	r := New()
	_, err := r.Resolve(nil, "example.com")
	assert.Error(t, err)
}

func TestResolveWrapsFailureAsNetworkError(t *testing.T) {
	r := New()
	_, err := r.Resolve([]string{"203.0.113.1:53"}, "example.invalid")
	require.Error(t, err)

	var sgErr *sgerrors.Error
	require.ErrorAs(t, err, &sgErr)
	assert.Equal(t, sgerrors.KindNetwork, sgErr.Kind)
}

func TestCacheKeyForIsStableAndOrderSensitive(t *testing.T) {
	a := cacheKeyFor([]string{"1.1.1.1:53", "8.8.8.8:53"}, "example.com")
	b := cacheKeyFor([]string{"1.1.1.1:53", "8.8.8.8:53"}, "example.com")
	c := cacheKeyFor([]string{"8.8.8.8:53", "1.1.1.1:53"}, "example.com")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
