package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormaliseHexKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"0xabc123", "abc123"},
		{"0Xabc123", "abc123"},
		{"abc123", "abc123"},
		{"  0xabc  ", "abc"},
		{"0x", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normaliseHexKey(tt.in), "input %q", tt.in)
	}
}

func TestKeystoreRetrieveEnvVarOverride(t *testing.T) {
	t.Setenv(KeyEnvVar, "0x"+testPrivKeyHex)

	ks := &Keystore{ring: nil} // nil ring: must be served by env var
	got, err := ks.Retrieve("w3link.any-ref")
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got)
}

func TestKeystoreUnavailable(t *testing.T) {
	t.Setenv(KeyEnvVar, "")
	ks := &Keystore{ring: nil}

	_, err := ks.Retrieve("w3link.x")
	assert.ErrorIs(t, err, ErrKeystoreUnavailable)

	_, err = ks.Store("x", testPrivKeyHex)
	assert.ErrorIs(t, err, ErrKeystoreUnavailable)

	assert.NoError(t, ks.Delete("w3link.x"))
}

func TestFileKeystoreRoundTrip(t *testing.T) {
	t.Setenv(KeyEnvVar, "")
	ks := testKeystore(t)

	ref, err := ks.Store("main", "0x"+testPrivKeyHex)
	require.NoError(t, err)
	assert.Equal(t, "w3link.main", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.Error(t, err)

	// Deleting twice is not an error.
	assert.NoError(t, ks.Delete(ref))
}

func TestInMemoryKeystore(t *testing.T) {
	iks := NewInMemoryKeystore()
	ref, err := iks.Store("mykey", "0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, "w3link.mykey", ref)

	val, err := iks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", val)

	require.NoError(t, iks.Delete(ref))
	_, err = iks.Retrieve(ref)
	assert.ErrorContains(t, err, "key not found")
}
