package ui

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToasterCapsAtThree(t *testing.T) {
	tt := NewToaster(nil)
	for i := 1; i <= 5; i++ {
		tt.Show(IntentPrimary, fmt.Sprintf("toast %d", i), "")
	}
	toasts := tt.Toasts()
	require.Len(t, toasts, MaxToasts)
	assert.Equal(t, "toast 3", toasts[0].Message)
	assert.Equal(t, "toast 5", toasts[2].Message)
}

func TestToasterReplacesByKey(t *testing.T) {
	tt := NewToaster(nil)
	tt.Show(IntentWarning, "switching", "network")
	tt.Show(IntentSuccess, "tx sent", "")
	tt.Show(IntentDanger, "Unsupported network", "network")

	toasts := tt.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, "tx sent", toasts[0].Message)
	assert.Equal(t, "Unsupported network", toasts[1].Message)
	assert.Equal(t, IntentDanger, toasts[1].Intent)
}

func TestToasterDismiss(t *testing.T) {
	tt := NewToaster(nil)
	tt.Show(IntentDanger, "Unsupported network", "network")
	tt.Dismiss("network")
	tt.Dismiss("missing")
	assert.Empty(t, tt.Toasts())
}

func TestToasterWritesEachToast(t *testing.T) {
	var buf bytes.Buffer
	tt := NewToaster(&buf)
	tt.Show(IntentDanger, "Unsupported network", "network")
	tt.Show(IntentNone, "plain", "")

	out := buf.String()
	assert.Contains(t, out, "✗ Unsupported network")
	assert.Contains(t, out, "plain\n")
	assert.Contains(t, tt.Render(), "Unsupported network")
}

func TestIntentString(t *testing.T) {
	assert.Equal(t, "danger", IntentDanger.String())
	assert.Equal(t, "none", Intent(42).String())
}
