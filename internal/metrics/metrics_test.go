package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.ConnectAttempt("injected", ResultSuccess)
	m.ConnectAttempt("injected", ResultSuccess)
	m.ConnectAttempt("pairing", ResultUnsupported)
	m.TransactionSubmitted("send", nil)
	m.TransactionSubmitted("call", errors.New("rejected"))
	m.ChainChanged()
	m.UnsupportedChain("9999")
	m.SetConnected(true)
	m.SetPending(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.connects.WithLabelValues("injected", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connects.WithLabelValues("pairing", ResultUnsupported)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transactions.WithLabelValues("call", ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chainChanges))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.unsupported.WithLabelValues("9999")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connected))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.pending))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ConnectAttempt("injected", ResultError)
		m.TransactionSubmitted("send", nil)
		m.ChainChanged()
		m.UnsupportedChain("1")
		m.SetConnected(false)
		m.SetPending(0)
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	m := New()
	m.ChainChanged()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "w3link_chain_changes_total 1")
}
