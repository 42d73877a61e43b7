package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersWithoutCollision(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NotNil(t, m)

	m.ChatTurnsTotal.WithLabelValues("ok").Inc()
	m.ChatFailedTurns.Inc()
	m.ActiveSessions.Set(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatTurnsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatFailedTurns))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ActiveSessions))
}

func TestNewMetrics_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}
