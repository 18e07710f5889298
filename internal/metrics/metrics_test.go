package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_EnableDisable(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.TicksTotal.WithLabelValues("ok").Inc()
	m.FetchTotal.WithLabelValues("stream", "error").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TicksTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("stream", "error")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	m.Disable(reg)
	assert.NotPanics(t, func() { m.Enable(reg) })
}
