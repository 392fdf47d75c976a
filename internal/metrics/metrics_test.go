package metrics_test

import (
	"testing"
	"time"

	"codeberg.org/nmarks/creditctl/internal/metrics"
	"codeberg.org/nmarks/creditctl/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, e *metrics.Exporter, name string) float64 {
	t.Helper()

	families, err := e.Registry().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		m := mf.GetMetric()[0]
		if m.GetGauge() != nil {
			return m.GetGauge().GetValue()
		}
		return m.GetCounter().GetValue()
	}

	t.Fatalf("metric %s not found", name)
	return 0
}

func TestExporterObserve(t *testing.T) {
	e := metrics.NewExporter()

	e.Observe(&telemetry.TickSnapshot{
		Timestamp:        time.Unix(1_700_000_000, 0),
		Scenario:         "thermal",
		Setpoint:         21.0,
		ProcessVariable:  18.5,
		FilteredVariable: 18.7,
		Error:            2.3,
		PTerm:            1.15,
		ITerm:            0.4,
		DTerm:            -0.05,
		Output:           1.0,
		Saturated:        true,
	})

	assert.InDelta(t, 21.0, gaugeValue(t, e, "creditctl_setpoint"), 1e-9)
	assert.InDelta(t, 18.5, gaugeValue(t, e, "creditctl_process_variable"), 1e-9)
	assert.InDelta(t, 18.7, gaugeValue(t, e, "creditctl_filtered_variable"), 1e-9)
	assert.InDelta(t, 2.3, gaugeValue(t, e, "creditctl_error"), 1e-9)
	assert.InDelta(t, 1.0, gaugeValue(t, e, "creditctl_output"), 1e-9)
	assert.InDelta(t, -0.05, gaugeValue(t, e, "creditctl_pid_derivative"), 1e-9)
	assert.InDelta(t, 1.0, gaugeValue(t, e, "creditctl_saturated_ticks_total"), 1e-9)
}

func TestExporterSaturationCountsOnlySaturatedTicks(t *testing.T) {
	e := metrics.NewExporter()

	e.Observe(&telemetry.TickSnapshot{Scenario: "credit", Saturated: true})
	e.Observe(&telemetry.TickSnapshot{Scenario: "credit", Saturated: false})
	e.Observe(&telemetry.TickSnapshot{Scenario: "credit", Saturated: true})

	assert.InDelta(t, 2.0, gaugeValue(t, e, "creditctl_saturated_ticks_total"), 1e-9)
}

func TestExporterIgnoresNilSnapshot(t *testing.T) {
	e := metrics.NewExporter()
	e.Observe(nil)

	assert.InDelta(t, 0.0, gaugeValue(t, e, "creditctl_setpoint"), 1e-9)
}
