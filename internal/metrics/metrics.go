// Package metrics exposes the controller's per-tick state as Prometheus
// gauges over HTTP.
package metrics

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/nmarks/creditctl/internal/logger"
	"codeberg.org/nmarks/creditctl/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Exporter struct {
	registry *prometheus.Registry
	server   *http.Server

	setpoint        prometheus.Gauge
	processVariable prometheus.Gauge
	filteredVar     prometheus.Gauge
	controlError    prometheus.Gauge
	output          prometheus.Gauge
	pTerm           prometheus.Gauge
	iTerm           prometheus.Gauge
	dTerm           prometheus.Gauge
	saturatedTotal  prometheus.Counter
	ticksTotal      *prometheus.CounterVec
}

func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		setpoint: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "creditctl_setpoint",
			Help: "Target value the controller is steering toward",
		}),
		processVariable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "creditctl_process_variable",
			Help: "Raw measured value from the plant",
		}),
		filteredVar: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "creditctl_filtered_variable",
			Help: "Time-filtered measured value fed to the controller",
		}),
		controlError: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "creditctl_error",
			Help: "Setpoint minus filtered process variable",
		}),
		output: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "creditctl_output",
			Help: "Clamped controller output applied to the plant",
		}),
		pTerm: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "creditctl_pid_proportional",
			Help: "Proportional term of the controller output",
		}),
		iTerm: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "creditctl_pid_integral",
			Help: "Integral term of the controller output",
		}),
		dTerm: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "creditctl_pid_derivative",
			Help: "Derivative term of the controller output",
		}),
		saturatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "creditctl_saturated_ticks_total",
			Help: "Ticks where the output hit a configured bound",
		}),
		ticksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creditctl_ticks_total",
			Help: "Control loop ticks by scenario",
		}, []string{"scenario"}),
	}

	e.registry.MustRegister(
		e.setpoint,
		e.processVariable,
		e.filteredVar,
		e.controlError,
		e.output,
		e.pTerm,
		e.iTerm,
		e.dTerm,
		e.saturatedTotal,
		e.ticksTotal,
	)

	return e
}

// Observe publishes one tick's state to the gauges.
func (e *Exporter) Observe(snapshot *telemetry.TickSnapshot) {
	if snapshot == nil {
		return
	}

	e.setpoint.Set(snapshot.Setpoint)
	e.processVariable.Set(snapshot.ProcessVariable)
	e.filteredVar.Set(snapshot.FilteredVariable)
	e.controlError.Set(snapshot.Error)
	e.output.Set(snapshot.Output)
	e.pTerm.Set(snapshot.PTerm)
	e.iTerm.Set(snapshot.ITerm)
	e.dTerm.Set(snapshot.DTerm)
	if snapshot.Saturated {
		e.saturatedTotal.Inc()
	}
	e.ticksTotal.WithLabelValues(snapshot.Scenario).Inc()
}

// Serve exposes /metrics on addr until the context is cancelled.
func (e *Exporter) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))

	e.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.server.ListenAndServe()
	}()

	logger.Info().Str("addr", addr).Msg("Metrics listener started")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Registry exposes the underlying registry for gathering in tests.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}
