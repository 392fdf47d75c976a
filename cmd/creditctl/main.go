package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/nmarks/creditctl/internal/config"
	"codeberg.org/nmarks/creditctl/internal/control"
	"codeberg.org/nmarks/creditctl/internal/filtered"
	"codeberg.org/nmarks/creditctl/internal/logger"
	"codeberg.org/nmarks/creditctl/internal/metrics"
	"codeberg.org/nmarks/creditctl/internal/sim"
	"codeberg.org/nmarks/creditctl/internal/telemetry"
	"codeberg.org/nmarks/creditctl/internal/value"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug(), cfg.Verbose(), logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx); err != nil {
		logger.Error().Err(err).Msg("error in control loop")
		os.Exit(1)
	}
	logger.Info().Msg("Exiting...")
}

func run(ctx context.Context) error {
	plant, err := sim.NewPlant(cfg.Scenario, cfg.Setpoint)
	if err != nil {
		return err
	}

	filter, err := filtered.New(time.Duration(cfg.Window) * time.Second)
	if err != nil {
		return err
	}

	controller, err := control.New(control.Config{
		Kp:        cfg.Kp,
		Ki:        cfg.Ki,
		Kd:        cfg.Kd,
		OutputMin: cfg.OutputMin,
		OutputMax: cfg.OutputMax,
	})
	if err != nil {
		return err
	}

	collector, err := telemetry.NewService(telemetry.Config{
		Enabled: cfg.Telemetry,
		DBPath:  cfg.TelemetryDB,
	})
	if err != nil {
		return err
	}
	defer collector.Close()

	var exporter *metrics.Exporter
	if cfg.Metrics {
		exporter = metrics.NewExporter()
		go func() {
			if err := exporter.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Error().Err(err).Msg("metrics listener failed")
			}
		}()
	}

	if cfg.Monitor {
		logger.Info().Msg("Monitor mode activated. Logging plant status...")
	}

	interval := time.Duration(cfg.Interval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	drive := 0.0
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			drive = tick(ctx, now, drive, plant, filter, controller, collector, exporter)
		}
	}
}

func tick(
	ctx context.Context,
	now time.Time,
	drive float64,
	plant sim.Plant,
	filter *filtered.Filtered,
	controller *control.Controller,
	collector telemetry.Collector,
	exporter *metrics.Exporter,
) float64 {
	pv := plant.Step(now, drive)
	filter.Observe(now, pv)
	smoothed := filter.Current(now)
	setpoint := plant.Setpoint(now)

	out, terms := controller.Tick(now, setpoint, smoothed)
	if !cfg.Monitor && out.Defined() {
		drive = out.Float()
	}

	snapshot := &telemetry.TickSnapshot{
		Timestamp:        now,
		Scenario:         cfg.Scenario,
		Setpoint:         setpoint.Float(),
		ProcessVariable:  pv.Float(),
		FilteredVariable: smoothed.Float(),
		Error:            terms.Error,
		PTerm:            terms.P,
		ITerm:            terms.I,
		DTerm:            terms.D,
		Output:           out.Float(),
		Saturated:        terms.Saturated,
	}

	if err := collector.Record(ctx, snapshot); err != nil {
		logger.Error().Err(err).Msg("failed to record telemetry")
	}
	if exporter != nil {
		exporter.Observe(snapshot)
	}

	logTick(setpoint, pv, smoothed, out, terms)

	return drive
}

func logTick(setpoint, pv, smoothed, out value.Value, terms control.Terms) {
	logger.Info().
		Str("scenario", cfg.Scenario).
		Float64("setpoint", setpoint.Float()).
		Float64("measured", pv.Float()).
		Float64("filtered", smoothed.Float()).
		Float64("error", terms.Error).
		Float64("output", out.Float()).
		Bool("saturated", terms.Saturated).
		Send()
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
