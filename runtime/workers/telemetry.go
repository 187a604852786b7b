package workers

import (
	"context"
	"dartboard/contract"
	"dartboard/domain/dart"
	"log/slog"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/process"
)

const DefaultMetricInterval = time.Minute

// TelemetryWorker periodically logs the live sessions and the process footprint.
type TelemetryWorker struct {
	log            *slog.Logger
	registry       contract.IRegistry
	metricInterval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, registry contract.IRegistry, metricInterval time.Duration) *TelemetryWorker {
	if metricInterval <= 0 {
		metricInterval = DefaultMetricInterval
	}
	return &TelemetryWorker{
		log:            log,
		registry:       registry,
		metricInterval: metricInterval,
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry")
			return nil
		case <-ticker.C:
			w.report(p)
		}
	}
}

func (w *TelemetryWorker) report(p *process.Process) {
	sessions := w.registry.Snapshot()
	attrs := []any{
		"sessions", w.registry.Len(),
		"players", lo.SumBy(sessions, func(s dart.SessionStats) int { return s.Players }),
		"throws", lo.SumBy(sessions, func(s dart.SessionStats) int { return s.Throws }),
		"pending_flushes", lo.SumBy(sessions, func(s dart.SessionStats) int { return s.PendingFlushes }),
	}

	rss, cpu, err := selfStats(p)
	if err != nil {
		w.log.Debug("Failed to collect self stats", "error", err)
	} else {
		attrs = append(attrs, "rss_bytes", rss, "cpu_percent", cpu)
	}
	w.log.Info("Telemetry", attrs...)
}

// selfStats retrieves resident memory and CPU usage of the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
