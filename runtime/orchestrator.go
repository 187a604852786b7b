package runtime

import (
	"context"
	"dartboard/contract"
	"dartboard/domain/dart"
	"dartboard/runtime/workers"
	"dartboard/scheduler"
	"log/slog"
	"sync"
	"time"
)

// Orchestrator wires the engine, the delivery and telemetry workers and the
// inbound sources under one supervisor.
type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	supervisor     contract.ISupervisor
	engine         *Engine
	outbound       chan dart.Message
	sender         contract.Sender
	sources        []contract.Worker
	sendTimeout    time.Duration
	metricInterval time.Duration
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, clock scheduler.Scheduler,
	sender contract.Sender, bufferSize int, sendTimeout, metricInterval time.Duration,
	opts ...dart.Option) *Orchestrator {
	outbound := make(chan dart.Message, bufferSize)
	return &Orchestrator{
		log:            log,
		supervisor:     supervisor,
		engine:         NewEngine(log, clock, bufferSize, outbound, opts...),
		outbound:       outbound,
		sender:         sender,
		sendTimeout:    sendTimeout,
		metricInterval: metricInterval,
	}
}

// Submitter is the inbound entry point handed to gateways.
func (o *Orchestrator) Submitter() contract.Submitter {
	return o.engine
}

func (o *Orchestrator) Registry() *Registry {
	return o.engine.Registry()
}

// AddSource registers workers producing commands, such as update pollers.
func (o *Orchestrator) AddSource(sources ...contract.Worker) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sources = append(o.sources, sources...)
}

// Start registers every worker and runs the supervisor until ctx is done or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) error {
	delivery := workers.NewDeliveryWorker(o.log, o.sender, o.outbound, o.sendTimeout)
	telemetry := workers.NewTelemetryWorker(o.log, o.engine.Registry(), o.metricInterval)

	o.mu.Lock()
	o.supervisor.Add(o.engine, delivery, telemetry)
	o.supervisor.Add(o.sources...)
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers", "sources", len(o.sources))
	o.supervisor.Run(ctx)
	return nil
}

// Stop cancels the supervised context. Pending flushes of live sessions are not sent.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
