// Package runtime runs sessions on a single ordered event loop.
// It routes commands and timer flushes without containing game rules.
package runtime

import (
	"context"
	"dartboard/domain/dart"
	"dartboard/errors"
	"dartboard/scheduler"
	stderrors "errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

type task struct {
	room dart.RoomID
	run  func() ([]dart.Message, error)
}

// Engine serializes every command and every flush timer on one loop.
// Messages produced by a task are pushed to the outbound channel in order.
type Engine struct {
	log      *slog.Logger
	clock    scheduler.Scheduler
	registry *Registry
	tasks    chan task
	outbound chan<- dart.Message
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewEngine builds an engine whose sessions arm their timers on clock.
// Timer callbacks are posted back onto the loop before they run.
func NewEngine(log *slog.Logger, clock scheduler.Scheduler, bufferSize int,
	outbound chan<- dart.Message, opts ...dart.Option) *Engine {
	e := &Engine{
		log:      log,
		clock:    clock,
		tasks:    make(chan task, bufferSize),
		outbound: outbound,
		stopped:  make(chan struct{}),
	}
	e.registry = NewRegistry(log, func(room dart.RoomID) *dart.ChatSession {
		return dart.NewChatSession(room, &loopScheduler{engine: e, room: room}, log, opts...)
	})
	return e
}

func (e *Engine) Registry() *Registry {
	return e.registry
}

// Submit queues cmd without blocking. It fails with errors.ErrQueueFull
// when the loop is saturated and errors.ErrStopped once Run has returned.
func (e *Engine) Submit(cmd dart.Command) error {
	t := task{
		room: cmd.RoomID(),
		run:  func() ([]dart.Message, error) { return e.registry.Dispatch(cmd) },
	}
	select {
	case <-e.stopped:
		return errors.ErrStopped
	default:
	}
	select {
	case e.tasks <- t:
		return nil
	default:
		return errors.ErrQueueFull
	}
}

// post queues a timer task, waiting for room in the queue.
func (e *Engine) post(t task) {
	select {
	case e.tasks <- t:
	case <-e.stopped:
	}
}

// Run processes tasks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info("Starting engine loop")
	for {
		select {
		case <-ctx.Done():
			e.stopOnce.Do(func() { close(e.stopped) })
			return ctx.Err()
		case t := <-e.tasks:
			if err := e.handle(ctx, t); err != nil {
				return err
			}
		}
	}
}

func (e *Engine) handle(ctx context.Context, t task) error {
	out, err := t.run()
	if err != nil {
		e.logRejection(t.room, err)
	}
	for _, msg := range out {
		select {
		case e.outbound <- msg:
		case <-ctx.Done():
			e.stopOnce.Do(func() { close(e.stopped) })
			return ctx.Err()
		}
	}
	return nil
}

func (e *Engine) logRejection(room dart.RoomID, err error) {
	switch {
	case stderrors.Is(err, errors.ErrInvalidEventValue):
		e.log.Warn("Throw rejected", "room", room, "error", err)
	case stderrors.Is(err, errors.ErrNoActiveSession),
		stderrors.Is(err, errors.ErrForwardedEvent),
		stderrors.Is(err, errors.ErrSessionEnded):
		e.log.Debug("Event dropped", "room", room, "error", err)
	default:
		e.log.Error("Command failed", "room", room, "error", err)
	}
}

// loopScheduler arms timers on the engine clock and runs their callbacks
// on the engine loop, followed by a drain of the room's outbox.
type loopScheduler struct {
	engine *Engine
	room   dart.RoomID
}

const (
	handlePending int32 = iota
	handleCancelled
	handleFired
)

type loopHandle struct {
	state atomic.Int32
	timer scheduler.Handle
}

// claim moves the handle to fired unless it was cancelled first.
func (h *loopHandle) claim() bool {
	return h.state.CompareAndSwap(handlePending, handleFired)
}

// Cancel is safe at any time; only the first call on a pending handle reports true.
func (h *loopHandle) Cancel() bool {
	if !h.state.CompareAndSwap(handlePending, handleCancelled) {
		return false
	}
	if h.timer != nil {
		h.timer.Cancel()
	}
	return true
}

func (s *loopScheduler) Schedule(delay time.Duration, fn func()) scheduler.Handle {
	h := &loopHandle{}
	e, room := s.engine, s.room
	h.timer = e.clock.Schedule(delay, func() {
		if h.state.Load() != handlePending {
			return
		}
		e.post(task{room: room, run: func() ([]dart.Message, error) {
			if h.claim() {
				fn()
			}
			return e.registry.Drain(room), nil
		}})
	})
	return h
}
