// Package scheduler provides delayed callbacks and a per-key debouncer built on top of them.
// It knows nothing about games or chats; callers decide what a key means.
package scheduler

import "time"

// Handle identifies a scheduled callback.
type Handle interface {
	// Cancel prevents the callback from running and reports whether it did so.
	// Cancelling a callback that already fired, or cancelling twice, is a no-op returning false.
	Cancel() bool
}

// Scheduler runs fn once after delay.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Handle
}

// Ensure TimerScheduler satisfies the Scheduler interface at compile time.
var _ Scheduler = TimerScheduler{}

// TimerScheduler schedules callbacks on the runtime timer heap.
// Callbacks run on their own goroutine.
type TimerScheduler struct{}

func NewTimerScheduler() TimerScheduler {
	return TimerScheduler{}
}

func (TimerScheduler) Schedule(delay time.Duration, fn func()) Handle {
	return timerHandle{timer: time.AfterFunc(delay, fn)}
}

type timerHandle struct {
	timer *time.Timer
}

func (h timerHandle) Cancel() bool {
	return h.timer.Stop()
}
