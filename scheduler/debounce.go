package scheduler

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls per key into a single delayed callback.
// For a given key only the most recently scheduled callback may fire.
//
// Each scheduled callback owns a slot. Replacing cancels the previous handle and
// installs a new slot; a firing callback compares-and-clears its own slot under
// the lock before running, so a superseded callback that raced past Cancel
// finds a foreign slot and returns without running.
//
// Debouncer is safe for concurrent use by multiple goroutines.
type Debouncer[K comparable] struct {
	mu        sync.Mutex
	scheduler Scheduler
	slots     map[K]*slot
}

type slot struct {
	handle Handle
}

func NewDebouncer[K comparable](s Scheduler) *Debouncer[K] {
	return &Debouncer[K]{
		scheduler: s,
		slots:     make(map[K]*slot),
	}
}

// ScheduleOrReplace cancels any pending callback for key and schedules fn after delay.
// The slot is cleared before fn runs, so fn may call ScheduleOrReplace for the same key.
func (d *Debouncer[K]) ScheduleOrReplace(key K, delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if old, ok := d.slots[key]; ok {
		old.handle.Cancel()
		delete(d.slots, key)
	}

	s := &slot{}
	d.slots[key] = s
	s.handle = d.scheduler.Schedule(delay, func() {
		d.fire(key, s, fn)
	})
}

func (d *Debouncer[K]) fire(key K, s *slot, fn func()) {
	d.mu.Lock()
	if current, ok := d.slots[key]; !ok || current != s {
		d.mu.Unlock()
		return
	}
	delete(d.slots, key)
	d.mu.Unlock()

	fn()
}

// Cancel drops the pending callback for key. It reports whether one was pending.
func (d *Debouncer[K]) Cancel(key K) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.slots[key]
	if !ok {
		return false
	}
	s.handle.Cancel()
	delete(d.slots, key)
	return true
}

// CancelAll drops every pending callback and returns how many were pending.
func (d *Debouncer[K]) CancelAll() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.slots)
	for key, s := range d.slots {
		s.handle.Cancel()
		delete(d.slots, key)
	}
	return n
}

// IsPending reports whether a callback is waiting for key.
func (d *Debouncer[K]) IsPending(key K) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.slots[key]
	return ok
}

// Pending returns the number of keys with a callback waiting.
func (d *Debouncer[K]) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.slots)
}
