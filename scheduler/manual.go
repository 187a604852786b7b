package scheduler

import (
	"sort"
	"sync"
	"time"
)

var _ Scheduler = (*ManualScheduler)(nil)

// ManualScheduler is a deterministic Scheduler driven by Advance.
// Time only moves when the caller says so, which makes debounce timing testable
// without sleeping. Callbacks run on the goroutine calling Advance, outside the
// internal lock, so they may schedule or cancel freely.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     uint64
	pending []*manualTask
}

type manualTask struct {
	at  time.Duration
	seq uint64
	fn  func()
	s   *ManualScheduler
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) Schedule(delay time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTask{at: s.now + delay, seq: s.seq, fn: fn, s: s}
	s.pending = append(s.pending, t)
	return t
}

// Advance moves the clock forward by d, firing every callback due on the way
// in deadline order (ties in scheduling order). It returns the number of callbacks fired.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	fired := 0
	for {
		s.mu.Lock()
		next := s.popDue(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return fired
		}
		s.now = next.at
		s.mu.Unlock()

		next.fn()
		fired++
	}
}

// Now returns the elapsed virtual time since creation.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of callbacks waiting to fire.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// popDue removes and returns the earliest task due at or before target. Caller holds mu.
func (s *ManualScheduler) popDue(target time.Duration) *manualTask {
	if len(s.pending) == 0 {
		return nil
	}
	sort.SliceStable(s.pending, func(i, j int) bool {
		if s.pending[i].at == s.pending[j].at {
			return s.pending[i].seq < s.pending[j].seq
		}
		return s.pending[i].at < s.pending[j].at
	})
	first := s.pending[0]
	if first.at > target {
		return nil
	}
	s.pending = s.pending[1:]
	return first
}

func (t *manualTask) Cancel() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for i, p := range t.s.pending {
		if p == t {
			t.s.pending = append(t.s.pending[:i], t.s.pending[i+1:]...)
			return true
		}
	}
	return false
}
