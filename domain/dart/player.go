// Package dart contains the core concepts of a dart session played in a chat room.
// It owns scoring rules, per-player state and the session state machine.
// No network, transport or UI logic should be added here.
package dart

import "dartboard/errors"

type PlayerID int64

// PlayerState is a value snapshot of a player's cumulative result.
// A new value is produced on every throw; Score and Throws never decrease.
type PlayerState struct {
	Score  int
	Throws int
}

// Add returns the state after one more throw worth delta points.
func (p PlayerState) Add(delta int) PlayerState {
	return PlayerState{Score: p.Score + delta, Throws: p.Throws + 1}
}

// Average returns the mean score per throw.
func (p PlayerState) Average() (float64, error) {
	if p.Throws == 0 {
		return 0, errors.ErrNoThrowsRecorded
	}
	return float64(p.Score) / float64(p.Throws), nil
}

// ThrowBuffer holds deltas that have not been reported yet, in arrival order.
// Positions are absolute: base counts the deltas already taken, so a
// generation captured before an earlier flush ran still marks the same
// boundary afterwards.
type ThrowBuffer struct {
	base   int
	deltas []int
}

// Append adds a delta and returns the generation that includes it.
func (b *ThrowBuffer) Append(delta int) int {
	b.deltas = append(b.deltas, delta)
	return b.base + len(b.deltas)
}

// Take removes and returns every delta up to generation.
// Deltas appended after generation was captured stay for the next flush.
func (b *ThrowBuffer) Take(generation int) []int {
	n := generation - b.base
	if n > len(b.deltas) {
		n = len(b.deltas)
	}
	if n <= 0 {
		return nil
	}
	taken := make([]int, n)
	copy(taken, b.deltas[:n])
	b.deltas = append(b.deltas[:0:0], b.deltas[n:]...)
	b.base += n
	return taken
}

// Len returns the number of deltas waiting.
func (b *ThrowBuffer) Len() int {
	return len(b.deltas)
}

// DisplayNameCache remembers the last name seen for each player.
type DisplayNameCache map[PlayerID]string

func (c DisplayNameCache) Set(id PlayerID, name string) {
	c[id] = name
}

func (c DisplayNameCache) Get(id PlayerID) string {
	return c[id]
}
