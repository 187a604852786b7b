package dart

import (
	"dartboard/errors"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestPlayerState_Add_Is_Monotonic(t *testing.T) {
	req := require.New(t)
	var p PlayerState

	p = p.Add(0)
	p = p.Add(6)
	p = p.Add(3)

	req.Equal(PlayerState{Score: 9, Throws: 3}, p)
	avg, err := p.Average()
	req.NoError(err)
	req.InDelta(3.0, avg, 1e-9)
}

func TestPlayerState_Average_Without_Throws(t *testing.T) {
	_, err := PlayerState{}.Average()
	require.ErrorIs(t, err, errors.ErrNoThrowsRecorded)
}

func TestThrowBuffer_Take_Keeps_Deltas_Appended_After_Generation(t *testing.T) {
	req := require.New(t)
	var b ThrowBuffer

	// Given two throws captured by a flush
	b.Append(1)
	generation := b.Append(2)
	req.Equal(2, generation)

	// And a throw landing before that flush consumes its prefix
	late := b.Append(3)

	// When the flush takes its generation
	taken := b.Take(generation)

	// Then only the captured deltas are consumed
	req.Equal([]int{1, 2}, taken)
	req.Equal(1, b.Len())

	// And the late delta goes to the next flush exactly once
	req.Equal([]int{3}, b.Take(late))
	req.Empty(b.Take(late))
	req.Equal(0, b.Len())
}

func TestThrowBuffer_Generation_Survives_Earlier_Take(t *testing.T) {
	req := require.New(t)
	var b ThrowBuffer

	first := b.Append(4)
	second := b.Append(6)
	req.Equal([]int{4}, b.Take(first))

	// A generation captured before the first take still marks the same boundary
	third := b.Append(0)
	req.Equal([]int{6}, b.Take(second))
	req.Equal([]int{0}, b.Take(third))
}

func TestDisplayNameCache_Keeps_Last_Name(t *testing.T) {
	req := require.New(t)
	c := DisplayNameCache{}

	c.Set(1, "Alice")
	c.Set(1, "Alice Liddell")

	req.Equal("Alice Liddell", c.Get(1))
	req.Equal("", c.Get(2))
}
