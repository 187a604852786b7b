package dart

import (
	"dartboard/errors"
	"dartboard/scheduler"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const room = RoomID(42)

func newStartedSession(t *testing.T, clock scheduler.Scheduler, opts ...Option) *ChatSession {
	t.Helper()
	s := NewChatSession(room, clock, logs.GetLoggerFromLevel(slog.LevelDebug), opts...)
	require.NoError(t, s.Start(1))
	return s
}

func throw(player PlayerID, name string, value, messageID int) Throw {
	return Throw{Room: room, Player: player, DisplayName: name, Value: value, MessageID: messageID}
}

func TestChatSession_Start_Greets_With_Dart_Keyboard(t *testing.T) {
	req := require.New(t)
	s := newStartedSession(t, scheduler.NewManualScheduler())

	req.Equal(StateActive, s.State())
	out := s.FlushOutbox()
	req.Len(out, 1)
	req.Equal(Target{Room: room, ReplyTo: 1}, out[0].Target)
	req.Equal(KeyboardDart, out[0].Keyboard)
	req.Empty(s.FlushOutbox())

	// Starting again is a no-op
	req.NoError(s.Start(2))
	req.Empty(s.FlushOutbox())
}

func TestChatSession_Throws_Accumulate(t *testing.T) {
	req := require.New(t)
	s := newStartedSession(t, scheduler.NewManualScheduler())
	values := []int{1, 6, 3, 5, 2, 6, 4}

	expectedScore := 0
	for i, v := range values {
		req.NoError(s.Throw(throw(7, "Alice", v, i+10)))
		delta, _ := ScoreDelta(v)
		expectedScore += delta
	}

	p, ok := s.Player(7)
	req.True(ok)
	req.Equal(len(values), p.Throws)
	req.Equal(expectedScore, p.Score)
	req.Equal(len(values), s.Pending(7))
}

func TestChatSession_Forwarded_Throw_Does_Not_Mutate(t *testing.T) {
	req := require.New(t)
	clock := scheduler.NewManualScheduler()
	s := newStartedSession(t, clock)
	s.FlushOutbox()

	evt := throw(7, "Alice", 6, 10)
	evt.Forwarded = true

	err := s.Throw(evt)

	req.ErrorIs(err, errors.ErrForwardedEvent)
	_, ok := s.Player(7)
	req.False(ok)
	req.Equal(0, s.Pending(7))
	req.Equal(0, clock.Pending())
	req.Empty(s.Standings())
}

func TestChatSession_Invalid_Value_Does_Not_Mutate(t *testing.T) {
	req := require.New(t)
	s := newStartedSession(t, scheduler.NewManualScheduler())

	err := s.Throw(throw(7, "Alice", 9, 10))

	req.ErrorIs(err, errors.ErrInvalidEventValue)
	_, ok := s.Player(7)
	req.False(ok)
	req.Empty(s.Standings())
}

func TestChatSession_Burst_Is_Flushed_Once(t *testing.T) {
	req := require.New(t)
	clock := scheduler.NewManualScheduler()
	s := newStartedSession(t, clock)
	s.FlushOutbox()

	// Given three throws at t=0, 0.1 and 0.2
	req.NoError(s.Throw(throw(7, "Alice", 6, 10)))
	clock.Advance(100 * time.Millisecond)
	req.NoError(s.Throw(throw(7, "Alice", 1, 11)))
	clock.Advance(100 * time.Millisecond)
	req.NoError(s.Throw(throw(7, "Alice", 4, 12)))

	// When nothing happens until just before t=2.7
	clock.Advance(2499 * time.Millisecond)
	req.Empty(s.FlushOutbox())

	// Then one flush covering all three is sent at t=2.7, replying to the last throw
	clock.Advance(time.Millisecond)
	out := s.FlushOutbox()
	req.Len(out, 1)
	req.Equal(Target{Room: room, ReplyTo: 12}, out[0].Target)
	req.Equal("+6 +0 +3\nThrows: 3 (+3)\nScore: 9 (+9)", out[0].Text)
	req.Equal(0, s.Pending(7))

	// And a throw at t=3.0 schedules its own flush
	clock.Advance(300 * time.Millisecond)
	req.NoError(s.Throw(throw(7, "Alice", 5, 13)))
	clock.Advance(DefaultFlushDelay)
	out = s.FlushOutbox()
	req.Len(out, 1)
	req.Equal("+4\nThrows: 4 (+1)\nScore: 13 (+4)", out[0].Text)
}

func TestChatSession_Players_Flush_Independently(t *testing.T) {
	req := require.New(t)
	clock := scheduler.NewManualScheduler()
	s := newStartedSession(t, clock)
	s.FlushOutbox()

	req.NoError(s.Throw(throw(1, "Alice", 6, 10)))
	clock.Advance(time.Second)
	req.NoError(s.Throw(throw(2, "Bob", 2, 11)))

	clock.Advance(1500 * time.Millisecond)
	out := s.FlushOutbox()
	req.Len(out, 1)
	req.Equal(10, out[0].Target.ReplyTo)

	clock.Advance(time.Second)
	out = s.FlushOutbox()
	req.Len(out, 1)
	req.Equal("+1\nThrows: 1 (+1)\nScore: 1 (+1)", out[0].Text)
}

func TestChatSession_Suppression_Threshold(t *testing.T) {
	tests := map[string]struct {
		throws     int
		suppressed bool
	}{
		"exactly the threshold is itemized": {throws: 100, suppressed: false},
		"one over the threshold is hidden":  {throws: 101, suppressed: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			clock := scheduler.NewManualScheduler()
			s := newStartedSession(t, clock)
			s.FlushOutbox()

			for i := 0; i < tt.throws; i++ {
				req.NoError(s.Throw(throw(7, "Alice", 2, i)))
			}
			clock.Advance(DefaultFlushDelay)

			out := s.FlushOutbox()
			req.Len(out, 1)
			lines := strings.Split(out[0].Text, "\n")
			req.Len(lines, 3)
			if tt.suppressed {
				req.Equal(suppressedText, lines[0])
			} else {
				req.Len(strings.Fields(lines[0]), tt.throws)
				req.Equal(strings.Repeat("+1 ", tt.throws-1)+"+1", lines[0])
			}
			req.Equal(fmt.Sprintf("Throws: %d (+%d)", tt.throws, tt.throws), lines[1])
			req.Equal(fmt.Sprintf("Score: %d (+%d)", tt.throws, tt.throws), lines[2])
		})
	}
}

func TestChatSession_Custom_Delay_And_Threshold(t *testing.T) {
	req := require.New(t)
	clock := scheduler.NewManualScheduler()
	s := newStartedSession(t, clock, WithFlushDelay(time.Second), WithSuppressThreshold(1))
	s.FlushOutbox()

	req.NoError(s.Throw(throw(7, "Alice", 6, 10)))
	req.NoError(s.Throw(throw(7, "Alice", 6, 11)))
	clock.Advance(time.Second)

	out := s.FlushOutbox()
	req.Len(out, 1)
	req.True(strings.HasPrefix(out[0].Text, suppressedText))
}

func TestChatSession_Stop_Renders_Leaderboard_And_Ends(t *testing.T) {
	req := require.New(t)
	clock := scheduler.NewManualScheduler()
	s := newStartedSession(t, clock)
	s.FlushOutbox()

	// Given A and B tied at 5 and C at 3, in that insertion order
	req.NoError(s.Throw(throw(1, "Alice", 5, 10)))
	req.NoError(s.Throw(throw(2, "Bob", 4, 11)))
	req.NoError(s.Throw(throw(3, "Carol", 4, 12)))
	req.NoError(s.Throw(throw(2, "Bob", 3, 13)))
	req.NoError(s.Throw(throw(1, "Alice", 2, 14)))

	// When the session is stopped
	req.NoError(s.Stop(20))

	// Then the leaderboard keeps A before B
	out := s.FlushOutbox()
	req.Len(out, 1)
	req.Equal(FormatHTML, out[0].Format)
	req.Equal(KeyboardRemove, out[0].Keyboard)
	req.Equal(Target{Room: room, ReplyTo: 20}, out[0].Target)
	req.Equal(strings.Join([]string{
		`<a href="tg://user?id=1">Alice</a>: 5 (2 throws) (2.5000 average)`,
		`<a href="tg://user?id=2">Bob</a>: 5 (2 throws) (2.5000 average)`,
		`<a href="tg://user?id=3">Carol</a>: 3 (1 throws) (3.0000 average)`,
	}, "\n"), out[0].Text)

	// And the session is ended, its state released and pending flushes dropped
	req.Equal(StateEnded, s.State())
	req.False(s.Alive())
	_, ok := s.Player(1)
	req.False(ok)
	req.Equal(0, clock.Pending())
	clock.Advance(DefaultFlushDelay)
	req.Empty(s.FlushOutbox())

	// And it rejects any further event
	req.ErrorIs(s.Throw(throw(1, "Alice", 6, 30)), errors.ErrSessionEnded)
	req.ErrorIs(s.Stop(31), errors.ErrSessionEnded)
	req.ErrorIs(s.Start(32), errors.ErrSessionEnded)
}

func TestChatSession_Stop_Without_Players(t *testing.T) {
	req := require.New(t)
	s := newStartedSession(t, scheduler.NewManualScheduler())
	s.FlushOutbox()

	req.NoError(s.Stop(2))

	out := s.FlushOutbox()
	req.Len(out, 1)
	req.Equal(noThrowsText, out[0].Text)
}

func TestChatSession_Stop_Uses_Last_Display_Name_And_Mentioner(t *testing.T) {
	req := require.New(t)
	s := newStartedSession(t, scheduler.NewManualScheduler(), WithMentioner(MentionAt))
	s.FlushOutbox()

	req.NoError(s.Throw(throw(1, "Al", 6, 10)))
	req.NoError(s.Throw(throw(1, "Alice <3", 6, 11)))
	req.NoError(s.Stop(12))

	out := s.FlushOutbox()
	req.Equal("@Alice &lt;3: 12 (2 throws) (6.0000 average)", out[0].Text)
}

func TestChatSession_Stats(t *testing.T) {
	req := require.New(t)
	s := newStartedSession(t, scheduler.NewManualScheduler())

	req.NoError(s.Throw(throw(1, "Alice", 6, 10)))
	req.NoError(s.Throw(throw(1, "Alice", 6, 11)))
	req.NoError(s.Throw(throw(2, "Bob", 6, 12)))

	stats := s.Stats()
	req.Equal(room, stats.Room)
	req.Equal(s.ID, stats.SessionID)
	req.Equal(StateActive, stats.State)
	req.Equal(2, stats.Players)
	req.Equal(3, stats.Throws)
	req.Equal(2, stats.PendingFlushes)
}

var flushPattern = regexp.MustCompile(`Throws: (\d+) \(\+(\d+)\)\nScore: (\d+) \(\+(\d+)\)$`)

func TestChatSession_Concurrent_Throws_Are_Reported_Exactly_Once(t *testing.T) {
	req := require.New(t)
	s := newStartedSession(t, scheduler.NewTimerScheduler(), WithFlushDelay(2*time.Millisecond))
	s.FlushOutbox()

	// Given several players throwing while their flushes keep firing
	const players, throwsEach = 4, 200
	var wg sync.WaitGroup
	for p := 1; p <= players; p++ {
		wg.Add(1)
		go func(id PlayerID) {
			defer wg.Done()
			for i := 0; i < throwsEach; i++ {
				_ = s.Throw(throw(id, "P", i%6+1, i))
				if i%17 == 0 {
					time.Sleep(3 * time.Millisecond)
				}
			}
		}(PlayerID(p))
	}
	wg.Wait()

	// When every pending flush has fired
	req.Eventually(func() bool {
		for p := 1; p <= players; p++ {
			if s.Pending(PlayerID(p)) > 0 {
				return false
			}
		}
		return s.Stats().PendingFlushes == 0
	}, 2*time.Second, 5*time.Millisecond)

	// Then the flushed increments add up to the final totals, nothing lost or doubled
	reportedThrows, reportedScore := 0, 0
	for _, msg := range s.FlushOutbox() {
		m := flushPattern.FindStringSubmatch(msg.Text)
		req.NotNil(m, msg.Text)
		k, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[4])
		reportedThrows += k
		reportedScore += d
	}
	total := 0
	for _, row := range s.Standings() {
		req.Equal(throwsEach, row.Throws)
		total += row.Score
		req.Equal(0, s.Pending(row.Player))
	}
	req.Equal(players*throwsEach, reportedThrows)
	req.Equal(total, reportedScore)
}
