package dart

import (
	"dartboard/errors"
	"dartboard/scheduler"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	DefaultFlushDelay        = 2500 * time.Millisecond
	DefaultSuppressThreshold = 100

	suppressedText = "Individual scores suppressed."
	noThrowsText   = "No throws recorded."
)

type State int

const (
	StateNew State = iota
	StateActive
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Option func(*ChatSession)

// WithFlushDelay sets the quiet period before a player's throws are reported.
func WithFlushDelay(d time.Duration) Option {
	return func(s *ChatSession) {
		s.flushDelay = d
	}
}

// WithSuppressThreshold sets how many throws a flush may itemize.
func WithSuppressThreshold(n int) Option {
	return func(s *ChatSession) {
		s.suppressThreshold = n
	}
}

// WithMentioner sets how leaderboard lines reference players.
func WithMentioner(m Mentioner) Option {
	return func(s *ChatSession) {
		s.mention = m
	}
}

// ChatSession is the live game of one room, from start to stop.
//
// A throw updates the player's state, appends the delta to the player's
// pending buffer and (re)arms a debounced flush for that player. The flush
// captures the buffer length at scheduling time and only consumes that
// prefix, so throws landing while a flush runs are kept for the next one.
//
// Outbound messages are queued in an outbox the caller drains with FlushOutbox.
// All state is guarded by mu, including while flushes run.
type ChatSession struct {
	mu sync.Mutex

	ID        uuid.UUID
	Room      RoomID
	StartedAt time.Time

	state   State
	players map[PlayerID]PlayerState
	order   []PlayerID
	buffers map[PlayerID]*ThrowBuffer
	names   DisplayNameCache
	flushes *scheduler.Debouncer[PlayerID]
	outbox  []Message

	flushDelay        time.Duration
	suppressThreshold int
	mention           Mentioner
	log               *slog.Logger
}

func NewChatSession(room RoomID, s scheduler.Scheduler, log *slog.Logger, opts ...Option) *ChatSession {
	id := uuid.New()
	session := &ChatSession{
		ID:                id,
		Room:              room,
		state:             StateNew,
		flushes:           scheduler.NewDebouncer[PlayerID](s),
		flushDelay:        DefaultFlushDelay,
		suppressThreshold: DefaultSuppressThreshold,
		mention:           MentionHTML,
		log:               log.With("room", room, "session", id.String()),
	}
	for _, opt := range opts {
		opt(session)
	}
	return session
}

// Start activates the session and greets the room with the dart keyboard.
func (s *ChatSession) Start(replyTo int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateActive:
		return nil
	case StateEnded:
		return errors.ErrSessionEnded
	}

	s.state = StateActive
	s.StartedAt = time.Now().UTC()
	s.players = make(map[PlayerID]PlayerState)
	s.buffers = make(map[PlayerID]*ThrowBuffer)
	s.names = make(DisplayNameCache)
	s.outbox = append(s.outbox, Message{
		Target:   Target{Room: s.Room, ReplyTo: replyTo},
		Text:     welcomeText,
		Format:   FormatPlain,
		Keyboard: KeyboardDart,
	})
	s.log.Info("Session started")
	return nil
}

// Throw records one dart. Forwarded throws and invalid values leave the
// session untouched.
func (s *ChatSession) Throw(t Throw) error {
	if t.Forwarded {
		return errors.ErrForwardedEvent
	}
	delta, err := ScoreDelta(t.Value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return errors.ErrSessionEnded
	}

	s.names.Set(t.Player, t.DisplayName)

	prev, known := s.players[t.Player]
	if !known {
		s.order = append(s.order, t.Player)
		s.buffers[t.Player] = &ThrowBuffer{}
	}
	state := prev.Add(delta)
	s.players[t.Player] = state

	generation := s.buffers[t.Player].Append(delta)

	player, replyTo := t.Player, t.MessageID
	s.flushes.ScheduleOrReplace(player, s.flushDelay, func() {
		s.flush(player, generation, state, replyTo)
	})
	return nil
}

// flush reports the deltas buffered for player up to generation.
func (s *ChatSession) flush(player PlayerID, generation int, snapshot PlayerState, replyTo int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return
	}
	buf, ok := s.buffers[player]
	if !ok {
		return
	}
	deltas := buf.Take(generation)
	if len(deltas) == 0 {
		return
	}

	s.outbox = append(s.outbox, Message{
		Target: Target{Room: s.Room, ReplyTo: replyTo},
		Text:   s.composeFlush(deltas, snapshot),
		Format: FormatPlain,
	})
	s.log.Debug("Throws flushed", "player", player, "count", len(deltas), "left", buf.Len())
}

func (s *ChatSession) composeFlush(deltas []int, snapshot PlayerState) string {
	body := suppressedText
	if len(deltas) <= s.suppressThreshold {
		body = strings.Join(lo.Map(deltas, func(d int, _ int) string {
			return fmt.Sprintf("+%d", d)
		}), " ")
	}
	return fmt.Sprintf("%s\nThrows: %d (+%d)\nScore: %d (+%d)",
		body, snapshot.Throws, len(deltas), snapshot.Score, lo.Sum(deltas))
}

// Stop ends the session: pending flushes are dropped, the leaderboard is
// queued and player state is released.
func (s *ChatSession) Stop(replyTo int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return errors.ErrSessionEnded
	}

	dropped := s.flushes.CancelAll()
	standings := s.standings()

	text := noThrowsText
	if len(standings) > 0 {
		text = s.renderLeaderboard(standings)
	}
	s.outbox = append(s.outbox, Message{
		Target:   Target{Room: s.Room, ReplyTo: replyTo},
		Text:     text,
		Format:   FormatHTML,
		Keyboard: KeyboardRemove,
	})

	s.state = StateEnded
	s.players = nil
	s.buffers = nil
	s.order = nil
	s.log.Info("Session stopped", "players", len(standings), "dropped_flushes", dropped)
	return nil
}

// FlushOutbox returns queued messages and empties the outbox.
func (s *ChatSession) FlushOutbox() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.outbox
	s.outbox = nil
	return out
}

func (s *ChatSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ChatSession) Alive() bool {
	return s.State() == StateActive
}

// Player returns the current state of a player.
func (s *ChatSession) Player(id PlayerID) (PlayerState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	return p, ok
}

// Pending returns the number of deltas waiting to be flushed for a player.
func (s *ChatSession) Pending(id PlayerID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if buf, ok := s.buffers[id]; ok {
		return buf.Len()
	}
	return 0
}

// Stats summarizes the session for telemetry and tooling.
func (s *ChatSession) Stats() SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionStats{
		Room:           s.Room,
		SessionID:      s.ID,
		State:          s.state,
		StartedAt:      s.StartedAt,
		Players:        len(s.players),
		Throws:         lo.SumBy(lo.Values(s.players), func(p PlayerState) int { return p.Throws }),
		PendingFlushes: s.flushes.Pending(),
	}
}

type SessionStats struct {
	Room           RoomID
	SessionID      uuid.UUID
	State          State
	StartedAt      time.Time
	Players        int
	Throws         int
	PendingFlushes int
}
