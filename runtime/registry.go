package runtime

import (
	"dartboard/domain/dart"
	"dartboard/errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// SessionFactory builds a fresh, not yet started session for a room.
type SessionFactory func(room dart.RoomID) *dart.ChatSession

// Registry holds at most one session per room and routes commands to it.
// Ended sessions are removed as soon as the command that ended them returns.
type Registry struct {
	mu         sync.RWMutex
	log        *slog.Logger
	sessions   map[dart.RoomID]*dart.ChatSession
	newSession SessionFactory
}

func NewRegistry(log *slog.Logger, newSession SessionFactory) *Registry {
	return &Registry{
		log:        log,
		sessions:   make(map[dart.RoomID]*dart.ChatSession),
		newSession: newSession,
	}
}

// GetOrCreate returns the session registered for room, registering the one
// built by create when there is none. created reports whether create was used.
func (r *Registry) GetOrCreate(room dart.RoomID, create func() *dart.ChatSession) (*dart.ChatSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[room]; ok {
		return s, false
	}
	s := create()
	r.sessions[room] = s
	return s, true
}

// Start opens a session for room. A room that already plays gets an
// "already running" reply and keeps its session.
func (r *Registry) Start(room dart.RoomID, replyTo int) []dart.Message {
	r.mu.Lock()
	s, ok := r.sessions[room]
	if ok && s.Alive() {
		r.mu.Unlock()
		r.log.Debug("Session already running", "room", room)
		return []dart.Message{dart.AlreadyRunning(room, replyTo)}
	}
	s = r.newSession(room)
	r.sessions[room] = s
	r.mu.Unlock()

	if err := s.Start(replyTo); err != nil {
		r.log.Error("Unable to start session", "room", room, "error", err)
		r.Remove(room)
		return nil
	}
	return s.FlushOutbox()
}

// Dispatch delivers cmd to its room's session and returns the messages it produced.
// A stop or a throw for a room without a session yields errors.ErrNoActiveSession.
func (r *Registry) Dispatch(cmd dart.Command) ([]dart.Message, error) {
	if start, ok := cmd.(dart.StartSession); ok {
		return r.Start(start.Room, start.MessageID), nil
	}

	room := cmd.RoomID()
	s, ok := r.Lookup(room)
	if !ok {
		return nil, errors.ErrNoActiveSession
	}

	var err error
	switch c := cmd.(type) {
	case dart.Throw:
		err = s.Throw(c)
	case dart.StopSession:
		err = s.Stop(c.MessageID)
	default:
		err = fmt.Errorf("unknown command %T", cmd)
	}

	out := s.FlushOutbox()
	if s.State() == dart.StateEnded {
		r.removeSession(room, s)
	}
	if err != nil {
		return out, fmt.Errorf("room %d: %w", room, err)
	}
	return out, nil
}

// Drain collects messages a session queued outside of Dispatch, such as timer flushes.
func (r *Registry) Drain(room dart.RoomID) []dart.Message {
	s, ok := r.Lookup(room)
	if !ok {
		return nil
	}
	return s.FlushOutbox()
}

func (r *Registry) Lookup(room dart.RoomID) (*dart.ChatSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[room]
	return s, ok
}

func (r *Registry) Remove(room dart.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, room)
}

// removeSession deletes room only while it still maps to s.
func (r *Registry) removeSession(room dart.RoomID, s *dart.ChatSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.sessions[room]; ok && current == s {
		delete(r.sessions, room)
		r.log.Debug("Session removed", "room", room, "session", s.ID.String())
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot returns the stats of every registered session, ordered by room.
func (r *Registry) Snapshot() []dart.SessionStats {
	r.mu.RLock()
	sessions := lo.Values(r.sessions)
	r.mu.RUnlock()

	stats := lo.Map(sessions, func(s *dart.ChatSession, _ int) dart.SessionStats {
		return s.Stats()
	})
	sort.Slice(stats, func(i, j int) bool { return stats[i].Room < stats[j].Room })
	return stats
}
