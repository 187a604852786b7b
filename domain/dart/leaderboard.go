package dart

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Standing is one leaderboard row.
type Standing struct {
	Player PlayerID
	Name   string
	PlayerState
}

// Standings returns players sorted by score, highest first.
// Ties keep the order in which players threw their first dart.
func (s *ChatSession) Standings() []Standing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.standings()
}

func (s *ChatSession) standings() []Standing {
	rows := lo.Map(s.order, func(id PlayerID, _ int) Standing {
		return Standing{Player: id, Name: s.names.Get(id), PlayerState: s.players[id]}
	})
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})
	return rows
}

func (s *ChatSession) renderLeaderboard(rows []Standing) string {
	lines := lo.Map(rows, func(row Standing, _ int) string {
		return renderStanding(row, s.mention)
	})
	return strings.Join(lines, "\n")
}

// renderStanding formats one row. A player without throws has no average;
// the row is kept with a sentinel rather than dividing by zero.
func renderStanding(row Standing, mention Mentioner) string {
	name := mention(row.Player, row.Name)
	avg, err := row.Average()
	if err != nil {
		return fmt.Sprintf("%s: %d (%d throws) (no average)", name, row.Score, row.Throws)
	}
	return fmt.Sprintf("%s: %d (%d throws) (%.4f average)", name, row.Score, row.Throws, avg)
}
