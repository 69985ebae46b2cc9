package model

import "time"

type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusEnded     SessionStatus = "ended"     // round decided, waiting for next round
	StatusCompleted SessionStatus = "completed" // final round decided
)

// Player is one of the two slots in a session. The second slot starts with a
// nil ID and Name until a participant joins.
type Player struct {
	ID    *string `json:"id"`
	Name  *string `json:"name"`
	Code  string  `json:"code"`
	Score int     `json:"score"`
}

// Session is one two-player match. All mutation happens under the session's
// repository lock; see repository.SessionRepository.
type Session struct {
	ID            string        `json:"id"`
	Players       [2]*Player    `json:"players"`
	ProblemID     int           `json:"problem_id"`
	Round         int           `json:"round"`
	RoundsTotal   int           `json:"rounds_total"`
	RoundDuration time.Duration `json:"-"`
	RoundEndsAt   *time.Time    `json:"round_ends_at,omitempty"`
	Status        SessionStatus `json:"status"`
	WinnerID      *string       `json:"winner_id,omitempty"`   // current round winner
	ChampionID    *string       `json:"champion_id,omitempty"` // overall winner, set iff completed
}

// BothPresent reports whether both player slots are filled.
func (s *Session) BothPresent() bool {
	return s.Players[0].ID != nil && s.Players[1].ID != nil
}

// PlayerByID returns the player slot holding the given id, or nil.
func (s *Session) PlayerByID(id string) *Player {
	for _, p := range s.Players {
		if p.ID != nil && *p.ID == id {
			return p
		}
	}
	return nil
}

// Remaining returns the seconds left in the current round. It is zero when
// the session is not active, no deadline has been set, or the deadline has
// passed.
func (s *Session) Remaining(now time.Time) int {
	if s.Status != StatusActive || s.RoundEndsAt == nil {
		return 0
	}
	left := int(s.RoundEndsAt.Sub(now).Seconds())
	if left < 0 {
		return 0
	}
	return left
}
