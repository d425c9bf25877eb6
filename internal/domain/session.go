package domain

import "time"

// Session status values.
const (
	StatusInProgress = "IN_PROGRESS"
	StatusFinished   = "FINISHED"
)

// Session is one played instance of a game. PlayerIDs is the roster in
// membership order, fixed at creation; the order is the ranking tie-break.
type Session struct {
	ID         int64      `json:"id"`
	GameID     int64      `json:"game_id"`
	PlayerIDs  []int64    `json:"player_ids"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// InProgress reports whether the session still accepts round mutations.
func (s Session) InProgress() bool {
	return s.Status == StatusInProgress
}

// HasMember reports whether playerID belongs to the session roster.
func (s Session) HasMember(playerID int64) bool {
	for _, id := range s.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// RoundScore is one player's points in one round of a session. At most one
// row exists per (session, player, round); a later write replaces it.
type RoundScore struct {
	ID        int64 `json:"id"`
	SessionID int64 `json:"session_id"`
	PlayerID  int64 `json:"player_id"`
	Round     int   `json:"round"`
	Points    int   `json:"points"`
}
