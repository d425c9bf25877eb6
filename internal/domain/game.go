package domain

import (
	"fmt"
	"strings"
	"time"
)

// Game is a game type (e.g. Uno, Tarot, a house-rules card game) that sessions
// are played under. MaxPlayers == 0 means the roster size is unbounded.
type Game struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	MinPlayers      int       `json:"min_players"`
	MaxPlayers      int       `json:"max_players"`
	LowestScoreWins bool      `json:"lowest_score_wins"`
	CreatedAt       time.Time `json:"created_at"`
}

// Unbounded reports whether the game has no upper roster limit.
func (g Game) Unbounded() bool {
	return g.MaxPlayers == 0
}

// Validate checks the structural invariants of a game definition.
func (g Game) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: game name is required", ErrValidation)
	}
	if g.MinPlayers < 2 {
		return fmt.Errorf("%w: min players must be at least 2", ErrValidation)
	}
	if !g.Unbounded() && g.MaxPlayers < g.MinPlayers {
		return fmt.Errorf("%w: max players must not be below min players", ErrValidation)
	}
	return nil
}

// AllowsRosterSize reports whether a session with n players may be created
// under this game's bounds.
func (g Game) AllowsRosterSize(n int) bool {
	if n < g.MinPlayers {
		return false
	}
	if g.Unbounded() {
		return true
	}
	return n <= g.MaxPlayers
}
