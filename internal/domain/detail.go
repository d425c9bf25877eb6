package domain

// RankEntry is one row of a session ranking, best first.
type RankEntry struct {
	Player Player `json:"player"`
	Total  int    `json:"total"`
}

// SessionDetail is the denormalized live view of a session: the stored rows
// plus every derived value the presentation layer needs. It is recomputed
// from a fresh snapshot on every observed change and never persisted.
type SessionDetail struct {
	Session         Session       `json:"session"`
	Players         []Player      `json:"players"`
	Rounds          []RoundScore  `json:"rounds"`
	LowestScoreWins bool          `json:"lowest_score_wins"`
	Totals          map[int64]int `json:"totals"`
	CurrentRound    int           `json:"current_round"`
	Ranking         []RankEntry   `json:"ranking"`
	// Winners is nil while the session is in progress. A finished session
	// lists every player tied at the best total.
	Winners []Player `json:"winners,omitempty"`
}

// PlayerStats aggregates one player's record across the finished sessions of
// a single game.
type PlayerStats struct {
	Player      Player  `json:"player"`
	GamesPlayed int     `json:"games_played"`
	GamesWon    int     `json:"games_won"`
	TotalPoints int     `json:"total_points"`
	WinRate     float64 `json:"win_rate"`
}
