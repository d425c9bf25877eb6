package score

import (
	"testing"

	"scores-keeper/internal/domain"
)

func finishedSession(id int64, playerIDs ...int64) domain.Session {
	return domain.Session{ID: id, GameID: 1, PlayerIDs: playerIDs, Status: domain.StatusFinished}
}

func TestPlayerStatsCountsPlayedAndWon(t *testing.T) {
	game := domain.Game{ID: 1, LowestScoreWins: false}
	players := rosterOf("Pia", "Quinn", "Rex")
	sessions := []domain.Session{
		finishedSession(10, 1, 2), // Pia wins
		finishedSession(11, 2, 3), // Pia absent
		finishedSession(12, 1, 3), // Pia loses
	}
	rounds := map[int64][]domain.RoundScore{
		10: {{SessionID: 10, PlayerID: 1, Round: 1, Points: 9}, {SessionID: 10, PlayerID: 2, Round: 1, Points: 4}},
		11: {{SessionID: 11, PlayerID: 2, Round: 1, Points: 7}, {SessionID: 11, PlayerID: 3, Round: 1, Points: 2}},
		12: {{SessionID: 12, PlayerID: 1, Round: 1, Points: 1}, {SessionID: 12, PlayerID: 3, Round: 1, Points: 8}},
	}

	stats := PlayerStats(game, sessions, rounds, players)
	byID := make(map[int64]domain.PlayerStats, len(stats))
	for _, entry := range stats {
		byID[entry.Player.ID] = entry
	}

	pia := byID[1]
	if pia.GamesPlayed != 2 || pia.GamesWon != 1 {
		t.Fatalf("expected Pia played=2 won=1, got %+v", pia)
	}
	if pia.WinRate != 0.5 {
		t.Fatalf("expected Pia win rate 0.5, got %v", pia.WinRate)
	}
	if pia.TotalPoints != 10 {
		t.Fatalf("expected Pia total points 10, got %d", pia.TotalPoints)
	}
}

func TestPlayerStatsRespectsLowestWinsPolicy(t *testing.T) {
	game := domain.Game{ID: 1, LowestScoreWins: true}
	players := rosterOf("Pia", "Quinn")
	sessions := []domain.Session{finishedSession(10, 1, 2)}
	rounds := map[int64][]domain.RoundScore{
		10: {
			{SessionID: 10, PlayerID: 1, Round: 1, Points: 3},
			{SessionID: 10, PlayerID: 2, Round: 1, Points: 8},
		},
	}

	stats := PlayerStats(game, sessions, rounds, players)
	if stats[0].Player.ID != 1 || stats[0].GamesWon != 1 {
		t.Fatalf("expected Pia to win under lowest-wins, got %+v", stats[0])
	}
	if stats[1].GamesWon != 0 {
		t.Fatalf("expected Quinn winless, got %+v", stats[1])
	}
}

func TestPlayerStatsTieCountsBothAsWinners(t *testing.T) {
	game := domain.Game{ID: 1}
	players := rosterOf("Pia", "Quinn")
	sessions := []domain.Session{finishedSession(10, 1, 2)}
	rounds := map[int64][]domain.RoundScore{
		10: {
			{SessionID: 10, PlayerID: 1, Round: 1, Points: 5},
			{SessionID: 10, PlayerID: 2, Round: 1, Points: 5},
		},
	}

	stats := PlayerStats(game, sessions, rounds, players)
	for _, entry := range stats {
		if entry.GamesWon != 1 {
			t.Fatalf("expected tie to count as a win for %s, got %+v", entry.Player.Name, entry)
		}
	}
}

func TestPlayerStatsOrderingIsDeterministic(t *testing.T) {
	game := domain.Game{ID: 1}
	players := rosterOf("Pia", "Quinn", "Rex")
	sessions := []domain.Session{
		finishedSession(10, 1, 2, 3),
		finishedSession(11, 1, 2, 3),
	}
	// Quinn and Rex each win one session; Quinn scores more points overall.
	rounds := map[int64][]domain.RoundScore{
		10: {
			{SessionID: 10, PlayerID: 1, Round: 1, Points: 1},
			{SessionID: 10, PlayerID: 2, Round: 1, Points: 9},
			{SessionID: 10, PlayerID: 3, Round: 1, Points: 5},
		},
		11: {
			{SessionID: 11, PlayerID: 1, Round: 1, Points: 1},
			{SessionID: 11, PlayerID: 2, Round: 1, Points: 3},
			{SessionID: 11, PlayerID: 3, Round: 1, Points: 6},
		},
	}

	stats := PlayerStats(game, sessions, rounds, players)
	if stats[0].Player.ID != 2 {
		t.Fatalf("expected Quinn first on points tie-break, got %+v", stats[0])
	}
	if stats[1].Player.ID != 3 {
		t.Fatalf("expected Rex second, got %+v", stats[1])
	}
	if stats[2].Player.ID != 1 {
		t.Fatalf("expected Pia last with zero wins, got %+v", stats[2])
	}
}

func TestPlayerStatsSkipsPlayersWithoutFinishedSessions(t *testing.T) {
	game := domain.Game{ID: 1}
	players := rosterOf("Pia", "Quinn")
	sessions := []domain.Session{finishedSession(10, 1)}
	rounds := map[int64][]domain.RoundScore{
		10: {{SessionID: 10, PlayerID: 1, Round: 1, Points: 3}},
	}

	stats := PlayerStats(game, sessions, rounds, players)
	if len(stats) != 1 || stats[0].Player.ID != 1 {
		t.Fatalf("expected only Pia in stats, got %+v", stats)
	}
}
