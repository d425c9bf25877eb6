package score

import (
	"sort"

	"scores-keeper/internal/domain"
)

// PlayerStats aggregates per-player results over the finished sessions of one
// game. A player counts a session as played when on its roster and as won
// when their total matches that session's best under the game's scoring
// policy, ties included. Output order is games won descending, then total
// points descending, then player id ascending, so equal records always land
// in the same order.
func PlayerStats(game domain.Game, finished []domain.Session, roundsBySession map[int64][]domain.RoundScore, players []domain.Player) []domain.PlayerStats {
	stats := make([]domain.PlayerStats, 0, len(players))
	for _, player := range players {
		var played, won, totalPoints int
		for _, session := range finished {
			if !session.HasMember(player.ID) {
				continue
			}
			played++
			totals := sessionTotals(session, roundsBySession[session.ID])
			playerTotal := totals[player.ID]
			totalPoints += playerTotal
			if playerTotal == bestTotal(totals, game.LowestScoreWins) {
				won++
			}
		}
		if played == 0 {
			continue
		}
		stats = append(stats, domain.PlayerStats{
			Player:      player,
			GamesPlayed: played,
			GamesWon:    won,
			TotalPoints: totalPoints,
			WinRate:     float64(won) / float64(played),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].GamesWon != stats[j].GamesWon {
			return stats[i].GamesWon > stats[j].GamesWon
		}
		if stats[i].TotalPoints != stats[j].TotalPoints {
			return stats[i].TotalPoints > stats[j].TotalPoints
		}
		return stats[i].Player.ID < stats[j].Player.ID
	})
	return stats
}

// sessionTotals sums points per roster member of a single session.
func sessionTotals(session domain.Session, rounds []domain.RoundScore) map[int64]int {
	totals := make(map[int64]int, len(session.PlayerIDs))
	for _, id := range session.PlayerIDs {
		totals[id] = 0
	}
	for _, round := range rounds {
		if _, ok := totals[round.PlayerID]; !ok {
			continue
		}
		totals[round.PlayerID] += round.Points
	}
	return totals
}

func bestTotal(totals map[int64]int, lowestWins bool) int {
	first := true
	best := 0
	for _, total := range totals {
		if first {
			best = total
			first = false
			continue
		}
		if lowestWins && total < best {
			best = total
		}
		if !lowestWins && total > best {
			best = total
		}
	}
	return best
}
