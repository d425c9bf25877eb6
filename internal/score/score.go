// Package score holds the pure aggregation functions for session scoring.
// Everything here operates on in-memory snapshots and never touches storage,
// so a recomputation pass is just "fetch rows, call score".
package score

import (
	"sort"

	"scores-keeper/internal/domain"
)

// Totals sums recorded points per roster player. Players without any rounds
// get an explicit 0 entry; rounds whose player is not on the roster are
// ignored rather than treated as an error.
func Totals(rounds []domain.RoundScore, players []domain.Player) map[int64]int {
	totals := make(map[int64]int, len(players))
	for _, player := range players {
		totals[player.ID] = 0
	}
	for _, round := range rounds {
		if _, ok := totals[round.PlayerID]; !ok {
			continue
		}
		totals[round.PlayerID] += round.Points
	}
	return totals
}

// CurrentRound is the round number a new submission should be stamped with:
// the highest recorded round plus one, or 1 for a fresh session.
func CurrentRound(rounds []domain.RoundScore) int {
	max := 0
	for _, round := range rounds {
		if round.Round > max {
			max = round.Round
		}
	}
	return max + 1
}

// Ranking orders players by cumulative total, best first: ascending when the
// lowest total wins, descending otherwise. Players tied on total keep their
// membership order, so the sort must stay stable.
func Ranking(players []domain.Player, totals map[int64]int, lowestWins bool) []domain.RankEntry {
	ranking := make([]domain.RankEntry, 0, len(players))
	for _, player := range players {
		ranking = append(ranking, domain.RankEntry{
			Player: player,
			Total:  totals[player.ID],
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		if lowestWins {
			return ranking[i].Total < ranking[j].Total
		}
		return ranking[i].Total > ranking[j].Total
	})
	return ranking
}

// Winners returns every player tied at the ranking's best total, or nil while
// the session is still in progress. A finished session with no rounds has all
// players tied at zero and therefore all of them winning.
func Winners(status string, ranking []domain.RankEntry) []domain.Player {
	if status != domain.StatusFinished || len(ranking) == 0 {
		return nil
	}
	best := ranking[0].Total
	winners := make([]domain.Player, 0, 1)
	for _, entry := range ranking {
		if entry.Total == best {
			winners = append(winners, entry.Player)
		}
	}
	return winners
}

// NewSessionDetail derives the full session view from a consistent snapshot.
// The original row data is carried through untouched; every derived field is
// recomputed eagerly so the view can never go stale.
func NewSessionDetail(session domain.Session, players []domain.Player, rounds []domain.RoundScore, lowestWins bool) domain.SessionDetail {
	totals := Totals(rounds, players)
	ranking := Ranking(players, totals, lowestWins)
	return domain.SessionDetail{
		Session:         session,
		Players:         players,
		Rounds:          rounds,
		LowestScoreWins: lowestWins,
		Totals:          totals,
		CurrentRound:    CurrentRound(rounds),
		Ranking:         ranking,
		Winners:         Winners(session.Status, ranking),
	}
}
