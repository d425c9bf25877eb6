package leaderboard

import (
	"context"
	"log/slog"

	"scores-keeper/internal/db"
	"scores-keeper/internal/domain"
)

// StatsLoader recomputes a game's standings from the store. The session
// manager satisfies it.
type StatsLoader interface {
	StatsForGame(ctx context.Context, gameID int64) ([]domain.PlayerStats, error)
}

// Sink receives recomputed standings. *Cache is the production sink.
type Sink interface {
	Update(ctx context.Context, gameID int64, stats []domain.PlayerStats) error
}

// Worker refreshes the cached standings of a game whenever one of its
// sessions changes. Refreshes are best-effort: a failure is logged and the
// next change triggers another attempt.
type Worker struct {
	sink     Sink
	loader   StatsLoader
	notifier *db.Notifier
	logger   *slog.Logger
}

func NewWorker(sink Sink, loader StatsLoader, notifier *db.Notifier, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, loader: loader, notifier: notifier, logger: logger}
}

// Run consumes notifications until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	notes, cancel := w.notifier.Subscribe(64)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case note, ok := <-notes:
			if !ok {
				return
			}
			if !affectsStandings(note) {
				continue
			}
			w.refresh(ctx, note.GameID)
		}
	}
}

func affectsStandings(note db.Notification) bool {
	if note.GameID == 0 {
		return false
	}
	switch note.Table {
	case db.TableSessions, db.TableRoundScores, db.TableSessionPlayers:
		return true
	default:
		return false
	}
}

func (w *Worker) refresh(ctx context.Context, gameID int64) {
	stats, err := w.loader.StatsForGame(ctx, gameID)
	if err != nil {
		if domain.IsNotFound(err) {
			return
		}
		w.logger.Warn("standings recompute failed", "game_id", gameID, "error", err)
		return
	}
	if err := w.sink.Update(ctx, gameID, stats); err != nil {
		w.logger.Warn("standings cache update failed", "game_id", gameID, "error", err)
	}
}
