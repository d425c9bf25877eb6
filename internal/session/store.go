package session

import (
	"context"
	"time"

	"scores-keeper/internal/domain"
)

// Store is the slice of the entity store the lifecycle manager needs. Each
// method is one logical operation: implementations must make the multi-row
// ones (session insert with membership, round upsert, compacting delete,
// cascade delete) atomic, rolling back every row on failure. Missing rows
// surface as domain.ErrNotFound, I/O failures as wrapped domain.ErrStorage.
type Store interface {
	GameByID(ctx context.Context, id int64) (domain.Game, error)
	// PlayersByIDs returns players in the order the ids were given.
	PlayersByIDs(ctx context.Context, ids []int64) ([]domain.Player, error)

	// InsertSession persists the session and one membership row per roster
	// player, positions following the roster order.
	InsertSession(ctx context.Context, sess domain.Session) (int64, error)
	SessionByID(ctx context.Context, id int64) (domain.Session, error)
	SessionsByGame(ctx context.Context, gameID int64) ([]domain.Session, error)
	FinishSession(ctx context.Context, id int64, finishedAt time.Time) error
	// DeleteSession removes the session, its membership rows, and its rounds.
	DeleteSession(ctx context.Context, id int64) error

	RoundsForSession(ctx context.Context, sessionID int64) ([]domain.RoundScore, error)
	// UpsertRoundScores writes all rows in one transaction, replacing any
	// existing row with the same (session, player, round) triple.
	UpsertRoundScores(ctx context.Context, sessionID int64, scores []domain.RoundScore) error
	// CompactRound deletes every row at the given round and shifts every
	// later round down by one, in one transaction.
	CompactRound(ctx context.Context, sessionID int64, round int) error
}
