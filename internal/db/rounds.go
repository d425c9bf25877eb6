package db

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scores-keeper/internal/domain"
)

// RoundsForSession loads every recorded score row of a session ordered by
// round number.
func (s *Store) RoundsForSession(ctx context.Context, sessionID int64) ([]domain.RoundScore, error) {
	var records []RoundScore
	err := s.conn.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("round ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, storageError("load rounds", err)
	}
	rounds := make([]domain.RoundScore, 0, len(records))
	for _, record := range records {
		rounds = append(rounds, domain.RoundScore{
			ID:        record.ID,
			SessionID: record.SessionID,
			PlayerID:  record.PlayerID,
			Round:     record.Round,
			Points:    record.Points,
		})
	}
	return rounds, nil
}

// UpsertRoundScores writes all rows of one logical round mutation in a
// single transaction. A row hitting an existing (session, player, round)
// triple replaces its points instead of conflicting.
func (s *Store) UpsertRoundScores(ctx context.Context, sessionID int64, scores []domain.RoundScore) error {
	if len(scores) == 0 {
		return nil
	}
	sess, err := s.SessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	err = s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range scores {
			record := RoundScore{
				SessionID: sessionID,
				PlayerID:  row.PlayerID,
				Round:     row.Round,
				Points:    row.Points,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "session_id"},
					{Name: "player_id"},
					{Name: "round"},
				},
				DoUpdates: clause.AssignmentColumns([]string{"points", "updated_at"}),
			}).Create(&record).Error
			if err != nil {
				return err
			}
		}
		return recordEvent(tx, sess.GameID, &sessionID, "round_recorded", EventPayload{
			GameID:    sess.GameID,
			SessionID: sessionID,
			Round:     scores[0].Round,
			Players:   len(scores),
		})
	})
	if err != nil {
		return storageError("upsert round scores", err)
	}
	s.publish(Notification{Table: TableRoundScores, Op: "upsert", GameID: sess.GameID, SessionID: sessionID})
	return nil
}

// CompactRound deletes one round and renumbers every later round down by
// one in the same transaction, keeping the 1..N sequence contiguous.
func (s *Store) CompactRound(ctx context.Context, sessionID int64, round int) error {
	sess, err := s.SessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	err = s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteByRound(tx, sessionID, round); err != nil {
			return err
		}
		if err := renumberAfter(tx, sessionID, round, -1); err != nil {
			return err
		}
		return recordEvent(tx, sess.GameID, &sessionID, "round_deleted", EventPayload{
			GameID:    sess.GameID,
			SessionID: sessionID,
			Round:     round,
		})
	})
	if err != nil {
		return storageError("compact round", err)
	}
	s.publish(Notification{Table: TableRoundScores, Op: "delete", GameID: sess.GameID, SessionID: sessionID})
	return nil
}

func deleteByRound(tx *gorm.DB, sessionID int64, round int) error {
	return tx.Where("session_id = ? AND round = ?", sessionID, round).Delete(&RoundScore{}).Error
}

func renumberAfter(tx *gorm.DB, sessionID int64, round, delta int) error {
	return tx.Model(&RoundScore{}).
		Where("session_id = ? AND round > ?", sessionID, round).
		Update("round", gorm.Expr("round + ?", delta)).Error
}
