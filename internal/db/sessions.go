package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"scores-keeper/internal/domain"
)

// InsertSession persists the session row and one membership row per roster
// player in a single transaction. Membership positions follow the roster
// order and define the ranking tie-break.
func (s *Store) InsertSession(ctx context.Context, sess domain.Session) (int64, error) {
	record := Session{
		GameID:    sess.GameID,
		Status:    sess.Status,
		StartedAt: sess.StartedAt,
	}
	err := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		for position, playerID := range sess.PlayerIDs {
			member := SessionPlayer{
				SessionID: record.ID,
				PlayerID:  playerID,
				Position:  position,
			}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return recordEvent(tx, sess.GameID, &record.ID, "session_created", EventPayload{
			GameID:    sess.GameID,
			SessionID: record.ID,
			Players:   len(sess.PlayerIDs),
		})
	})
	if err != nil {
		return 0, storageError("insert session", err)
	}
	s.publish(Notification{Table: TableSessions, Op: "insert", GameID: sess.GameID, SessionID: record.ID})
	return record.ID, nil
}

// SessionByID loads one session with its roster in membership order.
func (s *Store) SessionByID(ctx context.Context, id int64) (domain.Session, error) {
	var record Session
	err := s.conn.WithContext(ctx).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Session{}, fmt.Errorf("%w: session %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.Session{}, storageError("load session", err)
	}
	playerIDs, err := s.memberIDs(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	return sessionToDomain(record, playerIDs), nil
}

// SessionsByGame lists the game's sessions, newest first, each with its
// roster in membership order.
func (s *Store) SessionsByGame(ctx context.Context, gameID int64) ([]domain.Session, error) {
	var records []Session
	err := s.conn.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("started_at DESC, id DESC").
		Find(&records).Error
	if err != nil {
		return nil, storageError("list sessions", err)
	}
	sessions := make([]domain.Session, 0, len(records))
	for _, record := range records {
		playerIDs, err := s.memberIDs(ctx, record.ID)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sessionToDomain(record, playerIDs))
	}
	return sessions, nil
}

// FinishSession stamps the terminal status. The lifecycle manager has
// already verified the session is still in progress.
func (s *Store) FinishSession(ctx context.Context, id int64, finishedAt time.Time) error {
	var record Session
	err := s.conn.WithContext(ctx).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: session %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return storageError("load session", err)
	}
	err = s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"status":      domain.StatusFinished,
			"finished_at": finishedAt,
		}
		if err := tx.Model(&Session{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return recordEvent(tx, record.GameID, &id, "session_finished", EventPayload{
			GameID:    record.GameID,
			SessionID: id,
		})
	})
	if err != nil {
		return storageError("finish session", err)
	}
	s.publish(Notification{Table: TableSessions, Op: "update", GameID: record.GameID, SessionID: id})
	return nil
}

// DeleteSession removes the session with its rounds and membership rows.
func (s *Store) DeleteSession(ctx context.Context, id int64) error {
	var record Session
	err := s.conn.WithContext(ctx).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: session %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return storageError("load session", err)
	}
	err = s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&RoundScore{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", id).Delete(&SessionPlayer{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&Session{}, id).Error; err != nil {
			return err
		}
		return recordEvent(tx, record.GameID, &id, "session_deleted", EventPayload{
			GameID:    record.GameID,
			SessionID: id,
		})
	})
	if err != nil {
		return storageError("delete session", err)
	}
	s.publish(Notification{Table: TableSessions, Op: "delete", GameID: record.GameID, SessionID: id})
	return nil
}

func (s *Store) memberIDs(ctx context.Context, sessionID int64) ([]int64, error) {
	var ids []int64
	err := s.conn.WithContext(ctx).
		Model(&SessionPlayer{}).
		Where("session_id = ?", sessionID).
		Order("position ASC").
		Pluck("player_id", &ids).Error
	if err != nil {
		return nil, storageError("load session members", err)
	}
	return ids, nil
}

func sessionToDomain(record Session, playerIDs []int64) domain.Session {
	return domain.Session{
		ID:         record.ID,
		GameID:     record.GameID,
		PlayerIDs:  playerIDs,
		Status:     record.Status,
		StartedAt:  record.StartedAt,
		FinishedAt: record.FinishedAt,
	}
}
