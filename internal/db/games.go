package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"scores-keeper/internal/domain"
)

// CreateGame persists a new game definition after validating its bounds.
func (s *Store) CreateGame(ctx context.Context, game domain.Game) (domain.Game, error) {
	if err := game.Validate(); err != nil {
		return domain.Game{}, err
	}
	record := Game{
		Name:            strings.TrimSpace(game.Name),
		Description:     strings.TrimSpace(game.Description),
		MinPlayers:      game.MinPlayers,
		MaxPlayers:      game.MaxPlayers,
		LowestScoreWins: game.LowestScoreWins,
	}
	err := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return recordEvent(tx, record.ID, nil, "game_created", EventPayload{
			GameID: record.ID,
			Name:   record.Name,
		})
	})
	if err != nil {
		return domain.Game{}, storageError("create game", err)
	}
	s.publish(Notification{Table: TableGames, Op: "insert", GameID: record.ID})
	return gameToDomain(record), nil
}

// GameByID loads one game definition.
func (s *Store) GameByID(ctx context.Context, id int64) (domain.Game, error) {
	var record Game
	err := s.conn.WithContext(ctx).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Game{}, fmt.Errorf("%w: game %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.Game{}, storageError("load game", err)
	}
	return gameToDomain(record), nil
}

// Games lists every game, newest first.
func (s *Store) Games(ctx context.Context) ([]domain.Game, error) {
	var records []Game
	if err := s.conn.WithContext(ctx).Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, storageError("list games", err)
	}
	games := make([]domain.Game, 0, len(records))
	for _, record := range records {
		games = append(games, gameToDomain(record))
	}
	return games, nil
}

// UpdateGameInfo changes the descriptive fields of a game. Scoring policy and
// player bounds stay fixed once set; sessions depend on them.
func (s *Store) UpdateGameInfo(ctx context.Context, id int64, name, description string) (domain.Game, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Game{}, fmt.Errorf("%w: game name is required", domain.ErrValidation)
	}
	if _, err := s.GameByID(ctx, id); err != nil {
		return domain.Game{}, err
	}
	err := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"name":        name,
			"description": strings.TrimSpace(description),
		}
		if err := tx.Model(&Game{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return recordEvent(tx, id, nil, "game_updated", EventPayload{GameID: id, Name: name})
	})
	if err != nil {
		return domain.Game{}, storageError("update game", err)
	}
	s.publish(Notification{Table: TableGames, Op: "update", GameID: id})
	return s.GameByID(ctx, id)
}

// DeleteGame removes the game and cascades over its sessions, their
// membership rows, their rounds, and the game's audit events.
func (s *Store) DeleteGame(ctx context.Context, id int64) error {
	if _, err := s.GameByID(ctx, id); err != nil {
		return err
	}
	err := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sessionIDs []int64
		if err := tx.Model(&Session{}).Where("game_id = ?", id).Pluck("id", &sessionIDs).Error; err != nil {
			return err
		}
		if len(sessionIDs) > 0 {
			if err := tx.Where("session_id IN ?", sessionIDs).Delete(&RoundScore{}).Error; err != nil {
				return err
			}
			if err := tx.Where("session_id IN ?", sessionIDs).Delete(&SessionPlayer{}).Error; err != nil {
				return err
			}
			if err := tx.Where("game_id = ?", id).Delete(&Session{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("game_id = ?", id).Delete(&Event{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Game{}, id).Error
	})
	if err != nil {
		return storageError("delete game", err)
	}
	s.publish(Notification{Table: TableGames, Op: "delete", GameID: id})
	return nil
}

func gameToDomain(record Game) domain.Game {
	return domain.Game{
		ID:              record.ID,
		Name:            record.Name,
		Description:     record.Description,
		MinPlayers:      record.MinPlayers,
		MaxPlayers:      record.MaxPlayers,
		LowestScoreWins: record.LowestScoreWins,
		CreatedAt:       record.CreatedAt,
	}
}
