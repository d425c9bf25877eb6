package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"scores-keeper/internal/domain"
)

// CreatePlayer persists a new player profile.
func (s *Store) CreatePlayer(ctx context.Context, player domain.Player) (domain.Player, error) {
	name := strings.TrimSpace(player.Name)
	if name == "" {
		return domain.Player{}, fmt.Errorf("%w: player name is required", domain.ErrValidation)
	}
	record := Player{Name: name, AvatarColor: player.AvatarColor}
	if err := s.conn.WithContext(ctx).Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Player{}, fmt.Errorf("%w: player name %q is taken", domain.ErrValidation, name)
		}
		return domain.Player{}, storageError("create player", err)
	}
	s.publish(Notification{Table: TablePlayers, Op: "insert"})
	return playerToDomain(record), nil
}

// UpdatePlayer changes a player's display name and avatar color.
func (s *Store) UpdatePlayer(ctx context.Context, player domain.Player) (domain.Player, error) {
	name := strings.TrimSpace(player.Name)
	if name == "" {
		return domain.Player{}, fmt.Errorf("%w: player name is required", domain.ErrValidation)
	}
	var record Player
	err := s.conn.WithContext(ctx).First(&record, player.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Player{}, fmt.Errorf("%w: player %d", domain.ErrNotFound, player.ID)
	}
	if err != nil {
		return domain.Player{}, storageError("load player", err)
	}
	updates := map[string]any{
		"name":         name,
		"avatar_color": player.AvatarColor,
	}
	if err := s.conn.WithContext(ctx).Model(&record).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Player{}, fmt.Errorf("%w: player name %q is taken", domain.ErrValidation, name)
		}
		return domain.Player{}, storageError("update player", err)
	}
	s.publish(Notification{Table: TablePlayers, Op: "update"})
	record.Name = name
	record.AvatarColor = player.AvatarColor
	return playerToDomain(record), nil
}

// Players lists every player profile, alphabetically.
func (s *Store) Players(ctx context.Context) ([]domain.Player, error) {
	var records []Player
	if err := s.conn.WithContext(ctx).Order("name ASC, id ASC").Find(&records).Error; err != nil {
		return nil, storageError("list players", err)
	}
	players := make([]domain.Player, 0, len(records))
	for _, record := range records {
		players = append(players, playerToDomain(record))
	}
	return players, nil
}

// PlayersByIDs loads the given players, preserving the order of ids. Unknown
// ids are skipped; the caller decides whether a shorter result is an error.
func (s *Store) PlayersByIDs(ctx context.Context, ids []int64) ([]domain.Player, error) {
	if len(ids) == 0 {
		return []domain.Player{}, nil
	}
	var records []Player
	if err := s.conn.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, storageError("load players", err)
	}
	byID := make(map[int64]Player, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}
	players := make([]domain.Player, 0, len(ids))
	for _, id := range ids {
		if record, ok := byID[id]; ok {
			players = append(players, playerToDomain(record))
		}
	}
	return players, nil
}

func playerToDomain(record Player) domain.Player {
	return domain.Player{
		ID:          record.ID,
		Name:        record.Name,
		AvatarColor: record.AvatarColor,
	}
}
