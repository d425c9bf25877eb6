package db

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// snapshot is the full-database backup document. It carries every table the
// application owns so a restore reproduces the exact state, events included.
type snapshot struct {
	TakenAt        time.Time       `json:"taken_at"`
	Games          []Game          `json:"games"`
	Players        []Player        `json:"players"`
	Sessions       []Session       `json:"sessions"`
	SessionPlayers []SessionPlayer `json:"session_players"`
	RoundScores    []RoundScore    `json:"round_scores"`
	Events         []Event         `json:"events"`
}

// Snapshot serializes the whole database into a single JSON document.
func (s *Store) Snapshot(ctx context.Context) ([]byte, error) {
	snap := snapshot{TakenAt: time.Now().UTC()}
	tx := s.conn.WithContext(ctx)
	loads := []struct {
		dest any
	}{
		{&snap.Games},
		{&snap.Players},
		{&snap.Sessions},
		{&snap.SessionPlayers},
		{&snap.RoundScores},
		{&snap.Events},
	}
	for _, load := range loads {
		if err := tx.Order("id ASC").Find(load.dest).Error; err != nil {
			return nil, storageError("snapshot", err)
		}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, storageError("snapshot", err)
	}
	return data, nil
}

// RestoreSnapshot replaces the entire database content with the given backup
// document. Runs in one transaction; on any failure the current state stays
// untouched.
func (s *Store) RestoreSnapshot(ctx context.Context, data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return storageError("restore", err)
	}
	err := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&Event{}, &RoundScore{}, &SessionPlayer{}, &Session{}, &Player{}, &Game{}} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		inserts := []struct {
			rows any
			size int
		}{
			{&snap.Games, len(snap.Games)},
			{&snap.Players, len(snap.Players)},
			{&snap.Sessions, len(snap.Sessions)},
			{&snap.SessionPlayers, len(snap.SessionPlayers)},
			{&snap.RoundScores, len(snap.RoundScores)},
			{&snap.Events, len(snap.Events)},
		}
		for _, insert := range inserts {
			if insert.size == 0 {
				continue
			}
			if err := tx.Create(insert.rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storageError("restore", err)
	}
	// Every live view is stale after a restore.
	for _, table := range []string{TableGames, TablePlayers, TableSessions, TableSessionPlayers, TableRoundScores} {
		s.publish(Notification{Table: table, Op: "restored"})
	}
	return nil
}
