package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"scores-keeper/internal/domain"
)

// Store is the Postgres-backed entity store. Every logical mutation runs in
// one transaction (including its audit Event row) and publishes a single
// change notification after commit.
type Store struct {
	conn     *gorm.DB
	notifier *Notifier
}

func NewStore(conn *gorm.DB, notifier *Notifier) *Store {
	return &Store{conn: conn, notifier: notifier}
}

// EventPayload is the JSON body of an audit Event row.
type EventPayload struct {
	GameID    int64  `json:"game_id,omitempty"`
	SessionID int64  `json:"session_id,omitempty"`
	PlayerID  int64  `json:"player_id,omitempty"`
	Round     int    `json:"round,omitempty"`
	Players   int    `json:"players,omitempty"`
	Name      string `json:"name,omitempty"`
}

func recordEvent(tx *gorm.DB, gameID int64, sessionID *int64, eventType string, payload EventPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.Create(&Event{
		GameID:    gameID,
		SessionID: sessionID,
		Type:      eventType,
		Payload:   datatypes.JSON(data),
		CreatedAt: time.Now().UTC(),
	}).Error
}

func (s *Store) publish(note Notification) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(note)
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStorage, op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
