package db

import (
	"time"

	"gorm.io/datatypes"
)

type Game struct {
	ID              int64     `gorm:"primaryKey"`
	Name            string    `gorm:"size:64;not null"`
	Description     string    `gorm:"size:280;not null;default:''"`
	MinPlayers      int       `gorm:"not null;default:2"`
	MaxPlayers      int       `gorm:"not null;default:0"`
	LowestScoreWins bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
	Sessions        []Session
	Events          []Event
}

type Player struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"size:64;not null;uniqueIndex:idx_players_name"`
	AvatarColor string    `gorm:"size:16;not null;default:''"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type Session struct {
	ID         int64     `gorm:"primaryKey"`
	GameID     int64     `gorm:"index;not null"`
	Status     string    `gorm:"size:16;not null"`
	StartedAt  time.Time `gorm:"not null"`
	FinishedAt *time.Time
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
	Members    []SessionPlayer
	Rounds     []RoundScore
}

// SessionPlayer is one membership row. Position is the roster order at
// creation time and drives the ranking tie-break.
type SessionPlayer struct {
	ID        int64     `gorm:"primaryKey"`
	SessionID int64     `gorm:"index;not null;uniqueIndex:idx_session_players_session_player"`
	PlayerID  int64     `gorm:"index;not null;uniqueIndex:idx_session_players_session_player"`
	Position  int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// RoundScore rows are unique per (session, player, round); a later write for
// the same triple replaces the earlier one via upsert.
type RoundScore struct {
	ID        int64     `gorm:"primaryKey"`
	SessionID int64     `gorm:"index;not null;uniqueIndex:idx_round_scores_session_player_round"`
	PlayerID  int64     `gorm:"index;not null;uniqueIndex:idx_round_scores_session_player_round"`
	Round     int       `gorm:"not null;uniqueIndex:idx_round_scores_session_player_round"`
	Points    int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Event is the durable mutation audit row written in the same transaction as
// the logical operation it records.
type Event struct {
	ID        int64          `gorm:"primaryKey"`
	GameID    int64          `gorm:"index;not null"`
	SessionID *int64         `gorm:"index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
