// Package sessiontest provides an in-memory session.Store used by tests in
// place of the Postgres-backed store.
package sessiontest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"scores-keeper/internal/domain"
)

// MemStore implements session.Store over plain maps. Mutating methods honor
// FailWith so tests can simulate storage failures; when set, every write
// returns that error without touching state (mirroring rollback-on-error).
type MemStore struct {
	mu sync.Mutex

	FailWith error

	games    map[int64]domain.Game
	players  map[int64]domain.Player
	sessions map[int64]domain.Session
	rounds   map[int64][]domain.RoundScore

	nextSessionID int64
	nextRoundID   int64
	nextGameID    int64
	nextPlayerID  int64
}

func NewMemStore() *MemStore {
	return &MemStore{
		games:         make(map[int64]domain.Game),
		players:       make(map[int64]domain.Player),
		sessions:      make(map[int64]domain.Session),
		rounds:        make(map[int64][]domain.RoundScore),
		nextSessionID: 1,
		nextRoundID:   1,
		nextGameID:    1,
		nextPlayerID:  1,
	}
}

// AddGame seeds a game definition.
func (s *MemStore) AddGame(game domain.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game
	if game.ID >= s.nextGameID {
		s.nextGameID = game.ID + 1
	}
}

// AddPlayer seeds a player profile.
func (s *MemStore) AddPlayer(player domain.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player
	if player.ID >= s.nextPlayerID {
		s.nextPlayerID = player.ID + 1
	}
}

func (s *MemStore) CreateGame(_ context.Context, game domain.Game) (domain.Game, error) {
	if err := game.Validate(); err != nil {
		return domain.Game{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	game.ID = s.nextGameID
	s.nextGameID++
	game.CreatedAt = time.Now().UTC()
	s.games[game.ID] = game
	return game, nil
}

func (s *MemStore) Games(_ context.Context) ([]domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	games := make([]domain.Game, 0, len(s.games))
	for id := int64(1); id < s.nextGameID; id++ {
		if game, ok := s.games[id]; ok {
			games = append(games, game)
		}
	}
	return games, nil
}

func (s *MemStore) UpdateGameInfo(_ context.Context, id int64, name, description string) (domain.Game, error) {
	if name == "" {
		return domain.Game{}, fmt.Errorf("%w: game name is required", domain.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return domain.Game{}, fmt.Errorf("%w: game %d", domain.ErrNotFound, id)
	}
	game.Name = name
	game.Description = description
	s.games[id] = game
	return game, nil
}

func (s *MemStore) DeleteGame(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return fmt.Errorf("%w: game %d", domain.ErrNotFound, id)
	}
	delete(s.games, id)
	for sessID, sess := range s.sessions {
		if sess.GameID == id {
			delete(s.sessions, sessID)
			delete(s.rounds, sessID)
		}
	}
	return nil
}

func (s *MemStore) CreatePlayer(_ context.Context, player domain.Player) (domain.Player, error) {
	if player.Name == "" {
		return domain.Player{}, fmt.Errorf("%w: player name is required", domain.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	player.ID = s.nextPlayerID
	s.nextPlayerID++
	s.players[player.ID] = player
	return player, nil
}

func (s *MemStore) UpdatePlayer(_ context.Context, player domain.Player) (domain.Player, error) {
	if player.Name == "" {
		return domain.Player{}, fmt.Errorf("%w: player name is required", domain.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[player.ID]; !ok {
		return domain.Player{}, fmt.Errorf("%w: player %d", domain.ErrNotFound, player.ID)
	}
	s.players[player.ID] = player
	return player, nil
}

func (s *MemStore) Players(_ context.Context) ([]domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	players := make([]domain.Player, 0, len(s.players))
	for id := int64(1); id < s.nextPlayerID; id++ {
		if player, ok := s.players[id]; ok {
			players = append(players, player)
		}
	}
	return players, nil
}

func (s *MemStore) GameByID(_ context.Context, id int64) (domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return domain.Game{}, fmt.Errorf("%w: game %d", domain.ErrNotFound, id)
	}
	return game, nil
}

func (s *MemStore) PlayersByIDs(_ context.Context, ids []int64) ([]domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	players := make([]domain.Player, 0, len(ids))
	for _, id := range ids {
		if player, ok := s.players[id]; ok {
			players = append(players, player)
		}
	}
	return players, nil
}

func (s *MemStore) InsertSession(_ context.Context, sess domain.Session) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return 0, s.FailWith
	}
	sess.ID = s.nextSessionID
	s.nextSessionID++
	s.sessions[sess.ID] = sess
	return sess.ID, nil
}

func (s *MemStore) SessionByID(_ context.Context, id int64) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: session %d", domain.ErrNotFound, id)
	}
	return sess, nil
}

func (s *MemStore) SessionsByGame(_ context.Context, gameID int64) ([]domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sessions []domain.Session
	for id := int64(1); id < s.nextSessionID; id++ {
		if sess, ok := s.sessions[id]; ok && sess.GameID == gameID {
			sessions = append(sessions, sess)
		}
	}
	return sessions, nil
}

func (s *MemStore) FinishSession(_ context.Context, id int64, finishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: session %d", domain.ErrNotFound, id)
	}
	sess.Status = domain.StatusFinished
	sess.FinishedAt = &finishedAt
	s.sessions[id] = sess
	return nil
}

func (s *MemStore) DeleteSession(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	delete(s.sessions, id)
	delete(s.rounds, id)
	return nil
}

func (s *MemStore) RoundsForSession(_ context.Context, sessionID int64) ([]domain.RoundScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rounds := make([]domain.RoundScore, len(s.rounds[sessionID]))
	copy(rounds, s.rounds[sessionID])
	return rounds, nil
}

func (s *MemStore) UpsertRoundScores(_ context.Context, sessionID int64, scores []domain.RoundScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	rounds := s.rounds[sessionID]
	for _, row := range scores {
		replaced := false
		for i := range rounds {
			if rounds[i].PlayerID == row.PlayerID && rounds[i].Round == row.Round {
				rounds[i].Points = row.Points
				replaced = true
				break
			}
		}
		if !replaced {
			row.ID = s.nextRoundID
			s.nextRoundID++
			rounds = append(rounds, row)
		}
	}
	s.rounds[sessionID] = rounds
	return nil
}

func (s *MemStore) CompactRound(_ context.Context, sessionID int64, round int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	kept := s.rounds[sessionID][:0]
	for _, row := range s.rounds[sessionID] {
		if row.Round == round {
			continue
		}
		if row.Round > round {
			row.Round--
		}
		kept = append(kept, row)
	}
	s.rounds[sessionID] = kept
	return nil
}
