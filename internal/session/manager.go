// Package session owns the lifecycle of a scoring session: creation against
// the game's roster bounds, round submission and editing, the compacting
// round delete, and the one-way transition to FINISHED.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"scores-keeper/internal/domain"
	"scores-keeper/internal/score"
)

// Manager serializes mutations per session and validates every operation
// before any write reaches the store. Reads (Detail, StatsForGame) do not
// take the session lock.
type Manager struct {
	store Store
	now   func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewManager(store Store) *Manager {
	return &Manager{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		locks: make(map[int64]*sync.Mutex),
	}
}

// sessionLock returns the mutex serializing mutations for one session.
// Locks are never removed; a session id is a few bytes and the set of
// sessions a single user touches stays small.
func (m *Manager) sessionLock(sessionID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[sessionID] = lock
	}
	return lock
}

// CreateSession starts a new IN_PROGRESS session for the game with the given
// roster. The roster order is persisted and becomes the ranking tie-break.
func (m *Manager) CreateSession(ctx context.Context, gameID int64, playerIDs []int64) (domain.Session, error) {
	game, err := m.store.GameByID(ctx, gameID)
	if err != nil {
		return domain.Session{}, err
	}
	if len(playerIDs) == 0 {
		return domain.Session{}, fmt.Errorf("%w: a session needs players", domain.ErrValidation)
	}
	seen := make(map[int64]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		if _, dup := seen[id]; dup {
			return domain.Session{}, fmt.Errorf("%w: duplicate player %d in roster", domain.ErrValidation, id)
		}
		seen[id] = struct{}{}
	}
	if !game.AllowsRosterSize(len(playerIDs)) {
		return domain.Session{}, fmt.Errorf("%w: game %q needs %d-%s players, got %d",
			domain.ErrValidation, game.Name, game.MinPlayers, boundLabel(game), len(playerIDs))
	}
	players, err := m.store.PlayersByIDs(ctx, playerIDs)
	if err != nil {
		return domain.Session{}, err
	}
	if len(players) != len(playerIDs) {
		return domain.Session{}, fmt.Errorf("%w: unknown player in roster", domain.ErrNotFound)
	}

	sess := domain.Session{
		GameID:    gameID,
		PlayerIDs: playerIDs,
		Status:    domain.StatusInProgress,
		StartedAt: m.now(),
	}
	id, err := m.store.InsertSession(ctx, sess)
	if err != nil {
		return domain.Session{}, err
	}
	sess.ID = id
	return sess, nil
}

// SubmitRound records one complete round: every roster member must appear in
// points and nobody else. The round number is derived from the persisted
// rounds while the session lock is held, so a retried submission lands on the
// next round instead of reusing a stale number.
func (m *Manager) SubmitRound(ctx context.Context, sessionID int64, points map[int64]int) error {
	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := m.mutableSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := completeRoster(sess, points); err != nil {
		return err
	}
	rounds, err := m.store.RoundsForSession(ctx, sessionID)
	if err != nil {
		return err
	}
	number := score.CurrentRound(rounds)
	return m.store.UpsertRoundScores(ctx, sessionID, scoreRows(sess, number, points))
}

// EditRound overwrites the recorded points of an existing round. A partial
// map is allowed: only the listed members change.
func (m *Manager) EditRound(ctx context.Context, sessionID int64, round int, points map[int64]int) error {
	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := m.mutableSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("%w: no scores to update", domain.ErrValidation)
	}
	for playerID := range points {
		if !sess.HasMember(playerID) {
			return fmt.Errorf("%w: player %d is not in this session", domain.ErrValidation, playerID)
		}
	}
	if err := m.requireExistingRound(ctx, sessionID, round); err != nil {
		return err
	}
	return m.store.UpsertRoundScores(ctx, sessionID, scoreRowsFor(sessionID, round, points))
}

// DeleteRound removes a round and renumbers every later round down by one,
// keeping the 1..N sequence contiguous. Later rounds change identity; there
// is no tombstone.
func (m *Manager) DeleteRound(ctx context.Context, sessionID int64, round int) error {
	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := m.mutableSession(ctx, sessionID); err != nil {
		return err
	}
	if err := m.requireExistingRound(ctx, sessionID, round); err != nil {
		return err
	}
	return m.store.CompactRound(ctx, sessionID, round)
}

// Finish moves the session to FINISHED and stamps finishedAt. All round
// mutations fail afterwards.
func (m *Manager) Finish(ctx context.Context, sessionID int64) error {
	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := m.mutableSession(ctx, sessionID); err != nil {
		return err
	}
	return m.store.FinishSession(ctx, sessionID, m.now())
}

// DeleteSession removes the session in any state, cascading rounds and
// membership.
func (m *Manager) DeleteSession(ctx context.Context, sessionID int64) error {
	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := m.store.SessionByID(ctx, sessionID); err != nil {
		return err
	}
	return m.store.DeleteSession(ctx, sessionID)
}

// Detail assembles the denormalized session view from a fresh snapshot.
func (m *Manager) Detail(ctx context.Context, sessionID int64) (domain.SessionDetail, error) {
	sess, err := m.store.SessionByID(ctx, sessionID)
	if err != nil {
		return domain.SessionDetail{}, err
	}
	game, err := m.store.GameByID(ctx, sess.GameID)
	if err != nil {
		return domain.SessionDetail{}, err
	}
	players, err := m.store.PlayersByIDs(ctx, sess.PlayerIDs)
	if err != nil {
		return domain.SessionDetail{}, err
	}
	rounds, err := m.store.RoundsForSession(ctx, sessionID)
	if err != nil {
		return domain.SessionDetail{}, err
	}
	return score.NewSessionDetail(sess, players, rounds, game.LowestScoreWins), nil
}

// SessionsForGame lists the game's sessions, newest first per store order.
func (m *Manager) SessionsForGame(ctx context.Context, gameID int64) ([]domain.Session, error) {
	if _, err := m.store.GameByID(ctx, gameID); err != nil {
		return nil, err
	}
	return m.store.SessionsByGame(ctx, gameID)
}

// StatsForGame aggregates player statistics over the game's finished
// sessions.
func (m *Manager) StatsForGame(ctx context.Context, gameID int64) ([]domain.PlayerStats, error) {
	game, err := m.store.GameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	sessions, err := m.store.SessionsByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	finished := sessions[:0:0]
	for _, sess := range sessions {
		if sess.Status == domain.StatusFinished {
			finished = append(finished, sess)
		}
	}
	if len(finished) == 0 {
		return []domain.PlayerStats{}, nil
	}

	var playerIDs []int64
	seen := make(map[int64]struct{})
	roundsBySession := make(map[int64][]domain.RoundScore, len(finished))
	for _, sess := range finished {
		rounds, err := m.store.RoundsForSession(ctx, sess.ID)
		if err != nil {
			return nil, err
		}
		roundsBySession[sess.ID] = rounds
		for _, id := range sess.PlayerIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			playerIDs = append(playerIDs, id)
		}
	}
	players, err := m.store.PlayersByIDs(ctx, playerIDs)
	if err != nil {
		return nil, err
	}
	return score.PlayerStats(game, finished, roundsBySession, players), nil
}

// mutableSession loads the session and rejects mutations once it finished.
func (m *Manager) mutableSession(ctx context.Context, sessionID int64) (domain.Session, error) {
	sess, err := m.store.SessionByID(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	if !sess.InProgress() {
		return domain.Session{}, fmt.Errorf("%w: session %d is finished", domain.ErrInvalidState, sessionID)
	}
	return sess, nil
}

func (m *Manager) requireExistingRound(ctx context.Context, sessionID int64, round int) error {
	if round < 1 {
		return fmt.Errorf("%w: round numbers start at 1", domain.ErrValidation)
	}
	rounds, err := m.store.RoundsForSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if round >= score.CurrentRound(rounds) {
		return fmt.Errorf("%w: round %d has not been played", domain.ErrNotFound, round)
	}
	return nil
}

func completeRoster(sess domain.Session, points map[int64]int) error {
	for _, id := range sess.PlayerIDs {
		if _, ok := points[id]; !ok {
			return fmt.Errorf("%w: missing score for player %d", domain.ErrValidation, id)
		}
	}
	for playerID := range points {
		if !sess.HasMember(playerID) {
			return fmt.Errorf("%w: player %d is not in this session", domain.ErrValidation, playerID)
		}
	}
	return nil
}

// scoreRows builds one row per roster member in membership order.
func scoreRows(sess domain.Session, round int, points map[int64]int) []domain.RoundScore {
	rows := make([]domain.RoundScore, 0, len(points))
	for _, playerID := range sess.PlayerIDs {
		rows = append(rows, domain.RoundScore{
			SessionID: sess.ID,
			PlayerID:  playerID,
			Round:     round,
			Points:    points[playerID],
		})
	}
	return rows
}

func scoreRowsFor(sessionID int64, round int, points map[int64]int) []domain.RoundScore {
	rows := make([]domain.RoundScore, 0, len(points))
	for playerID, value := range points {
		rows = append(rows, domain.RoundScore{
			SessionID: sessionID,
			PlayerID:  playerID,
			Round:     round,
			Points:    value,
		})
	}
	return rows
}

func boundLabel(game domain.Game) string {
	if game.Unbounded() {
		return "unlimited"
	}
	return fmt.Sprintf("%d", game.MaxPlayers)
}
