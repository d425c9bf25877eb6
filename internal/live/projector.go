// Package live republishes denormalized views whenever the entity store
// reports a committed change. Each watcher runs on its own goroutine with its
// own subscription, so a slow or departing subscriber never affects others.
package live

import (
	"context"
	"log"

	"scores-keeper/internal/db"
	"scores-keeper/internal/domain"
)

// Loader produces fresh view snapshots from the store. The session manager
// satisfies it.
type Loader interface {
	Detail(ctx context.Context, sessionID int64) (domain.SessionDetail, error)
	StatsForGame(ctx context.Context, gameID int64) ([]domain.PlayerStats, error)
}

type Projector struct {
	loader   Loader
	notifier *db.Notifier
}

func New(loader Loader, notifier *db.Notifier) *Projector {
	return &Projector{loader: loader, notifier: notifier}
}

// WatchSession emits the session's detail view immediately and again after
// every relevant committed change. Bursts of notifications coalesce into one
// recomputation. The channel carries only the latest value and closes when
// ctx is cancelled or the session disappears.
func (p *Projector) WatchSession(ctx context.Context, sessionID int64) (<-chan domain.SessionDetail, error) {
	detail, err := p.loader.Detail(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	gameID := detail.Session.GameID
	notes, cancel := p.notifier.Subscribe(32)
	out := make(chan domain.SessionDetail, 1)

	go func() {
		defer cancel()
		defer close(out)
		pushLatest(out, detail)
		for {
			select {
			case <-ctx.Done():
				return
			case note, ok := <-notes:
				if !ok {
					return
				}
				if !sessionRelevant(note, sessionID, gameID) {
					continue
				}
				drain(notes)
				detail, err := p.loader.Detail(ctx, sessionID)
				if err != nil {
					if domain.IsNotFound(err) {
						return
					}
					if ctx.Err() != nil {
						return
					}
					log.Printf("session %d view recompute failed: %v", sessionID, err)
					continue
				}
				pushLatest(out, detail)
			}
		}
	}()
	return out, nil
}

// WatchStats is WatchSession's counterpart for a game's player statistics.
func (p *Projector) WatchStats(ctx context.Context, gameID int64) (<-chan []domain.PlayerStats, error) {
	stats, err := p.loader.StatsForGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	notes, cancel := p.notifier.Subscribe(32)
	out := make(chan []domain.PlayerStats, 1)

	go func() {
		defer cancel()
		defer close(out)
		pushLatest(out, stats)
		for {
			select {
			case <-ctx.Done():
				return
			case note, ok := <-notes:
				if !ok {
					return
				}
				if !statsRelevant(note, gameID) {
					continue
				}
				drain(notes)
				stats, err := p.loader.StatsForGame(ctx, gameID)
				if err != nil {
					if domain.IsNotFound(err) {
						return
					}
					if ctx.Err() != nil {
						return
					}
					log.Printf("game %d stats recompute failed: %v", gameID, err)
					continue
				}
				pushLatest(out, stats)
			}
		}
	}()
	return out, nil
}

// sessionRelevant filters notifications down to the rows that can change a
// session detail view: the session's own rows, its game, and player profiles
// (roster names and colors are denormalized into the view).
func sessionRelevant(note db.Notification, sessionID, gameID int64) bool {
	switch note.Table {
	case db.TableSessions, db.TableRoundScores, db.TableSessionPlayers:
		return note.SessionID == sessionID
	case db.TableGames:
		return note.GameID == gameID
	case db.TablePlayers:
		return true
	default:
		return false
	}
}

func statsRelevant(note db.Notification, gameID int64) bool {
	switch note.Table {
	case db.TableSessions, db.TableRoundScores, db.TableSessionPlayers, db.TableGames:
		return note.GameID == gameID
	case db.TablePlayers:
		return true
	default:
		return false
	}
}

// drain empties pending notifications so a burst of writes becomes a single
// recomputation over the final state.
func drain(notes <-chan db.Notification) {
	for {
		select {
		case <-notes:
		default:
			return
		}
	}
}

// pushLatest delivers value on a buffer-1 channel, replacing an unread older
// value instead of blocking. Single producer per channel.
func pushLatest[T any](out chan T, value T) {
	for {
		select {
		case out <- value:
			return
		default:
			select {
			case <-out:
			default:
			}
		}
	}
}
