package leaderboard

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"scores-keeper/internal/db"
	"scores-keeper/internal/domain"
	"scores-keeper/internal/session"
	"scores-keeper/internal/session/sessiontest"
)

type fakeSink struct {
	mu      sync.Mutex
	updates []int64
	stats   map[int64][]domain.PlayerStats
	done    chan struct{}
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		stats: make(map[int64][]domain.PlayerStats),
		done:  make(chan struct{}, 8),
	}
}

func (f *fakeSink) Update(_ context.Context, gameID int64, stats []domain.PlayerStats) error {
	f.mu.Lock()
	f.updates = append(f.updates, gameID)
	f.stats[gameID] = stats
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func (f *fakeSink) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func TestWorkerRefreshesStandingsOnSessionChange(t *testing.T) {
	store := sessiontest.NewMemStore()
	store.AddGame(domain.Game{ID: 1, Name: "Uno", MinPlayers: 2, MaxPlayers: 0})
	store.AddPlayer(domain.Player{ID: 1, Name: "Ada"})
	store.AddPlayer(domain.Player{ID: 2, Name: "Bob"})
	manager := session.NewManager(store)
	notifier := db.NewNotifier()
	sink := newFakeSink()
	worker := NewWorker(sink, manager, notifier, slog.Default())

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go worker.Run(ctx)
	time.Sleep(20 * time.Millisecond) // let the worker subscribe

	sess, err := manager.CreateSession(ctx, 1, []int64{1, 2})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := manager.SubmitRound(ctx, sess.ID, map[int64]int{1: 7, 2: 2}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := manager.Finish(ctx, sess.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}
	notifier.Publish(db.Notification{Table: db.TableSessions, Op: "update", GameID: 1, SessionID: sess.ID})

	select {
	case <-sink.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never refreshed standings")
	}
	sink.mu.Lock()
	stats := sink.stats[1]
	sink.mu.Unlock()
	if len(stats) != 2 || stats[0].Player.ID != 1 || stats[0].GamesWon != 1 {
		t.Fatalf("unexpected standings: %+v", stats)
	}
}

func TestWorkerIgnoresUnrelatedTables(t *testing.T) {
	store := sessiontest.NewMemStore()
	store.AddGame(domain.Game{ID: 1, Name: "Uno", MinPlayers: 2})
	manager := session.NewManager(store)
	notifier := db.NewNotifier()
	sink := newFakeSink()
	worker := NewWorker(sink, manager, notifier, slog.Default())

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go worker.Run(ctx)
	time.Sleep(20 * time.Millisecond)

	notifier.Publish(db.Notification{Table: db.TablePlayers, Op: "update"})
	notifier.Publish(db.Notification{Table: db.TableGames, Op: "update", GameID: 1})

	time.Sleep(50 * time.Millisecond)
	if got := sink.updateCount(); got != 0 {
		t.Fatalf("expected no refresh for unrelated changes, got %d", got)
	}
}
