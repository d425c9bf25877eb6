package live

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"scores-keeper/internal/db"
	"scores-keeper/internal/domain"
	"scores-keeper/internal/session"
	"scores-keeper/internal/session/sessiontest"
)

// gatedLoader counts snapshot loads and can hold one load open so tests can
// queue notifications behind it.
type gatedLoader struct {
	inner Loader
	calls atomic.Int32

	mu      sync.Mutex
	gated   bool
	entered chan struct{}
	release chan struct{}
}

func newGatedLoader(inner Loader) *gatedLoader {
	return &gatedLoader{
		inner:   inner,
		entered: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
}

func (l *gatedLoader) gate() {
	l.mu.Lock()
	l.gated = true
	l.mu.Unlock()
}

func (l *gatedLoader) open() {
	l.mu.Lock()
	if l.gated {
		l.gated = false
		close(l.release)
	}
	l.mu.Unlock()
}

func (l *gatedLoader) wait() {
	l.mu.Lock()
	gated := l.gated
	release := l.release
	l.mu.Unlock()
	if gated {
		l.entered <- struct{}{}
		<-release
	}
}

func (l *gatedLoader) Detail(ctx context.Context, sessionID int64) (domain.SessionDetail, error) {
	l.calls.Add(1)
	l.wait()
	return l.inner.Detail(ctx, sessionID)
}

func (l *gatedLoader) StatsForGame(ctx context.Context, gameID int64) ([]domain.PlayerStats, error) {
	l.calls.Add(1)
	l.wait()
	return l.inner.StatsForGame(ctx, gameID)
}

func newWatchFixture(t *testing.T) (*session.Manager, *db.Notifier, domain.Session) {
	t.Helper()
	store := sessiontest.NewMemStore()
	store.AddGame(domain.Game{ID: 1, Name: "Tarot", MinPlayers: 2, MaxPlayers: 5})
	store.AddPlayer(domain.Player{ID: 1, Name: "Ada"})
	store.AddPlayer(domain.Player{ID: 2, Name: "Bob"})
	manager := session.NewManager(store)
	sess, err := manager.CreateSession(context.Background(), 1, []int64{1, 2})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return manager, db.NewNotifier(), sess
}

func roundNote(sessionID int64) db.Notification {
	return db.Notification{Table: db.TableRoundScores, Op: "upsert", GameID: 1, SessionID: sessionID}
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case value, ok := <-ch:
		if !ok {
			t.Fatal("channel closed unexpectedly")
		}
		return value
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published value")
		panic("unreachable")
	}
}

func TestWatchSessionEmitsInitialValue(t *testing.T) {
	manager, notifier, sess := newWatchFixture(t)
	projector := New(manager, notifier)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	ch, err := projector.WatchSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	detail := receive(t, ch)
	if detail.Session.ID != sess.ID || detail.CurrentRound != 1 {
		t.Fatalf("unexpected initial detail: %+v", detail)
	}
}

func TestWatchSessionUnknownSession(t *testing.T) {
	manager, notifier, _ := newWatchFixture(t)
	projector := New(manager, notifier)

	if _, err := projector.WatchSession(context.Background(), 99); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWatchSessionReflectsWrite(t *testing.T) {
	manager, notifier, sess := newWatchFixture(t)
	projector := New(manager, notifier)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	ch, err := projector.WatchSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	receive(t, ch)

	if err := manager.SubmitRound(ctx, sess.ID, map[int64]int{1: 5, 2: 3}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	notifier.Publish(roundNote(sess.ID))

	detail := receive(t, ch)
	if detail.Totals[1] != 5 || detail.Totals[2] != 3 {
		t.Fatalf("expected write reflected in next value, got %v", detail.Totals)
	}
	if detail.CurrentRound != 2 {
		t.Fatalf("expected current round 2, got %d", detail.CurrentRound)
	}
}

func TestWatchSessionIgnoresOtherSessions(t *testing.T) {
	manager, notifier, sess := newWatchFixture(t)
	loader := newGatedLoader(manager)
	projector := New(loader, notifier)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	ch, err := projector.WatchSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	receive(t, ch)
	before := loader.calls.Load()

	notifier.Publish(roundNote(sess.ID + 100))
	time.Sleep(50 * time.Millisecond)

	if got := loader.calls.Load(); got != before {
		t.Fatalf("expected no recompute for foreign session, got %d extra", got-before)
	}
}

func TestWatchSessionCoalescesBursts(t *testing.T) {
	manager, notifier, sess := newWatchFixture(t)
	loader := newGatedLoader(manager)
	projector := New(loader, notifier)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	ch, err := projector.WatchSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	receive(t, ch) // initial value, load #1

	// Hold the next recompute open and queue more notifications behind it.
	loader.gate()
	notifier.Publish(roundNote(sess.ID))
	<-loader.entered // load #2 in flight
	notifier.Publish(roundNote(sess.ID))
	notifier.Publish(roundNote(sess.ID))
	notifier.Publish(roundNote(sess.ID))
	loader.open()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if loader.calls.Load() >= 3 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	// The three queued notifications drain into one recompute: load #3.
	if got := loader.calls.Load(); got != 3 {
		t.Fatalf("expected 3 loads (initial + gated + coalesced), got %d", got)
	}
}

func TestWatchSessionClosesWhenSessionDeleted(t *testing.T) {
	manager, notifier, sess := newWatchFixture(t)
	projector := New(manager, notifier)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	ch, err := projector.WatchSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	receive(t, ch)

	if err := manager.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	notifier.Publish(db.Notification{Table: db.TableSessions, Op: "delete", GameID: 1, SessionID: sess.ID})

	select {
	case _, open := <-ch:
		if open {
			t.Fatal("expected channel closed after session deletion")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close")
	}
}

func TestWatchSessionStopsOnCancel(t *testing.T) {
	manager, notifier, sess := newWatchFixture(t)
	projector := New(manager, notifier)
	ctx, stop := context.WithCancel(context.Background())

	ch, err := projector.WatchSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	receive(t, ch)

	stop()
	select {
	case _, open := <-ch:
		if open {
			t.Fatal("expected channel closed after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close after cancel")
	}
}

func TestWatchStatsReflectsFinishedSession(t *testing.T) {
	manager, notifier, sess := newWatchFixture(t)
	projector := New(manager, notifier)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	ch, err := projector.WatchStats(ctx, 1)
	if err != nil {
		t.Fatalf("watch stats: %v", err)
	}
	initial := receive(t, ch)
	if len(initial) != 0 {
		t.Fatalf("expected empty initial stats, got %+v", initial)
	}

	if err := manager.SubmitRound(ctx, sess.ID, map[int64]int{1: 9, 2: 2}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := manager.Finish(ctx, sess.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}
	notifier.Publish(db.Notification{Table: db.TableSessions, Op: "update", GameID: 1, SessionID: sess.ID})

	stats := receive(t, ch)
	if len(stats) != 2 {
		t.Fatalf("expected stats for both players, got %+v", stats)
	}
	if stats[0].Player.ID != 1 || stats[0].GamesWon != 1 {
		t.Fatalf("expected Ada leading with one win, got %+v", stats[0])
	}
}
