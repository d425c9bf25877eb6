package backup

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"scores-keeper/internal/db"
)

type fakeService struct {
	uploads atomic.Int32
	done    chan struct{}
}

func newFakeService() *fakeService {
	return &fakeService{done: make(chan struct{}, 8)}
}

func (f *fakeService) Upload(_ context.Context, account string) (Result, error) {
	f.uploads.Add(1)
	f.done <- struct{}{}
	return Result{Account: account, BackupTime: time.Now().UTC(), Bytes: 128}, nil
}

func (f *fakeService) Restore(_ context.Context, account string) (Result, error) {
	return Result{Account: account}, nil
}

func (f *fakeService) Exists(context.Context, string) (bool, error) {
	return false, nil
}

func note() db.Notification {
	return db.Notification{Table: db.TableRoundScores, Op: "upsert", GameID: 1, SessionID: 1}
}

func TestSyncManagerDebouncesBursts(t *testing.T) {
	notifier := db.NewNotifier()
	service := newFakeService()
	manager := NewSyncManager(service, notifier, "ada@example.com", 30*time.Millisecond)
	manager.Start(context.Background())
	defer manager.Stop()

	notifier.Publish(note())
	notifier.Publish(note())
	notifier.Publish(note())

	select {
	case <-service.done:
	case <-time.After(2 * time.Second):
		t.Fatal("upload never ran")
	}
	// Quiet period with no further uploads.
	time.Sleep(100 * time.Millisecond)
	if got := service.uploads.Load(); got != 1 {
		t.Fatalf("expected one debounced upload, got %d", got)
	}
	if manager.LastSync().IsZero() {
		t.Fatal("expected last sync time to be recorded")
	}
}

func TestSyncManagerUploadsAgainAfterNewChanges(t *testing.T) {
	notifier := db.NewNotifier()
	service := newFakeService()
	manager := NewSyncManager(service, notifier, "ada@example.com", 20*time.Millisecond)
	manager.Start(context.Background())
	defer manager.Stop()

	notifier.Publish(note())
	<-service.done
	notifier.Publish(note())
	select {
	case <-service.done:
	case <-time.After(2 * time.Second):
		t.Fatal("second upload never ran")
	}
	if got := service.uploads.Load(); got != 2 {
		t.Fatalf("expected two uploads, got %d", got)
	}
}

func TestSyncManagerStopDropsPendingUpload(t *testing.T) {
	notifier := db.NewNotifier()
	service := newFakeService()
	manager := NewSyncManager(service, notifier, "ada@example.com", 50*time.Millisecond)
	manager.Start(context.Background())

	notifier.Publish(note())
	manager.Stop()

	time.Sleep(150 * time.Millisecond)
	if got := service.uploads.Load(); got != 0 {
		t.Fatalf("expected pending upload dropped, got %d", got)
	}
}
