package backup

import (
	"context"
	"log"
	"sync"
	"time"

	"scores-keeper/internal/db"
)

// DefaultDebounce is how long the database must stay quiet before an upload
// starts.
const DefaultDebounce = 5 * time.Second

// SyncManager watches store change notifications and uploads a backup after
// each quiet period. Uploads are fire-and-forget: they run on their own
// goroutine and never hold up a mutation.
type SyncManager struct {
	service  Service
	notifier *db.Notifier
	account  string
	debounce time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	stop     func()
	lastSync time.Time
}

func NewSyncManager(service Service, notifier *db.Notifier, account string, debounce time.Duration) *SyncManager {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &SyncManager{
		service:  service,
		notifier: notifier,
		account:  account,
		debounce: debounce,
	}
}

// Start begins observing. Every notification pushes the pending upload back
// by the debounce interval, so a burst of edits becomes one upload.
func (m *SyncManager) Start(ctx context.Context) {
	notes, cancel := m.notifier.Subscribe(64)
	ctx, stopCtx := context.WithCancel(ctx)

	m.mu.Lock()
	m.stop = func() {
		stopCtx()
		cancel()
	}
	m.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				m.cancelPending()
				return
			case _, ok := <-notes:
				if !ok {
					m.cancelPending()
					return
				}
				m.scheduleSync(ctx)
			}
		}
	}()
}

// Stop detaches from the notifier and drops any pending upload. An upload
// already in flight finishes on its own.
func (m *SyncManager) Stop() {
	m.mu.Lock()
	stop := m.stop
	m.stop = nil
	m.mu.Unlock()
	if stop != nil {
		stop()
	}
	m.cancelPending()
}

// LastSync reports when the last successful upload finished.
func (m *SyncManager) LastSync() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSync
}

func (m *SyncManager) scheduleSync(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.debounce, func() {
		m.syncNow(ctx)
	})
}

func (m *SyncManager) cancelPending() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *SyncManager) syncNow(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	result, err := m.service.Upload(ctx, m.account)
	if err != nil {
		log.Printf("backup upload for %s failed: %v", m.account, err)
		return
	}
	m.mu.Lock()
	m.lastSync = result.BackupTime
	m.mu.Unlock()
	log.Printf("backup uploaded for %s (%d bytes)", m.account, result.Bytes)
}
