package db

import "sync"

// Tables a Notification can refer to.
const (
	TableGames          = "games"
	TablePlayers        = "players"
	TableSessions       = "sessions"
	TableSessionPlayers = "session_players"
	TableRoundScores    = "round_scores"
)

// Notification describes one committed logical mutation. The store publishes
// exactly one notification per operation, never one per row, so subscribers
// see whole operations rather than partial states.
type Notification struct {
	Table     string
	Op        string
	GameID    int64
	SessionID int64
}

// Notifier fans committed-change notifications out to in-process
// subscribers: the live view projector, the backup sync manager, and the
// leaderboard refresh worker.
type Notifier struct {
	mu   sync.Mutex
	subs map[chan Notification]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{
		subs: make(map[chan Notification]struct{}),
	}
}

// Subscribe registers a buffered subscription channel. The returned cancel
// func unsubscribes and closes the channel; it is safe to call twice.
func (n *Notifier) Subscribe(buffer int) (<-chan Notification, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Notification, buffer)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, ch)
			// Closed under the lock so Publish can never send on a
			// closed channel.
			close(ch)
			n.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish delivers the notification to every subscriber without blocking.
// A subscriber with a full buffer misses the notification; that is fine for
// the consumers here, which recompute from the store on every wakeup anyway.
func (n *Notifier) Publish(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs {
		select {
		case ch <- note:
		default:
		}
	}
}
