package db

import (
	"testing"
	"time"
)

func TestNotifierDeliversToAllSubscribers(t *testing.T) {
	notifier := NewNotifier()
	first, cancelFirst := notifier.Subscribe(1)
	second, cancelSecond := notifier.Subscribe(1)
	defer cancelFirst()
	defer cancelSecond()

	notifier.Publish(Notification{Table: TableSessions, SessionID: 7})

	for name, ch := range map[string]<-chan Notification{"first": first, "second": second} {
		select {
		case note := <-ch:
			if note.SessionID != 7 {
				t.Fatalf("%s: expected session 7, got %+v", name, note)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s: notification not delivered", name)
		}
	}
}

func TestNotifierDropsWhenBufferFull(t *testing.T) {
	notifier := NewNotifier()
	ch, cancel := notifier.Subscribe(1)
	defer cancel()

	notifier.Publish(Notification{SessionID: 1})
	notifier.Publish(Notification{SessionID: 2})

	note := <-ch
	if note.SessionID != 1 {
		t.Fatalf("expected first notification kept, got %+v", note)
	}
	select {
	case extra := <-ch:
		t.Fatalf("expected overflow to be dropped, got %+v", extra)
	default:
	}
}

func TestNotifierCancelClosesChannel(t *testing.T) {
	notifier := NewNotifier()
	ch, cancel := notifier.Subscribe(1)

	cancel()
	cancel() // second call is a no-op

	if _, open := <-ch; open {
		t.Fatal("expected channel closed after cancel")
	}
	// Publishing after cancel must not panic.
	notifier.Publish(Notification{SessionID: 3})
}
