package backup

import (
	"bytes"
	"context"
	"testing"
)

func TestLocalServiceRoundTrip(t *testing.T) {
	payload := []byte(`{"taken_at":"2026-01-02T15:04:05Z"}`)
	var applied []byte
	service := NewLocalService(t.TempDir(),
		func(context.Context) ([]byte, error) { return payload, nil },
		func(_ context.Context, data []byte) error {
			applied = data
			return nil
		})

	ctx := context.Background()
	exists, err := service.Exists(ctx, "ada")
	if err != nil {
		t.Fatalf("exists before upload: %v", err)
	}
	if exists {
		t.Fatal("expected no backup before first upload")
	}

	result, err := service.Upload(ctx, "ada")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if result.Bytes != int64(len(payload)) {
		t.Fatalf("expected %d uploaded bytes, got %d", len(payload), result.Bytes)
	}

	exists, err = service.Exists(ctx, "ada")
	if err != nil || !exists {
		t.Fatalf("expected backup to exist after upload, got exists=%v err=%v", exists, err)
	}

	if _, err := service.Restore(ctx, "ada"); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !bytes.Equal(applied, payload) {
		t.Fatalf("restore applied %q, want %q", applied, payload)
	}
}

func TestLocalServiceRestoreMissingAccount(t *testing.T) {
	service := NewLocalService(t.TempDir(),
		func(context.Context) ([]byte, error) { return nil, nil },
		func(context.Context, []byte) error { return nil })

	if _, err := service.Restore(context.Background(), "nobody"); err == nil {
		t.Fatal("expected restore of a missing backup to fail")
	}
}

func TestLocalServiceAccountsAreIsolated(t *testing.T) {
	service := NewLocalService(t.TempDir(),
		func(context.Context) ([]byte, error) { return []byte("x"), nil },
		func(context.Context, []byte) error { return nil })

	ctx := context.Background()
	if _, err := service.Upload(ctx, "ada"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	exists, err := service.Exists(ctx, "brin")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("expected no backup for a different account")
	}
}
