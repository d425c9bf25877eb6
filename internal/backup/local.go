package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Source produces the backup document to upload.
type Source func(ctx context.Context) ([]byte, error)

// Apply installs a previously uploaded backup document.
type Apply func(ctx context.Context, data []byte) error

// LocalService stores backups as files in a directory, one file per account.
// It stands in for a cloud drive client in single-machine deployments and in
// tests.
type LocalService struct {
	dir    string
	source Source
	apply  Apply
}

func NewLocalService(dir string, source Source, apply Apply) *LocalService {
	return &LocalService{dir: dir, source: source, apply: apply}
}

func (s *LocalService) path(account string) string {
	return filepath.Join(s.dir, account+".backup.json")
}

func (s *LocalService) Upload(ctx context.Context, account string) (Result, error) {
	data, err := s.source(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("building backup for %s: %w", account, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating backup dir: %w", err)
	}
	if err := os.WriteFile(s.path(account), data, 0o600); err != nil {
		return Result{}, fmt.Errorf("writing backup for %s: %w", account, err)
	}
	return Result{
		Account:    account,
		BackupTime: time.Now().UTC(),
		Bytes:      int64(len(data)),
	}, nil
}

func (s *LocalService) Restore(ctx context.Context, account string) (Result, error) {
	path := s.path(account)
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("reading backup for %s: %w", account, err)
	}
	if err := s.apply(ctx, data); err != nil {
		return Result{}, fmt.Errorf("applying backup for %s: %w", account, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Account:    account,
		BackupTime: info.ModTime().UTC(),
		Bytes:      info.Size(),
	}, nil
}

func (s *LocalService) Exists(_ context.Context, account string) (bool, error) {
	_, err := os.Stat(s.path(account))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
