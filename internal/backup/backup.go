// Package backup defines the cloud backup contract the core consumes and the
// debounced trigger that drives it. The actual drive client lives outside
// this module; the core only decides when a backup is due.
package backup

import (
	"context"
	"time"
)

// Result describes a completed upload or restore.
type Result struct {
	Account    string    `json:"account"`
	BackupTime time.Time `json:"backup_time"`
	Bytes      int64     `json:"bytes"`
}

// Service is the external backup collaborator.
type Service interface {
	Upload(ctx context.Context, account string) (Result, error)
	Restore(ctx context.Context, account string) (Result, error)
	Exists(ctx context.Context, account string) (bool, error)
}
