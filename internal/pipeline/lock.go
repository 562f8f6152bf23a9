package pipeline

import (
	"context"
	"database/sql"
	"time"

	"github.com/crewlab/peereval/internal/db"
)

// DBLocker implements Locker over the run_lock table.
type DBLocker struct {
	DB  *sql.DB
	TTL time.Duration
}

func (l *DBLocker) Acquire(ctx context.Context, holder string) error {
	return db.AcquireRunLock(ctx, l.DB, holder, l.TTL)
}

func (l *DBLocker) Release(ctx context.Context, holder string) error {
	return db.ReleaseRunLock(ctx, l.DB, holder)
}
