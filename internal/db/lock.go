package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrRunInProgress is returned when another run currently holds the lock.
var ErrRunInProgress = errors.New("a pipeline run is already in progress")

// AcquireRunLock claims the single-row advisory lock used to serialize
// report writes. A lock older than ttl is treated as abandoned and may be
// reclaimed.
func AcquireRunLock(ctx context.Context, dbh *sql.DB, holder string, ttl time.Duration) error {
	tx, err := dbh.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var curHolder string
	var claimedAt int64
	err = tx.QueryRowContext(ctx, `SELECT holder, claimed_at FROM run_lock WHERE id=1`).
		Scan(&curHolder, &claimedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_lock (id, holder, claimed_at) VALUES (1, $1, $2)`,
			holder, time.Now().Unix()); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if time.Since(time.Unix(claimedAt, 0)) < ttl {
			return ErrRunInProgress
		}
		// stale claim from a run that never released
		if _, err := tx.ExecContext(ctx,
			`UPDATE run_lock SET holder=$1, claimed_at=$2 WHERE id=1`,
			holder, time.Now().Unix()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReleaseRunLock drops the lock if this holder still owns it.
func ReleaseRunLock(ctx context.Context, dbh *sql.DB, holder string) error {
	_, err := dbh.ExecContext(ctx, `DELETE FROM run_lock WHERE id=1 AND holder=$1`, holder)
	return err
}
