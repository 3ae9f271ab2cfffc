package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// dedupStore implements dedup.Store backed by SQLite. Rows older than the
// lifetime count as unseen even before the purge job removes them.
type dedupStore struct {
	db       *sql.DB
	lifetime time.Duration
}

// Seen implements dedup.Store.
func (s *dedupStore) Seen(ctx context.Context, id string) (bool, error) {
	cutoff := time.Now().Add(-s.lifetime).Unix()

	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM seen_updates WHERE update_id = ? AND seen_at >= ?",
		id, cutoff,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: query seen: %w", err)
	}
	return n > 0, nil
}

// MarkSeen implements dedup.Store.
func (s *dedupStore) MarkSeen(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO seen_updates (update_id, seen_at) VALUES (?, ?)",
		id, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: mark seen: %w", err)
	}
	return nil
}

// purgeExpired deletes rows older than the lifetime and returns the count.
func (s *dedupStore) purgeExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.lifetime).Unix()

	res, err := s.db.ExecContext(ctx, "DELETE FROM seen_updates WHERE seen_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("sqlite: purge expired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: purge rows affected: %w", err)
	}
	return n, nil
}
