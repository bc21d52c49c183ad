package store

import (
	"context"
	"fmt"
	"time"
)

// InsertSecurityEvent appends one audit record.
func (s *Store) InsertSecurityEvent(ctx context.Context, ev SecurityEvent) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO security_events (actor, action, route, detail)
VALUES ($1, $2, $3, $4)
`, ev.Actor, ev.Action, ev.Route, ev.Detail)
	if err != nil {
		return fmt.Errorf("inserting security event: %w", err)
	}
	return nil
}

// PurgeSecurityEventsBefore deletes audit records older than the cutoff and
// returns how many were removed. Run from the maintenance cron.
func (s *Store) PurgeSecurityEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM security_events WHERE created_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purging security events: %w", err)
	}
	return tag.RowsAffected(), nil
}
