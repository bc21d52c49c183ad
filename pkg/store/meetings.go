package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a meeting id does not exist.
var ErrNotFound = errors.New("meeting not found")

const meetingColumns = `id, subject, description, start_time, end_time, join_url, lead_id, contact_id, status, created_by, created_at`

func scanMeeting(row pgx.Row) (Meeting, error) {
	var m Meeting
	err := row.Scan(
		&m.ID, &m.Subject, &m.Description,
		&m.StartTime, &m.EndTime,
		&m.JoinURL, &m.LeadID, &m.ContactID,
		&m.Status, &m.CreatedBy, &m.CreatedAt,
	)
	return m, err
}

// CreateMeeting validates and inserts a meeting.
func (s *Store) CreateMeeting(ctx context.Context, m *Meeting) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO meetings (id, subject, description, start_time, end_time, join_url, lead_id, contact_id, status, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`, m.ID, m.Subject, m.Description, m.StartTime.UTC(), m.EndTime.UTC(),
		m.JoinURL, m.LeadID, m.ContactID, m.Status, m.CreatedBy)
	if err != nil {
		return fmt.Errorf("inserting meeting: %w", err)
	}
	s.days.clear()
	return nil
}

// UpdateMeeting validates and rewrites an existing meeting.
func (s *Store) UpdateMeeting(ctx context.Context, m *Meeting) error {
	if err := m.Validate(); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
UPDATE meetings
SET subject = $2, description = $3, start_time = $4, end_time = $5,
    join_url = $6, lead_id = $7, contact_id = $8, status = $9
WHERE id = $1
`, m.ID, m.Subject, m.Description, m.StartTime.UTC(), m.EndTime.UTC(),
		m.JoinURL, m.LeadID, m.ContactID, m.Status)
	if err != nil {
		return fmt.Errorf("updating meeting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.days.clear()
	return nil
}

// Meeting fetches one meeting by id.
func (s *Store) Meeting(ctx context.Context, id uuid.UUID) (Meeting, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, id)
	m, err := scanMeeting(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Meeting{}, ErrNotFound
	}
	if err != nil {
		return Meeting{}, fmt.Errorf("fetching meeting: %w", err)
	}
	return m, nil
}

// DeleteMeeting removes one meeting.
func (s *Store) DeleteMeeting(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting meeting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.days.clear()
	return nil
}

// DeleteMeetings removes a batch of meetings and returns how many existed.
func (s *Store) DeleteMeetings(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM meetings WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("batch deleting meetings: %w", err)
	}
	s.days.clear()
	return tag.RowsAffected(), nil
}

// MeetingsOn returns meetings starting within the calendar day in the given
// location, ordered by start time. Served from the day cache when warm.
func (s *Store) MeetingsOn(ctx context.Context, day time.Time, loc *time.Location) ([]Meeting, error) {
	startOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	endOfDay := startOfDay.Add(24 * time.Hour)

	key := startOfDay.UTC().Format(time.RFC3339)
	if meetings, ok := s.days.get(key); ok {
		return meetings, nil
	}

	meetings, err := s.meetingsBetween(ctx, startOfDay, endOfDay)
	if err != nil {
		return nil, err
	}
	s.days.set(key, meetings)
	return meetings, nil
}

// UpcomingMeetings returns up to limit meetings starting at or after now.
func (s *Store) UpcomingMeetings(ctx context.Context, now time.Time, limit int) ([]Meeting, error) {
	rows, err := s.pool.Query(ctx, `
SELECT `+meetingColumns+`
FROM meetings
WHERE start_time >= $1
ORDER BY start_time
LIMIT $2
`, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("querying upcoming meetings: %w", err)
	}
	defer rows.Close()
	return collectMeetings(rows)
}

func (s *Store) meetingsBetween(ctx context.Context, from, to time.Time) ([]Meeting, error) {
	rows, err := s.pool.Query(ctx, `
SELECT `+meetingColumns+`
FROM meetings
WHERE start_time >= $1
  AND start_time <  $2
ORDER BY start_time
`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("querying meetings: %w", err)
	}
	defer rows.Close()
	return collectMeetings(rows)
}

func collectMeetings(rows pgx.Rows) ([]Meeting, error) {
	var meetings []Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning meeting: %w", err)
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading meetings: %w", err)
	}
	return meetings, nil
}
