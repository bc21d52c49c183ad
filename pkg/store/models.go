// Package store persists meetings, page permissions, and security events in
// PostgreSQL. All instants are stored in UTC; conversion to display zones
// happens in pkg/schedule.
package store

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/dealdesk/dealdesk/pkg/grid"
)

// Meeting is the persisted scheduling record. Description, JoinURL, LeadID
// and ContactID are nullable in the table and on the wire.
type Meeting struct {
	ID          uuid.UUID   `json:"id"`
	Subject     string      `json:"subject"`
	Description *string     `json:"description"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     time.Time   `json:"end_time"`
	JoinURL     *string     `json:"join_url"`
	LeadID      *string     `json:"lead_id"`
	ContactID   *string     `json:"contact_id"`
	Status      grid.Status `json:"status"`
	CreatedBy   string      `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
}

var (
	errEndNotAfterStart = errors.New("end time must be after start time")
	errBothLinks        = errors.New("meeting may link a lead or a contact, not both")
)

// Validate checks the invariants the table itself does not enforce.
func (m *Meeting) Validate() error {
	if m.Subject == "" {
		return errors.New("subject is required")
	}
	if !m.EndTime.After(m.StartTime) {
		return errEndNotAfterStart
	}
	if m.LeadID != nil && m.ContactID != nil {
		return errBothLinks
	}
	switch m.Status {
	case grid.StatusScheduled, grid.StatusCancelled:
	default:
		return fmt.Errorf("unknown status %q", m.Status)
	}
	return nil
}

// Completed reports the derived display state: a scheduled meeting whose end
// has passed. Never stored.
func (m *Meeting) Completed(now time.Time) bool {
	return m.Status == grid.StatusScheduled && m.EndTime.Before(now)
}

// DurationMinutes is the exact stored duration, rounded to whole minutes.
// The edit form buckets this to 30 or 60 (schedule.BucketDuration); this
// accessor keeps the true value reachable.
func (m *Meeting) DurationMinutes() int {
	return int(math.Round(m.EndTime.Sub(m.StartTime).Minutes()))
}

// PagePermission is one row of the page permission table consumed by the
// access gate.
type PagePermission struct {
	Route         string `json:"route"`
	AdminAccess   bool   `json:"admin_access"`
	ManagerAccess bool   `json:"manager_access"`
	UserAccess    bool   `json:"user_access"`
}

// SecurityEvent is an audit record of a security-relevant action.
type SecurityEvent struct {
	ID        int64     `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Route     string    `json:"route"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}
