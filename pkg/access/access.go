// Package access decides whether the active role may view a page route.
// Decisions consult a single-slot in-memory copy of the permission table,
// refreshed from storage when empty or stale.
//
// The gate fails open: a route with no permission record is allowed, and a
// failed permission fetch allows everything. This trades strict enforcement
// for availability and is a deliberate, signed-off policy; every fail-open
// on a fetch error is reported to the audit sink so it stays visible.
package access

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultRoute is the route name the root path normalizes to.
const DefaultRoute = "dashboard"

// DefaultTTL is how long a fetched permission table stays fresh.
const DefaultTTL = 5 * time.Minute

// Role is the session's access level.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// Permission is one row of the page permission table.
type Permission struct {
	Route         string `json:"route"`
	AdminAccess   bool   `json:"admin_access"`
	ManagerAccess bool   `json:"manager_access"`
	UserAccess    bool   `json:"user_access"`
}

// allows selects the role-specific flag. An unrecognized role gets the
// least-privileged flag.
func (p Permission) allows(role Role) bool {
	switch role {
	case RoleAdmin:
		return p.AdminAccess
	case RoleManager:
		return p.ManagerAccess
	default:
		return p.UserAccess
	}
}

// NormalizeRoute maps a request path to a permission-table route name: the
// root path becomes DefaultRoute and any trailing slash is stripped.
// Idempotent.
func NormalizeRoute(path string) string {
	if path == "/" || path == "" {
		return DefaultRoute
	}
	return strings.TrimSuffix(path, "/")
}

// Fetcher loads the full permission table from storage.
type Fetcher func(ctx context.Context) ([]Permission, error)

// AuditSink receives security-relevant gate outcomes. Implementations must
// not fail the caller.
type AuditSink interface {
	SecurityEvent(ctx context.Context, action, route, detail string)
}

// Gate caches the permission table in a single slot with a TTL and answers
// per-route access checks. Safe for concurrent use.
type Gate struct {
	fetch     Fetcher
	logger    *slog.Logger
	audit     AuditSink
	now       func() time.Time
	ttl       time.Duration
	mu        sync.Mutex
	perms     map[string]Permission
	fetchedAt time.Time
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithTTL overrides the cache time-to-live.
func WithTTL(ttl time.Duration) GateOption {
	return func(g *Gate) { g.ttl = ttl }
}

// WithClock injects the time source, for TTL tests.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

// WithAudit wires a sink for fail-open and denial events.
func WithAudit(sink AuditSink) GateOption {
	return func(g *Gate) { g.audit = sink }
}

// NewGate builds a gate over the given permission fetcher.
func NewGate(fetch Fetcher, logger *slog.Logger, opts ...GateOption) *Gate {
	g := &Gate{
		fetch:  fetch,
		logger: logger,
		now:    time.Now,
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Allow reports whether the role may view the route. The route is normalized
// before lookup. Allow never returns an error: a permission fetch failure
// fails open.
func (g *Gate) Allow(ctx context.Context, role Role, route string) bool {
	route = NormalizeRoute(route)

	perms, err := g.table(ctx)
	if err != nil {
		g.logger.Warn("permission fetch failed, failing open", "route", route, "error", err)
		if g.audit != nil {
			g.audit.SecurityEvent(ctx, "access.fail_open", route, err.Error())
		}
		return true
	}

	p, ok := perms[route]
	if !ok {
		// No record means the page is unrestricted.
		return true
	}
	allowed := p.allows(role)
	if !allowed {
		g.logger.Info("access denied", "route", route, "role", role)
		if g.audit != nil {
			g.audit.SecurityEvent(ctx, "access.denied", route, "role="+string(role))
		}
	}
	return allowed
}

// Invalidate discards the cached table; the next check fetches fresh.
func (g *Gate) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.perms = nil
	g.fetchedAt = time.Time{}
}

// Refresh fetches the table unconditionally, replacing the cached copy.
// Used by the maintenance job to keep checks on the hot path cache-warm.
func (g *Gate) Refresh(ctx context.Context) error {
	rows, err := g.fetch(ctx)
	if err != nil {
		return err
	}
	g.store(rows)
	return nil
}

func (g *Gate) table(ctx context.Context) (map[string]Permission, error) {
	g.mu.Lock()
	if g.perms != nil && g.now().Sub(g.fetchedAt) <= g.ttl {
		perms := g.perms
		g.mu.Unlock()
		return perms, nil
	}
	g.mu.Unlock()

	// Fetch outside the lock; concurrent misses may both fetch and the last
	// write wins, which is fine for an idempotent read-through cache.
	rows, err := g.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return g.store(rows), nil
}

func (g *Gate) store(rows []Permission) map[string]Permission {
	perms := make(map[string]Permission, len(rows))
	for _, p := range rows {
		perms[NormalizeRoute(p.Route)] = p
	}
	g.mu.Lock()
	g.perms = perms
	g.fetchedAt = g.now()
	g.mu.Unlock()
	return perms
}
