package store

import (
	"context"
	"fmt"
)

// PagePermissions returns the full permission table. The access gate caches
// the result; this query is deliberately uncached here.
func (s *Store) PagePermissions(ctx context.Context) ([]PagePermission, error) {
	rows, err := s.pool.Query(ctx, `
SELECT route, admin_access, manager_access, user_access
FROM page_permissions
`)
	if err != nil {
		return nil, fmt.Errorf("querying page permissions: %w", err)
	}
	defer rows.Close()

	var perms []PagePermission
	for rows.Next() {
		var p PagePermission
		if err := rows.Scan(&p.Route, &p.AdminAccess, &p.ManagerAccess, &p.UserAccess); err != nil {
			return nil, fmt.Errorf("scanning page permission: %w", err)
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading page permissions: %w", err)
	}
	return perms, nil
}
