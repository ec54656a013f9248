package pg

import (
	"context"
	"fmt"

	"github.com/itchan-dev/postmove/shared/domain"
)

// GetCategoriesWithPermissions returns the allowed email domains of every
// restricted category. Public categories are absent from the map.
func (s *Storage) GetCategoriesWithPermissions(ctx context.Context) (map[domain.CategoryId][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, allowed_email_domain
		FROM category_permissions
		ORDER BY category_id, allowed_email_domain
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category permissions: %w", err)
	}
	defer rows.Close()

	permissions := make(map[domain.CategoryId][]string)
	for rows.Next() {
		var category domain.CategoryId
		var allowedDomain string
		if err := rows.Scan(&category, &allowedDomain); err != nil {
			return nil, fmt.Errorf("failed to scan category permission row: %w", err)
		}
		permissions[category] = append(permissions[category], allowedDomain)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return permissions, nil
}
