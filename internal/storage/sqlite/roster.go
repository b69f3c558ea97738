package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// EnsureOrganization returns the id of the named organization, creating it
// when absent. The display order is rewritten even for existing rows so seed
// edits take effect without deleting anything.
func (s *SQLiteStorage) EnsureOrganization(ctx context.Context, name string, displayOrder int) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM organizations WHERE name = ? LIMIT 1`, name).Scan(&id)
	if err == nil {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE organizations SET display_order = ? WHERE id = ?`, displayOrder, id); err != nil {
			return "", fmt.Errorf("failed to update organization %q display order: %w", name, err)
		}
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to look up organization %q: %w", name, err)
	}

	id = uuid.NewString()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO organizations (id, name, display_order) VALUES (?, ?, ?)
	`, id, name, displayOrder); err != nil {
		return "", fmt.Errorf("failed to create organization %q: %w", name, err)
	}
	return id, nil
}

// EnsureCalling returns the id of the (organization, title) calling, creating
// it when absent and refreshing its display order when present.
func (s *SQLiteStorage) EnsureCalling(ctx context.Context, orgID, title string, displayOrder int) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM callings WHERE organization_id = ? AND title = ? LIMIT 1`,
		orgID, title).Scan(&id)
	if err == nil {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE callings SET display_order = ? WHERE id = ?`, displayOrder, id); err != nil {
			return "", fmt.Errorf("failed to update calling %q display order: %w", title, err)
		}
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to look up calling %q: %w", title, err)
	}

	id = uuid.NewString()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO callings (id, organization_id, title, requires_setting_apart, display_order)
		VALUES (?, ?, ?, 1, ?)
	`, id, orgID, title, displayOrder); err != nil {
		return "", fmt.Errorf("failed to create calling %q: %w", title, err)
	}
	return id, nil
}
