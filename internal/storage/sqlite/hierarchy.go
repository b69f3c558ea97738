package sqlite

import (
	"context"
	"fmt"

	"github.com/jarombrown/wardsync/internal/types"
)

// ReplaceHierarchy applies the rebuilt hierarchy in one transaction:
// capture the pre-sync snapshot, wipe the derived tables in foreign-key
// order, then insert the fresh rows. Running all three phases in a single
// transaction guarantees a crash mid-run cannot leave the wiped tables
// without the snapshot needed to restore annotations. Returns the number of
// snapshot rows captured.
func (s *SQLiteStorage) ReplaceHierarchy(ctx context.Context, rebuild *types.HierarchyRebuild) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin hierarchy transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	snapCount, err := captureSnapshot(ctx, tx)
	if err != nil {
		return 0, err
	}

	// Children before parents to satisfy foreign keys
	for _, table := range []string{"calling_assignments", "youth_interviews", "callings", "organizations"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return 0, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	orgStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO organizations (id, name, parent_org_id, display_order)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare organization insert: %w", err)
	}
	defer func() { _ = orgStmt.Close() }()
	for _, org := range rebuild.Organizations {
		if _, err := orgStmt.ExecContext(ctx, org.ID, org.Name, nullString(org.ParentOrgID), org.DisplayOrder); err != nil {
			return 0, fmt.Errorf("failed to insert organization %s: %w", org.Name, err)
		}
	}

	callingStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO callings (id, organization_id, title, requires_setting_apart, display_order)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare calling insert: %w", err)
	}
	defer func() { _ = callingStmt.Close() }()
	for _, calling := range rebuild.Callings {
		if _, err := callingStmt.ExecContext(ctx, calling.ID, calling.OrganizationID, calling.Title,
			calling.RequiresSettingApart, calling.DisplayOrder); err != nil {
			return 0, fmt.Errorf("failed to insert calling %q: %w", calling.Title, err)
		}
	}

	assignStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO calling_assignments (calling_id, member_id, is_active,
			assigned_date, sustained_date, set_apart_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare assignment insert: %w", err)
	}
	defer func() { _ = assignStmt.Close() }()
	for _, a := range rebuild.Assignments {
		if _, err := assignStmt.ExecContext(ctx, a.CallingID, a.MemberID, a.IsActive,
			dateString(a.AssignedDate), dateString(a.SustainedDate), dateString(a.SetApartDate)); err != nil {
			return 0, fmt.Errorf("failed to insert assignment for member %s: %w", a.MemberID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit hierarchy rebuild: %w", err)
	}
	return snapCount, nil
}
