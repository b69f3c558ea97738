package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jarombrown/wardsync/internal/types"
)

// GetOrganizations returns all organizations in display order.
func (s *SQLiteStorage) GetOrganizations(ctx context.Context) ([]*types.Organization, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, parent_org_id, display_order
		FROM organizations
		ORDER BY display_order, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*types.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		result = append(result, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading organizations: %w", err)
	}
	return result, nil
}

// GetOrganizationByName retrieves an organization by its natural key.
// Returns nil when absent.
func (s *SQLiteStorage) GetOrganizationByName(ctx context.Context, name string) (*types.Organization, error) {
	org, err := scanOrganization(s.db.QueryRowContext(ctx, `
		SELECT id, name, parent_org_id, display_order
		FROM organizations WHERE name = ?
	`, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization %q: %w", name, err)
	}
	return org, nil
}

func scanOrganization(row interface{ Scan(...any) error }) (*types.Organization, error) {
	var org types.Organization
	var parent sql.NullString
	if err := row.Scan(&org.ID, &org.Name, &parent, &org.DisplayOrder); err != nil {
		return nil, err
	}
	org.ParentOrgID = stringValue(parent)
	return &org, nil
}

// GetCallings returns the callings of one organization in display order.
func (s *SQLiteStorage) GetCallings(ctx context.Context, orgID string) ([]*types.Calling, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, organization_id, title, requires_setting_apart, display_order
		FROM callings
		WHERE organization_id = ?
		ORDER BY display_order, title
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query callings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*types.Calling
	for rows.Next() {
		var c types.Calling
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Title,
			&c.RequiresSettingApart, &c.DisplayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan calling: %w", err)
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading callings: %w", err)
	}
	return result, nil
}

// GetActiveAssignments returns all active calling assignments.
func (s *SQLiteStorage) GetActiveAssignments(ctx context.Context) ([]*types.CallingAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, calling_id, member_id, is_active,
		       assigned_date, sustained_date, set_apart_date,
		       expected_release_date, release_notes
		FROM calling_assignments
		WHERE is_active = 1
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*types.CallingAssignment
	for rows.Next() {
		var a types.CallingAssignment
		var assigned, sustained, setApart, expected, notes sql.NullString
		if err := rows.Scan(&a.ID, &a.CallingID, &a.MemberID, &a.IsActive,
			&assigned, &sustained, &setApart, &expected, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.AssignedDate = scanDate(assigned)
		a.SustainedDate = scanDate(sustained)
		a.SetApartDate = scanDate(setApart)
		a.ExpectedReleaseDate = scanDate(expected)
		a.ReleaseNotes = stringValue(notes)
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading assignments: %w", err)
	}
	return result, nil
}
