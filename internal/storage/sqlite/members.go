package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jarombrown/wardsync/internal/types"
)

// UpsertHousehold inserts or updates a household keyed on its external UUID.
func (s *SQLiteStorage) UpsertHousehold(ctx context.Context, h *types.Household) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO households (id, household_name, address)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			household_name = excluded.household_name,
			address = excluded.address
	`, h.ID, h.Name, nullString(h.Address))
	if err != nil {
		return fmt.Errorf("failed to upsert household %s: %w", h.ID, err)
	}
	return nil
}

// GetHousehold retrieves a household by id. Returns nil when absent.
func (s *SQLiteStorage) GetHousehold(ctx context.Context, id string) (*types.Household, error) {
	var h types.Household
	var address sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, household_name, address FROM households WHERE id = ?
	`, id).Scan(&h.ID, &h.Name, &address)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get household %s: %w", id, err)
	}
	h.Address = stringValue(address)
	return &h, nil
}

const memberColumns = `id, household_id, first_name, last_name, email, phone, gender, age, is_active, church_id`

func scanMember(row interface{ Scan(...any) error }) (*types.Member, error) {
	var m types.Member
	var householdID, email, phone, gender sql.NullString
	var age sql.NullInt64
	var churchID sql.NullInt64
	err := row.Scan(&m.ID, &householdID, &m.FirstName, &m.LastName,
		&email, &phone, &gender, &age, &m.IsActive, &churchID)
	if err != nil {
		return nil, err
	}
	m.HouseholdID = stringValue(householdID)
	m.Email = stringValue(email)
	m.Phone = stringValue(phone)
	m.Gender = stringValue(gender)
	if age.Valid {
		n := int(age.Int64)
		m.Age = &n
	}
	m.ChurchID = int64Ptr(churchID)
	return &m, nil
}

// GetMember retrieves a member by local id. Returns nil when absent.
func (s *SQLiteStorage) GetMember(ctx context.Context, id string) (*types.Member, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member %s: %w", id, err)
	}
	return m, nil
}

// GetMemberByChurchID retrieves a member by the external-stable numeric id.
// Returns nil when absent.
func (s *SQLiteStorage) GetMemberByChurchID(ctx context.Context, churchID int64) (*types.Member, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE church_id = ?`, churchID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member by church id %d: %w", churchID, err)
	}
	return m, nil
}

// FindUnlinkedMemberByName finds a member by case-insensitive name match,
// restricted to rows with no church id. The restriction prevents a record
// that already belongs to someone else from being clobbered with another
// person's external id.
func (s *SQLiteStorage) FindUnlinkedMemberByName(ctx context.Context, firstName, lastName string) (*types.Member, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+` FROM members
		WHERE lower(first_name) = lower(?)
		  AND lower(last_name) = lower(?)
		  AND church_id IS NULL
		LIMIT 1
	`, firstName, lastName))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find member by name: %w", err)
	}
	return m, nil
}

// InsertMember inserts a new member row.
func (s *SQLiteStorage) InsertMember(ctx context.Context, m *types.Member) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO members (id, household_id, first_name, last_name,
			email, phone, gender, age, is_active, church_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, nullString(m.HouseholdID), m.FirstName, m.LastName,
		nullString(m.Email), nullString(m.Phone), nullString(m.Gender),
		nullIntPtr(m.Age), m.IsActive, nullInt64(m.ChurchID))
	if err != nil {
		return fmt.Errorf("failed to insert member %s: %w", m.ID, err)
	}
	return nil
}

// UpdateMemberFromSync overwrites the sync-owned fields of an existing row.
// Gender and age keep their current value when the sync supplies nothing;
// church_id is never cleared once set.
func (s *SQLiteStorage) UpdateMemberFromSync(ctx context.Context, m *types.Member) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE members SET
			household_id = ?,
			first_name = ?,
			last_name = ?,
			email = ?,
			phone = ?,
			gender = COALESCE(?, gender),
			age = COALESCE(?, age),
			is_active = ?,
			church_id = COALESCE(?, church_id),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, nullString(m.HouseholdID), m.FirstName, m.LastName,
		nullString(m.Email), nullString(m.Phone), nullString(m.Gender),
		nullIntPtr(m.Age), m.IsActive, nullInt64(m.ChurchID), m.ID)
	if err != nil {
		return fmt.Errorf("failed to update member %s: %w", m.ID, err)
	}
	return nil
}

// BackfillMember merges externally supplied fields onto a name-matched row,
// preferring values the row already has. The church id is the exception: it
// is the point of the backfill and is always written.
func (s *SQLiteStorage) BackfillMember(ctx context.Context, id string, m *types.Member) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE members SET
			church_id = ?,
			household_id = COALESCE(household_id, ?),
			email = COALESCE(email, ?),
			phone = COALESCE(phone, ?),
			gender = COALESCE(gender, ?),
			age = COALESCE(age, ?),
			is_active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, nullInt64(m.ChurchID), nullString(m.HouseholdID),
		nullString(m.Email), nullString(m.Phone), nullString(m.Gender),
		nullIntPtr(m.Age), m.IsActive, id)
	if err != nil {
		return fmt.Errorf("failed to backfill member %s: %w", id, err)
	}
	return nil
}

// CountMembers returns the total member row count.
func (s *SQLiteStorage) CountMembers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

// nullIntPtr converts an optional int for storage.
func nullIntPtr(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
