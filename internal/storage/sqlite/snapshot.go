package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jarombrown/wardsync/internal/types"
)

// execer covers both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// captureSnapshot truncates and repopulates the pre-sync snapshot from the
// current active assignments. Only members with a church id are captured;
// without the external-stable id there is no natural key to restore against.
func captureSnapshot(ctx context.Context, db execer) (int, error) {
	if _, err := db.ExecContext(ctx, `DELETE FROM pre_sync_calling_snapshot`); err != nil {
		return 0, fmt.Errorf("failed to clear pre-sync snapshot: %w", err)
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO pre_sync_calling_snapshot (
			calling_org_name, calling_title, member_church_id,
			member_first_name, member_last_name,
			sustained_date, set_apart_date, is_active,
			expected_release_date, release_notes
		)
		SELECT
			o.name,
			c.title,
			m.church_id,
			m.first_name,
			m.last_name,
			ca.sustained_date,
			ca.set_apart_date,
			ca.is_active,
			ca.expected_release_date,
			ca.release_notes
		FROM calling_assignments ca
		JOIN callings c ON ca.calling_id = c.id
		JOIN organizations o ON c.organization_id = o.id
		JOIN members m ON ca.member_id = m.id
		WHERE ca.is_active = 1
		  AND m.church_id IS NOT NULL
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to capture pre-sync snapshot: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshot rows: %w", err)
	}
	return int(count), nil
}

// CapturePreSyncSnapshot captures the current active assignment state before
// a sync, returning the number of rows captured.
func (s *SQLiteStorage) CapturePreSyncSnapshot(ctx context.Context) (int, error) {
	return captureSnapshot(ctx, s.db)
}

// GetSnapshotRows returns the current pre-sync snapshot contents.
func (s *SQLiteStorage) GetSnapshotRows(ctx context.Context) ([]*types.SnapshotRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT calling_org_name, calling_title, member_church_id,
		       member_first_name, member_last_name,
		       sustained_date, set_apart_date, is_active,
		       expected_release_date, release_notes
		FROM pre_sync_calling_snapshot
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*types.SnapshotRow
	for rows.Next() {
		var r types.SnapshotRow
		var first, last, sustained, setApart, expected, notes sql.NullString
		if err := rows.Scan(&r.OrgName, &r.CallingTitle, &r.MemberChurchID,
			&first, &last, &sustained, &setApart, &r.IsActive, &expected, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		r.MemberFirstName = stringValue(first)
		r.MemberLastName = stringValue(last)
		r.SustainedDate = scanDate(sustained)
		r.SetApartDate = scanDate(setApart)
		r.ExpectedReleaseDate = scanDate(expected)
		r.ReleaseNotes = stringValue(notes)
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading snapshot rows: %w", err)
	}
	return result, nil
}

// RestoreAnnotations copies expected_release_date and release_notes from the
// pre-sync snapshot back onto the freshly rebuilt assignments, matching by
// natural key (organization name, calling title, member church id). Returns
// the number of assignments restored.
func (s *SQLiteStorage) RestoreAnnotations(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE calling_assignments AS ca
		SET expected_release_date = pss.expected_release_date,
		    release_notes = pss.release_notes
		FROM pre_sync_calling_snapshot AS pss, members AS m, callings AS c, organizations AS o
		WHERE m.church_id = pss.member_church_id
		  AND ca.calling_id = c.id
		  AND c.organization_id = o.id
		  AND ca.member_id = m.id
		  AND o.name = pss.calling_org_name
		  AND c.title = pss.calling_title
		  AND (pss.expected_release_date IS NOT NULL OR pss.release_notes IS NOT NULL)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to restore annotations: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count restored annotations: %w", err)
	}
	return int(count), nil
}

// relinkStatements recompute cached surrogate ids via natural-key joins.
// Every app table that caches an Organization/Calling/Member id is listed
// here; the hard refresh invalidated them all.
var relinkStatements = []struct {
	desc  string
	query string
}{
	{"calling_changes.calling_id", `
		UPDATE calling_changes SET calling_id = (
			SELECT c.id FROM callings c
			JOIN organizations o ON c.organization_id = o.id
			WHERE o.name = calling_changes.calling_org_name
			  AND c.title = calling_changes.calling_title
		)
		WHERE calling_org_name IS NOT NULL`},
	{"calling_changes.new_member_id", `
		UPDATE calling_changes SET new_member_id = (
			SELECT m.id FROM members m WHERE m.church_id = calling_changes.new_member_church_id
		)
		WHERE new_member_church_id IS NOT NULL`},
	{"calling_changes.current_member_id", `
		UPDATE calling_changes SET current_member_id = (
			SELECT m.id FROM members m WHERE m.church_id = calling_changes.current_member_church_id
		)
		WHERE current_member_church_id IS NOT NULL`},
	{"calling_considerations.member_id", `
		UPDATE calling_considerations SET member_id = (
			SELECT m.id FROM members m WHERE m.church_id = calling_considerations.member_church_id
		)
		WHERE member_church_id IS NOT NULL`},
	{"tasks.member_id", `
		UPDATE tasks SET member_id = (
			SELECT m.id FROM members m WHERE m.church_id = tasks.member_church_id
		)
		WHERE member_church_id IS NOT NULL`},
	{"member_calling_needs.member_id", `
		UPDATE member_calling_needs SET member_id = (
			SELECT m.id FROM members m WHERE m.church_id = member_calling_needs.member_church_id
		)
		WHERE member_church_id IS NOT NULL`},
	{"bishopric_stewardships.organization_id", `
		UPDATE bishopric_stewardships SET organization_id = (
			SELECT o.id FROM organizations o WHERE o.name = bishopric_stewardships.organization_name
		)
		WHERE organization_name IS NOT NULL`},
}

// RelinkCachedIDs recomputes every cached surrogate id in the app tables by
// joining through the stable natural keys, in one transaction.
func (s *SQLiteStorage) RelinkCachedIDs(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin relink transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range relinkStatements {
		if _, err := tx.ExecContext(ctx, stmt.query); err != nil {
			return fmt.Errorf("failed to relink %s: %w", stmt.desc, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit relink: %w", err)
	}
	return nil
}
