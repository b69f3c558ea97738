package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jarombrown/wardsync/internal/types"
)

// FindExternalAssignments returns active post-rebuild assignments whose
// natural key was not present in the pre-sync snapshot and that no
// non-completed calling change already tracks.
func (s *SQLiteStorage) FindExternalAssignments(ctx context.Context) ([]*types.ExternalAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			c.id,
			o.name,
			c.title,
			m.id,
			m.church_id,
			m.first_name,
			m.last_name,
			ca.sustained_date,
			ca.set_apart_date
		FROM calling_assignments ca
		JOIN callings c ON ca.calling_id = c.id
		JOIN organizations o ON c.organization_id = o.id
		JOIN members m ON ca.member_id = m.id
		WHERE ca.is_active = 1
		  AND m.church_id IS NOT NULL
		  AND NOT EXISTS (
		      SELECT 1 FROM pre_sync_calling_snapshot pss
		      WHERE pss.calling_org_name = o.name
		        AND pss.calling_title = c.title
		        AND pss.member_church_id = m.church_id
		  )
		  AND NOT EXISTS (
		      SELECT 1 FROM calling_changes cc
		      WHERE cc.calling_org_name = o.name
		        AND cc.calling_title = c.title
		        AND cc.new_member_church_id = m.church_id
		        AND cc.status != 'completed'
		  )
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query external assignments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*types.ExternalAssignment
	for rows.Next() {
		var a types.ExternalAssignment
		var sustained, setApart sql.NullString
		if err := rows.Scan(&a.CallingID, &a.OrgName, &a.CallingTitle,
			&a.MemberID, &a.MemberChurchID, &a.FirstName, &a.LastName,
			&sustained, &setApart); err != nil {
			return nil, fmt.Errorf("failed to scan external assignment: %w", err)
		}
		a.SustainedDate = scanDate(sustained)
		a.SetApartDate = scanDate(setApart)
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading external assignments: %w", err)
	}
	return result, nil
}

// FindExternalReleases returns pre-sync snapshot rows whose natural key has
// no matching active assignment after the rebuild and that no non-completed
// calling change already tracks. CallingID/MemberID come back empty when the
// calling or member no longer resolves.
func (s *SQLiteStorage) FindExternalReleases(ctx context.Context) ([]*types.ExternalRelease, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			pss.calling_org_name,
			pss.calling_title,
			pss.member_church_id,
			pss.member_first_name,
			pss.member_last_name,
			c.id,
			m.id
		FROM pre_sync_calling_snapshot pss
		LEFT JOIN organizations o ON o.name = pss.calling_org_name
		LEFT JOIN callings c ON c.organization_id = o.id AND c.title = pss.calling_title
		LEFT JOIN members m ON m.church_id = pss.member_church_id
		WHERE pss.is_active = 1
		  AND NOT EXISTS (
		      SELECT 1 FROM calling_assignments ca2
		      JOIN callings c2 ON ca2.calling_id = c2.id
		      JOIN organizations o2 ON c2.organization_id = o2.id
		      JOIN members m2 ON ca2.member_id = m2.id
		      WHERE o2.name = pss.calling_org_name
		        AND c2.title = pss.calling_title
		        AND m2.church_id = pss.member_church_id
		        AND ca2.is_active = 1
		  )
		  AND NOT EXISTS (
		      SELECT 1 FROM calling_changes cc
		      WHERE cc.calling_org_name = pss.calling_org_name
		        AND cc.calling_title = pss.calling_title
		        AND cc.current_member_church_id = pss.member_church_id
		        AND cc.status != 'completed'
		  )
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query external releases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*types.ExternalRelease
	for rows.Next() {
		var r types.ExternalRelease
		var first, last, callingID, memberID sql.NullString
		if err := rows.Scan(&r.OrgName, &r.CallingTitle, &r.MemberChurchID,
			&first, &last, &callingID, &memberID); err != nil {
			return nil, fmt.Errorf("failed to scan external release: %w", err)
		}
		r.FirstName = stringValue(first)
		r.LastName = stringValue(last)
		r.CallingID = stringValue(callingID)
		r.MemberID = stringValue(memberID)
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading external releases: %w", err)
	}
	return result, nil
}

// CreateCallingChange persists a calling change and its follow-up tasks in
// one transaction.
func (s *SQLiteStorage) CreateCallingChange(ctx context.Context, change *types.CallingChange, tasks []*types.Task) error {
	if err := change.Validate(); err != nil {
		return fmt.Errorf("invalid calling change: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin change transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO calling_changes (
			calling_id, calling_org_name, calling_title,
			new_member_id, new_member_church_id,
			current_member_id, current_member_church_id,
			status, source, detected_at, created_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, date('now'))
	`, nullString(change.CallingID), change.OrgName, change.CallingTitle,
		nullString(change.NewMemberID), nullInt64(change.NewMemberChurchID),
		nullString(change.CurrentMemberID), nullInt64(change.CurrentMemberChurchID),
		change.Status, change.Source)
	if err != nil {
		return fmt.Errorf("failed to insert calling change: %w", err)
	}

	changeID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get calling change id: %w", err)
	}
	change.ID = changeID

	for _, task := range tasks {
		if !task.Type.IsValid() {
			return fmt.Errorf("invalid task type: %s", task.Type)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (calling_change_id, task_type, member_id, member_church_id, status, notes)
			VALUES (?, ?, ?, ?, ?, ?)
		`, changeID, task.Type, nullString(task.MemberID), nullInt64(task.MemberChurchID),
			task.Status, nullString(task.Notes)); err != nil {
			return fmt.Errorf("failed to insert %s task: %w", task.Type, err)
		}
		task.CallingChangeID = changeID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit calling change: %w", err)
	}
	return nil
}

// GetCallingChanges returns all calling change records.
func (s *SQLiteStorage) GetCallingChanges(ctx context.Context) ([]*types.CallingChange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, calling_id, calling_org_name, calling_title,
		       new_member_id, new_member_church_id,
		       current_member_id, current_member_church_id,
		       status, source
		FROM calling_changes
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query calling changes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*types.CallingChange
	for rows.Next() {
		var c types.CallingChange
		var callingID, orgName, title, newID, curID sql.NullString
		var newChurch, curChurch sql.NullInt64
		if err := rows.Scan(&c.ID, &callingID, &orgName, &title,
			&newID, &newChurch, &curID, &curChurch, &c.Status, &c.Source); err != nil {
			return nil, fmt.Errorf("failed to scan calling change: %w", err)
		}
		c.CallingID = stringValue(callingID)
		c.OrgName = stringValue(orgName)
		c.CallingTitle = stringValue(title)
		c.NewMemberID = stringValue(newID)
		c.NewMemberChurchID = int64Ptr(newChurch)
		c.CurrentMemberID = stringValue(curID)
		c.CurrentMemberChurchID = int64Ptr(curChurch)
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading calling changes: %w", err)
	}
	return result, nil
}

// GetTasks returns the tasks attached to one calling change.
func (s *SQLiteStorage) GetTasks(ctx context.Context, changeID int64) ([]*types.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, calling_change_id, task_type, member_id, member_church_id, status, notes
		FROM tasks
		WHERE calling_change_id = ?
		ORDER BY id
	`, changeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*types.Task
	for rows.Next() {
		var t types.Task
		var memberID, notes sql.NullString
		var churchID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.CallingChangeID, &t.Type, &memberID, &churchID, &t.Status, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t.MemberID = stringValue(memberID)
		t.MemberChurchID = int64Ptr(churchID)
		t.Notes = stringValue(notes)
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading tasks: %w", err)
	}
	return result, nil
}
