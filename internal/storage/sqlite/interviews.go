package sqlite

import (
	"context"
	"fmt"

	"github.com/jarombrown/wardsync/internal/types"
)

// UpsertYouthInterview records that an interview is due for a member. Keyed
// on (member_id, interview_type); the youth_interviews table is wiped with
// the rest of the hierarchy on every hard refresh, so the conflict branch
// only fires within a single run.
func (s *SQLiteStorage) UpsertYouthInterview(ctx context.Context, iv *types.YouthInterview) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO youth_interviews (member_id, interview_type, api_interview_type, is_due)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (member_id, interview_type) DO UPDATE SET
			api_interview_type = excluded.api_interview_type,
			is_due = excluded.is_due
	`, iv.MemberID, iv.InterviewType, iv.APIInterviewType, iv.IsDue)
	if err != nil {
		return fmt.Errorf("failed to upsert youth interview for member %s: %w", iv.MemberID, err)
	}
	return nil
}
