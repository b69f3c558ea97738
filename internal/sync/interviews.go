package sync

import (
	"context"
	"strings"

	"github.com/jarombrown/wardsync/internal/membertools"
	"github.com/jarombrown/wardsync/internal/types"
)

// interviewType maps the raw external interview type onto the local code:
// BYI for bishop youth interviews, BCYI for counselor youth interviews.
// Everything else is not a youth interview and is skipped.
func interviewType(apiType string) string {
	switch {
	case strings.Contains(apiType, "BISHOP_YOUTH_INTERVIEW"):
		return "BYI"
	case strings.Contains(apiType, "COUNSELOR_YOUTH_INTERVIEW"):
		return "BCYI"
	}
	return ""
}

// syncYouthInterviews records interview-due markers for resolved members.
// The table was wiped with the rest of the hierarchy, so this is a fresh
// insert. Returns BYI and BCYI counts.
func (e *Engine) syncYouthInterviews(ctx context.Context, snap *membertools.Snapshot, memberIDs map[string]string) (int, int, error) {
	byi, bcyi := 0, 0
	for i := range snap.ActionInterviews {
		iv := &snap.ActionInterviews[i]
		itype := interviewType(iv.Type)
		if itype == "" {
			continue
		}

		for _, m := range iv.Members {
			memberID, ok := memberIDs[m.UUID]
			if !ok {
				continue
			}
			err := e.store.UpsertYouthInterview(ctx, &types.YouthInterview{
				MemberID:         memberID,
				InterviewType:    itype,
				APIInterviewType: iv.Type,
				IsDue:            true,
			})
			if err != nil {
				e.log("  Warning: could not record interview for member %s: %v", m.UUID, err)
				continue
			}
			if itype == "BYI" {
				byi++
			} else {
				bcyi++
			}
		}
	}

	e.log("Youth interviews synced: %d BYI, %d BCYI", byi, bcyi)
	return byi, bcyi, nil
}
