package sync

import (
	"context"

	"github.com/jarombrown/wardsync/internal/types"
)

// detectExternalChanges finds calling transitions that happened at the
// external source without going through the app, and materializes a calling
// change plus follow-up tasks for each. New assignments get setting-apart
// tasks when no set-apart date came through, and always an organization
// notification; releases get the notification only. Returns (new
// assignments, releases).
func (e *Engine) detectExternalChanges(ctx context.Context) (int, int, error) {
	e.log("Detecting in-flight callings...")

	assignments, err := e.store.FindExternalAssignments(ctx)
	if err != nil {
		return 0, 0, err
	}

	newCount := 0
	for _, a := range assignments {
		e.log("  - New assignment detected: %s %s -> %s (%s)", a.FirstName, a.LastName, a.CallingTitle, a.OrgName)

		change := &types.CallingChange{
			CallingID:         a.CallingID,
			OrgName:           a.OrgName,
			CallingTitle:      a.CallingTitle,
			NewMemberID:       a.MemberID,
			NewMemberChurchID: &a.MemberChurchID,
			Status:            types.ChangeInFlight,
			Source:            types.SourceAutoDetected,
		}

		var tasks []*types.Task
		if a.SetApartDate == nil {
			tasks = append(tasks,
				&types.Task{Type: types.TaskSetApart, MemberID: a.MemberID, MemberChurchID: &a.MemberChurchID, Status: types.TaskPending},
				&types.Task{Type: types.TaskRecordSetApart, MemberID: a.MemberID, MemberChurchID: &a.MemberChurchID, Status: types.TaskPending},
			)
		}
		tasks = append(tasks, &types.Task{
			Type:           types.TaskNotifyOrganization,
			MemberID:       a.MemberID,
			MemberChurchID: &a.MemberChurchID,
			Status:         types.TaskPending,
			Notes:          a.OrgName,
		})

		if err := e.store.CreateCallingChange(ctx, change, tasks); err != nil {
			return newCount, 0, err
		}
		newCount++
	}

	releases, err := e.store.FindExternalReleases(ctx)
	if err != nil {
		return newCount, 0, err
	}

	releaseCount := 0
	for _, r := range releases {
		// Calling or member no longer exists; nothing to attach the change to.
		if r.CallingID == "" || r.MemberID == "" {
			continue
		}

		e.log("  - Release detected: %s %s from %s (%s)", r.FirstName, r.LastName, r.CallingTitle, r.OrgName)

		change := &types.CallingChange{
			CallingID:             r.CallingID,
			OrgName:               r.OrgName,
			CallingTitle:          r.CallingTitle,
			CurrentMemberID:       r.MemberID,
			CurrentMemberChurchID: &r.MemberChurchID,
			Status:                types.ChangeInFlight,
			Source:                types.SourceAutoDetected,
		}
		tasks := []*types.Task{{
			Type:           types.TaskNotifyOrganization,
			MemberID:       r.MemberID,
			MemberChurchID: &r.MemberChurchID,
			Status:         types.TaskPending,
			Notes:          r.OrgName,
		}}

		if err := e.store.CreateCallingChange(ctx, change, tasks); err != nil {
			return newCount, releaseCount, err
		}
		releaseCount++
	}

	e.log("  Done. New assignments: %d, Releases: %d", newCount, releaseCount)
	return newCount, releaseCount, nil
}
