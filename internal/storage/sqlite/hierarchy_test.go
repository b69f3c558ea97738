package sqlite

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/jarombrown/wardsync/internal/types"
)

// buildTestHierarchy returns a one-org, one-calling, one-assignment rebuild
// with fresh surrogate ids, the way the engine produces them.
func buildTestHierarchy(memberID string) *types.HierarchyRebuild {
	orgID := uuid.NewString()
	callingID := uuid.NewString()
	return &types.HierarchyRebuild{
		Organizations: []*types.Organization{
			{ID: orgID, Name: "Elders Quorum", DisplayOrder: 5},
		},
		Callings: []*types.Calling{
			{ID: callingID, OrganizationID: orgID, Title: "Elders Quorum President", RequiresSettingApart: true, DisplayOrder: 1},
		},
		Assignments: []*types.CallingAssignment{
			{CallingID: callingID, MemberID: memberID, IsActive: true},
		},
	}
}

func insertTestMember(t *testing.T, store *SQLiteStorage, id string, churchID int64) {
	t.Helper()
	m := &types.Member{ID: id, FirstName: "Test", LastName: "Member", IsActive: true, ChurchID: int64p(churchID)}
	if err := store.InsertMember(context.Background(), m); err != nil {
		t.Fatalf("InsertMember failed: %v", err)
	}
}

func TestReplaceHierarchyWipesAndRebuilds(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	insertTestMember(t, store, "m-1", 42)

	if _, err := store.ReplaceHierarchy(ctx, buildTestHierarchy("m-1")); err != nil {
		t.Fatalf("first ReplaceHierarchy failed: %v", err)
	}

	// Second rebuild replaces everything; row counts must not grow
	if _, err := store.ReplaceHierarchy(ctx, buildTestHierarchy("m-1")); err != nil {
		t.Fatalf("second ReplaceHierarchy failed: %v", err)
	}

	orgs, err := store.GetOrganizations(ctx)
	if err != nil {
		t.Fatalf("GetOrganizations failed: %v", err)
	}
	if len(orgs) != 1 {
		t.Errorf("got %d organizations, want 1", len(orgs))
	}

	assignments, err := store.GetActiveAssignments(ctx)
	if err != nil {
		t.Fatalf("GetActiveAssignments failed: %v", err)
	}
	if len(assignments) != 1 {
		t.Errorf("got %d assignments, want 1", len(assignments))
	}
}

func TestReplaceHierarchyCapturesSnapshot(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	insertTestMember(t, store, "m-1", 42)

	count, err := store.ReplaceHierarchy(ctx, buildTestHierarchy("m-1"))
	if err != nil {
		t.Fatalf("ReplaceHierarchy failed: %v", err)
	}
	if count != 0 {
		t.Errorf("first rebuild captured %d snapshot rows, want 0", count)
	}

	count, err = store.ReplaceHierarchy(ctx, buildTestHierarchy("m-1"))
	if err != nil {
		t.Fatalf("second ReplaceHierarchy failed: %v", err)
	}
	if count != 1 {
		t.Errorf("second rebuild captured %d snapshot rows, want 1", count)
	}

	rows, err := store.GetSnapshotRows(ctx)
	if err != nil {
		t.Fatalf("GetSnapshotRows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d snapshot rows, want 1", len(rows))
	}
	r := rows[0]
	if r.OrgName != "Elders Quorum" || r.CallingTitle != "Elders Quorum President" || r.MemberChurchID != 42 {
		t.Errorf("snapshot row = %q/%q/%d, want natural key of the assignment", r.OrgName, r.CallingTitle, r.MemberChurchID)
	}
}

func TestRestoreAnnotationsSurvivesRebuild(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	insertTestMember(t, store, "m-1", 42)

	if _, err := store.ReplaceHierarchy(ctx, buildTestHierarchy("m-1")); err != nil {
		t.Fatalf("ReplaceHierarchy failed: %v", err)
	}

	// User-entered annotations on the live assignment
	_, err := store.UnderlyingDB().Exec(
		`UPDATE calling_assignments SET expected_release_date = '2026-12-01', release_notes = 'moving out of ward'`)
	if err != nil {
		t.Fatalf("failed to annotate assignment: %v", err)
	}

	if _, err := store.ReplaceHierarchy(ctx, buildTestHierarchy("m-1")); err != nil {
		t.Fatalf("second ReplaceHierarchy failed: %v", err)
	}

	restored, err := store.RestoreAnnotations(ctx)
	if err != nil {
		t.Fatalf("RestoreAnnotations failed: %v", err)
	}
	if restored != 1 {
		t.Errorf("restored %d assignments, want 1", restored)
	}

	assignments, err := store.GetActiveAssignments(ctx)
	if err != nil {
		t.Fatalf("GetActiveAssignments failed: %v", err)
	}
	if len(assignments) != 1 {
		t.Fatalf("got %d assignments, want 1", len(assignments))
	}
	a := assignments[0]
	if a.ExpectedReleaseDate == nil || a.ExpectedReleaseDate.Format("2006-01-02") != "2026-12-01" {
		t.Errorf("ExpectedReleaseDate = %v, want 2026-12-01", a.ExpectedReleaseDate)
	}
	if a.ReleaseNotes != "moving out of ward" {
		t.Errorf("ReleaseNotes = %q, want the user-entered note", a.ReleaseNotes)
	}
}

func TestRelinkCachedIDs(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	insertTestMember(t, store, "m-1", 42)

	if _, err := store.ReplaceHierarchy(ctx, buildTestHierarchy("m-1")); err != nil {
		t.Fatalf("ReplaceHierarchy failed: %v", err)
	}

	change := &types.CallingChange{
		OrgName:           "Elders Quorum",
		CallingTitle:      "Elders Quorum President",
		NewMemberChurchID: int64p(42),
		Status:            types.ChangeInFlight,
		Source:            types.SourceAutoDetected,
	}
	if err := store.CreateCallingChange(ctx, change, nil); err != nil {
		t.Fatalf("CreateCallingChange failed: %v", err)
	}

	// A rebuild invalidates every cached surrogate id
	if _, err := store.ReplaceHierarchy(ctx, buildTestHierarchy("m-1")); err != nil {
		t.Fatalf("second ReplaceHierarchy failed: %v", err)
	}
	if err := store.RelinkCachedIDs(ctx); err != nil {
		t.Fatalf("RelinkCachedIDs failed: %v", err)
	}

	changes, err := store.GetCallingChanges(ctx)
	if err != nil {
		t.Fatalf("GetCallingChanges failed: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(changes))
	}

	org, err := store.GetOrganizationByName(ctx, "Elders Quorum")
	if err != nil {
		t.Fatalf("GetOrganizationByName failed: %v", err)
	}
	callings, err := store.GetCallings(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetCallings failed: %v", err)
	}
	if len(callings) != 1 {
		t.Fatalf("got %d callings, want 1", len(callings))
	}

	c := changes[0]
	if c.CallingID != callings[0].ID {
		t.Errorf("CallingID = %q, want relinked id %q", c.CallingID, callings[0].ID)
	}
	if c.NewMemberID != "m-1" {
		t.Errorf("NewMemberID = %q, want m-1", c.NewMemberID)
	}
}

func TestEnsureOrganizationAndCalling(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	orgID, err := store.EnsureOrganization(ctx, "Primary", 6)
	if err != nil {
		t.Fatalf("EnsureOrganization failed: %v", err)
	}

	again, err := store.EnsureOrganization(ctx, "Primary", 7)
	if err != nil {
		t.Fatalf("second EnsureOrganization failed: %v", err)
	}
	if again != orgID {
		t.Errorf("EnsureOrganization returned %q, want existing id %q", again, orgID)
	}

	org, err := store.GetOrganizationByName(ctx, "Primary")
	if err != nil {
		t.Fatalf("GetOrganizationByName failed: %v", err)
	}
	if org.DisplayOrder != 7 {
		t.Errorf("DisplayOrder = %d, want refreshed value 7", org.DisplayOrder)
	}

	callingID, err := store.EnsureCalling(ctx, orgID, "Primary President", 1)
	if err != nil {
		t.Fatalf("EnsureCalling failed: %v", err)
	}
	againCalling, err := store.EnsureCalling(ctx, orgID, "Primary President", 1)
	if err != nil {
		t.Fatalf("second EnsureCalling failed: %v", err)
	}
	if againCalling != callingID {
		t.Errorf("EnsureCalling returned %q, want existing id %q", againCalling, callingID)
	}

	callings, err := store.GetCallings(ctx, orgID)
	if err != nil {
		t.Fatalf("GetCallings failed: %v", err)
	}
	if len(callings) != 1 {
		t.Errorf("got %d callings, want 1", len(callings))
	}
}

func TestUpsertYouthInterview(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	insertTestMember(t, store, "m-1", 42)

	iv := &types.YouthInterview{MemberID: "m-1", InterviewType: "BYI", APIInterviewType: "BISHOP_YOUTH_INTERVIEW_14_15", IsDue: true}
	if err := store.UpsertYouthInterview(ctx, iv); err != nil {
		t.Fatalf("UpsertYouthInterview failed: %v", err)
	}
	// Same key again updates rather than erroring
	if err := store.UpsertYouthInterview(ctx, iv); err != nil {
		t.Fatalf("second UpsertYouthInterview failed: %v", err)
	}

	var count int
	if err := store.UnderlyingDB().QueryRow(`SELECT COUNT(*) FROM youth_interviews`).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d interview rows, want 1", count)
	}
}
