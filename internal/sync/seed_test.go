package sync

import (
	"context"
	"os"
	"testing"
)

const testSeed = `{
  "organizations": [
    {
      "name": "Bishopric",
      "display_order": 1,
      "callings": ["Bishop", "Bishopric First Counselor", "Bishopric Second Counselor", "Ward Executive Secretary"]
    },
    {
      "name": "Primary",
      "display_order": 7,
      "callings": ["Primary President"]
    }
  ]
}`

func TestSeedStandardRoster(t *testing.T) {
	engine, store, cleanup := setupTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	if err := os.WriteFile(engine.cfg.SeedFile, []byte(testSeed), 0o644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}

	ensured, err := engine.seedStandardRoster(ctx, engine.cfg.SeedFile)
	if err != nil {
		t.Fatalf("seedStandardRoster failed: %v", err)
	}
	if ensured != 5 {
		t.Errorf("ensured %d callings, want 5", ensured)
	}

	org, err := store.GetOrganizationByName(ctx, "Bishopric")
	if err != nil {
		t.Fatalf("GetOrganizationByName failed: %v", err)
	}
	if org == nil {
		t.Fatal("Bishopric not seeded")
	}
	if org.DisplayOrder != 1 {
		t.Errorf("DisplayOrder = %d, want 1", org.DisplayOrder)
	}

	callings, err := store.GetCallings(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetCallings failed: %v", err)
	}
	if len(callings) != 4 {
		t.Fatalf("got %d callings, want 4", len(callings))
	}
	// Display order from the title rules, ascending
	if callings[0].Title != "Bishop" || callings[0].DisplayOrder != 1 {
		t.Errorf("first calling = %q/%d, want Bishop/1", callings[0].Title, callings[0].DisplayOrder)
	}
	if callings[1].Title != "Bishopric First Counselor" || callings[1].DisplayOrder != 2 {
		t.Errorf("second calling = %q/%d, want Bishopric First Counselor/2", callings[1].Title, callings[1].DisplayOrder)
	}
	if callings[3].Title != "Ward Executive Secretary" || callings[3].DisplayOrder != 10 {
		t.Errorf("fourth calling = %q/%d, want Ward Executive Secretary/10", callings[3].Title, callings[3].DisplayOrder)
	}

	// Re-seeding is idempotent
	again, err := engine.seedStandardRoster(ctx, engine.cfg.SeedFile)
	if err != nil {
		t.Fatalf("second seedStandardRoster failed: %v", err)
	}
	if again != 5 {
		t.Errorf("second pass ensured %d callings, want 5", again)
	}
	callings, err = store.GetCallings(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetCallings failed: %v", err)
	}
	if len(callings) != 4 {
		t.Errorf("got %d callings after re-seed, want 4", len(callings))
	}
}

func TestSeedLeavesSyncedOrgsAlone(t *testing.T) {
	engine, store, cleanup := setupTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	if err := os.WriteFile(engine.cfg.SeedFile, []byte(testSeed), 0o644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}

	// An organization and calling created by the external sync, not in the seed
	orgID, err := store.EnsureOrganization(ctx, "Elders Quorum - Teachers", 50)
	if err != nil {
		t.Fatalf("EnsureOrganization failed: %v", err)
	}
	if _, err := store.EnsureCalling(ctx, orgID, "Teacher", 50); err != nil {
		t.Fatalf("EnsureCalling failed: %v", err)
	}

	if _, err := engine.seedStandardRoster(ctx, engine.cfg.SeedFile); err != nil {
		t.Fatalf("seedStandardRoster failed: %v", err)
	}

	org, err := store.GetOrganizationByName(ctx, "Elders Quorum - Teachers")
	if err != nil {
		t.Fatalf("GetOrganizationByName failed: %v", err)
	}
	if org == nil {
		t.Fatal("synced organization removed by seeding")
	}
	if org.ID != orgID {
		t.Errorf("organization id changed from %q to %q", orgID, org.ID)
	}
	callings, err := store.GetCallings(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetCallings failed: %v", err)
	}
	if len(callings) != 1 || callings[0].Title != "Teacher" {
		t.Errorf("synced calling not preserved: %+v", callings)
	}
}

func TestSeedMissingFileIsSkipped(t *testing.T) {
	engine, _, cleanup := setupTestEngine(t)
	defer cleanup()

	ensured, err := engine.seedStandardRoster(context.Background(), engine.cfg.SeedFile)
	if err != nil {
		t.Fatalf("missing seed file should not error: %v", err)
	}
	if ensured != 0 {
		t.Errorf("ensured %d callings, want 0", ensured)
	}
}
