package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jarombrown/wardsync/internal/config"
	"github.com/jarombrown/wardsync/internal/membertools"
	"github.com/jarombrown/wardsync/internal/storage"
)

// Engine runs the reconciliation of one external snapshot against the local
// database.
type Engine struct {
	store storage.Storage
	cfg   *config.Config
	log   Logger
	now   func() time.Time
}

// NewEngine creates a reconciliation engine. A nil logger discards output.
func NewEngine(store storage.Storage, cfg *config.Config, log Logger) *Engine {
	if log == nil {
		log = discardLogger
	}
	return &Engine{store: store, cfg: cfg, log: log, now: time.Now}
}

// Summary reports what one run did.
type Summary struct {
	Households    int
	Members       int
	SnapshotRows  int
	Organizations int
	Callings      int
	Assignments   int

	InterviewsBYI  int
	InterviewsBCYI int

	SeededCallings      int
	AnnotationsRestored int
	NewAssignments      int
	Releases            int

	Recommends RecommendSummary
}

// Run reconciles the snapshot against the database. homeUnit restricts
// processing to one unit (0 means no restriction). In dry-run mode the
// snapshot is summarized and nothing is written.
//
// Order matters: members and households are upserted first so assignments
// can resolve; the hierarchy rebuild captures the pre-sync snapshot and
// performs the hard refresh atomically; interviews and the standard roster
// land on the fresh hierarchy; then cached ids are relinked, user-entered
// annotations restored, and external changes detected against the snapshot.
func (e *Engine) Run(ctx context.Context, snap *membertools.Snapshot, homeUnit int) (*Summary, error) {
	if e.cfg.DryRun {
		return e.dryRun(snap), nil
	}

	summary := &Summary{}

	e.log("STEP 1: Syncing members and households")
	memberIDs, households, err := e.syncMembers(ctx, snap, homeUnit)
	if err != nil {
		return nil, fmt.Errorf("member sync failed: %w", err)
	}
	summary.Members = len(memberIDs)
	summary.Households = households

	e.log("STEP 2-4: Hard refresh of organizations, callings, and assignments")
	rebuild := e.buildHierarchy(snap, memberIDs, homeUnit)
	snapshotRows, err := e.store.ReplaceHierarchy(ctx, rebuild)
	if err != nil {
		return nil, fmt.Errorf("hierarchy rebuild failed: %w", err)
	}
	summary.SnapshotRows = snapshotRows
	summary.Organizations = len(rebuild.Organizations)
	summary.Callings = len(rebuild.Callings)
	summary.Assignments = len(rebuild.Assignments)
	e.log("Captured %d pre-sync snapshot rows", snapshotRows)

	e.log("STEP 5: Syncing youth interviews")
	byi, bcyi, err := e.syncYouthInterviews(ctx, snap, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("youth interview sync failed: %w", err)
	}
	summary.InterviewsBYI = byi
	summary.InterviewsBCYI = bcyi

	e.log("STEP 6: Seeding standard roster")
	seeded, err := e.seedStandardRoster(ctx, e.cfg.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("standard roster seeding failed: %w", err)
	}
	summary.SeededCallings = seeded

	e.log("STEP 7: Relinking cached ids")
	if err := e.store.RelinkCachedIDs(ctx); err != nil {
		return nil, fmt.Errorf("cached id relink failed: %w", err)
	}

	e.log("STEP 8: Restoring user-entered data")
	restored, err := e.store.RestoreAnnotations(ctx)
	if err != nil {
		return nil, fmt.Errorf("annotation restore failed: %w", err)
	}
	summary.AnnotationsRestored = restored
	e.log("Restored annotations on %d assignments", restored)

	e.log("STEP 9: Detecting external calling changes")
	newAssignments, releases, err := e.detectExternalChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("external change detection failed: %w", err)
	}
	summary.NewAssignments = newAssignments
	summary.Releases = releases

	summary.Recommends = summarizeRecommends(snap, e.now())
	e.log("Temple recommends: %d active, %d expired, %d expiring within 3 months",
		summary.Recommends.Active, summary.Recommends.Expired, summary.Recommends.ExpiringSoon)

	return summary, nil
}

// dryRun summarizes the snapshot without writing anything.
func (e *Engine) dryRun(snap *membertools.Snapshot) *Summary {
	summary := &Summary{Households: len(snap.Households)}
	for i := range snap.Households {
		summary.Members += len(snap.Households[i].Members)
	}

	for i := range snap.ActionInterviews {
		iv := &snap.ActionInterviews[i]
		switch {
		case strings.Contains(iv.Type, "BISHOP_YOUTH_INTERVIEW"):
			summary.InterviewsBYI += len(iv.Members)
		case strings.Contains(iv.Type, "COUNSELOR_YOUTH_INTERVIEW"):
			summary.InterviewsBCYI += len(iv.Members)
		}
	}

	summary.Recommends = summarizeRecommends(snap, e.now())

	e.log("DRY RUN: %d households, %d members", summary.Households, summary.Members)
	e.log("DRY RUN: %d BYI, %d BCYI due", summary.InterviewsBYI, summary.InterviewsBCYI)
	e.log("DRY RUN: recommends %d active, %d expired, %d expiring soon",
		summary.Recommends.Active, summary.Recommends.Expired, summary.Recommends.ExpiringSoon)
	return summary
}
