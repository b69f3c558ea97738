// Package storage defines the interface for directory storage backends.
package storage

import (
	"context"
	"database/sql"

	"github.com/jarombrown/wardsync/internal/types"
)

// Storage defines the interface for directory storage backends. The sync
// engine owns the write transaction boundary for the hierarchy tables during
// a run; member and household rows are owned across runs by natural-key
// upsert and are never bulk-deleted.
type Storage interface {
	// Households
	UpsertHousehold(ctx context.Context, h *types.Household) error
	GetHousehold(ctx context.Context, id string) (*types.Household, error)

	// Members (identity primitives; matching policy lives in the sync engine)
	GetMember(ctx context.Context, id string) (*types.Member, error)
	GetMemberByChurchID(ctx context.Context, churchID int64) (*types.Member, error)
	FindUnlinkedMemberByName(ctx context.Context, firstName, lastName string) (*types.Member, error)
	InsertMember(ctx context.Context, m *types.Member) error
	UpdateMemberFromSync(ctx context.Context, m *types.Member) error
	BackfillMember(ctx context.Context, id string, m *types.Member) error
	CountMembers(ctx context.Context) (int, error)

	// Pre-sync snapshot and hierarchy rebuild
	CapturePreSyncSnapshot(ctx context.Context) (int, error)
	GetSnapshotRows(ctx context.Context) ([]*types.SnapshotRow, error)
	ReplaceHierarchy(ctx context.Context, rebuild *types.HierarchyRebuild) (int, error)
	RestoreAnnotations(ctx context.Context) (int, error)
	RelinkCachedIDs(ctx context.Context) error

	// Standard roster seeding
	EnsureOrganization(ctx context.Context, name string, displayOrder int) (string, error)
	EnsureCalling(ctx context.Context, orgID, title string, displayOrder int) (string, error)

	// Youth interviews
	UpsertYouthInterview(ctx context.Context, iv *types.YouthInterview) error

	// In-flight change detection
	FindExternalAssignments(ctx context.Context) ([]*types.ExternalAssignment, error)
	FindExternalReleases(ctx context.Context) ([]*types.ExternalRelease, error)
	CreateCallingChange(ctx context.Context, change *types.CallingChange, tasks []*types.Task) error

	// Queries
	GetOrganizations(ctx context.Context) ([]*types.Organization, error)
	GetOrganizationByName(ctx context.Context, name string) (*types.Organization, error)
	GetCallings(ctx context.Context, orgID string) ([]*types.Calling, error)
	GetActiveAssignments(ctx context.Context) ([]*types.CallingAssignment, error)
	GetCallingChanges(ctx context.Context) ([]*types.CallingChange, error)
	GetTasks(ctx context.Context, changeID int64) ([]*types.Task, error)

	// Lifecycle
	Close() error

	// Database path
	Path() string

	// UnderlyingDB returns the underlying *sql.DB connection.
	// WARNING: Direct database access bypasses the storage layer. Use with caution.
	UnderlyingDB() *sql.DB
}

// Config holds database configuration
type Config struct {
	Backend string // "sqlite" (postgres reserved)

	// SQLite config
	Path string // database file path
}
