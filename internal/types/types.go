package types

import (
	"fmt"
	"time"
)

// Member represents one person in the membership directory. Rows are owned
// across syncs: they are upserted by natural key and never bulk-deleted.
type Member struct {
	ID          string     `json:"id"`
	HouseholdID string     `json:"household_id,omitempty"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	Age         *int       `json:"age,omitempty"`
	IsActive    bool       `json:"is_active"`
	ChurchID    *int64     `json:"church_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Household groups members. Its id is the external household UUID, which is
// treated as stable, so repeated syncs upsert rather than duplicate.
type Household struct {
	ID      string `json:"id"`
	Name    string `json:"household_name"`
	Address string `json:"address,omitempty"`
}

// Organization is one node in the callings hierarchy. The name is the natural
// key across syncs; local ids are regenerated on every hard refresh.
type Organization struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ParentOrgID  string `json:"parent_org_id,omitempty"`
	DisplayOrder int    `json:"display_order"`
}

// Calling is a named position scoped to one organization. Natural key is
// (organization name, title).
type Calling struct {
	ID                   string `json:"id"`
	OrganizationID       string `json:"organization_id"`
	Title                string `json:"title"`
	RequiresSettingApart bool   `json:"requires_setting_apart"`
	DisplayOrder         int    `json:"display_order"`
}

// CallingAssignment links a member to a calling. ExpectedReleaseDate and
// ReleaseNotes are never supplied by the external source; they are restored
// from the pre-sync snapshot after every hard refresh.
type CallingAssignment struct {
	ID                  int64      `json:"id"`
	CallingID           string     `json:"calling_id"`
	MemberID            string     `json:"member_id"`
	IsActive            bool       `json:"is_active"`
	AssignedDate        *time.Time `json:"assigned_date,omitempty"`
	SustainedDate       *time.Time `json:"sustained_date,omitempty"`
	SetApartDate        *time.Time `json:"set_apart_date,omitempty"`
	ExpectedReleaseDate *time.Time `json:"expected_release_date,omitempty"`
	ReleaseNotes        string     `json:"release_notes,omitempty"`
}

// SnapshotRow is one pre-sync snapshot entry: the natural-key identity of an
// active assignment plus the locally-entered fields that must survive the
// destroy/recreate cycle.
type SnapshotRow struct {
	OrgName             string     `json:"calling_org_name"`
	CallingTitle        string     `json:"calling_title"`
	MemberChurchID      int64      `json:"member_church_id"`
	MemberFirstName     string     `json:"member_first_name"`
	MemberLastName      string     `json:"member_last_name"`
	SustainedDate       *time.Time `json:"sustained_date,omitempty"`
	SetApartDate        *time.Time `json:"set_apart_date,omitempty"`
	IsActive            bool       `json:"is_active"`
	ExpectedReleaseDate *time.Time `json:"expected_release_date,omitempty"`
	ReleaseNotes        string     `json:"release_notes,omitempty"`
}

// ChangeStatus tracks the workflow state of a calling change.
type ChangeStatus string

const (
	ChangePending   ChangeStatus = "pending"
	ChangeInFlight  ChangeStatus = "in_flight"
	ChangeCompleted ChangeStatus = "completed"
)

// IsValid checks if the change status value is valid
func (s ChangeStatus) IsValid() bool {
	switch s {
	case ChangePending, ChangeInFlight, ChangeCompleted:
		return true
	}
	return false
}

// ChangeSource records how a calling change entered the system.
type ChangeSource string

const (
	SourceApp          ChangeSource = "app"
	SourceAutoDetected ChangeSource = "auto_detected"
)

// CallingChange represents a calling transition, either initiated through the
// app or auto-detected from the external source. Surrogate ids (CallingID,
// member ids) are cached and re-linked after each hard refresh; the natural
// key fields are the durable identity.
type CallingChange struct {
	ID                    int64        `json:"id"`
	CallingID             string       `json:"calling_id,omitempty"`
	OrgName               string       `json:"calling_org_name"`
	CallingTitle          string       `json:"calling_title"`
	NewMemberID           string       `json:"new_member_id,omitempty"`
	NewMemberChurchID     *int64       `json:"new_member_church_id,omitempty"`
	CurrentMemberID       string       `json:"current_member_id,omitempty"`
	CurrentMemberChurchID *int64       `json:"current_member_church_id,omitempty"`
	Status                ChangeStatus `json:"status"`
	Source                ChangeSource `json:"source"`
	DetectedAt            *time.Time   `json:"detected_at,omitempty"`
	CreatedDate           *time.Time   `json:"created_date,omitempty"`
}

// Validate checks if the change has valid field values
func (c *CallingChange) Validate() error {
	if c.OrgName == "" {
		return fmt.Errorf("calling_org_name is required")
	}
	if c.CallingTitle == "" {
		return fmt.Errorf("calling_title is required")
	}
	if !c.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", c.Status)
	}
	return nil
}

// TaskType categorizes follow-up work attached to a calling change.
type TaskType string

const (
	TaskSetApart           TaskType = "set_apart"
	TaskRecordSetApart     TaskType = "record_set_apart"
	TaskNotifyOrganization TaskType = "notify_organization"
)

// IsValid checks if the task type value is valid
func (t TaskType) IsValid() bool {
	switch t {
	case TaskSetApart, TaskRecordSetApart, TaskNotifyOrganization:
		return true
	}
	return false
}

// TaskStatus tracks the workflow state of a task.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskDone    TaskStatus = "done"
)

// Task is a follow-up action item tied to a calling change.
type Task struct {
	ID              int64      `json:"id"`
	CallingChangeID int64      `json:"calling_change_id"`
	Type            TaskType   `json:"task_type"`
	MemberID        string     `json:"member_id,omitempty"`
	MemberChurchID  *int64     `json:"member_church_id,omitempty"`
	Status          TaskStatus `json:"status"`
	Notes           string     `json:"notes,omitempty"`
}

// YouthInterview marks an interview as due for a member. Rebuilt from the
// external snapshot on every sync.
type YouthInterview struct {
	MemberID         string `json:"member_id"`
	InterviewType    string `json:"interview_type"`     // "BYI" or "BCYI"
	APIInterviewType string `json:"api_interview_type"` // raw external type
	IsDue            bool   `json:"is_due"`
}

// HierarchyRebuild is the complete desired state of the callings hierarchy,
// computed in memory from the external snapshot and applied in a single
// transaction that wipes and recreates the hierarchy tables.
type HierarchyRebuild struct {
	Organizations []*Organization
	Callings      []*Calling
	Assignments   []*CallingAssignment
}

// ExternalAssignment is an active post-rebuild assignment whose natural key
// was absent from the pre-sync snapshot and has no open change tracking it.
type ExternalAssignment struct {
	CallingID      string
	OrgName        string
	CallingTitle   string
	MemberID       string
	MemberChurchID int64
	FirstName      string
	LastName       string
	SustainedDate  *time.Time
	SetApartDate   *time.Time
}

// ExternalRelease is a snapshot row with no matching active assignment after
// the rebuild and no open change tracking it. CallingID or MemberID are empty
// when the natural key no longer resolves at all.
type ExternalRelease struct {
	OrgName        string
	CallingTitle   string
	MemberChurchID int64
	FirstName      string
	LastName       string
	CallingID      string
	MemberID       string
}
