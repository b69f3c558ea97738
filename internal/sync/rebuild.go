package sync

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jarombrown/wardsync/internal/classify"
	"github.com/jarombrown/wardsync/internal/membertools"
	"github.com/jarombrown/wardsync/internal/types"
)

// builder accumulates the desired hierarchy state in memory so the storage
// layer can apply it in a single transaction. Organizations are keyed by
// effective name, callings by (organization, title), assignments by
// (calling, member).
type builder struct {
	rebuild     *types.HierarchyRebuild
	orgIDs      map[string]string
	callingIDs  map[string]string
	assignments map[string]*types.CallingAssignment
	now         time.Time
}

func newBuilder(now time.Time) *builder {
	return &builder{
		rebuild:     &types.HierarchyRebuild{},
		orgIDs:      make(map[string]string),
		callingIDs:  make(map[string]string),
		assignments: make(map[string]*types.CallingAssignment),
		now:         now,
	}
}

func (b *builder) org(name, parentID string) string {
	if id, ok := b.orgIDs[name]; ok {
		return id
	}
	org := &types.Organization{
		ID:           uuid.NewString(),
		Name:         name,
		ParentOrgID:  parentID,
		DisplayOrder: classify.OrgDisplayOrder(name),
	}
	b.orgIDs[name] = org.ID
	b.rebuild.Organizations = append(b.rebuild.Organizations, org)
	return org.ID
}

func (b *builder) calling(orgID, orgName, title string) string {
	key := orgName + "\x00" + title
	if id, ok := b.callingIDs[key]; ok {
		return id
	}
	c := &types.Calling{
		ID:                   uuid.NewString(),
		OrganizationID:       orgID,
		Title:                title,
		RequiresSettingApart: true,
		DisplayOrder:         classify.CallingDisplayOrder(title),
	}
	b.callingIDs[key] = c.ID
	b.rebuild.Callings = append(b.rebuild.Callings, c)
	return c.ID
}

// assign records one member-in-calling, merging when the external source
// lists the same pair twice: existing dates are kept and gaps are filled.
func (b *builder) assign(callingID, memberID string, sustained *time.Time, setApart bool) {
	key := callingID + "\x00" + memberID
	if a, ok := b.assignments[key]; ok {
		if a.AssignedDate == nil {
			a.AssignedDate = sustained
		}
		if a.SustainedDate == nil {
			a.SustainedDate = sustained
		}
		if setApart && a.SetApartDate == nil {
			a.SetApartDate = sustained
		}
		return
	}

	assigned := sustained
	if assigned == nil {
		today := time.Date(b.now.Year(), b.now.Month(), b.now.Day(), 0, 0, 0, 0, time.UTC)
		assigned = &today
	}
	a := &types.CallingAssignment{
		CallingID:     callingID,
		MemberID:      memberID,
		IsActive:      true,
		AssignedDate:  assigned,
		SustainedDate: sustained,
	}
	if setApart {
		a.SetApartDate = sustained
	}
	b.assignments[key] = a
	b.rebuild.Assignments = append(b.rebuild.Assignments, a)
}

// buildHierarchy computes the complete desired hierarchy from the snapshot:
// the organization catalog from the external tree, plus a calling and an
// assignment for every position held by a resolved member. Positions outside
// the home unit are skipped unless they are stake positions, which ward
// members hold and the roster tracks.
func (e *Engine) buildHierarchy(snap *membertools.Snapshot, memberIDs map[string]string, homeUnit int) *types.HierarchyRebuild {
	classifier := classify.NewClassifier(snap.Organizations)
	b := newBuilder(e.now())

	for _, entry := range classifier.Catalog() {
		parentID := ""
		if !entry.ForceRoot && entry.ParentName != "" {
			parentID = b.orgIDs[entry.ParentName]
		}
		b.org(entry.Name, parentID)
	}

	positions := 0
	for i := range snap.Households {
		h := &snap.Households[i]
		for j := range h.Members {
			rec := &h.Members[j]
			memberID, ok := memberIDs[rec.UUID]
			if !ok {
				continue
			}

			for k := range rec.Positions {
				pos := &rec.Positions[k]
				isStake := strings.Contains(strings.ToLower(pos.UnitName), "stake")
				if homeUnit != 0 && pos.UnitNumber != 0 && pos.UnitNumber != homeUnit && !isStake {
					continue
				}

				title := pos.Name
				if title == "" {
					title = "Unknown Position"
				}

				var sustained *time.Time
				if pos.ActiveDate != "" {
					if d, err := time.Parse("2006-01-02", pos.ActiveDate); err == nil {
						sustained = &d
					} else {
						e.log("  Warning: unparseable active date %q for %s", pos.ActiveDate, title)
					}
				}

				orgName := classifier.OrgForPosition(pos)
				orgID := b.org(orgName, "")
				callingID := b.calling(orgID, orgName, title)
				b.assign(callingID, memberID, sustained, pos.SetApart)
				positions++
			}
		}
	}

	e.log("Computed %d organizations, %d callings, %d assignments from %d positions",
		len(b.rebuild.Organizations), len(b.rebuild.Callings), len(b.rebuild.Assignments), positions)
	return b.rebuild
}
