package classify

import (
	"testing"

	"github.com/jarombrown/wardsync/internal/membertools"
)

func testOrgTree() []membertools.Org {
	return []membertools.Org{
		{
			UUID: "eq",
			Name: "Elders Quorum",
			ChildOrgs: []membertools.Org{
				{UUID: "eq-pres", Name: "Quorum Presidency", Positions: []string{"pos-eq-pres"}},
				{UUID: "eq-teachers", Name: "Teachers", Positions: []string{"pos-eq-teacher"}},
			},
		},
		{
			UUID: "rs",
			Name: "Relief Society",
			ChildOrgs: []membertools.Org{
				{UUID: "rs-teachers", Name: "Teachers", Positions: []string{"pos-rs-teacher"}},
			},
		},
		{
			UUID: "ym",
			Name: "Young Men",
			ChildOrgs: []membertools.Org{
				{UUID: "music", Name: "Music", Positions: []string{"pos-chorister"}},
			},
		},
	}
}

func TestLeadershipRosterFoldsIntoParent(t *testing.T) {
	c := NewClassifier(testOrgTree())

	pos := &membertools.Position{UUID: "pos-eq-pres", Name: "Elders Quorum President"}
	if got := c.OrgForPosition(pos); got != "Elders Quorum" {
		t.Errorf("OrgForPosition = %q, want Elders Quorum", got)
	}

	// The roster node itself is never materialized
	for _, entry := range c.Catalog() {
		if entry.Name == "Quorum Presidency" {
			t.Error("leadership roster node should not appear in the catalog")
		}
	}
}

func TestGenericSubOrgGetsParentPrefix(t *testing.T) {
	c := NewClassifier(testOrgTree())

	eq := &membertools.Position{UUID: "pos-eq-teacher", Name: "Teacher"}
	rs := &membertools.Position{UUID: "pos-rs-teacher", Name: "Teacher"}

	if got := c.OrgForPosition(eq); got != "Elders Quorum - Teachers" {
		t.Errorf("Elders Quorum teacher resolved to %q", got)
	}
	if got := c.OrgForPosition(rs); got != "Relief Society - Teachers" {
		t.Errorf("Relief Society teacher resolved to %q", got)
	}

	names := make(map[string]bool)
	for _, entry := range c.Catalog() {
		if names[entry.Name] {
			t.Errorf("duplicate catalog entry %q", entry.Name)
		}
		names[entry.Name] = true
	}
	if !names["Elders Quorum - Teachers"] || !names["Relief Society - Teachers"] {
		t.Error("prefixed sub-orgs missing from catalog")
	}
}

func TestForcedRootOrgs(t *testing.T) {
	c := NewClassifier(testOrgTree())

	for _, entry := range c.Catalog() {
		if entry.Name == "Music" && !entry.ForceRoot {
			t.Error("Music nested under Young Men should still be a forced root")
		}
	}
}

func TestBishopricOverrideOutranksStructure(t *testing.T) {
	// The external source nests the bishop under the High Priests Quorum
	tree := []membertools.Org{
		{UUID: "hp", Name: "High Priests Quorum", Positions: []string{"pos-bishop"}},
	}
	c := NewClassifier(tree)

	pos := &membertools.Position{UUID: "pos-bishop", Name: "Bishop"}
	if got := c.OrgForPosition(pos); got != "Bishopric" {
		t.Errorf("Bishop resolved to %q, want Bishopric", got)
	}

	clerk := &membertools.Position{Name: "Ward Clerk"}
	if got := c.OrgForPosition(clerk); got != "Bishopric" {
		t.Errorf("Ward Clerk resolved to %q, want Bishopric", got)
	}
}

func TestTypeCodeFallback(t *testing.T) {
	c := NewClassifier(nil)

	pos := &membertools.Position{Name: "Secretary", Type: "WARD_PRIMARY_SECRETARY"}
	if got := c.OrgForPosition(pos); got != "Primary" {
		t.Errorf("type-code fallback resolved to %q, want Primary", got)
	}
}

func TestNamePatternFallback(t *testing.T) {
	c := NewClassifier(nil)

	pos := &membertools.Position{Name: "Nursery Leader"}
	if got := c.OrgForPosition(pos); got != "Primary" {
		t.Errorf("name-pattern fallback resolved to %q, want Primary", got)
	}

	unknown := &membertools.Position{Name: "Totally Novel Position"}
	if got := c.OrgForPosition(unknown); got != DefaultOrgName {
		t.Errorf("unmatched position resolved to %q, want %q", got, DefaultOrgName)
	}
}
