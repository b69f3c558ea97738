// Package classify maps external position records onto the local organization
// hierarchy. The external API does not expose this mapping directly, so it is
// resolved through a layered fallback: structural lookup over the org tree,
// explicit overrides, type-code mapping, and name-pattern mapping. All rules
// live in ordered tables evaluated first-match-wins.
package classify

import (
	"strings"

	"github.com/jarombrown/wardsync/internal/membertools"
)

// DefaultOrgName is the catch-all organization for positions no rule matches.
const DefaultOrgName = "Other"

// BishopricOrgName is the forced home of top ward leadership positions.
const BishopricOrgName = "Bishopric"

// leadershipRosterLabels mark org nodes that are presidency/leadership rosters
// of their parent. They are not materialized as organizations; their positions
// fold into the parent and their children re-parent to the node's own parent.
var leadershipRosterLabels = []string{
	"Class Presidency",
	"Class Adult Leaders",
	"Additional Callings",
	"Quorum Presidency",
	"Quorum Adult Leaders",
}

// genericSubOrgNames are reused under multiple parents (both Elders Quorum and
// Relief Society have "Teachers"), so they get a parent prefix to keep the
// name natural key collision-free.
var genericSubOrgNames = []string{"Teachers", "Activities", "Service", "Ministering"}

// topLevelOrgNames are always root organizations, wherever the external
// hierarchy nests them.
var topLevelOrgNames = []string{"Music", "Sunday School", "Other"}

// bishopricTitleSubstrings force a position into the Bishopric organization
// regardless of the structural lookup. The external source places the bishop
// and counselors under the High Priests Quorum.
var bishopricTitleSubstrings = []string{
	"bishop",
	"ward clerk",
	"ward executive secretary",
	"ward assistant",
}

// orgTypeNames maps structural type codes to display names. Ordered; first
// code contained in the position's type wins.
var orgTypeNames = []struct {
	code string
	name string
}{
	{"BISHOPRIC", "Bishopric"},
	{"ELDERS_QUORUM", "Elders Quorum"},
	{"RELIEF_SOCIETY", "Relief Society"},
	{"YOUNG_MEN", "Young Men"},
	{"YOUNG_WOMEN", "Young Women"},
	{"PRIMARY", "Primary"},
	{"SUNDAY_SCHOOL", "Sunday School"},
	{"HIGH_PRIEST", "High Priests"},
	{"MUSIC", "Music"},
}

// positionNameRules maps position title substrings to organizations when
// neither the structural lookup nor the type code resolves. Ordered;
// first match wins.
var positionNameRules = []struct {
	pattern string
	org     string
}{
	{"Bishop", "Bishopric"},
	{"Ward Clerk", "Bishopric"},
	{"Ward Executive Secretary", "Bishopric"},
	{"Assistant Ward Clerk", "Bishopric"},
	{"Assistant Clerk", "Bishopric"},
	{"Deacons Quorum", "Young Men"},
	{"Teachers Quorum", "Young Men"},
	{"Priests Quorum", "Young Men"},
	{"Aaronic Priesthood", "Young Men"},
	{"Nursery", "Primary"},
	{"Music", "Music"},
	{"Choir", "Music"},
	{"Organist", "Music"},
	{"Pianist", "Music"},
	{"Accompanist", "Music"},
	{"Ward Mission", "Other"},
	{"Ward Missionary", "Other"},
	{"Temple and Family History", "Other"},
	{"Activities Committee", "Other"},
	{"Building Representative", "Other"},
}

// OrgEntry is one organization to materialize from the external tree, with
// effective naming and re-parenting already applied.
type OrgEntry struct {
	Name       string
	ParentName string // effective name of the parent; empty for roots
	ForceRoot  bool
}

// Classifier resolves position records to organization names. Build one per
// run from the external organization tree.
type Classifier struct {
	positionOrg map[string]string
	catalog     []OrgEntry
	seen        map[string]bool
}

// NewClassifier walks the external organization tree once, building the
// position-slot lookup and the catalog of organizations to materialize.
func NewClassifier(orgs []membertools.Org) *Classifier {
	c := &Classifier{
		positionOrg: make(map[string]string),
		seen:        make(map[string]bool),
	}
	for i := range orgs {
		c.mapPositions(&orgs[i], "")
	}
	for i := range orgs {
		c.collectOrgs(&orgs[i], "")
	}
	return c
}

// mapPositions records the effective organization name for every position
// slot in the tree.
func (c *Classifier) mapPositions(org *membertools.Org, parentName string) {
	name := orgName(org)

	effective := name
	if parentName != "" && isLeadershipRoster(name) {
		effective = parentName
	} else if parentName != "" && isGenericSubOrg(name) {
		effective = parentName + " - " + name
	}

	for _, uuid := range org.Positions {
		c.positionOrg[uuid] = effective
	}

	for i := range org.ChildOrgs {
		c.mapPositions(&org.ChildOrgs[i], name)
	}
}

// collectOrgs builds the catalog of organizations to create. Leadership
// roster nodes are skipped and their children re-parented to the node's own
// parent.
func (c *Classifier) collectOrgs(org *membertools.Org, parent string) {
	name := orgName(org)

	if isLeadershipRoster(name) {
		for i := range org.ChildOrgs {
			c.collectOrgs(&org.ChildOrgs[i], parent)
		}
		return
	}

	effective := name
	if parent != "" && isGenericSubOrg(name) {
		effective = parent + " - " + name
	}

	if !c.seen[effective] {
		c.seen[effective] = true
		c.catalog = append(c.catalog, OrgEntry{
			Name:       effective,
			ParentName: parent,
			ForceRoot:  IsForcedRoot(name),
		})
	}

	for i := range org.ChildOrgs {
		c.collectOrgs(&org.ChildOrgs[i], effective)
	}
}

// Catalog returns the organizations to materialize, in tree-walk order so
// parents precede children.
func (c *Classifier) Catalog() []OrgEntry {
	return c.catalog
}

// OrgForPosition resolves the organization name a position belongs to.
// Resolution order: structural lookup, bishopric override, type code,
// name pattern, default. Never fails; every position lands somewhere.
func (c *Classifier) OrgForPosition(pos *membertools.Position) string {
	name := ""
	if pos.UUID != "" {
		name = c.positionOrg[pos.UUID]
	}

	// The override outranks the structural answer: the external source nests
	// top leadership under an unrelated quorum.
	titleLower := strings.ToLower(pos.Name)
	for _, pattern := range bishopricTitleSubstrings {
		if strings.Contains(titleLower, pattern) {
			return BishopricOrgName
		}
	}

	if name != "" {
		return name
	}

	if pos.Type != "" {
		typeUpper := strings.ToUpper(pos.Type)
		for _, entry := range orgTypeNames {
			if strings.Contains(typeUpper, entry.code) {
				return entry.name
			}
		}
	}

	for _, rule := range positionNameRules {
		if strings.Contains(titleLower, strings.ToLower(rule.pattern)) {
			return rule.org
		}
	}

	return DefaultOrgName
}

// IsForcedRoot reports whether an organization name must be a root node.
func IsForcedRoot(name string) bool {
	for _, n := range topLevelOrgNames {
		if name == n {
			return true
		}
	}
	return false
}

func orgName(org *membertools.Org) string {
	if org.Name == "" {
		return "Unknown"
	}
	return org.Name
}

func isLeadershipRoster(name string) bool {
	for _, label := range leadershipRosterLabels {
		if strings.Contains(name, label) {
			return true
		}
	}
	return false
}

func isGenericSubOrg(name string) bool {
	for _, n := range genericSubOrgNames {
		if name == n {
			return true
		}
	}
	return false
}
