package classify

import "strings"

// defaultOrder is the weight for names no rule matches.
const defaultOrder = 50

// orderRule is one entry of a display-order table. A rule matches when every
// specified constraint holds. Tables are evaluated in order; first match wins.
type orderRule struct {
	exact  string   // exact name match
	prefix string   // lowercase name prefix
	all    []string // lowercase substrings that must all be present
	none   []string // lowercase substrings that must all be absent
	order  int
}

func (r *orderRule) matches(name, lower string) bool {
	if r.exact == "" && r.prefix == "" && len(r.all) == 0 {
		return false
	}
	if r.exact != "" && name != r.exact {
		return false
	}
	if r.prefix != "" && !strings.HasPrefix(lower, r.prefix) {
		return false
	}
	for _, s := range r.all {
		if !strings.Contains(lower, s) {
			return false
		}
	}
	for _, s := range r.none {
		if strings.Contains(lower, s) {
			return false
		}
	}
	return true
}

func matchOrder(rules []orderRule, name string) int {
	lower := strings.ToLower(name)
	for i := range rules {
		if rules[i].matches(name, lower) {
			return rules[i].order
		}
	}
	return defaultOrder
}

// callingOrderRules ranks calling titles for display. Leadership first (1-9),
// then administrative (10-19), instructional (20-29), coordinators and
// committees (30-39), advisors and specialists (40-49); everything else 50.
var callingOrderRules = []orderRule{
	{all: []string{"bishop"}, none: []string{"counselor"}, order: 1},
	{all: []string{"president"}, none: []string{"counselor"}, order: 1},
	{all: []string{"first counselor"}, order: 2},
	{all: []string{"second counselor"}, order: 3},
	{all: []string{"1st counselor"}, order: 2},
	{all: []string{"2nd counselor"}, order: 3},
	{all: []string{"leader"}, none: []string{"adult"}, order: 5},
	{all: []string{"executive", "secretary"}, order: 10},
	{all: []string{"secretary"}, order: 11},
	{all: []string{"clerk"}, none: []string{"assistant"}, order: 12},
	{all: []string{"assistant", "clerk"}, order: 13},
	{all: []string{"instructor"}, order: 20},
	{all: []string{"teacher"}, order: 21},
	{all: []string{"coordinator"}, order: 30},
	{all: []string{"committee"}, order: 31},
	{all: []string{"advisor"}, order: 40},
	{all: []string{"adviser"}, order: 40},
	{all: []string{"specialist"}, order: 41},
	{all: []string{"chorister"}, order: 25},
	{all: []string{"music chairman"}, order: 25},
	{all: []string{"choir", "director"}, order: 24},
	{all: []string{"organist"}, order: 26},
	{all: []string{"pianist"}, order: 26},
	{all: []string{"choir"}, order: 27},
}

// CallingDisplayOrder returns the display weight for a calling title.
func CallingDisplayOrder(title string) int {
	return matchOrder(callingOrderRules, title)
}

// orgOrderRules ranks organizations for display. Top-level ward organizations
// get fixed slots, stake organizations sort to the end, and age-graduated
// classes sort oldest to youngest within their parent.
var orgOrderRules = []orderRule{
	// Top-level ward orgs
	{exact: "Bishopric", order: 1},
	{exact: "Elders Quorum", order: 2},
	{exact: "Relief Society", order: 3},
	{exact: "Young Men", order: 4},
	{exact: "Young Women", order: 5},
	{exact: "Aaronic Priesthood Quorums", order: 6},
	{exact: "Primary", order: 7},
	{exact: "Sunday School", order: 8},
	{exact: "Music", order: 9},
	{exact: "Temple and Family History", order: 10},
	{exact: "Ward Missionaries", order: 11},
	{exact: "Other", order: 12},
	{exact: "Other Callings", order: 12},

	// Stake orgs at the end
	{prefix: "stake", order: 80},
	{exact: "High Council", order: 80},
	{exact: "Patriarch", order: 80},
	{exact: "High Priests Quorum", order: 81},

	// Presidency always first within its parent
	{all: []string{"presidency"}, order: 1},

	// Aaronic Priesthood quorums (old to young)
	{all: []string{"priests quorum"}, order: 10},
	{all: []string{"teachers quorum"}, order: 11},
	{all: []string{"deacons quorum"}, order: 12},

	// Young Women classes (old to young)
	{all: []string{"young women 16-18"}, order: 10},
	{all: []string{"young women 14-15"}, order: 11},
	{all: []string{"young women 12-15"}, order: 12},
	{all: []string{"young women 12-13"}, order: 13},
	{all: []string{"young women 12-18"}, order: 20},

	// Primary - Valiant (oldest)
	{all: []string{"valiant 10"}, order: 10},
	{all: []string{"valiant 9"}, order: 14},
	{all: []string{"valiant 8"}, order: 16},
	{all: []string{"valiant 7"}, order: 18},

	// Primary - CTR
	{all: []string{"ctr 6"}, order: 20},
	{all: []string{"ctr 5"}, order: 22},
	{all: []string{"ctr 4"}, order: 24},

	// Primary - Sunbeam/Nursery (youngest)
	{all: []string{"sunbeam"}, order: 30},
	{all: []string{"nursery"}, order: 40},

	// Sunday School courses (old to young)
	{all: []string{"course 17"}, order: 10},
	{all: []string{"gospel doctrine"}, order: 10},
	{all: []string{"course 16"}, order: 12},
	{all: []string{"course 15"}, order: 14},
	{all: []string{"course 14"}, order: 16},
	{all: []string{"course 13"}, order: 18},
	{all: []string{"course 12"}, order: 20},
	{all: []string{"course 11"}, order: 22},
	{all: []string{"youth sunday school"}, order: 40},

	// Committee and leftover sub-orgs
	{all: []string{"activities"}, order: 90},
	{all: []string{"additional"}, order: 99},
	{all: []string{"teachers"}, order: 50},
	{all: []string{"service"}, order: 51},
	{all: []string{"ministering"}, order: 52},
	{all: []string{"unassigned"}, order: 95},
	{all: []string{"resource"}, order: 95},
}

// OrgDisplayOrder returns the display weight for an organization name.
func OrgDisplayOrder(name string) int {
	return matchOrder(orgOrderRules, name)
}
