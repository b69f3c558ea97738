package membertools

import "strconv"

// Snapshot is the full payload returned by the sync endpoint. The fetcher
// performs no interpretation; the reconciliation engine owns all mapping.
type Snapshot struct {
	Households            []Household           `json:"households"`
	Organizations         []Org                 `json:"organizations"`
	ActionInterviews      []ActionInterview     `json:"actionInterviews"`
	TempleRecommendStatus []UnitRecommendStatus `json:"templeRecommendStatus"`
}

// Household is a family unit with nested members.
type Household struct {
	UUID       string          `json:"uuid"`
	UnitNumber int             `json:"unitNumber"`
	Names      HouseholdNames  `json:"names"`
	Addresses  []Address       `json:"addresses"`
	Members    []MemberRecord  `json:"members"`
}

// HouseholdNames carries the display name variants for a household.
type HouseholdNames struct {
	Listed string `json:"listed"`
	Family string `json:"family"`
}

// Address is one formatted household address.
type Address struct {
	Formatted string `json:"formatted"`
}

// MemberRecord is one person as the external API represents them.
type MemberRecord struct {
	UUID            string      `json:"uuid"`
	Names           MemberNames `json:"names"`
	Emails          []Email     `json:"emails"`
	Phones          []Phone     `json:"phones"`
	BirthDate       string      `json:"birthDate"` // "--MM-DD" when redacted
	Classifications []string    `json:"classifications"`
	Positions       []Position  `json:"positions"`

	// The numeric church id is the only identifier that is stable across
	// releases. The API has shipped it as a number, a digit string, and
	// occasionally garbage, so both fields decode loosely and ChurchID
	// applies the acceptance heuristic.
	LegacyCmisID any `json:"legacyCmisId"`
	ID           any `json:"id"`
}

// MemberNames carries the name variants for a member.
type MemberNames struct {
	Listed string    `json:"listed"` // "Last, First Middle"
	Spoken string    `json:"spoken"` // "First Last"
	Parts  NameParts `json:"parts"`
}

// NameParts is the decomposed name when the API supplies it.
type NameParts struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

// Email is one email entry; the API sends either objects or bare strings
// depending on endpoint version, so only the object form is modeled here.
type Email struct {
	Email string `json:"email"`
}

// Phone is one phone entry.
type Phone struct {
	E164 string `json:"e164"`
}

// Position is one calling/position record attached to a member.
type Position struct {
	UUID       string `json:"uuid"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	UnitName   string `json:"unitName"`
	UnitNumber int    `json:"unitNumber"`
	ActiveDate string `json:"activeDate"`
	SetApart   bool   `json:"setApart"`
}

// Org is one node of the external organization tree. Positions holds the
// UUIDs of position slots belonging directly to this node.
type Org struct {
	UUID      string   `json:"uuid"`
	Name      string   `json:"name"`
	Positions []string `json:"positions"`
	ChildOrgs []Org    `json:"childOrgs"`
}

// ActionInterview is one interview action record.
type ActionInterview struct {
	Type    string            `json:"type"`
	Members []InterviewMember `json:"members"`
}

// InterviewMember references a member due for an interview.
type InterviewMember struct {
	UUID string `json:"uuid"`
}

// UnitRecommendStatus groups temple recommend records per unit.
type UnitRecommendStatus struct {
	Recommends []Recommend `json:"recommends"`
}

// Recommend is one temple recommend status record.
type Recommend struct {
	Status     string `json:"status"`     // ACTIVE, EXPIRED, ...
	Expiration string `json:"expiration"` // "YYYY-MM"
}

// ChurchID extracts the stable numeric identifier for a member, preferring
// legacyCmisId over id. Only values that are already numeric or purely-digit
// strings are accepted; anything else is treated as absent.
func (m *MemberRecord) ChurchID() *int64 {
	if id := normalizeChurchID(m.LegacyCmisID); id != nil {
		return id
	}
	return normalizeChurchID(m.ID)
}

func normalizeChurchID(v any) *int64 {
	switch id := v.(type) {
	case float64:
		n := int64(id)
		if n <= 0 {
			return nil
		}
		return &n
	case int64:
		if id <= 0 {
			return nil
		}
		return &id
	case int:
		n := int64(id)
		if n <= 0 {
			return nil
		}
		return &n
	case string:
		if id == "" {
			return nil
		}
		for _, r := range id {
			if r < '0' || r > '9' {
				return nil
			}
		}
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil || n <= 0 {
			return nil
		}
		return &n
	}
	return nil
}

// IsAdult reports whether the member is classified as a household head or
// spouse.
func (m *MemberRecord) IsAdult() bool {
	for _, c := range m.Classifications {
		if c == "HEAD" || c == "SPOUSE" {
			return true
		}
	}
	return false
}
