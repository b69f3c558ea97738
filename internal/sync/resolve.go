package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jarombrown/wardsync/internal/membertools"
	"github.com/jarombrown/wardsync/internal/types"
)

// parseName extracts first/last name from the name variants the API supplies.
// The listed form ("Last, First Middle") is most reliable; the spoken form
// ("First Last") covers records without one; given name plus the household
// family name is the last resort.
func parseName(rec *membertools.MemberRecord, householdFamily string) (first, last string) {
	listed := rec.Names.Listed
	spoken := rec.Names.Spoken
	given := rec.Names.Parts.Given

	if idx := strings.Index(listed, ","); idx >= 0 {
		last = strings.TrimSpace(listed[:idx])
		rest := strings.Fields(listed[idx+1:])
		if len(rest) > 0 {
			first = rest[0]
		} else {
			first = given
		}
		return first, last
	}

	if spoken != "" {
		parts := strings.Fields(spoken)
		if len(parts) > 0 {
			first = parts[0]
		} else {
			first = given
		}
		if len(parts) > 1 {
			last = strings.Join(parts[1:], " ")
		}
		return first, last
	}

	return given, householdFamily
}

// memberAge computes age in years from the birth date, which arrives either
// as a full date or redacted to "--MM-DD". Redacted and unparseable dates
// yield nil.
func memberAge(birthDate string, now time.Time) *int {
	if birthDate == "" || strings.HasPrefix(birthDate, "--") {
		return nil
	}
	bd, err := time.Parse("2006-01-02", birthDate)
	if err != nil {
		return nil
	}
	age := int(now.Sub(bd).Hours() / 24 / 365)
	return &age
}

// householdName picks a display name for a household: the listed name, then
// the family name, then the first member's spoken or listed name, then
// "Unknown".
func householdName(h *membertools.Household) string {
	if h.Names.Listed != "" {
		return h.Names.Listed
	}
	if h.Names.Family != "" {
		return h.Names.Family
	}
	if len(h.Members) > 0 {
		m := &h.Members[0]
		if m.Names.Spoken != "" {
			return m.Names.Spoken
		}
		if m.Names.Listed != "" {
			return m.Names.Listed
		}
	}
	return "Unknown"
}

// syncMembers upserts households and members from the snapshot and returns
// the mapping from external member UUID to local member id. Member rows are
// owned across syncs: matched by church id first, then by local id, then by
// a guarded name fallback that backfills only rows with no church id yet.
// Records with no UUID are skipped; there is nothing to key them on.
func (e *Engine) syncMembers(ctx context.Context, snap *membertools.Snapshot, homeUnit int) (map[string]string, int, error) {
	households := snap.Households
	if homeUnit != 0 {
		var filtered []membertools.Household
		for _, h := range households {
			if h.UnitNumber == homeUnit {
				filtered = append(filtered, h)
			}
		}
		e.log("Filtering to unit %d: %d households", homeUnit, len(filtered))
		households = filtered
	} else {
		e.log("Processing %d households...", len(households))
	}

	memberIDs := make(map[string]string)
	now := e.now()

	for i := range households {
		h := &households[i]
		if h.UUID == "" {
			continue
		}

		hh := &types.Household{ID: h.UUID, Name: householdName(h)}
		if len(h.Addresses) > 0 {
			hh.Address = h.Addresses[0].Formatted
		}
		if err := e.store.UpsertHousehold(ctx, hh); err != nil {
			return nil, 0, err
		}

		for j := range h.Members {
			rec := &h.Members[j]
			if rec.UUID == "" {
				continue
			}

			first, last := parseName(rec, h.Names.Family)
			m := &types.Member{
				ID:          rec.UUID,
				HouseholdID: h.UUID,
				FirstName:   first,
				LastName:    last,
				Age:         memberAge(rec.BirthDate, now),
				IsActive:    rec.IsAdult(),
				ChurchID:    rec.ChurchID(),
			}
			if len(rec.Emails) > 0 {
				m.Email = rec.Emails[0].Email
			}
			if len(rec.Phones) > 0 {
				m.Phone = rec.Phones[0].E164
			}

			localID, err := e.resolveMember(ctx, m)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to resolve member %s %s: %w", first, last, err)
			}
			memberIDs[rec.UUID] = localID
		}
	}

	e.log("Synced %d members from %d households", len(memberIDs), len(households))
	return memberIDs, len(households), nil
}

// resolveMember matches an incoming member against existing rows and applies
// the appropriate write, returning the local id the record landed on.
func (e *Engine) resolveMember(ctx context.Context, m *types.Member) (string, error) {
	// Church id is the stable identifier; an existing row with the same one
	// IS this person, whatever its local id.
	if m.ChurchID != nil {
		existing, err := e.store.GetMemberByChurchID(ctx, *m.ChurchID)
		if err != nil {
			return "", err
		}
		if existing != nil {
			m.ID = existing.ID
			return existing.ID, e.store.UpdateMemberFromSync(ctx, m)
		}
	}

	existing, err := e.store.GetMember(ctx, m.ID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return m.ID, e.store.UpdateMemberFromSync(ctx, m)
	}

	// Name fallback is restricted to rows with no church id, so a record that
	// already belongs to someone else can never be captured.
	if m.ChurchID != nil {
		match, err := e.store.FindUnlinkedMemberByName(ctx, m.FirstName, m.LastName)
		if err != nil {
			return "", err
		}
		if match != nil {
			return match.ID, e.store.BackfillMember(ctx, match.ID, m)
		}
	}

	return m.ID, e.store.InsertMember(ctx, m)
}
