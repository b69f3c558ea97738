package sync

import (
	"time"

	"github.com/jarombrown/wardsync/internal/membertools"
)

// RecommendSummary aggregates temple recommend status across units.
type RecommendSummary struct {
	Active       int
	Expired      int
	ExpiringSoon int // active and expiring within three months
}

// summarizeRecommends tallies recommend statuses from the snapshot.
// Expirations arrive as "YYYY-MM"; an active recommend whose expiration
// month is zero to three calendar months away counts as expiring soon.
func summarizeRecommends(snap *membertools.Snapshot, now time.Time) RecommendSummary {
	var summary RecommendSummary

	for _, unit := range snap.TempleRecommendStatus {
		for _, r := range unit.Recommends {
			switch r.Status {
			case "ACTIVE":
				summary.Active++
				if exp, err := time.Parse("2006-01", r.Expiration); err == nil {
					monthsUntil := (exp.Year()-now.Year())*12 + int(exp.Month()) - int(now.Month())
					if monthsUntil >= 0 && monthsUntil <= 3 {
						summary.ExpiringSoon++
					}
				}
			case "EXPIRED":
				summary.Expired++
			}
		}
	}
	return summary
}
