package reward

import (
	"fmt"
	"time"
)

// WeekId returns the ISO-8601 week identifier ("2024-W07") of t in UTC.
// Every instant inside the same ISO week maps to the same id, which makes it
// the idempotency key for weekly distribution runs: persisting one record per
// week id guarantees at most one payout round per week.
func WeekId(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
