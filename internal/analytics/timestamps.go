package analytics

import "time"

// RevenueTimestamp selects the instant an invoice counts as revenue.
// Order of preference is paidAt → issuedAt → fallback.
func RevenueTimestamp(paidAt, issuedAt *time.Time, fallback time.Time) time.Time {
	if paidAt != nil && !paidAt.IsZero() {
		return paidAt.UTC()
	}
	if issuedAt != nil && !issuedAt.IsZero() {
		return issuedAt.UTC()
	}
	return fallback.UTC()
}

// monthKey buckets t as YYYY-MM.
func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

func startOfYear(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}
