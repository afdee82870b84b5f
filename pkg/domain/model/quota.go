package model

import "time"

// QuotaStatus is the result of a limiter admission check.
type QuotaStatus struct {
	Allowed   bool
	Remaining int
	// ResetIn is the time until the current window expires. Zero when no
	// window is open for the identity.
	ResetIn time.Duration
}

// QuotaRecord is the stored usage counter for one identity. A record is
// either absent (zero usage) or has WindowResetAt in the future; once
// the reset time passes the record is treated as absent on read and
// recreated on the next increment.
type QuotaRecord struct {
	Count         int64
	WindowResetAt time.Time
}

// Expired reports whether the record's window has elapsed at now.
func (r *QuotaRecord) Expired(now time.Time) bool {
	return now.After(r.WindowResetAt)
}
