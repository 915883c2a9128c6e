package registration

import "time"

// ValidateCreate runs the registration business-rule chain in its fixed
// order: sales window open, quota not exhausted, no duplicate. Ticket and
// user existence are checked by the caller before the chain runs. The
// boundaries are inclusive: a request at exactly salesStart or salesEnd
// passes.
func ValidateCreate(salesStart, salesEnd time.Time, quota, registered int, alreadyRegistered bool, now time.Time) error {
	if now.Before(salesStart) {
		return ErrSalesNotStarted
	}
	if now.After(salesEnd) {
		return ErrSalesEnded
	}
	if registered >= quota {
		return ErrQuotaFull
	}
	if alreadyRegistered {
		return ErrAlreadyRegistered
	}
	return nil
}
