package marketday

import "time"

// IsBusinessDay reports whether t falls on Monday through Friday in its own
// location.
func IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// PreviousBusinessDay returns the closest business day strictly before t,
// keeping t's clock time and location.
func PreviousBusinessDay(t time.Time) time.Time {
	for {
		t = t.AddDate(0, 0, -1)
		if IsBusinessDay(t) {
			return t
		}
	}
}
