package usecase

import (
	"fmt"
	"time"

	"github.com/preocts/daystats/internal/domain"
)

// InvalidDateError reports a year/month/day combination that does not
// name a real calendar date.
type InvalidDateError struct {
	Year  int
	Month int
	Day   int
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date: year=%d month=%d day=%d", e.Year, e.Month, e.Day)
}

// BuildWindow returns the bookend instants, 00:00:00 through 23:59:59, for
// the target date. Zero-valued year, month, or day fall back to the matching
// field of now, so overriding only the day yields that day of the current
// month. The result carries naive wall-clock values in the UTC location.
func BuildWindow(now time.Time, year, month, day int) (domain.Window, error) {
	y, m, d := now.Date()
	if year != 0 {
		y = year
	}
	if month != 0 {
		m = time.Month(month)
	}
	if day != 0 {
		d = day
	}

	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range fields (Feb 30 becomes Mar 1/2);
	// any drift means the requested date does not exist.
	if start.Year() != y || start.Month() != m || start.Day() != d {
		return domain.Window{}, &InvalidDateError{Year: y, Month: int(m), Day: d}
	}

	end := time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
	return domain.Window{Start: start, End: end}, nil
}
