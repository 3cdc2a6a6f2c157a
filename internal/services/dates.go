package services

import (
	"fmt"
	"time"
)

const dateFmt = "2006-01-02"

// maxRangeDays caps a single export so one run cannot blow the hourly API
// budget.
const maxRangeDays = 30

// DateRange is an inclusive range of whole days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange validates and parses a YYYY-MM-DD range. The end date must
// be before today, the start must not follow the end, and the range is
// capped at maxRangeDays.
func ParseDateRange(start, end string) (DateRange, error) {
	return parseDateRange(start, end, time.Now())
}

func parseDateRange(start, end string, now time.Time) (DateRange, error) {
	s, err := time.Parse(dateFmt, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q: use YYYY-MM-DD", start)
	}
	e, err := time.Parse(dateFmt, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q: use YYYY-MM-DD", end)
	}
	if s.Year() <= 2000 || e.Year() <= 2000 {
		return DateRange{}, fmt.Errorf("year must be greater than 2000")
	}
	today := now.Truncate(24 * time.Hour)
	if !e.Before(today) {
		return DateRange{}, fmt.Errorf("end date cannot be today or in the future")
	}
	if s.After(e) {
		return DateRange{}, fmt.Errorf("start date cannot be greater than end date")
	}
	r := DateRange{Start: s, End: e}
	if r.Days() > maxRangeDays {
		return DateRange{}, fmt.Errorf("date range must not exceed %d days", maxRangeDays)
	}
	return r, nil
}

// RangeFromDays returns the n-day range ending yesterday.
func RangeFromDays(days int) (DateRange, error) {
	return rangeFromDays(days, time.Now())
}

func rangeFromDays(days int, now time.Time) (DateRange, error) {
	if days < 1 {
		return DateRange{}, fmt.Errorf("days must be at least 1")
	}
	if days > maxRangeDays {
		return DateRange{}, fmt.Errorf("date range must not exceed %d days", maxRangeDays)
	}
	end := now.Truncate(24 * time.Hour).AddDate(0, 0, -1)
	return DateRange{Start: end.AddDate(0, 0, -(days - 1)), End: end}, nil
}

// Days returns the inclusive day count.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Dates lists every date in the range as YYYY-MM-DD, oldest first.
func (r DateRange) Dates() []string {
	dates := make([]string, 0, r.Days())
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(dateFmt))
	}
	return dates
}
