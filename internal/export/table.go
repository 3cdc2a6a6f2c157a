package export

import (
	"fmt"
	"time"

	"fitbitexport/clients/fitbit"
)

// Table is a named CSV table with a fixed header.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

const timeFmt = "15:04:05"

// displayDate converts YYYY-MM-DD to DD/MM/YYYY. Unparseable input is
// returned unchanged.
func displayDate(date string) string {
	t, err := time.Parse(dateFmt, date)
	if err != nil {
		return date
	}
	return t.Format("02/01/2006")
}

// minutesReadable renders minutes as "X hours Y minutes".
func minutesReadable(minutes int) string {
	if minutes <= 0 {
		return "0 hours 0 minutes"
	}
	return fmt.Sprintf("%d hours %d minutes", minutes/60, minutes%60)
}

// minutesToHours converts minutes to hours with one decimal place.
func minutesToHours(minutes int) string {
	return fmt.Sprintf("%.1f", float64(minutes)/60)
}

// formatDuration renders seconds as "H hours M minutes S seconds".
func formatDuration(totalSeconds int) string {
	return fmt.Sprintf("%d hours %d minutes %d seconds",
		totalSeconds/3600, (totalSeconds%3600)/60, totalSeconds%60)
}

// secondsBetween returns the duration between two HH:MM:SS clock times,
// wrapping past midnight when end precedes start. Empty times count as zero.
func secondsBetween(start, end string) int {
	if start == "" || end == "" {
		return 0
	}
	s, err := time.Parse(timeFmt, start)
	if err != nil {
		return 0
	}
	e, err := time.Parse(timeFmt, end)
	if err != nil {
		return 0
	}
	if e.Before(s) {
		e = e.Add(24 * time.Hour)
	}
	return int(e.Sub(s).Seconds())
}

// periodDurations sums how long the series stayed above and at-or-below the
// active threshold, returning readable active and resting totals.
func periodDurations(points []fitbit.IntradayPoint, activeThreshold int) (active, resting string) {
	var activeTotal, restingTotal int
	var periodStart string
	var periodActive bool

	for i, p := range points {
		isActive := p.Value > activeThreshold
		if periodStart == "" {
			periodStart = p.Time
			periodActive = isActive
			continue
		}
		if isActive != periodActive {
			d := secondsBetween(periodStart, points[i-1].Time)
			if periodActive {
				activeTotal += d
			} else {
				restingTotal += d
			}
			periodStart = p.Time
			periodActive = isActive
		}
	}
	if periodStart != "" && len(points) > 0 {
		d := secondsBetween(periodStart, points[len(points)-1].Time)
		if periodActive {
			activeTotal += d
		} else {
			restingTotal += d
		}
	}
	return formatDuration(activeTotal), formatDuration(restingTotal)
}
