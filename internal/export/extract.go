package export

import (
	"math"
	"strconv"
	"strings"

	"fitbitexport/clients/fitbit"
)

// activeThreshold is the heart rate (bpm) above which a reading counts as
// active rather than resting.
const activeThreshold = 110

// nightWindowEnd splits the day: readings before 09:00 belong to the night
// window.
const nightWindowEnd = "09:00:00"

var zoneNames = []string{"OutOfRange", "FatBurn", "Cardio", "Peak"}

var sleepStages = []string{"deep", "wake", "light", "rem"}

func round(v float64, places int) string {
	pow := math.Pow(10, float64(places))
	return strconv.FormatFloat(math.Round(v*pow)/pow, 'f', -1, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ExtractSteps yields one row per requested day with the daily step total.
func ExtractSteps(b *Bundle) Table {
	t := Table{Name: "Steps", Header: []string{"DeviceID", "Date", "TotalSteps"}}
	for _, resp := range b.Steps {
		for _, entry := range resp.ActivitiesSteps {
			steps, _ := strconv.Atoi(entry.Value)
			t.Rows = append(t.Rows, []string{
				b.DeviceID, displayDate(entry.DateTime), strconv.Itoa(steps),
			})
		}
	}
	return t
}

// ExtractCalories yields one row per requested day with calories burned.
func ExtractCalories(b *Bundle) Table {
	t := Table{Name: "Calories", Header: []string{"DeviceID", "Date", "CaloriesOut"}}
	for _, resp := range b.Calories {
		for _, entry := range resp.ActivitiesCalories {
			calories, _ := strconv.Atoi(entry.Value)
			t.Rows = append(t.Rows, []string{
				b.DeviceID, displayDate(entry.DateTime), strconv.Itoa(calories),
			})
		}
	}
	return t
}

// ExtractRestingHeartRate yields rows for the days a resting heart rate was
// recorded. The value rides along on the intraday responses.
func ExtractRestingHeartRate(b *Bundle) Table {
	t := Table{Name: "RestingHeartRate", Header: []string{"DeviceID", "Date", "RestingHeartRate"}}
	for _, resp := range b.Rate {
		for _, day := range resp.ActivitiesHeart {
			if day.Value.RestingHeartRate == 0 {
				continue
			}
			t.Rows = append(t.Rows, []string{
				b.DeviceID, displayDate(day.DateTime), strconv.Itoa(day.Value.RestingHeartRate),
			})
		}
	}
	return t
}

// ExtractSpO2 yields daily blood oxygen averages and extremes.
func ExtractSpO2(b *Bundle) Table {
	t := Table{Name: "SPO2", Header: []string{"DeviceID", "Date", "AvgSpO2", "MinSpO2", "MaxSpO2"}}
	for _, resp := range b.SpO2 {
		if resp.DateTime == "" {
			continue
		}
		t.Rows = append(t.Rows, []string{
			b.DeviceID, displayDate(resp.DateTime),
			formatFloat(resp.Value.Avg),
			formatFloat(resp.Value.Min),
			formatFloat(resp.Value.Max),
		})
	}
	return t
}

// ExtractHeartRateZones flattens the four standard zones into fixed columns.
func ExtractHeartRateZones(b *Bundle) Table {
	header := []string{"DeviceID", "Date"}
	for _, zone := range zoneNames {
		header = append(header,
			zone+"Min", zone+"Max", zone+"CaloriesOut", zone+"Minutes")
	}
	t := Table{Name: "HeartRateData", Header: header}

	for _, resp := range b.Heart {
		for _, day := range resp.ActivitiesHeart {
			byName := make(map[string]fitbit.HeartRateZone, len(day.Value.HeartRateZones))
			for _, zone := range day.Value.HeartRateZones {
				byName[strings.ReplaceAll(zone.Name, " ", "")] = zone
			}
			row := []string{b.DeviceID, displayDate(day.DateTime)}
			for _, name := range zoneNames {
				zone := byName[name]
				row = append(row,
					strconv.Itoa(zone.Min),
					strconv.Itoa(zone.Max),
					round(zone.CaloriesOut, 4),
					strconv.Itoa(zone.Minutes),
				)
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

// ExtractSleep keeps exactly one row per date: the main sleep log. Naps and
// duplicate logs for an already-processed date are dropped.
func ExtractSleep(b *Bundle) Table {
	header := []string{
		"DeviceID", "LogID", "Date", "StartTime", "EndTime", "Duration",
		"Efficiency", "MinutesAsleep", "MinutesAwake", "TimeInBed",
		"IsMainSleep", "Type",
	}
	for _, stage := range sleepStages {
		header = append(header,
			stage+"Minutes", stage+"Count", stage+"ThirtyDayAvgMinutes")
	}
	header = append(header,
		"MinutesAsleepHours", "MinutesAsleepReadable", "MinutesAwakeReadable",
		"TimeInBedReadable", "WakeMinutesReadable", "RemMinutesReadable",
		"LightMinutesReadable", "DeepMinutesReadable",
	)
	t := Table{Name: "Sleep", Header: header}

	processed := make(map[string]bool)
	for _, resp := range b.Sleep {
		for _, entry := range resp.Sleep {
			if !entry.IsMainSleep || processed[entry.DateOfSleep] {
				continue
			}
			processed[entry.DateOfSleep] = true

			row := []string{
				b.DeviceID,
				strconv.FormatInt(entry.LogID, 10),
				displayDate(entry.DateOfSleep),
				entry.StartTime,
				entry.EndTime,
				strconv.FormatInt(entry.Duration, 10),
				strconv.Itoa(entry.Efficiency),
				strconv.Itoa(entry.MinutesAsleep),
				strconv.Itoa(entry.MinutesAwake),
				strconv.Itoa(entry.TimeInBed),
				strconv.FormatBool(entry.IsMainSleep),
				entry.Type,
			}
			stages := make(map[string]fitbit.SleepStage, len(sleepStages))
			for _, stage := range sleepStages {
				stages[stage] = entry.Levels.Summary[stage]
				row = append(row,
					strconv.Itoa(stages[stage].Minutes),
					strconv.Itoa(stages[stage].Count),
					strconv.Itoa(stages[stage].ThirtyDayAvgMinutes),
				)
			}
			row = append(row,
				minutesToHours(entry.MinutesAsleep),
				minutesReadable(entry.MinutesAsleep),
				minutesReadable(entry.MinutesAwake),
				minutesReadable(entry.TimeInBed),
				minutesReadable(stages["wake"].Minutes),
				minutesReadable(stages["rem"].Minutes),
				minutesReadable(stages["light"].Minutes),
				minutesReadable(stages["deep"].Minutes),
			)
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

// ExtractAverageRate computes daily heart rate averages from the intraday
// series, split into overall, active and resting, and again for the day and
// night windows, along with window timings and period durations.
func ExtractAverageRate(b *Bundle) Table {
	t := Table{Name: "AverageRate", Header: []string{
		"DeviceID", "Date", "TimeStart", "TimeEnd", "Duration",
		"TimeStartDay", "TimeEndDay", "DurationDay",
		"TimeStartNight", "TimeEndNight", "DurationNight",
		"DatasetInterval", "DatasetType",
		"AvgHeartRate", "AvgHeartRateActive", "AvgHeartRateResting",
		"AvgHeartRateDay", "AvgHeartRateDayActive", "AvgHeartRateDayActiveDuration",
		"AvgHeartRateDayResting", "AvgHeartRateDayRestingDuration",
		"AvgHeartRateNight", "AvgHeartRateNightActive", "AvgHeartRateNightActiveDuration",
		"AvgHeartRateNightResting", "AvgHeartRateNightRestingDuration",
	}}

	for _, resp := range b.Rate {
		if resp.Intraday == nil || len(resp.Intraday.Dataset) == 0 {
			continue
		}
		date := ""
		if len(resp.ActivitiesHeart) > 0 {
			date = resp.ActivitiesHeart[0].DateTime
		}
		dataset := resp.Intraday.Dataset

		var night, day []fitbit.IntradayPoint
		for _, p := range dataset {
			if p.Time < nightWindowEnd {
				night = append(night, p)
			} else {
				day = append(day, p)
			}
		}

		timeStart, timeEnd := dataset[0].Time, dataset[len(dataset)-1].Time
		dayStart, dayEnd := windowBounds(day)
		nightStart, nightEnd := windowBounds(night)

		dayActive, dayResting := periodDurations(day, activeThreshold)
		nightActive, nightResting := periodDurations(night, activeThreshold)

		row := []string{
			b.DeviceID, displayDate(date),
			timeStart, timeEnd, formatDuration(secondsBetween(timeStart, timeEnd)),
			dayStart, dayEnd, formatDuration(secondsBetween(dayStart, dayEnd)),
			nightStart, nightEnd, formatDuration(secondsBetween(nightStart, nightEnd)),
			strconv.Itoa(resp.Intraday.DatasetInterval),
			resp.Intraday.DatasetType,
			round(average(dataset, anyPoint), 4),
			round(averageOr(dataset, activePoint, 120), 2),
			round(averageOr(dataset, restingPoint, 80), 2),
			round(average(day, anyPoint), 2),
			round(averageOr(day, activePoint, 120), 2),
			dayActive,
			round(averageOr(day, restingPoint, 80), 2),
			dayResting,
			round(average(night, anyPoint), 2),
			round(averageOr(night, activePoint, 120), 2),
			nightActive,
			round(averageOr(night, restingPoint, 80), 2),
			nightResting,
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func windowBounds(points []fitbit.IntradayPoint) (start, end string) {
	if len(points) == 0 {
		return "", ""
	}
	return points[0].Time, points[len(points)-1].Time
}

func anyPoint(int) bool       { return true }
func activePoint(v int) bool  { return v > activeThreshold }
func restingPoint(v int) bool { return v <= activeThreshold }

func average(points []fitbit.IntradayPoint, keep func(int) bool) float64 {
	var sum, n int
	for _, p := range points {
		if keep(p.Value) {
			sum += p.Value
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func averageOr(points []fitbit.IntradayPoint, keep func(int) bool, def float64) float64 {
	var sum, n int
	for _, p := range points {
		if keep(p.Value) {
			sum += p.Value
			n++
		}
	}
	if n == 0 {
		return def
	}
	return float64(sum) / float64(n)
}

// Tables runs every extractor over a bundle in the fixed export order.
func Tables(b *Bundle) []Table {
	return []Table{
		ExtractSleep(b),
		ExtractSteps(b),
		ExtractCalories(b),
		ExtractRestingHeartRate(b),
		ExtractSpO2(b),
		ExtractHeartRateZones(b),
		ExtractAverageRate(b),
	}
}
