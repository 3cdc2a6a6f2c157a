package export

import (
	"time"

	"fitbitexport/clients/fitbit"
)

const dateFmt = "2006-01-02"

// Bundle aggregates everything fetched for one account over a date range.
// Each slice holds one payload per requested day, in date order. A bundle is
// never mutated after the fetch loop completes.
type Bundle struct {
	Email     string                    `json:"email"`
	UserID    string                    `json:"user_id"`
	DeviceID  string                    `json:"device_id"`
	StartDate string                    `json:"start_date"`
	EndDate   string                    `json:"end_date"`
	Steps     []fitbit.StepsResponse    `json:"steps"`
	Calories  []fitbit.CaloriesResponse `json:"calories"`
	Heart     []fitbit.HeartResponse    `json:"heart"`
	Rate      []fitbit.HeartResponse    `json:"rate"`
	Sleep     []fitbit.SleepResponse    `json:"sleep"`
	SpO2      []fitbit.SpO2Response     `json:"spo2"`
}

// Days returns the inclusive day count of the bundle's date range.
func (b *Bundle) Days() int {
	start, err := time.Parse(dateFmt, b.StartDate)
	if err != nil {
		return 0
	}
	end, err := time.Parse(dateFmt, b.EndDate)
	if err != nil {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}
